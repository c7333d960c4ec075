package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/leads/internal/logging"
)

// handleImport accepts a multipart form with a "file" part holding CSV.
//
// Row-level rejections and insert failures still answer 200: the result
// body carries them. Only failures that stop the whole batch (too many
// rows, unreadable CSV, import slots exhausted) produce an error status.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.MaxImportBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, r, badRequest("file too large or invalid form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, badRequest("no file provided"))
		return
	}
	defer file.Close()

	logger := logging.WithFields(r.Context(), "file", header.Filename, "size", header.Size)
	logger.Info("import started")

	result, err := s.service.ImportCSV(r.Context(), file, actorID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logger.Info("import finished",
		"inserted", result.Inserted,
		"rejected", result.Rejected,
		"insert_error", result.InsertError != "",
	)
	writeJSON(w, http.StatusOK, result)
}

// exportArchiveResponse is returned by GET /api/buyers/export?archive=true.
type exportArchiveResponse struct {
	Rows int    `json:"rows"`
	Key  string `json:"key"`
	URL  string `json:"url"`
}

var errArchiveDisabled = errors.New("export archive not configured")

// handleExport writes the filtered leads as CSV. With archive=true the file
// is stored in object storage and a presigned link is returned instead.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	archive, _ := strconv.ParseBool(r.URL.Query().Get("archive"))
	if archive && s.archiver == nil {
		s.respondErrorStatus(w, r, errArchiveDisabled, http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	rows, err := s.service.ExportCSV(r.Context(), &buf, parseFilter(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if !archive {
		name := fmt.Sprintf("buyers-%s.csv", time.Now().UTC().Format("20060102"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.Header().Set("X-Export-Rows", strconv.Itoa(rows))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
		return
	}

	key := s.archiver.Key()
	url, err := s.archiver.Archive(r.Context(), key, buf.Bytes())
	if err != nil {
		s.respondErrorStatus(w, r, fmt.Errorf("archive export: %w", err), http.StatusBadGateway)
		return
	}

	logging.FromContext(r.Context()).Info("export archived", "key", key, "rows", rows)
	writeJSON(w, http.StatusOK, exportArchiveResponse{Rows: rows, Key: key, URL: url})
}
