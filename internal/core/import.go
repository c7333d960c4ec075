package core

// import.go implements the bulk CSV import pipeline.
//
// Rows are validated independently. Accepted rows are inserted with a
// single batch call; rejected rows are reported by CSV line number, where
// the header is line 1 and the first data row is line 2. A batch over the
// row ceiling is rejected before any row is examined.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Import messages shown to the user.
const (
	MsgNoValidRows = "No valid rows to import."
	msgRowBHK      = "Row %d: BHK is required for Apartment or Villa property type"
	msgInsertFail  = "Error inserting rows: "
)

// requiredColumns must appear in an import header.
var requiredColumns = []string{
	FieldFullName, FieldPhone, FieldCity, FieldPropertyType, FieldPurpose, FieldTimeline,
}

// ImportCSV parses r as CSV with a header row and imports the data rows.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader, actor uuid.UUID) (ImportResult, error) {
	rows, err := s.ReadImportRows(r)
	if err != nil {
		if errors.Is(err, ErrBatchTooLarge) {
			s.rec.ImportFinished(0, 0, err)
		}
		return ImportResult{}, err
	}
	return s.ImportRows(ctx, rows, actor)
}

// ReadImportRows parses CSV into rows keyed by canonical column name.
// Reading stops with ErrBatchTooLarge as soon as the row ceiling is passed.
func (s *Service) ReadImportRows(r io.Reader) ([]ImportRow, error) {
	cr := csv.NewReader(CleanCSVReader(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyImport
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrInvalidCSV, err)
	}

	cols := make([]string, len(header))
	present := make(map[string]bool, len(header))
	for i, h := range header {
		col, ok := CanonicalColumn(h)
		if ok {
			cols[i] = col
			present[col] = true
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s", ErrInvalidCSV, strings.Join(missing, ", "))
	}

	var rows []ImportRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row: %w", ErrInvalidCSV, err)
		}
		if isBlankRecord(rec) {
			continue
		}
		if len(rows) == s.maxImportRows {
			return nil, ErrBatchTooLarge
		}

		row := make(ImportRow, len(cols))
		for i, col := range cols {
			if col != "" && i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ImportRows validates and inserts rows on behalf of actor.
//
// A returned error means nothing was processed (batch too large, limiter
// busy, cancelled). Row failures and insert failures are reported in the
// result with a nil error.
func (s *Service) ImportRows(ctx context.Context, rows []ImportRow, actor uuid.UUID) (ImportResult, error) {
	if len(rows) > s.maxImportRows {
		s.rec.ImportFinished(0, 0, ErrBatchTooLarge)
		return ImportResult{}, ErrBatchTooLarge
	}

	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			return ImportResult{}, err
		}
		defer s.limiter.Release()
	}

	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	result := ImportResult{TotalRows: len(rows), Errors: []string{}}
	now := s.timestamp()
	accepted := make([]Buyer, 0, len(rows))

	for i, row := range rows {
		line := i + 2
		in := InputFromRow(row)

		if RequiresBHK(in.PropertyType) && in.BHK == "" {
			s.reject(&result, RowError{
				Row:     line,
				Message: fmt.Sprintf(msgRowBHK, line),
				Fields:  map[string]string{FieldBHK: MsgBHKRequired},
			})
			continue
		}

		b, err := Validate(in)
		if err != nil {
			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				return ImportResult{}, err
			}
			s.reject(&result, RowError{
				Row:     line,
				Message: fmt.Sprintf("Row %d: %s", line, strings.Join(valErr.Messages(), ", ")),
				Fields:  valErr.FieldErrors,
			})
			continue
		}

		b.ID = s.newID()
		b.OwnerID = actor
		b.UpdatedAt = now
		accepted = append(accepted, b)
	}

	if len(accepted) == 0 {
		if len(result.RowErrors) == 0 {
			result.Errors = append(result.Errors, MsgNoValidRows)
		}
		s.rec.ImportFinished(0, result.Rejected, nil)
		return result, nil
	}

	if err := s.store.InsertBuyers(ctx, accepted); err != nil {
		s.log.ErrorContext(ctx, "import insert failed",
			"rows", len(accepted),
			"actor_id", actor,
			"error", err,
		)
		result.InsertError = msgInsertFail + MapError(err).Message
		result.Errors = append(result.Errors, result.InsertError)
		s.rec.ImportFinished(0, result.Rejected, err)
		return result, nil
	}
	result.Inserted = len(accepted)

	s.recordImportHistory(ctx, accepted, actor, now)
	s.rec.ImportFinished(result.Inserted, result.Rejected, nil)

	s.log.InfoContext(ctx, "import complete",
		"actor_id", actor,
		"total", result.TotalRows,
		"inserted", result.Inserted,
		"rejected", result.Rejected,
	)
	return result, nil
}

func (s *Service) reject(result *ImportResult, re RowError) {
	result.Rejected++
	result.RowErrors = append(result.RowErrors, re)
	result.Errors = append(result.Errors, re.Message)
}

// recordImportHistory appends one creation entry per inserted lead. Like
// single-record audits it never fails the import.
func (s *Service) recordImportHistory(ctx context.Context, buyers []Buyer, actor uuid.UUID, at time.Time) {
	entries := make([]HistoryEntry, 0, len(buyers))
	for _, b := range buyers {
		e, err := s.historyEntry(b.ID, actor, at, createdPayload{Created: b, Via: "import"})
		if err != nil {
			s.log.WarnContext(ctx, "audit_failed", "buyer_id", b.ID, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	if err := s.store.InsertHistoryEntries(ctx, entries); err != nil {
		s.log.WarnContext(ctx, "audit_failed",
			"rows", len(entries),
			"actor_id", actor,
			"error", err,
		)
	}
}
