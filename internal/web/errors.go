package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls s.respondError(w, r, err), or respondErrorStatus for a fixed status
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. JSON ErrorResponse is written; validation errors add per-field messages

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/JonMunkholm/leads/internal/core"
	"github.com/JonMunkholm/leads/internal/identity"
	"github.com/JonMunkholm/leads/internal/logging"
	"github.com/JonMunkholm/leads/internal/web/middleware"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Action  string            `json:"action,omitempty"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`

	// CurrentUpdatedAt is the stored version on a 409.
	CurrentUpdatedAt *time.Time `json:"currentUpdatedAt,omitempty"`
}

// requestError is a malformed request detected by a handler.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var (
		reqErr  *requestError
		valErr  *core.ValidationError
		confErr *core.ConflictError
		permErr *core.PermissionError
	)
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.As(err, &valErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &confErr):
		return http.StatusConflict
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &permErr):
		return http.StatusForbidden
	case errors.Is(err, core.ErrBatchTooLarge),
		errors.Is(err, core.ErrInvalidCSV),
		errors.Is(err, core.ErrEmptyImport):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, middleware.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, identity.ErrDemoDisabled):
		return http.StatusForbidden
	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrInvalidToken),
		errors.Is(err, identity.ErrTokenExpired),
		errors.Is(err, identity.ErrNoSession):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes err with the status statusFor picks.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	s.respondErrorStatus(w, r, err, statusFor(err))
}

// respondErrorStatus logs the technical error and writes a sanitized JSON
// body. 5xx are logged at error level, everything else at warn.
func (s *Server) respondErrorStatus(w http.ResponseWriter, r *http.Request, err error, status int) {
	userMsg := core.MapError(err)

	var reqErr *requestError
	if errors.As(err, &reqErr) {
		userMsg = core.UserMessage{Message: reqErr.msg, Action: "Fix the request and try again", Code: "REQ001"}
	}

	logger := logging.FromContext(r.Context())
	logFn := logger.Warn
	if status >= http.StatusInternalServerError {
		logFn = logger.Error
	}
	logFn("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}

	var (
		valErr  *core.ValidationError
		confErr *core.ConflictError
	)
	if errors.As(err, &valErr) {
		resp.Fields = valErr.FieldErrors
	}
	if errors.As(err, &confErr) && !confErr.Current.IsZero() {
		resp.CurrentUpdatedAt = &confErr.Current
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
