package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestMapError(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "validation error",
			err:         &ValidationError{FieldErrors: map[string]string{"email": "Invalid email"}},
			wantCode:    "VAL001",
			wantMessage: "Some fields are invalid",
		},
		{
			name:        "wrapped conflict",
			err:         fmt.Errorf("update: %w", &ConflictError{ID: id}),
			wantCode:    "CONF001",
			wantMessage: "This record has been changed by someone else. Please refresh.",
		},
		{
			name:        "not found error type",
			err:         &NotFoundError{ID: id},
			wantCode:    "NF001",
			wantMessage: "Buyer not found",
		},
		{
			name:        "not found sentinel from store",
			err:         storeErr("get buyer", ErrNotFound),
			wantCode:    "NF001",
			wantMessage: "Buyer not found",
		},
		{
			name:        "permission error",
			err:         &PermissionError{ID: id, ActorID: uuid.New()},
			wantCode:    "PERM001",
			wantMessage: "You can only change your own leads",
		},
		{
			name:        "batch too large",
			err:         fmt.Errorf("%w: 201 rows", ErrBatchTooLarge),
			wantCode:    "IMP001",
			wantMessage: "Max 200 rows allowed.",
		},
		{
			name:        "duplicate key",
			err:         errors.New("ERROR: duplicate key value violates unique constraint \"buyers_pkey\""),
			wantCode:    "DB001",
			wantMessage: "A record with this ID already exists",
		},
		{
			name:        "check constraint",
			err:         errors.New("new row violates check constraint \"buyers_city_check\""),
			wantCode:    "DB002",
			wantMessage: "A value is outside the allowed range",
		},
		{
			name:        "connection refused",
			err:         errors.New("dial tcp 127.0.0.1:5432: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "deadline exceeded",
			err:         fmt.Errorf("insert buyers: %w", context.DeadlineExceeded),
			wantCode:    "DB006",
			wantMessage: "Operation timed out",
		},
		{
			name:        "missing columns",
			err:         fmt.Errorf("%w: missing required columns: fullName, phone", ErrInvalidCSV),
			wantCode:    "VAL003",
			wantMessage: "Required column is missing from CSV",
		},
		{
			name:        "csv parse error",
			err:         errors.New("record on line 3: wrong number of fields"),
			wantCode:    "IMP002",
			wantMessage: "File is not a valid CSV",
		},
		{
			name:        "empty import",
			err:         ErrEmptyImport,
			wantCode:    "IMP003",
			wantMessage: "The uploaded file is empty",
		},
		{
			name:        "import limiter busy",
			err:         ErrTooManyImports,
			wantCode:    "IMP004",
			wantMessage: "System is busy processing other imports",
		},
		{
			name:        "archive disabled",
			err:         errors.New("export archive not configured"),
			wantCode:    "EXP001",
			wantMessage: "Export archiving is not enabled",
		},
		{
			name:        "invalid credentials",
			err:         errors.New("invalid credentials"),
			wantCode:    "AUTH001",
			wantMessage: "Invalid email or password",
		},
		{
			name:        "invalid token",
			err:         errors.New("authenticate: invalid token"),
			wantCode:    "AUTH003",
			wantMessage: "You are not signed in",
		},
		{
			name:        "rate limited",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error",
			err:         errors.New("something completely unexpected"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapError_TypedBeforePatterns(t *testing.T) {
	// The outer text matches the DB006 pattern.
	err := fmt.Errorf("timeout while saving: %w", &ConflictError{ID: uuid.New()})
	if got := MapError(err).Code; got != "CONF001" {
		t.Errorf("MapError() code = %q, want CONF001", got)
	}
}

func TestFormatUserError(t *testing.T) {
	err := errors.New("duplicate key value violates")
	result := FormatUserError(err)

	expected := "A record with this ID already exists (Code: DB001). Remove duplicate rows and try again"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  errors.New("duplicate key"),
			want: true,
		},
		{
			name: "typed error is user facing",
			err:  &NotFoundError{ID: uuid.New()},
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLookupErr(t *testing.T) {
	id := uuid.New()

	var nf *NotFoundError
	if err := lookupErr(id, "get buyer", fmt.Errorf("scan: %w", ErrNotFound)); !errors.As(err, &nf) || nf.ID != id {
		t.Errorf("lookupErr(not found) = %v, want NotFoundError for %s", err, id)
	}

	var se *StoreError
	if err := lookupErr(id, "get version", errors.New("connection refused")); !errors.As(err, &se) {
		t.Errorf("lookupErr(other) = %v, want StoreError", err)
	}
}
