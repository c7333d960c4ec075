package core

// error_messages.go maps technical errors to user-facing messages with a
// support code.
//
// # Error Codes Reference
//
// Typed errors from this package are recognized first (errors.As), then the
// error text is matched against known patterns.
//
// # Validation (VAL001-VAL003)
//
//	VAL001 - Field validation failed
//	         Action: Correct the highlighted fields
//	VAL002 - Invalid number
//	         Action: Enter budgets as whole numbers without symbols
//	         Patterns: "invalid number"
//	VAL003 - Missing column
//	         Action: Use the export file as a template
//	         Patterns: "missing required column"
//
// # Records (CONF001, NF001, PERM001)
//
//	CONF001 - Record changed by someone else
//	          Action: Refresh and reapply your changes
//	NF001   - Record not found
//	PERM001 - Not the owner of the record
//
// # Database (DB001-DB006)
//
//	DB001 - Duplicate key         Patterns: "duplicate key", "violates unique"
//	DB002 - Check constraint      Patterns: "violates check constraint"
//	DB003 - Value too long        Patterns: "value too long"
//	DB004 - Connection refused    Patterns: "connection refused"
//	DB005 - Connection reset      Patterns: "connection reset"
//	DB006 - Timeout               Patterns: "timeout", "context deadline exceeded"
//
// # Import (IMP001-IMP004)
//
//	IMP001 - Batch too large      Patterns: "import batch too large"
//	IMP002 - Invalid CSV          Patterns: "parse error", "wrong number of fields"
//	IMP003 - Empty file           Patterns: "empty file"
//	IMP004 - System busy          Patterns: "too many concurrent imports"
//
// # Identity (AUTH001-AUTH004)
//
//	AUTH001 - Invalid credentials Patterns: "invalid credentials"
//	AUTH002 - Session expired     Patterns: "token is expired", "session expired"
//	AUTH003 - Not signed in       Patterns: "invalid token", "no session"
//	AUTH004 - Demo disabled       Patterns: "demo login disabled"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests   Patterns: "rate limit"
//
// # Default (ERR000)
//
// Fallback when nothing matches. Support staff should check the logs for
// the original error, keyed by request id.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgValidation = UserMessage{
		Message: "Some fields are invalid",
		Action:  "Correct the highlighted fields",
		Code:    "VAL001",
	}
	msgConflict = UserMessage{
		Message: "This record has been changed by someone else. Please refresh.",
		Action:  "Refresh and reapply your changes",
		Code:    "CONF001",
	}
	msgNotFound = UserMessage{
		Message: "Buyer not found",
		Action:  "The record may have been deleted",
		Code:    "NF001",
	}
	msgPermission = UserMessage{
		Message: "You can only change your own leads",
		Action:  "Ask the owning agent to make this change",
		Code:    "PERM001",
	}
	msgBatchTooLarge = UserMessage{
		Message: fmt.Sprintf("Max %d rows allowed.", MaxImportRows),
		Action:  "Split the file into smaller batches",
		Code:    "IMP001",
	}
)

// errorPatterns maps technical error text (case-insensitive) to user
// messages. The first match wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	// Database
	{pattern: "duplicate key", msg: UserMessage{
		Message: "A record with this ID already exists",
		Action:  "Remove duplicate rows and try again",
		Code:    "DB001",
	}},
	{pattern: "violates unique", msg: UserMessage{
		Message: "A duplicate value was found",
		Action:  "Remove duplicate rows and try again",
		Code:    "DB001",
	}},
	{pattern: "violates check constraint", msg: UserMessage{
		Message: "A value is outside the allowed range",
		Action:  "Check enumerated fields and budgets",
		Code:    "DB002",
	}},
	{pattern: "value too long", msg: UserMessage{
		Message: "A value is too long",
		Action:  "Shorten the value and try again",
		Code:    "DB003",
	}},
	{pattern: "connection refused", msg: UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{pattern: "connection reset", msg: UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{pattern: "context deadline exceeded", msg: UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "DB006",
	}},
	{pattern: "timeout", msg: UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "DB006",
	}},

	// Import
	{pattern: ErrBatchTooLarge.Error(), msg: msgBatchTooLarge},
	{pattern: "invalid number", msg: UserMessage{
		Message: "Invalid number format detected",
		Action:  "Enter budgets as whole numbers without symbols",
		Code:    "VAL002",
	}},
	{pattern: "missing required column", msg: UserMessage{
		Message: "Required column is missing from CSV",
		Action:  "Use the export file as a template",
		Code:    "VAL003",
	}},
	{pattern: "parse error", msg: UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure the file is comma-separated with consistent columns",
		Code:    "IMP002",
	}},
	{pattern: "wrong number of fields", msg: UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure the file is comma-separated with consistent columns",
		Code:    "IMP002",
	}},
	{pattern: "empty file", msg: UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Upload a CSV file with a header and data rows",
		Code:    "IMP003",
	}},
	{pattern: "too many concurrent imports", msg: UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP004",
	}},

	// Export
	{pattern: "archive not configured", msg: UserMessage{
		Message: "Export archiving is not enabled",
		Action:  "Download the CSV directly instead",
		Code:    "EXP001",
	}},
	{pattern: "archive export", msg: UserMessage{
		Message: "The export could not be stored",
		Action:  "Please try again or download the CSV directly",
		Code:    "EXP002",
	}},

	// Identity
	{pattern: "invalid credentials", msg: UserMessage{
		Message: "Invalid email or password",
		Action:  "Check your credentials and try again",
		Code:    "AUTH001",
	}},
	{pattern: "token is expired", msg: UserMessage{
		Message: "Your session has expired",
		Action:  "Sign in again",
		Code:    "AUTH002",
	}},
	{pattern: "session expired", msg: UserMessage{
		Message: "Your session has expired",
		Action:  "Sign in again",
		Code:    "AUTH002",
	}},
	{pattern: "invalid token", msg: UserMessage{
		Message: "You are not signed in",
		Action:  "Sign in to continue",
		Code:    "AUTH003",
	}},
	{pattern: "no session", msg: UserMessage{
		Message: "You are not signed in",
		Action:  "Sign in to continue",
		Code:    "AUTH003",
	}},
	{pattern: "demo login disabled", msg: UserMessage{
		Message: "Demo login is not available",
		Action:  "Sign in with your agent account",
		Code:    "AUTH004",
	}},

	// Rate limiting
	{pattern: "rate limit", msg: UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Typed errors from this package are recognized before text patterns;
// a nil error yields the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		valErr  *ValidationError
		confErr *ConflictError
		permErr *PermissionError
	)
	switch {
	case errors.As(err, &valErr):
		return msgValidation
	case errors.As(err, &confErr):
		return msgConflict
	case errors.As(err, &permErr):
		return msgPermission
	case errors.Is(err, ErrNotFound):
		return msgNotFound
	case errors.Is(err, ErrBatchTooLarge):
		return msgBatchTooLarge
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
