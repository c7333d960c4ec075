package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by stores when no lead matches the requested id.
var ErrNotFound = errors.New("buyer not found")

// ErrBatchTooLarge is returned when an import exceeds MaxImportRows.
var ErrBatchTooLarge = errors.New("import batch too large")

// ErrInvalidCSV wraps every malformed-input failure of an import file.
var ErrInvalidCSV = errors.New("invalid csv")

// ErrEmptyImport is returned when a CSV has no header row.
var ErrEmptyImport = errors.New("empty file")

// ValidationError carries one message per failing field.
type ValidationError struct {
	FieldErrors map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

// Messages returns the field messages in schema order.
func (e *ValidationError) Messages() []string {
	names := make([]string, 0, len(e.FieldErrors))
	for name := range e.FieldErrors {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		oi, oj := fieldOrder(names[i]), fieldOrder(names[j])
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})

	msgs := make([]string, len(names))
	for i, name := range names {
		msgs[i] = e.FieldErrors[name]
	}
	return msgs
}

// ConflictError is returned when a lead changed after the caller last read it.
type ConflictError struct {
	ID      uuid.UUID
	Current time.Time // stored updated_at, zero if unknown
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("buyer %s was modified by another user", e.ID)
}

// NotFoundError is returned when the requested lead does not exist.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("buyer %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PermissionError is returned when the actor does not own the lead.
type PermissionError struct {
	ID      uuid.UUID
	ActorID uuid.UUID
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s does not own buyer %s", e.ActorID, e.ID)
}

// StoreError wraps a persistence failure with the operation that failed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
