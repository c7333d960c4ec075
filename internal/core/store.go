package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence capability the service depends on.
//
// Implementations return ErrNotFound (possibly wrapped) when a lead does not
// exist. UpdateBuyer applies the write only when the stored updated_at still
// equals expected and reports whether a row was changed.
type Store interface {
	InsertBuyer(ctx context.Context, b Buyer) error
	InsertBuyers(ctx context.Context, bs []Buyer) error
	GetBuyer(ctx context.Context, id uuid.UUID) (Buyer, error)
	GetBuyerVersion(ctx context.Context, id uuid.UUID) (Version, error)
	UpdateBuyer(ctx context.Context, b Buyer, expected time.Time) (bool, error)
	DeleteBuyer(ctx context.Context, id uuid.UUID) (bool, error)
	ListBuyers(ctx context.Context, q ListQuery) ([]Buyer, int64, error)

	InsertHistory(ctx context.Context, e HistoryEntry) error
	InsertHistoryEntries(ctx context.Context, es []HistoryEntry) error
	ListHistory(ctx context.Context, buyerID uuid.UUID, limit int) ([]HistoryEntry, error)
}

// Recorder receives domain events for metrics.
type Recorder interface {
	ImportFinished(inserted, rejected int, err error)
	UpdateFinished(outcome string)
}

// Update outcomes passed to Recorder.UpdateFinished.
const (
	OutcomeOK         = "ok"
	OutcomeConflict   = "conflict"
	OutcomeInvalid    = "invalid"
	OutcomeNotFound   = "not_found"
	OutcomeForbidden  = "forbidden"
	OutcomeStoreError = "error"
)

type nopRecorder struct{}

func (nopRecorder) ImportFinished(int, int, error) {}
func (nopRecorder) UpdateFinished(string)          {}

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// Timestamp truncates t to the resolution stored by PostgreSQL timestamptz.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// SameVersion reports whether two updated_at values denote the same version.
func SameVersion(a, b time.Time) bool {
	return Timestamp(a).Equal(Timestamp(b))
}
