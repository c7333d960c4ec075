// Package postgres implements core.Store and identity.AgentStore on
// PostgreSQL through a pgx connection pool.
package postgres

import (
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/leads/internal/core"
	"github.com/JonMunkholm/leads/internal/identity"
)

// Store is a PostgreSQL-backed lead and agent store.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ core.Store          = (*Store)(nil)
	_ identity.AgentStore = (*Store)(nil)
)

// New creates a Store on pool. The pool is owned by the caller.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// toText converts a string to pgtype.Text; empty means NULL.
func toText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// toInt4 converts an optional budget to pgtype.Int4. Values outside the
// int4 range are rejected rather than wrapped.
func toInt4(v *int) (pgtype.Int4, error) {
	if v == nil {
		return pgtype.Int4{}, nil
	}
	if *v < math.MinInt32 || *v > math.MaxInt32 {
		return pgtype.Int4{}, fmt.Errorf("budget %d out of int4 range", *v)
	}
	return pgtype.Int4{Int32: int32(*v), Valid: true}, nil
}

func fromInt4(v pgtype.Int4) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int32)
	return &n
}

// notFound maps pgx.ErrNoRows to core.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}
