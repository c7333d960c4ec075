// Package admin provides administrative operations for database management.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ResetTimeout is the maximum duration for database reset operations.
const ResetTimeout = 30 * time.Second

// ErrNotConfirmed is returned when a reset is requested without confirmation.
var ErrNotConfirmed = errors.New("reset not confirmed")

// Truncater clears lead data. History goes first so foreign keys hold
// between steps.
type Truncater interface {
	ResetHistory(ctx context.Context) error
	ResetBuyers(ctx context.Context) error
}

type resetStep struct {
	name string
	fn   func(ctx context.Context) error
}

// ResetLeads removes every lead and its history. Agents are kept.
// This is a destructive operation; confirm must be true.
func ResetLeads(ctx context.Context, t Truncater, confirm bool) error {
	if !confirm {
		return ErrNotConfirmed
	}

	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	return runResets(ctx, []resetStep{
		{"buyer_history", t.ResetHistory},
		{"buyers", t.ResetBuyers},
	})
}

func runResets(ctx context.Context, steps []resetStep) error {
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("reset %s: %w", step.name, err)
		}
	}
	return nil
}
