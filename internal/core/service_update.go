package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// UpdateBuyer applies a concurrency-checked edit and returns the stored
// lead with its fresh updated_at.
//
// The caller's LastSeen must equal the stored updated_at. The write itself
// is guarded by the same timestamp, so a writer that commits between the
// check and the write also produces a ConflictError. Errors are one of
// *NotFoundError, *ConflictError, *PermissionError, *ValidationError or
// *StoreError.
func (s *Service) UpdateBuyer(ctx context.Context, req UpdateRequest) (Buyer, error) {
	b, outcome, err := s.updateBuyer(ctx, req)
	s.rec.UpdateFinished(outcome)
	return b, err
}

func (s *Service) updateBuyer(ctx context.Context, req UpdateRequest) (Buyer, string, error) {
	prev, err := s.store.GetBuyer(ctx, req.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Buyer{}, OutcomeNotFound, &NotFoundError{ID: req.ID}
		}
		return Buyer{}, OutcomeStoreError, storeErr("get buyer", err)
	}

	if !SameVersion(prev.UpdatedAt, req.LastSeen) {
		return Buyer{}, OutcomeConflict, &ConflictError{ID: req.ID, Current: prev.UpdatedAt}
	}
	if err := s.checkOwner(req.ID, prev.OwnerID, req.ActorID); err != nil {
		return Buyer{}, OutcomeForbidden, err
	}

	next, err := Validate(req.Input)
	if err != nil {
		return Buyer{}, OutcomeInvalid, err
	}
	next.ID = req.ID
	next.OwnerID = req.ActorID
	next.UpdatedAt = s.nextVersion(prev.UpdatedAt)

	ok, err := s.store.UpdateBuyer(ctx, next, prev.UpdatedAt)
	if err != nil {
		return Buyer{}, OutcomeStoreError, storeErr("update buyer", err)
	}
	if !ok {
		return Buyer{}, OutcomeConflict, s.lostRace(ctx, req.ID)
	}

	s.recordHistory(ctx, next.ID, req.ActorID, next.UpdatedAt, updatedPayload{
		Updated: req.Input,
		Changes: FindChanges(prev, next),
	})

	s.log.DebugContext(ctx, "buyer updated",
		"buyer_id", next.ID,
		"actor_id", req.ActorID,
		"updated_at", next.UpdatedAt,
	)
	return next, OutcomeOK, nil
}

// nextVersion returns a timestamp strictly after prev.
func (s *Service) nextVersion(prev time.Time) time.Time {
	ts := s.timestamp()
	if !ts.After(prev) {
		ts = Timestamp(prev).Add(time.Microsecond)
	}
	return ts
}

// lostRace builds the error for a guarded write that matched no row: the
// lead either changed or disappeared after it was read.
func (s *Service) lostRace(ctx context.Context, id uuid.UUID) error {
	v, err := s.store.GetBuyerVersion(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return &NotFoundError{ID: id}
	}
	return &ConflictError{ID: id, Current: v.UpdatedAt}
}
