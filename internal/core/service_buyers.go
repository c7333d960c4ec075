package core

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
)

// CreateBuyer validates in and stores a new lead owned by actor.
func (s *Service) CreateBuyer(ctx context.Context, in BuyerInput, actor uuid.UUID) (Buyer, error) {
	b, err := Validate(in)
	if err != nil {
		return Buyer{}, err
	}

	b.ID = s.newID()
	b.OwnerID = actor
	b.UpdatedAt = s.timestamp()

	if err := s.store.InsertBuyer(ctx, b); err != nil {
		return Buyer{}, storeErr("insert buyer", err)
	}

	s.recordHistory(ctx, b.ID, actor, b.UpdatedAt, createdPayload{Created: b})
	return b, nil
}

// GetBuyer returns one lead.
func (s *Service) GetBuyer(ctx context.Context, id uuid.UUID) (Buyer, error) {
	b, err := s.store.GetBuyer(ctx, id)
	if err != nil {
		return Buyer{}, lookupErr(id, "get buyer", err)
	}
	return b, nil
}

// DeleteBuyer removes a lead and, through the store's cascade, its history.
func (s *Service) DeleteBuyer(ctx context.Context, id, actor uuid.UUID) error {
	v, err := s.store.GetBuyerVersion(ctx, id)
	if err != nil {
		return lookupErr(id, "get version", err)
	}
	if err := s.checkOwner(id, v.OwnerID, actor); err != nil {
		return err
	}

	deleted, err := s.store.DeleteBuyer(ctx, id)
	if err != nil {
		return storeErr("delete buyer", err)
	}
	if !deleted {
		return &NotFoundError{ID: id}
	}
	return nil
}

// ListBuyers returns one page of leads, newest first.
func (s *Service) ListBuyers(ctx context.Context, req ListRequest) (ListResult, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	// Keeps (page-1)*size from overflowing; such a page is empty anyway.
	if maxPage := math.MaxInt / size; page > maxPage {
		page = maxPage
	}

	q := ListQuery{
		Filter: NormalizeFilter(req.Filter),
		Limit:  size,
		Offset: (page - 1) * size,
	}
	buyers, total, err := s.store.ListBuyers(ctx, q)
	if err != nil {
		return ListResult{}, storeErr("list buyers", err)
	}
	if buyers == nil {
		buyers = []Buyer{}
	}

	return ListResult{
		Buyers:     buyers,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

// NormalizeFilter trims the filter and maps enum values to canonical
// spelling. Unknown enum values are kept so they match nothing.
func NormalizeFilter(f Filter) Filter {
	norm := func(v string, values []string) string {
		v = strings.TrimSpace(v)
		if canon, ok := canonicalEnum(v, values); ok {
			return canon
		}
		return v
	}
	return Filter{
		City:         norm(f.City, Cities),
		PropertyType: norm(f.PropertyType, PropertyTypes),
		Status:       norm(f.Status, StatusOptions),
		Timeline:     norm(f.Timeline, TimelineOptions),
		Search:       strings.TrimSpace(f.Search),
	}
}

// lookupErr converts a store lookup failure into NotFoundError or StoreError.
func lookupErr(id uuid.UUID, op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return &NotFoundError{ID: id}
	}
	return storeErr(op, err)
}
