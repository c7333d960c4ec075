// Package memory implements core.Store in process memory. It backs tests
// and local runs without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/leads/internal/core"
)

// Store is a concurrency-safe in-memory core.Store.
type Store struct {
	mu      sync.RWMutex
	buyers  map[uuid.UUID]core.Buyer
	history map[uuid.UUID][]core.HistoryEntry
}

var _ core.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		buyers:  make(map[uuid.UUID]core.Buyer),
		history: make(map[uuid.UUID][]core.HistoryEntry),
	}
}

func clone(b core.Buyer) core.Buyer {
	b.Tags = append([]string{}, b.Tags...)
	if b.BudgetMin != nil {
		v := *b.BudgetMin
		b.BudgetMin = &v
	}
	if b.BudgetMax != nil {
		v := *b.BudgetMax
		b.BudgetMax = &v
	}
	b.UpdatedAt = core.Timestamp(b.UpdatedAt)
	return b
}

func (s *Store) InsertBuyer(_ context.Context, b core.Buyer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.buyers[b.ID]; exists {
		return fmt.Errorf("duplicate key: buyer %s", b.ID)
	}
	s.buyers[b.ID] = clone(b)
	return nil
}

// InsertBuyers inserts all leads or none.
func (s *Store) InsertBuyers(_ context.Context, bs []core.Buyer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[uuid.UUID]bool, len(bs))
	for _, b := range bs {
		if _, exists := s.buyers[b.ID]; exists || seen[b.ID] {
			return fmt.Errorf("duplicate key: buyer %s", b.ID)
		}
		seen[b.ID] = true
	}
	for _, b := range bs {
		s.buyers[b.ID] = clone(b)
	}
	return nil
}

func (s *Store) GetBuyer(_ context.Context, id uuid.UUID) (core.Buyer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buyers[id]
	if !ok {
		return core.Buyer{}, core.ErrNotFound
	}
	return clone(b), nil
}

func (s *Store) GetBuyerVersion(_ context.Context, id uuid.UUID) (core.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buyers[id]
	if !ok {
		return core.Version{}, core.ErrNotFound
	}
	return core.Version{OwnerID: b.OwnerID, UpdatedAt: b.UpdatedAt}, nil
}

// UpdateBuyer replaces the lead only while its updated_at equals expected.
func (s *Store) UpdateBuyer(_ context.Context, b core.Buyer, expected time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.buyers[b.ID]
	if !ok || !core.SameVersion(cur.UpdatedAt, expected) {
		return false, nil
	}
	s.buyers[b.ID] = clone(b)
	return true, nil
}

// DeleteBuyer removes the lead and its history.
func (s *Store) DeleteBuyer(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buyers[id]; !ok {
		return false, nil
	}
	delete(s.buyers, id)
	delete(s.history, id)
	return true, nil
}

func (s *Store) ListBuyers(_ context.Context, q core.ListQuery) ([]core.Buyer, int64, error) {
	s.mu.RLock()
	matched := make([]core.Buyer, 0, len(s.buyers))
	for _, b := range s.buyers {
		if matches(b, q.Filter) {
			matched = append(matched, clone(b))
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := int64(len(matched))
	start := min(max(q.Offset, 0), len(matched))
	end := len(matched)
	if q.Limit > 0 {
		end = min(start+q.Limit, len(matched))
	}
	return matched[start:end], total, nil
}

func matches(b core.Buyer, f core.Filter) bool {
	if f.City != "" && b.City != f.City {
		return false
	}
	if f.PropertyType != "" && b.PropertyType != f.PropertyType {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.Timeline != "" && b.Timeline != f.Timeline {
		return false
	}
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(b.FullName), term) ||
		strings.Contains(strings.ToLower(b.Phone), term) ||
		strings.Contains(strings.ToLower(b.Email), term)
}

func (s *Store) InsertHistory(_ context.Context, e core.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buyers[e.BuyerID]; !ok {
		return fmt.Errorf("violates foreign key constraint: buyer %s", e.BuyerID)
	}
	s.history[e.BuyerID] = append(s.history[e.BuyerID], e)
	return nil
}

func (s *Store) InsertHistoryEntries(ctx context.Context, es []core.HistoryEntry) error {
	for _, e := range es {
		if err := s.InsertHistory(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// ListHistory returns up to limit entries, newest first.
func (s *Store) ListHistory(_ context.Context, buyerID uuid.UUID, limit int) ([]core.HistoryEntry, error) {
	s.mu.RLock()
	stored := s.history[buyerID]
	entries := make([]core.HistoryEntry, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		entries = append(entries, stored[i])
	}
	s.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ChangedAt.After(entries[j].ChangedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
