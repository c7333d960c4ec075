package core

// history.go builds the append-only audit payloads stored with each lead.
//
// Payload shapes:
//
//	create: {"created": <lead>}
//	import: {"created": <lead>, "via": "import"}
//	update: {"updated": <submitted fields>, "changes": [{"field", "old", "new"}]}

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// FieldChange is one changed field between two snapshots of a lead.
type FieldChange struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

type createdPayload struct {
	Created Buyer  `json:"created"`
	Via     string `json:"via,omitempty"`
}

type updatedPayload struct {
	Updated BuyerInput    `json:"updated"`
	Changes []FieldChange `json:"changes"`
}

// snapshot flattens the editable fields of a lead. Absent values are nil,
// tags are a []string and everything else is a string.
func snapshot(b Buyer) map[string]any {
	m := map[string]any{
		FieldFullName:     b.FullName,
		FieldPhone:        b.Phone,
		FieldCity:         b.City,
		FieldPropertyType: b.PropertyType,
		FieldPurpose:      b.Purpose,
		FieldTimeline:     b.Timeline,
		FieldSource:       b.Source,
		FieldStatus:       b.Status,
		FieldTags:         append([]string{}, b.Tags...),
	}
	optional := map[string]string{
		FieldEmail: b.Email,
		FieldBHK:   b.BHK,
		FieldNotes: b.Notes,
	}
	for k, v := range optional {
		if v != "" {
			m[k] = v
		}
	}
	if b.BudgetMin != nil {
		m[FieldBudgetMin] = strconv.Itoa(*b.BudgetMin)
	}
	if b.BudgetMax != nil {
		m[FieldBudgetMax] = strconv.Itoa(*b.BudgetMax)
	}
	return m
}

// FindChanges compares two lead snapshots and returns the changed fields
// in schema order.
func FindChanges(prev, curr Buyer) []FieldChange {
	before, after := snapshot(prev), snapshot(curr)
	changes := []FieldChange{}

	for k, newVal := range after {
		oldVal, exists := before[k]
		if !exists || !sameValue(oldVal, newVal) {
			changes = append(changes, FieldChange{Field: k, Old: oldVal, New: newVal})
		}
	}
	for k, oldVal := range before {
		if _, exists := after[k]; !exists {
			changes = append(changes, FieldChange{Field: k, Old: oldVal, New: nil})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return fieldOrder(changes[i].Field) < fieldOrder(changes[j].Field)
	})
	return changes
}

func sameValue(a, b any) bool {
	as, aok := a.([]string)
	bs, bok := b.([]string)
	if aok != bok {
		return false
	}
	if !aok {
		return a == b
	}
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func (s *Service) historyEntry(buyerID, actor uuid.UUID, at time.Time, payload any) (HistoryEntry, error) {
	diff, err := json.Marshal(payload)
	if err != nil {
		return HistoryEntry{}, err
	}
	return HistoryEntry{
		ID:        s.newID(),
		BuyerID:   buyerID,
		ChangedBy: actor,
		ChangedAt: at,
		Diff:      diff,
	}, nil
}

// recordHistory appends one entry. Failures are logged, never returned:
// the lead mutation has already committed.
func (s *Service) recordHistory(ctx context.Context, buyerID, actor uuid.UUID, at time.Time, payload any) {
	entry, err := s.historyEntry(buyerID, actor, at, payload)
	if err == nil {
		err = s.store.InsertHistory(ctx, entry)
	}
	if err != nil {
		s.log.WarnContext(ctx, "audit_failed",
			"buyer_id", buyerID,
			"actor_id", actor,
			"error", err,
		)
	}
}

// ListHistory returns the newest history entries for a lead.
func (s *Service) ListHistory(ctx context.Context, buyerID uuid.UUID, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 5
	}
	if _, err := s.store.GetBuyerVersion(ctx, buyerID); err != nil {
		return nil, lookupErr(buyerID, "get version", err)
	}
	entries, err := s.store.ListHistory(ctx, buyerID, limit)
	if err != nil {
		return nil, storeErr("list history", err)
	}
	return entries, nil
}
