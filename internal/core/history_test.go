package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func intPtr(v int) *int { return &v }

func TestFindChanges(t *testing.T) {
	prev := Buyer{
		FullName:     "Asha Verma",
		Phone:        "9876543210",
		City:         "Chandigarh",
		PropertyType: "Apartment",
		BHK:          "2",
		Purpose:      "Buy",
		BudgetMin:    intPtr(100),
		Timeline:     "0-3m",
		Source:       "Website",
		Status:       "New",
		Tags:         []string{"hot"},
	}

	t.Run("no changes", func(t *testing.T) {
		curr := prev
		curr.Tags = []string{"hot"}
		curr.UpdatedAt = time.Now()
		if got := FindChanges(prev, curr); len(got) != 0 {
			t.Errorf("expected no changes, got %+v", got)
		}
	})

	t.Run("changed, added and removed fields in schema order", func(t *testing.T) {
		curr := prev
		curr.Status = "Contacted"
		curr.Email = "asha@example.com"
		curr.PropertyType = "Plot"
		curr.BHK = ""
		curr.BudgetMin = intPtr(150)
		curr.Tags = []string{"hot", "nri"}

		got := FindChanges(prev, curr)
		want := []FieldChange{
			{Field: FieldEmail, Old: nil, New: "asha@example.com"},
			{Field: FieldPropertyType, Old: "Apartment", New: "Plot"},
			{Field: FieldBHK, Old: "2", New: nil},
			{Field: FieldBudgetMin, Old: "100", New: "150"},
			{Field: FieldStatus, Old: "New", New: "Contacted"},
			{Field: FieldTags, Old: []string{"hot"}, New: []string{"hot", "nri"}},
		}
		if len(got) != len(want) {
			t.Fatalf("got %d changes, want %d: %+v", len(got), len(want), got)
		}
		for i := range want {
			if got[i].Field != want[i].Field {
				t.Errorf("change %d field = %s, want %s", i, got[i].Field, want[i].Field)
			}
			if !sameValue(got[i].Old, want[i].Old) || !sameValue(got[i].New, want[i].New) {
				t.Errorf("change %s = %v -> %v, want %v -> %v",
					got[i].Field, got[i].Old, got[i].New, want[i].Old, want[i].New)
			}
		}
	})
}

func TestHistoryEntry_Payload(t *testing.T) {
	s := NewService(nil, Options{NewID: func() uuid.UUID { return uuid.MustParse("11111111-1111-1111-1111-111111111111") }})
	buyerID, actor := uuid.New(), uuid.New()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	e, err := s.historyEntry(buyerID, actor, at, updatedPayload{
		Updated: BuyerInput{FullName: "Asha"},
		Changes: []FieldChange{{Field: FieldFullName, Old: "A", New: "Asha"}},
	})
	if err != nil {
		t.Fatalf("historyEntry: %v", err)
	}
	if e.BuyerID != buyerID || e.ChangedBy != actor || !e.ChangedAt.Equal(at) {
		t.Errorf("unexpected entry header: %+v", e)
	}

	var diff struct {
		Updated map[string]any `json:"updated"`
		Changes []FieldChange  `json:"changes"`
	}
	if err := json.Unmarshal(e.Diff, &diff); err != nil {
		t.Fatalf("unmarshal diff: %v", err)
	}
	if diff.Updated["fullName"] != "Asha" {
		t.Errorf("updated.fullName = %v", diff.Updated["fullName"])
	}
	if len(diff.Changes) != 1 || diff.Changes[0].New != "Asha" {
		t.Errorf("changes = %+v", diff.Changes)
	}
}
