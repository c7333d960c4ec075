package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/leads/internal/core"
	"github.com/JonMunkholm/leads/internal/identity"
)

var base = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func lead(name, city string, at time.Time) core.Buyer {
	budget := 100
	return core.Buyer{
		ID:           uuid.New(),
		FullName:     name,
		Email:        name + "@example.com",
		Phone:        "9876543210",
		City:         city,
		PropertyType: "Plot",
		Purpose:      "Buy",
		BudgetMin:    &budget,
		Timeline:     "0-3m",
		Source:       "Website",
		Status:       "New",
		Tags:         []string{"a"},
		OwnerID:      uuid.New(),
		UpdatedAt:    at,
	}
}

func TestStore_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := lead("asha", "Mohali", base.Add(123*time.Nanosecond))

	require.NoError(t, s.InsertBuyer(ctx, b))
	assert.Error(t, s.InsertBuyer(ctx, b), "duplicate id")

	got, err := s.GetBuyer(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.FullName, got.FullName)
	assert.True(t, got.UpdatedAt.Equal(base), "stored timestamps are truncated to microseconds")

	// Returned leads are copies.
	got.Tags[0] = "mutated"
	*got.BudgetMin = 1
	again, _ := s.GetBuyer(ctx, b.ID)
	assert.Equal(t, []string{"a"}, again.Tags)
	assert.Equal(t, 100, *again.BudgetMin)

	_, err = s.GetBuyer(ctx, uuid.New())
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.GetBuyerVersion(ctx, uuid.New())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_InsertBuyersAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	existing := lead("ravi", "Mohali", base)
	require.NoError(t, s.InsertBuyer(ctx, existing))

	batch := []core.Buyer{lead("a", "Mohali", base), existing}
	assert.Error(t, s.InsertBuyers(ctx, batch))

	_, total, err := s.ListBuyers(ctx, core.ListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	require.NoError(t, s.InsertBuyers(ctx, []core.Buyer{lead("b", "Mohali", base), lead("c", "Zirakpur", base)}))
	_, total, _ = s.ListBuyers(ctx, core.ListQuery{})
	assert.EqualValues(t, 3, total)
}

func TestStore_GuardedUpdate(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := lead("asha", "Mohali", base)
	require.NoError(t, s.InsertBuyer(ctx, b))

	next := b
	next.Status = "Contacted"
	next.UpdatedAt = base.Add(time.Second)

	ok, err := s.UpdateBuyer(ctx, next, base.Add(time.Millisecond))
	require.NoError(t, err)
	assert.False(t, ok, "stale expected version")

	ok, err = s.UpdateBuyer(ctx, next, base)
	require.NoError(t, err)
	assert.True(t, ok)

	v, err := s.GetBuyerVersion(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, v.UpdatedAt.Equal(next.UpdatedAt))
	assert.Equal(t, b.OwnerID, v.OwnerID)

	ok, err = s.UpdateBuyer(ctx, lead("ghost", "Mohali", base), base)
	require.NoError(t, err)
	assert.False(t, ok, "missing lead")
}

func TestStore_ListBuyers(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i, city := range []string{"Mohali", "Zirakpur", "Mohali", "Panchkula"} {
		b := lead(string(rune('a'+i))+"name", city, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.InsertBuyer(ctx, b))
	}

	all, total, err := s.ListBuyers(ctx, core.ListQuery{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, all, 2)
	assert.Equal(t, "dname", all[0].FullName, "newest first")

	rest, _, _ := s.ListBuyers(ctx, core.ListQuery{Limit: 2, Offset: 2})
	require.Len(t, rest, 2)
	assert.Equal(t, "aname", rest[1].FullName)

	past, _, _ := s.ListBuyers(ctx, core.ListQuery{Offset: 10})
	assert.Empty(t, past)

	negative, _, err := s.ListBuyers(ctx, core.ListQuery{Limit: 2, Offset: -10})
	require.NoError(t, err)
	assert.Len(t, negative, 2, "negative offset reads from the start")

	mohali, total, _ := s.ListBuyers(ctx, core.ListQuery{Filter: core.Filter{City: "Mohali"}})
	assert.EqualValues(t, 2, total)
	assert.Len(t, mohali, 2)

	byEmail, total, _ := s.ListBuyers(ctx, core.ListQuery{Filter: core.Filter{Search: "BNAME@EXAMPLE"}})
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "bname", byEmail[0].FullName)
}

func TestStore_History(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := lead("asha", "Mohali", base)
	require.NoError(t, s.InsertBuyer(ctx, b))

	entry := func(at time.Time) core.HistoryEntry {
		return core.HistoryEntry{ID: uuid.New(), BuyerID: b.ID, ChangedBy: b.OwnerID, ChangedAt: at, Diff: []byte(`{}`)}
	}
	require.NoError(t, s.InsertHistory(ctx, entry(base)))
	require.NoError(t, s.InsertHistoryEntries(ctx, []core.HistoryEntry{entry(base.Add(2 * time.Second)), entry(base.Add(time.Second))}))

	orphan := entry(base)
	orphan.BuyerID = uuid.New()
	assert.ErrorContains(t, s.InsertHistory(ctx, orphan), "foreign key")

	got, err := s.ListHistory(ctx, b.ID, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].ChangedAt.Equal(base.Add(2*time.Second)))
	assert.True(t, got[1].ChangedAt.Equal(base.Add(time.Second)))

	deleted, err := s.DeleteBuyer(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	got, _ = s.ListHistory(ctx, b.ID, 5)
	assert.Empty(t, got, "history cascades with the lead")

	deleted, err = s.DeleteBuyer(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestAgents(t *testing.T) {
	ctx := context.Background()
	a := NewAgents()
	agent := identity.Agent{ID: uuid.New(), Email: "Agent@Example.com", PasswordHash: []byte("hash")}

	require.NoError(t, a.InsertAgent(ctx, agent))
	assert.Error(t, a.InsertAgent(ctx, identity.Agent{ID: uuid.New(), Email: "agent@example.com"}))

	got, err := a.AgentByEmail(ctx, "AGENT@example.COM")
	require.NoError(t, err)
	assert.Equal(t, agent.ID, got.ID)

	_, err = a.AgentByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, identity.ErrAgentNotFound)
}
