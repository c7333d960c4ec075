package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTruncater struct {
	calls      []string
	historyErr error
}

func (f *fakeTruncater) ResetHistory(context.Context) error {
	f.calls = append(f.calls, "history")
	return f.historyErr
}

func (f *fakeTruncater) ResetBuyers(context.Context) error {
	f.calls = append(f.calls, "buyers")
	return nil
}

func TestResetLeads(t *testing.T) {
	t.Run("requires confirmation", func(t *testing.T) {
		f := &fakeTruncater{}
		assert.ErrorIs(t, ResetLeads(context.Background(), f, false), ErrNotConfirmed)
		assert.Empty(t, f.calls)
	})

	t.Run("history before buyers", func(t *testing.T) {
		f := &fakeTruncater{}
		require.NoError(t, ResetLeads(context.Background(), f, true))
		assert.Equal(t, []string{"history", "buyers"}, f.calls)
	})

	t.Run("stops at first failure", func(t *testing.T) {
		boom := errors.New("permission denied for table buyer_history")
		f := &fakeTruncater{historyErr: boom}
		err := ResetLeads(context.Background(), f, true)
		assert.ErrorIs(t, err, boom)
		assert.ErrorContains(t, err, "reset buyer_history")
		assert.Equal(t, []string{"history"}, f.calls)
	})
}
