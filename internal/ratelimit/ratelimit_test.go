package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestAllow_WithinLimit(t *testing.T) {
	clock := newClock()
	rl := NewFixedWindow(3, time.Minute, WithClock(clock.Now))

	for i := 1; i <= 3; i++ {
		res := rl.Allow("agent-1")
		assert.True(t, res.Allowed, "request %d", i)
		assert.Equal(t, 3-i, res.Remaining)
		assert.Equal(t, 3, res.Limit)
		assert.Equal(t, clock.Now().Add(time.Minute), res.ResetAt)
	}

	res := rl.Allow("agent-1")
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	rl := NewFixedWindow(1, time.Minute, WithClock(newClock().Now))

	assert.True(t, rl.Allow("a").Allowed)
	assert.False(t, rl.Allow("a").Allowed)
	assert.True(t, rl.Allow("b").Allowed)
}

func TestAllow_WindowResets(t *testing.T) {
	clock := newClock()
	rl := NewFixedWindow(2, time.Minute, WithClock(clock.Now))

	rl.Allow("k")
	rl.Allow("k")
	require.False(t, rl.Allow("k").Allowed)

	clock.Advance(time.Minute - time.Nanosecond)
	assert.False(t, rl.Allow("k").Allowed)

	// The reported reset time starts a fresh window.
	clock.Advance(time.Nanosecond)
	res := rl.Allow("k")
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
	assert.Equal(t, clock.Now().Add(time.Minute), res.ResetAt)
}

func TestAllow_ResetsAtReportedTime(t *testing.T) {
	clock := newClock()
	rl := NewFixedWindow(1, time.Minute, WithClock(clock.Now))

	first := rl.Allow("k")
	require.True(t, first.Allowed)
	denied := rl.Allow("k")
	require.False(t, denied.Allowed)
	assert.Equal(t, first.ResetAt, denied.ResetAt)

	clock.Advance(denied.ResetAt.Sub(clock.Now()))
	assert.True(t, rl.Allow("k").Allowed)
}

func TestNewFixedWindow_Defaults(t *testing.T) {
	rl := NewFixedWindow(0, 0)
	assert.Equal(t, DefaultLimit, rl.Limit())
	assert.Equal(t, DefaultWindow, rl.window)
}

func TestSweep(t *testing.T) {
	clock := newClock()
	rl := NewFixedWindow(5, time.Minute, WithClock(clock.Now))

	rl.Allow("old")
	clock.Advance(30 * time.Second)
	rl.Allow("new")

	clock.Advance(30 * time.Second)
	assert.Equal(t, 1, rl.Sweep(), "a window ends at its reset time")
	assert.Equal(t, 1, rl.Len())
}

func TestAllow_Concurrent(t *testing.T) {
	rl := NewFixedWindow(50, time.Minute)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("shared").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestRun_StopsOnCancel(t *testing.T) {
	rl := NewFixedWindow(1, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		rl.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
