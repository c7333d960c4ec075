// Package ratelimit implements a fixed-window request counter keyed by
// caller identity.
//
// The limiter is advisory: Allow reports the decision and the caller
// chooses how to answer. Nothing is queued.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Defaults match a ceiling of 60 requests per minute per caller.
const (
	DefaultLimit  = 60
	DefaultWindow = time.Minute
)

// Result is the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time

	// RetryAfter is the time left in the current window.
	RetryAfter time.Duration
}

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindow counts requests per key within consecutive windows.
type FixedWindow struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	keys map[string]*window
}

// Option configures a FixedWindow.
type Option func(*FixedWindow)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(f *FixedWindow) { f.now = now }
}

// NewFixedWindow creates a limiter allowing limit requests per window.
func NewFixedWindow(limit int, win time.Duration, opts ...Option) *FixedWindow {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if win <= 0 {
		win = DefaultWindow
	}
	f := &FixedWindow{
		limit:  limit,
		window: win,
		now:    time.Now,
		keys:   make(map[string]*window),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Allow counts one request for key. A window that has reached its reset
// time starts over before counting.
func (f *FixedWindow) Allow(key string) Result {
	now := f.now()

	f.mu.Lock()
	defer f.mu.Unlock()

	w, ok := f.keys[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(f.window)}
		f.keys[key] = w
	}
	w.count++

	return Result{
		Allowed:    w.count <= f.limit,
		Limit:      f.limit,
		Remaining:  max(0, f.limit-w.count),
		ResetAt:    w.resetAt,
		RetryAfter: w.resetAt.Sub(now),
	}
}

// Limit returns the per-window ceiling.
func (f *FixedWindow) Limit() int {
	return f.limit
}

// Sweep drops windows that have expired and returns how many were removed.
func (f *FixedWindow) Sweep() int {
	now := f.now()

	f.mu.Lock()
	defer f.mu.Unlock()

	removed := 0
	for key, w := range f.keys {
		if !now.Before(w.resetAt) {
			delete(f.keys, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (f *FixedWindow) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.keys)
}

// Run sweeps expired windows every interval until ctx is done.
func (f *FixedWindow) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = f.window
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.Sweep()
		}
	}
}
