// Package ratelimit gates outbound Congress API calls behind rolling
// hour and minute windows. Thresholds sit below the published upstream
// limits to leave safety margin.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Policy selects what happens when a window is exhausted.
type Policy int

const (
	// Block waits until the nearest window boundary frees a slot.
	Block Policy = iota
	// FailFast returns a LimitedError immediately.
	FailFast
)

// LimitedError reports quota exhaustion together with the earliest moment a
// retry can succeed.
type LimitedError struct {
	Window     string
	RetryAfter time.Duration
}

func (e *LimitedError) Error() string {
	return fmt.Sprintf("rate limit reached for %s window, retry after %s", e.Window, e.RetryAfter.Round(time.Millisecond))
}

// WindowStatus is a point-in-time snapshot of one rolling window.
// RetryAfter is how long until the next slot frees; zero while the window
// still has headroom.
type WindowStatus struct {
	Used       int           `json:"used"`
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	RetryAfter time.Duration `json:"retry_after"`
}

// Status maps window names ("hour", "minute") to their snapshots.
type Status map[string]WindowStatus

// window tracks request timestamps inside one rolling span. Timestamps
// older than the span are pruned lazily on each use.
type window struct {
	name   string
	limit  int
	span   time.Duration
	stamps []time.Time
}

func (w *window) prune(now time.Time) {
	cutoff := now.Add(-w.span)
	i := 0
	for i < len(w.stamps) && w.stamps[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[i:]...)
	}
}

func (w *window) canTake(now time.Time) bool {
	w.prune(now)
	return len(w.stamps) < w.limit
}

// retryAfter returns how long until the oldest in-window request ages out.
// Zero when a slot is already free.
func (w *window) retryAfter(now time.Time) time.Duration {
	w.prune(now)
	if w.limit <= 0 {
		// A nonpositive threshold admits nothing; the best retry estimate
		// is a full span.
		return w.span
	}
	if len(w.stamps) < w.limit {
		return 0
	}
	return w.stamps[0].Add(w.span).Sub(now)
}

// Limiter is safe for concurrent use. All windows must admit a request
// before it is recorded; a recorded request counts against every window.
type Limiter struct {
	mu      sync.Mutex
	windows []*window
	policy  Policy
	now     func() time.Time
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithPolicy selects the exhaustion behavior. The default is Block.
func WithPolicy(p Policy) Option {
	return func(l *Limiter) { l.policy = p }
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New builds a limiter with the given per-hour and per-minute thresholds.
func New(perHour, perMinute int, opts ...Option) *Limiter {
	l := &Limiter{
		windows: []*window{
			{name: "hour", limit: perHour, span: time.Hour},
			{name: "minute", limit: perMinute, span: time.Minute},
		},
		policy: Block,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records one request if every window has headroom. It never blocks;
// a false return records nothing.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for _, w := range l.windows {
		if !w.canTake(now) {
			return false
		}
	}
	l.record(now)
	return true
}

// Wait acquires one request slot. Under the Block policy it sleeps until
// the nearest window boundary frees a slot or the context is cancelled;
// under FailFast it returns a LimitedError immediately.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()

		var blocked *window
		var wait time.Duration
		for _, w := range l.windows {
			if after := w.retryAfter(now); after > wait {
				blocked = w
				wait = after
			}
		}

		if blocked == nil {
			l.record(now)
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		if l.policy == FailFast {
			return &LimitedError{Window: blocked.name, RetryAfter: wait}
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// record appends the timestamp to every window. Caller holds the lock.
func (l *Limiter) record(now time.Time) {
	for _, w := range l.windows {
		w.stamps = append(w.stamps, now)
	}
}

// RetryAfter reports the longest wait across all windows, zero when a
// request would be admitted right now.
func (l *Limiter) RetryAfter() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	var wait time.Duration
	for _, w := range l.windows {
		if after := w.retryAfter(now); after > wait {
			wait = after
		}
	}
	return wait
}

// Status returns a snapshot of every window for observability.
func (l *Limiter) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	status := make(Status, len(l.windows))
	for _, w := range l.windows {
		w.prune(now)
		remaining := w.limit - len(w.stamps)
		if remaining < 0 {
			remaining = 0
		}
		status[w.name] = WindowStatus{
			Used:       len(w.stamps),
			Limit:      w.limit,
			Remaining:  remaining,
			RetryAfter: w.retryAfter(now),
		}
	}
	return status
}

// Reset clears all counters.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.windows {
		w.stamps = w.stamps[:0]
	}
}
