package mail

import (
	"context"
	"sync"
	"time"
)

// Throttle admits at most limit operations per rolling window, process-wide.
// It keeps a queue of admission timestamps, evicts entries older than the
// window, and makes callers at capacity wait until the oldest entry ages out.
type Throttle struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time
	now    func() time.Time
}

// NewThrottle builds a throttle. A nil now falls back to time.Now.
func NewThrottle(limit int, window time.Duration, now func() time.Time) *Throttle {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &Throttle{limit: limit, window: window, now: now}
}

// Wait blocks until the caller is admitted or the context is cancelled. On
// admission the caller's timestamp joins the queue, counting against the
// limit for one full window.
func (t *Throttle) Wait(ctx context.Context) error {
	for {
		t.mu.Lock()
		now := t.now()
		t.evictLocked(now)

		if len(t.stamps) < t.limit {
			t.stamps = append(t.stamps, now)
			t.mu.Unlock()
			return nil
		}

		wait := t.stamps[0].Add(t.window).Sub(now)
		t.mu.Unlock()

		if wait <= 0 {
			continue
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

func (t *Throttle) evictLocked(now time.Time) {
	cutoff := now.Add(-t.window)
	idx := 0
	for idx < len(t.stamps) && !t.stamps[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		t.stamps = append(t.stamps[:0], t.stamps[idx:]...)
	}
}
