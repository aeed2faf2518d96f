package testfixtures

import (
	"sync"
	"time"
)

// Clock is a hand-cranked time source. Services and repositories take a
// `func() time.Time`; wiring in NowFunc lets a test pin the wall clock and
// move it deliberately.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at the given instant. A zero start pins it to the
// shared ReferenceTime so fixtures and clocks agree by default.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

// Now reports the pinned instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NowFunc adapts the clock for injection. A nil clock degrades to the real
// time source, so production constructors can share test wiring.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set pins the clock to an absolute instant.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance cranks the clock forward and reports the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	t := c.now
	c.mu.Unlock()
	return t
}
