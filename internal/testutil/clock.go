// Package testutil provides deterministic substitutes for the production
// clock and ID generator.
package testutil

import (
	"sync"
	"time"
)

// Clock is a thread-safe deterministic clock for tests.
//
// Unlike calendar.SystemClock it never reads the wall clock: it returns a
// fixed instant until the test advances it, so created/updated stamps and
// golden outputs are reproducible.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock frozen at the given instant.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now.UTC()}
}

// Now returns the frozen instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set repositions the clock to a specific instant.
func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now.UTC()
}
