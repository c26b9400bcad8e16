package testutil

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// StubClock is a manual clock. Scan passes stamp tombstones and checksum
// cache hits with Now, so tests Advance it between passes.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

// FixedClock starts at 2024-01-15 10:30:00 UTC.
func FixedClock() *StubClock {
	return &StubClock{now: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *StubClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// StubIDGenerator hands out scan pass ids "pass-1", "pass-2", ... in call
// order.
type StubIDGenerator struct {
	n atomic.Int64
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	return "pass-" + strconv.FormatInt(g.n.Add(1), 10)
}
