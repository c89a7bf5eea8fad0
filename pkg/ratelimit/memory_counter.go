package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MemoryCounter implements Counter in process memory. Used by tests and as
// a single-instance fallback when no Redis is configured.
type MemoryCounter struct {
	mu      sync.Mutex
	counts  map[string]int64
	expires map[string]time.Time
	now     func() time.Time

	// Fail simulates an unreachable counter store when set. Test hook
	// for exercising fail-open/fail-closed policies.
	Fail bool
}

// NewMemoryCounter creates an in-memory windowed counter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		counts:  make(map[string]int64),
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// SetClock overrides the counter's clock. Test hook.
func (c *MemoryCounter) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Incr implements Counter.
func (c *MemoryCounter) Incr(
	_ context.Context,
	key string,
	window time.Duration,
) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return 0, errors.New("counter store unreachable")
	}
	now := c.now()
	if exp, ok := c.expires[key]; ok && now.After(exp) {
		delete(c.counts, key)
		delete(c.expires, key)
	}
	if _, ok := c.counts[key]; !ok {
		c.expires[key] = now.Add(window)
	}
	c.counts[key]++
	return c.counts[key], nil
}

var _ Counter = (*MemoryCounter)(nil)
