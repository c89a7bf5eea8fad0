// Package cache defines the key-value store contract shared by the
// aggregate statistics cache and the rate limiter, and the statistic key
// taxonomy used for write-through invalidation.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrMiss is returned by Get when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a TTL-bound key-value store. Implementations must bound their
// round-trip time so a cache outage degrades reads instead of hanging them,
// and Delete of an absent key must be a no-op, never an error.
type Store interface {
	// Get returns the raw value for key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys. Deleting an absent key succeeds silently;
	// invalidation is idempotent.
	Delete(ctx context.Context, keys ...string) error

	// Flush drops every key. Operational escape hatch after a prolonged
	// invalidation failure.
	Flush(ctx context.Context) error
}

// Invalidator deletes every statistic key whose scope a financial write
// touched. Callers invoke it strictly after their transaction commits.
type Invalidator interface {
	// InvalidateMember deletes the member-scoped keys plus every global
	// key and the trend bucket for the affected month.
	InvalidateMember(ctx context.Context, memberID uuid.UUID, month time.Time)

	// InvalidateGlobal deletes the global keys and the trend bucket for
	// the affected month.
	InvalidateGlobal(ctx context.Context, month time.Time)
}
