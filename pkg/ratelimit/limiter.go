// Package ratelimit guards action classes with fixed-window counters kept
// in the shared key-value store.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chaptertools/treasury/pkg/config"
)

// Policy decides the outcome when the counter store is unreachable. The
// choice is always explicit and logged; there is no silent bypass.
type Policy string

const (
	// FailClosed denies when the counter store is unreachable.
	// Recommended for authentication attempts.
	FailClosed Policy = "fail-closed"
	// FailOpen allows when the counter store is unreachable. For limits
	// that are not security critical.
	FailOpen Policy = "fail-open"
)

// Rule is one action class's limit.
type Rule struct {
	Action string
	Max    int
	Window time.Duration
	Policy Policy
}

// RuleFromConfig converts a configured rule.
func RuleFromConfig(action string, cfg config.RateLimitRule) Rule {
	return Rule{
		Action: action,
		Max:    cfg.Max,
		Window: cfg.Window,
		Policy: Policy(cfg.Policy),
	}
}

// Counter atomically increments a windowed counter and returns its new
// value. The first increment of a window arms its expiry; increment and
// expiry must be atomic with respect to concurrent callers.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter applies fixed-window limits per (action, client) pair.
type Limiter struct {
	counter Counter
	now     func() time.Time
	logger  *slog.Logger
}

// New creates a Limiter over the given counter store.
func New(counter Counter, logger *slog.Logger) *Limiter {
	return &Limiter{
		counter: counter,
		now:     time.Now,
		logger:  logger,
	}
}

// SetClock overrides the limiter's clock. Test hook.
func (l *Limiter) SetClock(now func() time.Time) { l.now = now }

// Allow reports whether the client may perform the action in the current
// window. The underlying increment-and-check is atomic, so two concurrent
// requests cannot both pass a boundary check. A counter-store failure is
// resolved by the rule's policy, never surfaced to the caller.
func (l *Limiter) Allow(ctx context.Context, rule Rule, clientID string) bool {
	windowStart := l.now().UTC().Truncate(rule.Window)
	key := fmt.Sprintf("ratelimit:%s:%s:%d", rule.Action, clientID, windowStart.Unix())

	count, err := l.counter.Incr(ctx, key, rule.Window)
	if err != nil {
		switch rule.Policy {
		case FailOpen:
			l.logger.Warn("rate counter unreachable, failing open",
				"action", rule.Action, "client", clientID, "error", err)
			return true
		default:
			l.logger.Error("rate counter unreachable, failing closed",
				"action", rule.Action, "client", clientID, "error", err)
			return false
		}
	}

	if count > int64(rule.Max) {
		l.logger.Info("rate limit exceeded",
			"action", rule.Action, "client", clientID, "count", count, "max", rule.Max)
		return false
	}
	return true
}
