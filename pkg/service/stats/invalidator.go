package stats

import (
	"context"
	"time"

	"github.com/chaptertools/treasury/pkg/cache"
	"github.com/google/uuid"
)

// InvalidateMember deletes every cached statistic a member-scoped financial
// write touches. Callers invoke this strictly after their transaction
// commits. A failed invalidation is logged under its own message so an
// operator can tell it apart from a ledger failure and force a flush;
// prolonged cache failure only causes staleness, never ledger corruption.
func (s *Service) InvalidateMember(
	ctx context.Context,
	memberID uuid.UUID,
	month time.Time,
) {
	keys := cache.KeysForMember(memberID, month)
	if err := s.store.Delete(ctx, keys...); err != nil {
		s.logger.Error("cache invalidation failed",
			"member_id", memberID, "keys", keys, "error", err)
	}
}

// InvalidateGlobal deletes the global statistic keys and every cached
// trend variant covering the affected month.
func (s *Service) InvalidateGlobal(ctx context.Context, month time.Time) {
	keys := append(cache.GlobalKeys(), cache.TrendKeys(month)...)
	if err := s.store.Delete(ctx, keys...); err != nil {
		s.logger.Error("cache invalidation failed", "keys", keys, "error", err)
	}
}

// Flush drops the whole statistics cache. Operational escape hatch after a
// prolonged invalidation failure.
func (s *Service) Flush(ctx context.Context) error {
	return s.store.Flush(ctx)
}

var _ cache.Invalidator = (*Service)(nil)
