// Package stats serves derived financial statistics through a read-through,
// TTL-bound cache with write-through invalidation.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/chaptertools/treasury/pkg/cache"
	"github.com/chaptertools/treasury/pkg/config"
	"github.com/chaptertools/treasury/pkg/domain/ledger"
	"github.com/chaptertools/treasury/pkg/dto"
	"github.com/chaptertools/treasury/pkg/repository"
	ledgersvc "github.com/chaptertools/treasury/pkg/service/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Service computes statistics from the ledger and caches them. The cache
// never owns financial truth: every value is reproducible by recomputation,
// and a cache-store outage degrades to direct ledger reads.
type Service struct {
	uow    repository.UnitOfWork
	store  cache.Store
	cfg    *config.StatsCache
	dues   decimal.Decimal
	sf     singleflight.Group
	logger *slog.Logger
}

// New creates a stats Service.
func New(
	uow repository.UnitOfWork,
	store cache.Store,
	cfg *config.StatsCache,
	dues decimal.Decimal,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:    uow,
		store:  store,
		cfg:    cfg,
		dues:   dues,
		logger: logger,
	}
}

// TotalCollected returns the ledger-wide payment total.
func (s *Service) TotalCollected(ctx context.Context) (decimal.Decimal, error) {
	var out decimal.Decimal
	err := cachedRead(ctx, s, cache.KeyTotalCollected, s.cfg.TTL, &out,
		func(ctx context.Context) (decimal.Decimal, error) {
			return s.uow.Payments().SumAll(ctx)
		})
	return out, err
}

// DonationsTotal returns the donation total.
func (s *Service) DonationsTotal(ctx context.Context) (decimal.Decimal, error) {
	var out decimal.Decimal
	err := cachedRead(ctx, s, cache.KeyDonationsTotal, s.cfg.TTL, &out,
		func(ctx context.Context) (decimal.Decimal, error) {
			return s.uow.Donations().SumAll(ctx)
		})
	return out, err
}

// UnpaidRoster lists active members who are behind on dues.
func (s *Service) UnpaidRoster(ctx context.Context) ([]*dto.MemberRead, error) {
	var out []*dto.MemberRead
	err := cachedRead(ctx, s, cache.KeyUnpaidRoster, s.cfg.TTL, &out,
		func(ctx context.Context) ([]*dto.MemberRead, error) {
			return s.uow.Members().ListUnpaid(ctx, s.dues)
		})
	return out, err
}

// TypeSummary counts payments by type.
func (s *Service) TypeSummary(ctx context.Context) (*dto.TypeSummary, error) {
	var out *dto.TypeSummary
	err := cachedRead(ctx, s, cache.KeyTypeSummary, s.cfg.TTL, &out,
		func(ctx context.Context) (*dto.TypeSummary, error) {
			return s.uow.Payments().CountByType(ctx)
		})
	return out, err
}

// MethodSummary counts payments by method.
func (s *Service) MethodSummary(ctx context.Context) (*dto.MethodSummary, error) {
	var out *dto.MethodSummary
	err := cachedRead(ctx, s, cache.KeyMethodSummary, s.cfg.TTL, &out,
		func(ctx context.Context) (*dto.MethodSummary, error) {
			return s.uow.Payments().CountByMethod(ctx)
		})
	return out, err
}

// memberStats is the cached per-member bundle: summary plus plan progress.
type memberStats struct {
	Summary  *dto.MemberSummary `json:"summary"`
	Progress *dto.PlanProgress  `json:"progress,omitempty"`
}

// MemberSummary aggregates one member's standing, including active plan
// balance and percent paid.
func (s *Service) MemberSummary(
	ctx context.Context,
	memberID uuid.UUID,
) (*dto.MemberSummary, *dto.PlanProgress, error) {
	var out memberStats
	err := cachedRead(ctx, s, cache.MemberKey(memberID), s.cfg.TTL, &out,
		func(ctx context.Context) (memberStats, error) {
			return s.computeMemberStats(ctx, memberID)
		})
	if err != nil {
		return nil, nil, err
	}
	return out.Summary, out.Progress, nil
}

// PlanProgress returns the member's active-plan progress, or nil without an
// active plan.
func (s *Service) PlanProgress(
	ctx context.Context,
	memberID uuid.UUID,
) (*dto.PlanProgress, error) {
	_, progress, err := s.MemberSummary(ctx, memberID)
	return progress, err
}

// MonthlyTrend returns per-month payment totals for the trailing window.
// The standard window sizes are cached under keys scoped by window, so a
// six-month request is never served a cached two-month result; other sizes
// bypass the cache and compute directly.
func (s *Service) MonthlyTrend(
	ctx context.Context,
	months int,
) ([]*dto.MonthlyTrendRow, error) {
	if months <= 0 {
		months = 6
	}
	now := time.Now().UTC()
	if !slices.Contains(cache.TrendWindows, months) {
		return s.computeTrend(ctx, now, months)
	}
	key := cache.TrendKey(now, months)
	var out []*dto.MonthlyTrendRow
	err := cachedRead(ctx, s, key, s.cfg.TrendTTL, &out,
		func(ctx context.Context) ([]*dto.MonthlyTrendRow, error) {
			return s.computeTrend(ctx, now, months)
		})
	return out, err
}

func (s *Service) computeMemberStats(
	ctx context.Context,
	memberID uuid.UUID,
) (memberStats, error) {
	var out memberStats
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		summary, err := uow.Payments().MemberSummary(ctx, memberID)
		if err != nil {
			return err
		}
		out.Summary = summary

		plan, err := uow.Plans().GetActiveByMember(ctx, memberID)
		if errors.Is(err, ledger.ErrPlanNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		paid, err := uow.Payments().SumByPlan(ctx, plan.ID)
		if err != nil {
			return err
		}
		out.Progress = ledgersvc.PlanProgress(plan, paid)
		out.Summary.HasActivePlan = true
		out.Summary.PlanBalance = out.Progress.Balance
		return nil
	})
	return out, err
}

// computeTrend buckets payments by calendar month in process; the rows are
// cached, so the scan runs at most once per TTL window per invalidation.
func (s *Service) computeTrend(
	ctx context.Context,
	now time.Time,
	months int,
) ([]*dto.MonthlyTrendRow, error) {
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(months - 1), 0)
	payments, err := s.uow.Payments().ListSince(ctx, since)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*dto.MonthlyTrendRow, months)
	order := make([]string, 0, months)
	for i := 0; i < months; i++ {
		m := since.AddDate(0, i, 0).Format("2006-01")
		buckets[m] = &dto.MonthlyTrendRow{Month: m, Total: decimal.Zero}
		order = append(order, m)
	}
	for _, p := range payments {
		m := p.OccurredAt.UTC().Format("2006-01")
		row, ok := buckets[m]
		if !ok {
			continue
		}
		row.Total = row.Total.Add(p.Amount)
		row.Count++
	}

	rows := make([]*dto.MonthlyTrendRow, 0, months)
	for _, m := range order {
		rows = append(rows, buckets[m])
	}
	return rows, nil
}

// cachedRead is the read-through path: cache hit, otherwise a
// singleflight-guarded recompute followed by a TTL-bound populate.
// Concurrent misses for one key share a single ledger query. Cache-store
// failures degrade to the direct read and are logged, never returned.
func cachedRead[T any](
	ctx context.Context,
	s *Service,
	key string,
	ttl time.Duration,
	out *T,
	compute func(ctx context.Context) (T, error),
) error {
	if raw, err := s.store.Get(ctx, key); err == nil {
		if err := json.Unmarshal(raw, out); err == nil {
			return nil
		}
		// Undecodable entries are dropped and recomputed.
		_ = s.store.Delete(ctx, key)
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("cache store unavailable, falling back to ledger read",
			"key", key, "error", err)
		v, err := compute(ctx)
		if err != nil {
			return err
		}
		*out = v
		return nil
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(v); err == nil {
			if err := s.store.Set(ctx, key, raw, ttl); err != nil {
				s.logger.Warn("cache populate failed", "key", key, "error", err)
			}
		}
		return v, nil
	})
	if err != nil {
		return err
	}
	*out = v.(T)
	return nil
}
