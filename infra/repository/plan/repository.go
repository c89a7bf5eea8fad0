// Package plan implements the installment plan repository on GORM.
package plan

import (
	"context"
	"errors"

	"github.com/chaptertools/treasury/pkg/domain/ledger"
	"github.com/chaptertools/treasury/pkg/dto"
	repo "github.com/chaptertools/treasury/pkg/repository/plan"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// New creates a plan repository bound to the given session.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements plan.Repository. The partial unique index on
// (member_id) WHERE active turns a concurrent second enrollment into a
// duplicate-key error, surfaced as ErrActivePlanExists.
func (r *repository) Create(ctx context.Context, create dto.PlanCreate) error {
	p := mapCreateDTOToModel(create)
	err := r.db.WithContext(ctx).Create(&p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ledger.ErrActivePlanExists
	}
	return err
}

// Get implements plan.Repository.
func (r *repository) Get(ctx context.Context, id uuid.UUID) (*dto.PlanRead, error) {
	var p Plan
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrPlanNotFound
		}
		return nil, err
	}
	return mapModelToReadDTO(&p), nil
}

// GetForUpdate implements plan.Repository. The row lock serializes
// concurrent reconciliations of the same plan; two near-simultaneous
// installments cannot both read a stale paid total. SQLite has no FOR
// UPDATE but serializes writers at the database level, so the clause is
// applied only on Postgres.
func (r *repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*dto.PlanRead, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var p Plan
	if err := q.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrPlanNotFound
		}
		return nil, err
	}
	return mapModelToReadDTO(&p), nil
}

// GetActiveByMember implements plan.Repository.
func (r *repository) GetActiveByMember(
	ctx context.Context,
	memberID uuid.UUID,
) (*dto.PlanRead, error) {
	var p Plan
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND active = ?", memberID, true).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrPlanNotFound
		}
		return nil, err
	}
	return mapModelToReadDTO(&p), nil
}

// Reconcile implements plan.Repository. Only the reconciler calls this.
func (r *repository) Reconcile(
	ctx context.Context,
	id uuid.UUID,
	update dto.PlanReconcile,
) error {
	return r.db.WithContext(ctx).
		Model(&Plan{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"balance":      update.Balance,
			"active":       update.Active,
			"completed_at": update.CompletedAt,
		}).Error
}

// ListActive implements plan.Repository.
func (r *repository) ListActive(ctx context.Context) ([]*dto.PlanRead, error) {
	var ps []Plan
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Find(&ps).Error
	if err != nil {
		return nil, err
	}
	result := make([]*dto.PlanRead, 0, len(ps))
	for i := range ps {
		result = append(result, mapModelToReadDTO(&ps[i]))
	}
	return result, nil
}
