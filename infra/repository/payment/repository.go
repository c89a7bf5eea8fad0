// Package payment implements the payment ledger repository on GORM.
package payment

import (
	"context"
	"time"

	"github.com/chaptertools/treasury/pkg/dto"
	repo "github.com/chaptertools/treasury/pkg/repository/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a payment repository bound to the given session.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements payment.Repository.
func (r *repository) Create(ctx context.Context, create dto.PaymentCreate) error {
	p := mapCreateDTOToModel(create)
	return r.db.WithContext(ctx).Create(&p).Error
}

// Get implements payment.Repository.
func (r *repository) Get(ctx context.Context, id uuid.UUID) (*dto.PaymentRead, error) {
	var p Payment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return mapModelToReadDTO(&p), nil
}

// ListByMember implements payment.Repository.
func (r *repository) ListByMember(
	ctx context.Context,
	memberID uuid.UUID,
) ([]*dto.PaymentRead, error) {
	var ps []Payment
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("occurred_at DESC").
		Find(&ps).Error
	if err != nil {
		return nil, err
	}
	return mapModelsToReadDTOs(ps), nil
}

// ListSince implements payment.Repository.
func (r *repository) ListSince(
	ctx context.Context,
	since time.Time,
) ([]*dto.PaymentRead, error) {
	var ps []Payment
	err := r.db.WithContext(ctx).
		Where("occurred_at >= ?", since).
		Order("occurred_at ASC").
		Find(&ps).Error
	if err != nil {
		return nil, err
	}
	return mapModelsToReadDTOs(ps), nil
}

// SumAll implements payment.Repository.
func (r *repository) SumAll(ctx context.Context) (decimal.Decimal, error) {
	return r.sum(ctx, r.db.WithContext(ctx).Model(&Payment{}))
}

// SumByMember implements payment.Repository.
func (r *repository) SumByMember(
	ctx context.Context,
	memberID uuid.UUID,
) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&Payment{}).Where("member_id = ?", memberID)
	return r.sum(ctx, q)
}

// SumByPlan implements payment.Repository.
func (r *repository) SumByPlan(
	ctx context.Context,
	planID uuid.UUID,
) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&Payment{}).Where("plan_id = ?", planID)
	return r.sum(ctx, q)
}

// CountByType implements payment.Repository.
func (r *repository) CountByType(ctx context.Context) (*dto.TypeSummary, error) {
	var s dto.TypeSummary
	db := r.db.WithContext(ctx).Model(&Payment{})
	if err := db.Where("payment_type = ?", "one-time").Count(&s.OneTime).Error; err != nil {
		return nil, err
	}
	db = r.db.WithContext(ctx).Model(&Payment{})
	if err := db.Where("payment_type = ?", "installment").Count(&s.Installment).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CountByMethod implements payment.Repository.
func (r *repository) CountByMethod(ctx context.Context) (*dto.MethodSummary, error) {
	var s dto.MethodSummary
	db := r.db.WithContext(ctx).Model(&Payment{})
	if err := db.Where("method = ?", "stripe").Count(&s.Stripe).Error; err != nil {
		return nil, err
	}
	db = r.db.WithContext(ctx).Model(&Payment{})
	if err := db.Where("method = ?", "cash").Count(&s.Cash).Error; err != nil {
		return nil, err
	}
	db = r.db.WithContext(ctx).Model(&Payment{})
	if err := db.Where("method NOT IN ?", []string{"stripe", "cash"}).Count(&s.Other).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// MemberSummary implements payment.Repository.
func (r *repository) MemberSummary(
	ctx context.Context,
	memberID uuid.UUID,
) (*dto.MemberSummary, error) {
	var row struct {
		Total decimal.NullDecimal
		Count int64
		Last  *time.Time
	}
	err := r.db.WithContext(ctx).Model(&Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(id) AS count, MAX(occurred_at) AS last").
		Where("member_id = ?", memberID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	if row.Total.Valid {
		total = row.Total.Decimal
	}
	return &dto.MemberSummary{
		MemberID:     memberID,
		TotalPaid:    total,
		PaymentCount: row.Count,
		LastPayment:  row.Last,
	}, nil
}

func (r *repository) sum(_ context.Context, q *gorm.DB) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := q.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func mapModelsToReadDTOs(ps []Payment) []*dto.PaymentRead {
	result := make([]*dto.PaymentRead, 0, len(ps))
	for i := range ps {
		result = append(result, mapModelToReadDTO(&ps[i]))
	}
	return result
}
