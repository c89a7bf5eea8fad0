// Package member implements member reads and the financial-status edit on
// GORM.
package member

import (
	"context"
	"errors"

	"github.com/chaptertools/treasury/pkg/domain/ledger"
	"github.com/chaptertools/treasury/pkg/dto"
	repo "github.com/chaptertools/treasury/pkg/repository/member"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a member repository bound to the given session.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Get implements member.Repository.
func (r *repository) Get(ctx context.Context, id uuid.UUID) (*dto.MemberRead, error) {
	var m Member
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrMemberNotFound
		}
		return nil, err
	}
	return mapModelToReadDTO(&m), nil
}

// GetByEmail implements member.Repository.
func (r *repository) GetByEmail(ctx context.Context, email string) (*dto.MemberRead, error) {
	var m Member
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrMemberNotFound
		}
		return nil, err
	}
	return mapModelToReadDTO(&m), nil
}

// ListUnpaid implements member.Repository: active members who have neither
// paid the dues amount in full nor enrolled in an active plan.
func (r *repository) ListUnpaid(
	ctx context.Context,
	dues decimal.Decimal,
) ([]*dto.MemberRead, error) {
	var ms []Member
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("id NOT IN (?)", r.db.
			Table("payments").
			Select("member_id").
			Group("member_id").
			Having("SUM(amount) >= ?", dues)).
		Where("id NOT IN (?)", r.db.
			Table("plans").
			Select("member_id").
			Where("active = ?", true)).
		Order("name ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	result := make([]*dto.MemberRead, 0, len(ms))
	for i := range ms {
		result = append(result, mapModelToReadDTO(&ms[i]))
	}
	return result, nil
}

// UpdateFinancialStatus implements member.Repository.
func (r *repository) UpdateFinancialStatus(
	ctx context.Context,
	id uuid.UUID,
	status string,
) error {
	res := r.db.WithContext(ctx).
		Model(&Member{}).
		Where("id = ?", id).
		Update("financial_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ledger.ErrMemberNotFound
	}
	return nil
}
