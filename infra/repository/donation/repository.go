// Package donation implements the donation repository on GORM.
package donation

import (
	"context"

	"github.com/chaptertools/treasury/pkg/dto"
	repo "github.com/chaptertools/treasury/pkg/repository/donation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a donation repository bound to the given session.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements donation.Repository.
func (r *repository) Create(ctx context.Context, create dto.DonationCreate) error {
	d := mapCreateDTOToModel(create)
	return r.db.WithContext(ctx).Create(&d).Error
}

// SumAll implements donation.Repository.
func (r *repository) SumAll(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&Donation{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// ListRecent implements donation.Repository.
func (r *repository) ListRecent(ctx context.Context, limit int) ([]*dto.DonationRead, error) {
	var ds []Donation
	err := r.db.WithContext(ctx).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&ds).Error
	if err != nil {
		return nil, err
	}
	result := make([]*dto.DonationRead, 0, len(ds))
	for i := range ds {
		result = append(result, mapModelToReadDTO(&ds[i]))
	}
	return result, nil
}
