// Package donation defines data access for donations.
package donation

import (
	"context"

	"github.com/chaptertools/treasury/pkg/dto"
	"github.com/shopspring/decimal"
)

// Repository is the donation table contract.
type Repository interface {
	// Create inserts a new donation.
	Create(ctx context.Context, create dto.DonationCreate) error

	// SumAll returns the total donated.
	SumAll(ctx context.Context) (decimal.Decimal, error)

	// ListRecent lists the most recent donations, newest first.
	ListRecent(ctx context.Context, limit int) ([]*dto.DonationRead, error)
}
