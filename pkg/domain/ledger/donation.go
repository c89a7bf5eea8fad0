package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Donation is a voluntary contribution outside the dues ledger. It may be
// anonymous (no member reference). Donation writes invalidate the global
// statistic keys like any other financial write.
type Donation struct {
	ID         uuid.UUID
	MemberID   *uuid.UUID
	DonorName  string
	Amount     decimal.Decimal
	Note       string
	OccurredAt time.Time
}

// NewDonation validates and builds a Donation.
func NewDonation(
	memberID *uuid.UUID,
	donorName string,
	amount decimal.Decimal,
	note string,
) (*Donation, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return &Donation{
		ID:         uuid.New(),
		MemberID:   memberID,
		DonorName:  donorName,
		Amount:     amount,
		Note:       note,
		OccurredAt: time.Now().UTC(),
	}, nil
}
