package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DonationCreate carries a new donation into the store.
type DonationCreate struct {
	ID         uuid.UUID
	MemberID   *uuid.UUID
	DonorName  string
	Amount     decimal.Decimal
	Note       string
	OccurredAt time.Time
}

// DonationRead is the read-optimized projection of a donation.
type DonationRead struct {
	ID         uuid.UUID       `json:"id"`
	MemberID   *uuid.UUID      `json:"member_id,omitempty"`
	DonorName  string          `json:"donor_name,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
