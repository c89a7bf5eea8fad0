// Package dto defines the read/write data shapes crossing the repository
// boundary, separated from domain entities in the CQRS style.
package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentCreate carries a new ledger entry into the store.
type PaymentCreate struct {
	ID         uuid.UUID
	MemberID   uuid.UUID
	Amount     decimal.Decimal
	Method     string
	Type       string
	PlanID     *uuid.UUID
	OccurredAt time.Time
	Note       string
}

// PaymentRead is the read-optimized projection of a payment.
type PaymentRead struct {
	ID         uuid.UUID       `json:"id"`
	MemberID   uuid.UUID       `json:"member_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Type       string          `json:"type"`
	PlanID     *uuid.UUID      `json:"plan_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Note       string          `json:"note,omitempty"`
}
