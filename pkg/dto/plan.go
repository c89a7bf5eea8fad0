package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanCreate carries a new installment plan into the store.
type PlanCreate struct {
	ID                uuid.UUID
	MemberID          uuid.UUID
	TotalAmount       decimal.Decimal
	InstallmentAmount decimal.Decimal
	Frequency         string
	StartDate         time.Time
	Balance           decimal.Decimal
	Active            bool
}

// PlanReconcile carries the reconciler's derived state back to the store.
// Only the reconciler produces these.
type PlanReconcile struct {
	Balance     decimal.Decimal
	Active      bool
	CompletedAt *time.Time
}

// PlanRead is the read-optimized projection of a plan.
type PlanRead struct {
	ID                uuid.UUID       `json:"id"`
	MemberID          uuid.UUID       `json:"member_id"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	Frequency         string          `json:"frequency"`
	StartDate         time.Time       `json:"start_date"`
	Balance           decimal.Decimal `json:"balance"`
	Active            bool            `json:"active"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
}
