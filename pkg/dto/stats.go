package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanProgress is the cached per-member view of an active plan.
type PlanProgress struct {
	PlanID      uuid.UUID       `json:"plan_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Paid        decimal.Decimal `json:"paid"`
	Balance     decimal.Decimal `json:"balance"`
	PercentPaid int             `json:"percent_paid"`
	Active      bool            `json:"active"`
}

// MemberSummary aggregates one member's financial standing.
type MemberSummary struct {
	MemberID      uuid.UUID       `json:"member_id"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	PaymentCount  int64           `json:"payment_count"`
	LastPayment   *time.Time      `json:"last_payment,omitempty"`
	HasActivePlan bool            `json:"has_active_plan"`
	PlanBalance   decimal.Decimal `json:"plan_balance"`
}

// MonthlyTrendRow is one bucket of the monthly payment trend.
type MonthlyTrendRow struct {
	Month string          `json:"month"` // YYYY-MM
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

// TypeSummary counts payments by type.
type TypeSummary struct {
	OneTime     int64 `json:"one_time"`
	Installment int64 `json:"installment"`
}

// MethodSummary counts payments by method.
type MethodSummary struct {
	Stripe int64 `json:"stripe"`
	Cash   int64 `json:"cash"`
	Other  int64 `json:"other"`
}
