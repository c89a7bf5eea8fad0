package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Frequency is the cadence of an installment plan.
type Frequency string

const (
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
	Monthly  Frequency = "monthly"
)

// IsValid reports whether the frequency is a known cadence.
func (f Frequency) IsValid() bool {
	switch f {
	case Weekly, Biweekly, Monthly:
		return true
	}
	return false
}

// InstallmentCount returns how many installments a plan of this frequency
// is split into. Weekly plans run ten weeks; biweekly and monthly plans
// split into five installments.
func (f Frequency) InstallmentCount() int {
	switch f {
	case Weekly:
		return 10
	case Biweekly, Monthly:
		return 5
	default:
		return 1
	}
}

// InstallmentPlan amortizes a dues total over periodic payments.
// Balance and the active flag are derived state, recomputed from the
// payment ledger by the reconciler and mutated by nothing else.
type InstallmentPlan struct {
	ID                uuid.UUID
	MemberID          uuid.UUID
	TotalAmount       decimal.Decimal
	InstallmentAmount decimal.Decimal
	Frequency         Frequency
	StartDate         time.Time
	Balance           decimal.Decimal
	Active            bool
	CompletedAt       *time.Time
}

// NewInstallmentPlan validates and builds a plan. The balance starts at the
// full total; the per-installment amount is the total split evenly across
// the frequency's installment count, rounded to cents.
func NewInstallmentPlan(
	memberID uuid.UUID,
	total decimal.Decimal,
	frequency Frequency,
	startDate time.Time,
) (*InstallmentPlan, error) {
	if memberID == uuid.Nil {
		return nil, ErrMemberNotFound
	}
	if !total.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !frequency.IsValid() {
		return nil, ErrInvalidFrequency
	}
	if startDate.IsZero() {
		startDate = time.Now().UTC()
	}
	n := int64(frequency.InstallmentCount())
	return &InstallmentPlan{
		ID:                uuid.New(),
		MemberID:          memberID,
		TotalAmount:       total,
		InstallmentAmount: total.DivRound(decimal.NewFromInt(n), 2),
		Frequency:         frequency,
		StartDate:         startDate,
		Balance:           total,
		Active:            true,
	}, nil
}

// PercentPaid derives completion as a whole percentage, capped at 100.
func (p *InstallmentPlan) PercentPaid(paid decimal.Decimal) int {
	if !p.TotalAmount.IsPositive() {
		return 0
	}
	pct := paid.Div(p.TotalAmount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return int(pct)
}
