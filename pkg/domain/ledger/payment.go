// Package ledger holds the domain entities of the treasury core: payments,
// installment plans, donations, processed gateway events, and members.
//
// Invariants:
//   - Payment amounts are fixed-point decimals and strictly positive.
//   - A Payment is immutable once created.
//   - A member has at most one active installment plan.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Method is the channel a payment arrived through.
type Method string

const (
	MethodStripe Method = "stripe"
	MethodCash   Method = "cash"
	MethodCheck  Method = "check"
)

// IsValid reports whether the method is one of the known channels.
func (m Method) IsValid() bool {
	switch m {
	case MethodStripe, MethodCash, MethodCheck:
		return true
	}
	return false
}

// PaymentType distinguishes one-time dues payments from plan installments.
type PaymentType string

const (
	TypeOneTime     PaymentType = "one-time"
	TypeInstallment PaymentType = "installment"
)

// Payment is an immutable ledger entry. It is created by the webhook
// processor or by a treasurer's manual entry and never mutated afterwards.
type Payment struct {
	ID         uuid.UUID
	MemberID   uuid.UUID
	Amount     decimal.Decimal
	Method     Method
	Type       PaymentType
	PlanID     *uuid.UUID
	OccurredAt time.Time
	Note       string
}

// NewPayment validates and builds a Payment. A plan reference forces the
// installment type; without one the payment is one-time.
func NewPayment(
	memberID uuid.UUID,
	amount decimal.Decimal,
	method Method,
	planID *uuid.UUID,
	occurredAt time.Time,
	note string,
) (*Payment, error) {
	if memberID == uuid.Nil {
		return nil, ErrMemberNotFound
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !method.IsValid() {
		return nil, ErrInvalidMethod
	}
	pt := TypeOneTime
	if planID != nil {
		pt = TypeInstallment
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return &Payment{
		ID:         uuid.New(),
		MemberID:   memberID,
		Amount:     amount,
		Method:     method,
		Type:       pt,
		PlanID:     planID,
		OccurredAt: occurredAt,
		Note:       note,
	}, nil
}
