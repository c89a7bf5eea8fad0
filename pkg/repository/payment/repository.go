// Package payment defines data access for the payment ledger.
package payment

import (
	"context"
	"time"

	"github.com/chaptertools/treasury/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository is the ledger's payment table contract. Payments are
// append-only: there is no update or delete operation.
type Repository interface {
	// Create inserts a new payment record.
	Create(ctx context.Context, create dto.PaymentCreate) error

	// Get retrieves a payment by its ID.
	Get(ctx context.Context, id uuid.UUID) (*dto.PaymentRead, error)

	// ListByMember lists a member's payments, newest first.
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*dto.PaymentRead, error)

	// ListSince lists all payments made on or after the given instant.
	ListSince(ctx context.Context, since time.Time) ([]*dto.PaymentRead, error)

	// SumAll returns the total amount across the whole ledger.
	SumAll(ctx context.Context) (decimal.Decimal, error)

	// SumByMember returns the total paid by one member.
	SumByMember(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error)

	// SumByPlan returns the total applied against one plan.
	SumByPlan(ctx context.Context, planID uuid.UUID) (decimal.Decimal, error)

	// CountByType counts payments per payment type.
	CountByType(ctx context.Context) (*dto.TypeSummary, error)

	// CountByMethod counts payments per method.
	CountByMethod(ctx context.Context) (*dto.MethodSummary, error)

	// MemberSummary aggregates a member's paid total, count, and last payment.
	MemberSummary(ctx context.Context, memberID uuid.UUID) (*dto.MemberSummary, error)
}
