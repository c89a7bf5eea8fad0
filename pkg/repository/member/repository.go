// Package member defines read access to members and the treasurer's
// financial-status edit.
package member

import (
	"context"

	"github.com/chaptertools/treasury/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository is the member table contract seen by the treasury core.
type Repository interface {
	// Get retrieves a member by ID.
	Get(ctx context.Context, id uuid.UUID) (*dto.MemberRead, error)

	// GetByEmail retrieves a member by email.
	GetByEmail(ctx context.Context, email string) (*dto.MemberRead, error)

	// ListUnpaid lists active members who have neither paid the dues
	// amount in full nor enrolled in an active plan, ordered by name.
	ListUnpaid(ctx context.Context, dues decimal.Decimal) ([]*dto.MemberRead, error)

	// UpdateFinancialStatus records a treasurer's manual status edit.
	// The status is not derived from the ledger.
	UpdateFinancialStatus(ctx context.Context, id uuid.UUID, status string) error
}
