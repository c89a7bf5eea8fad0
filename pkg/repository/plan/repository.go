// Package plan defines data access for installment plans.
package plan

import (
	"context"

	"github.com/chaptertools/treasury/pkg/dto"
	"github.com/google/uuid"
)

// Repository is the installment plan table contract.
type Repository interface {
	// Create inserts a new plan. The store's partial unique index on
	// (member_id) WHERE active rejects a second active plan.
	Create(ctx context.Context, create dto.PlanCreate) error

	// Get retrieves a plan by its ID.
	Get(ctx context.Context, id uuid.UUID) (*dto.PlanRead, error)

	// GetForUpdate retrieves a plan holding a row lock for the duration
	// of the surrounding transaction. Used by the reconciler to serialize
	// concurrent reconciliations of the same plan.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*dto.PlanRead, error)

	// GetActiveByMember retrieves the member's active plan, if any.
	GetActiveByMember(ctx context.Context, memberID uuid.UUID) (*dto.PlanRead, error)

	// Reconcile writes the reconciler's derived balance/active state.
	Reconcile(ctx context.Context, id uuid.UUID, update dto.PlanReconcile) error

	// ListActive lists every active plan.
	ListActive(ctx context.Context) ([]*dto.PlanRead, error)
}
