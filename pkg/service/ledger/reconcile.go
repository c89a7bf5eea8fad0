package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/chaptertools/treasury/pkg/domain/ledger"
	"github.com/chaptertools/treasury/pkg/dto"
	"github.com/chaptertools/treasury/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reconcile recomputes a plan's balance and completion state from the
// payment ledger. It must run inside the caller's transaction: the row
// lock taken by GetForUpdate serializes concurrent reconciliations of the
// same plan, so two near-simultaneous installments cannot both read a
// stale paid total and overwrite each other's derived state.
func (s *Service) Reconcile(
	ctx context.Context,
	uow repository.UnitOfWork,
	planID uuid.UUID,
) error {
	plan, err := uow.Plans().GetForUpdate(ctx, planID)
	if err != nil {
		return err
	}

	paid, err := uow.Payments().SumByPlan(ctx, planID)
	if err != nil {
		return fmt.Errorf("sum plan payments: %w", err)
	}

	balance := plan.TotalAmount.Sub(paid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	update := dto.PlanReconcile{
		Balance:     balance,
		Active:      plan.Active,
		CompletedAt: plan.CompletedAt,
	}
	if balance.IsZero() && plan.Active {
		// Completion frees the member to enroll in a new plan.
		now := time.Now().UTC()
		update.Active = false
		update.CompletedAt = &now
		s.logger.Info("installment plan completed",
			"plan_id", planID,
			"member_id", plan.MemberID,
			"total", plan.TotalAmount,
		)
	}

	if err := uow.Plans().Reconcile(ctx, planID, update); err != nil {
		return fmt.Errorf("reconcile plan: %w", err)
	}
	return nil
}

// PlanProgress derives the uncached per-plan progress view used by the
// statistics layer.
func PlanProgress(plan *dto.PlanRead, paid decimal.Decimal) *dto.PlanProgress {
	balance := plan.TotalAmount.Sub(paid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	dp := &ledger.InstallmentPlan{TotalAmount: plan.TotalAmount}
	return &dto.PlanProgress{
		PlanID:      plan.ID,
		TotalAmount: plan.TotalAmount,
		Paid:        paid,
		Balance:     balance,
		PercentPaid: dp.PercentPaid(paid),
		Active:      plan.Active,
	}
}
