package ledger_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaptertools/treasury/internal/fixtures"
	"github.com/chaptertools/treasury/pkg/domain/ledger"
	"github.com/chaptertools/treasury/pkg/dto"
	"github.com/chaptertools/treasury/pkg/repository"
	"github.com/chaptertools/treasury/pkg/repository/plan"
	ledgersvc "github.com/chaptertools/treasury/pkg/service/ledger"
)

func TestRecordManualPayment(t *testing.T) {
	ctx := context.Background()
	uow, db := fixtures.NewTestUoW(t)
	inv := &fixtures.RecorderInvalidator{}
	svc := ledgersvc.New(uow, inv, fixtures.Logger())

	memberID := fixtures.SeedMember(t, db, "Ada", "ada@example.com")

	t.Run("records payment and invalidates member scope", func(t *testing.T) {
		p, err := svc.RecordManualPayment(ctx, ledgersvc.ManualPaymentCommand{
			MemberID: memberID,
			Amount:   decimal.NewFromInt(50),
			Method:   ledger.MethodCash,
			Note:     "paid at meeting",
		})
		require.NoError(t, err)
		assert.Equal(t, ledger.TypeOneTime, p.Type)

		total, err := uow.Payments().SumByMember(ctx, memberID)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, []uuid.UUID{memberID}, inv.Members)
	})

	t.Run("unknown member rolls back", func(t *testing.T) {
		_, err := svc.RecordManualPayment(ctx, ledgersvc.ManualPaymentCommand{
			MemberID: uuid.New(),
			Amount:   decimal.NewFromInt(50),
			Method:   ledger.MethodCheck,
		})
		assert.ErrorIs(t, err, ledger.ErrMemberNotFound)

		total, err := uow.Payments().SumAll(ctx)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(50)), "ledger total changed")
	})

	t.Run("invalid amount never reaches the store", func(t *testing.T) {
		before := inv.MemberCalls()
		_, err := svc.RecordManualPayment(ctx, ledgersvc.ManualPaymentCommand{
			MemberID: memberID,
			Amount:   decimal.NewFromInt(-10),
			Method:   ledger.MethodCash,
		})
		assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
		assert.Equal(t, before, inv.MemberCalls())
	})
}

func TestCreatePlan(t *testing.T) {
	ctx := context.Background()
	uow, db := fixtures.NewTestUoW(t)
	inv := &fixtures.RecorderInvalidator{}
	svc := ledgersvc.New(uow, inv, fixtures.Logger())

	memberID := fixtures.SeedMember(t, db, "Bea", "bea@example.com")

	first, err := svc.CreatePlan(ctx, ledgersvc.CreatePlanCommand{
		MemberID:  memberID,
		Total:     decimal.NewFromInt(200),
		Frequency: ledger.Weekly,
	})
	require.NoError(t, err)
	assert.True(t, first.InstallmentAmount.Equal(decimal.NewFromInt(20)))

	t.Run("second active plan is rejected and the first untouched", func(t *testing.T) {
		_, err := svc.CreatePlan(ctx, ledgersvc.CreatePlanCommand{
			MemberID:  memberID,
			Total:     decimal.NewFromInt(300),
			Frequency: ledger.Monthly,
		})
		assert.ErrorIs(t, err, ledger.ErrActivePlanExists)

		got, err := uow.Plans().Get(ctx, first.ID)
		require.NoError(t, err)
		assert.True(t, got.Active)
		assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(200)))
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(200)))
	})

	t.Run("another member is unaffected", func(t *testing.T) {
		otherID := fixtures.SeedMember(t, db, "Cal", "cal@example.com")
		_, err := svc.CreatePlan(ctx, ledgersvc.CreatePlanCommand{
			MemberID:  otherID,
			Total:     decimal.NewFromInt(200),
			Frequency: ledger.Biweekly,
		})
		require.NoError(t, err)
	})

	t.Run("unknown member is rejected", func(t *testing.T) {
		_, err := svc.CreatePlan(ctx, ledgersvc.CreatePlanCommand{
			MemberID:  uuid.New(),
			Total:     decimal.NewFromInt(200),
			Frequency: ledger.Weekly,
		})
		assert.ErrorIs(t, err, ledger.ErrMemberNotFound)
	})
}

// annotatingUoW wraps plan lookups with an extra error layer, the way a
// store adapter that adds context to its failures would.
type annotatingUoW struct {
	repository.UnitOfWork
}

func (w *annotatingUoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return w.UnitOfWork.Do(ctx, func(inner repository.UnitOfWork) error {
		return fn(&annotatingUoW{inner})
	})
}

func (w *annotatingUoW) Plans() plan.Repository {
	return annotatingPlans{w.UnitOfWork.Plans()}
}

type annotatingPlans struct {
	plan.Repository
}

func (p annotatingPlans) GetActiveByMember(ctx context.Context, memberID uuid.UUID) (*dto.PlanRead, error) {
	got, err := p.Repository.GetActiveByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("plan lookup: %w", err)
	}
	return got, nil
}

func TestCreatePlanMatchesWrappedNotFound(t *testing.T) {
	ctx := context.Background()
	uow, db := fixtures.NewTestUoW(t)
	inv := &fixtures.RecorderInvalidator{}
	svc := ledgersvc.New(&annotatingUoW{uow}, inv, fixtures.Logger())

	memberID := fixtures.SeedMember(t, db, "Gil", "gil@example.com")

	p, err := svc.CreatePlan(ctx, ledgersvc.CreatePlanCommand{
		MemberID:  memberID,
		Total:     decimal.NewFromInt(120),
		Frequency: ledger.Monthly,
	})
	require.NoError(t, err)
	assert.True(t, p.Active)
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	uow, db := fixtures.NewTestUoW(t)
	inv := &fixtures.RecorderInvalidator{}
	svc := ledgersvc.New(uow, inv, fixtures.Logger())

	memberID := fixtures.SeedMember(t, db, "Dee", "dee@example.com")
	plan, err := svc.CreatePlan(ctx, ledgersvc.CreatePlanCommand{
		MemberID:  memberID,
		Total:     decimal.NewFromInt(200),
		Frequency: ledger.Weekly,
	})
	require.NoError(t, err)

	pay := func(amount int64) {
		t.Helper()
		_, err := svc.RecordManualPayment(ctx, ledgersvc.ManualPaymentCommand{
			MemberID: memberID,
			Amount:   decimal.NewFromInt(amount),
			Method:   ledger.MethodCash,
			PlanID:   &plan.ID,
		})
		require.NoError(t, err)
	}

	t.Run("installment reduces the balance exactly", func(t *testing.T) {
		pay(20)
		got, err := uow.Plans().Get(ctx, plan.ID)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(180)), "got %s", got.Balance)
		assert.True(t, got.Active)
	})

	t.Run("balance is derived from the sum, not decremented", func(t *testing.T) {
		pay(30)
		pay(50)
		got, err := uow.Plans().Get(ctx, plan.ID)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(100)), "got %s", got.Balance)
	})

	t.Run("completion deactivates and timestamps the plan", func(t *testing.T) {
		pay(100)
		got, err := uow.Plans().Get(ctx, plan.ID)
		require.NoError(t, err)
		assert.True(t, got.Balance.IsZero())
		assert.False(t, got.Active)
		require.NotNil(t, got.CompletedAt)
	})

	t.Run("completed plan frees the member for a new one", func(t *testing.T) {
		next, err := svc.CreatePlan(ctx, ledgersvc.CreatePlanCommand{
			MemberID:  memberID,
			Total:     decimal.NewFromInt(200),
			Frequency: ledger.Monthly,
		})
		require.NoError(t, err)

		t.Run("overpayment floors the balance at zero", func(t *testing.T) {
			_, err := svc.RecordManualPayment(ctx, ledgersvc.ManualPaymentCommand{
				MemberID: memberID,
				Amount:   decimal.NewFromInt(250),
				Method:   ledger.MethodCheck,
				PlanID:   &next.ID,
			})
			require.NoError(t, err)

			got, err := uow.Plans().Get(ctx, next.ID)
			require.NoError(t, err)
			assert.True(t, got.Balance.IsZero())
			assert.False(t, got.Active)
		})
	})

}

func TestSetFinancialStatus(t *testing.T) {
	ctx := context.Background()
	uow, db := fixtures.NewTestUoW(t)
	inv := &fixtures.RecorderInvalidator{}
	svc := ledgersvc.New(uow, inv, fixtures.Logger())

	memberID := fixtures.SeedMember(t, db, "Eve", "eve@example.com")

	require.NoError(t, svc.SetFinancialStatus(ctx, memberID, ledger.StatusFinancial))
	m, err := uow.Members().Get(ctx, memberID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusFinancial, m.FinancialStatus)
	assert.Contains(t, inv.Members, memberID)

	err = svc.SetFinancialStatus(ctx, uuid.New(), ledger.StatusFinancial)
	assert.ErrorIs(t, err, ledger.ErrMemberNotFound)
}

func TestRecordDonation(t *testing.T) {
	ctx := context.Background()
	uow, db := fixtures.NewTestUoW(t)
	inv := &fixtures.RecorderInvalidator{}
	svc := ledgersvc.New(uow, inv, fixtures.Logger())

	t.Run("anonymous donation invalidates global scope", func(t *testing.T) {
		_, err := svc.RecordDonation(ctx, ledgersvc.DonationCommand{
			DonorName: "A Friend",
			Amount:    decimal.NewFromInt(75),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, inv.Globals)

		total, err := uow.Donations().SumAll(ctx)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(75)))
	})

	t.Run("member donation invalidates member scope", func(t *testing.T) {
		memberID := fixtures.SeedMember(t, db, "Fay", "fay@example.com")
		_, err := svc.RecordDonation(ctx, ledgersvc.DonationCommand{
			MemberID: &memberID,
			Amount:   decimal.NewFromInt(25),
		})
		require.NoError(t, err)
		assert.Contains(t, inv.Members, memberID)
	})
}
