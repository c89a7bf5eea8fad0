// Package ledger provides the transactional write path of the treasury
// core: manual payment entry, donations, plan enrollment, and the
// installment plan reconciler.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chaptertools/treasury/pkg/cache"
	"github.com/chaptertools/treasury/pkg/domain/ledger"
	"github.com/chaptertools/treasury/pkg/dto"
	"github.com/chaptertools/treasury/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service executes ledger writes. Every mutation runs inside one
// transaction and is followed, strictly after commit, by a synchronous
// cache invalidation for the affected scopes.
type Service struct {
	uow         repository.UnitOfWork
	invalidator cache.Invalidator
	logger      *slog.Logger
}

// New creates a ledger write Service.
func New(
	uow repository.UnitOfWork,
	invalidator cache.Invalidator,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:         uow,
		invalidator: invalidator,
		logger:      logger,
	}
}

// ManualPaymentCommand is a treasurer-entered cash or check payment.
// Manual entries are single human-initiated actions and carry no dedup key.
type ManualPaymentCommand struct {
	MemberID   uuid.UUID
	Amount     decimal.Decimal
	Method     ledger.Method
	PlanID     *uuid.UUID
	OccurredAt time.Time
	Note       string
}

// RecordManualPayment applies a manual entry through the same transactional
// write + invalidation path as the webhook processor.
func (s *Service) RecordManualPayment(
	ctx context.Context,
	cmd ManualPaymentCommand,
) (*ledger.Payment, error) {
	p, err := ledger.NewPayment(
		cmd.MemberID, cmd.Amount, cmd.Method, cmd.PlanID, cmd.OccurredAt, cmd.Note,
	)
	if err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := uow.Members().Get(ctx, cmd.MemberID); err != nil {
			return err
		}
		if err := uow.Payments().Create(ctx, paymentCreate(p)); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		if p.PlanID != nil {
			if err := s.Reconcile(ctx, uow, *p.PlanID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidator.InvalidateMember(ctx, p.MemberID, p.OccurredAt)
	s.logger.Info("manual payment recorded",
		"payment_id", p.ID,
		"member_id", p.MemberID,
		"amount", p.Amount,
		"method", p.Method,
	)
	return p, nil
}

// DonationCommand is a voluntary contribution entry.
type DonationCommand struct {
	MemberID  *uuid.UUID
	DonorName string
	Amount    decimal.Decimal
	Note      string
}

// RecordDonation stores a donation and invalidates the global statistic
// keys it feeds.
func (s *Service) RecordDonation(
	ctx context.Context,
	cmd DonationCommand,
) (*ledger.Donation, error) {
	d, err := ledger.NewDonation(cmd.MemberID, cmd.DonorName, cmd.Amount, cmd.Note)
	if err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		return uow.Donations().Create(ctx, dto.DonationCreate{
			ID:         d.ID,
			MemberID:   d.MemberID,
			DonorName:  d.DonorName,
			Amount:     d.Amount,
			Note:       d.Note,
			OccurredAt: d.OccurredAt,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}

	if d.MemberID != nil {
		s.invalidator.InvalidateMember(ctx, *d.MemberID, d.OccurredAt)
	} else {
		s.invalidator.InvalidateGlobal(ctx, d.OccurredAt)
	}
	s.logger.Info("donation recorded", "donation_id", d.ID, "amount", d.Amount)
	return d, nil
}

// CreatePlanCommand enrolls a member in an installment plan.
type CreatePlanCommand struct {
	MemberID  uuid.UUID
	Total     decimal.Decimal
	Frequency ledger.Frequency
	StartDate time.Time
}

// CreatePlan enrolls the member unless an active plan already exists.
// The check-then-insert race is closed by the store's partial unique
// index; a concurrent winner surfaces as ErrActivePlanExists too.
func (s *Service) CreatePlan(
	ctx context.Context,
	cmd CreatePlanCommand,
) (*ledger.InstallmentPlan, error) {
	p, err := ledger.NewInstallmentPlan(cmd.MemberID, cmd.Total, cmd.Frequency, cmd.StartDate)
	if err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := uow.Members().Get(ctx, cmd.MemberID); err != nil {
			return err
		}
		_, err := uow.Plans().GetActiveByMember(ctx, cmd.MemberID)
		if err == nil {
			return ledger.ErrActivePlanExists
		}
		if !errors.Is(err, ledger.ErrPlanNotFound) {
			return err
		}
		return uow.Plans().Create(ctx, dto.PlanCreate{
			ID:                p.ID,
			MemberID:          p.MemberID,
			TotalAmount:       p.TotalAmount,
			InstallmentAmount: p.InstallmentAmount,
			Frequency:         string(p.Frequency),
			StartDate:         p.StartDate,
			Balance:           p.Balance,
			Active:            p.Active,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidator.InvalidateMember(ctx, p.MemberID, p.StartDate)
	s.logger.Info("installment plan created",
		"plan_id", p.ID,
		"member_id", p.MemberID,
		"total", p.TotalAmount,
		"frequency", p.Frequency,
	)
	return p, nil
}

// SetFinancialStatus records a treasurer's manual financial-status edit.
// The status is an external field, never derived from the ledger.
func (s *Service) SetFinancialStatus(
	ctx context.Context,
	memberID uuid.UUID,
	status string,
) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		return uow.Members().UpdateFinancialStatus(ctx, memberID, status)
	})
	if err != nil {
		return err
	}
	s.invalidator.InvalidateMember(ctx, memberID, time.Now().UTC())
	s.logger.Info("financial status updated", "member_id", memberID, "status", status)
	return nil
}

func paymentCreate(p *ledger.Payment) dto.PaymentCreate {
	return dto.PaymentCreate{
		ID:         p.ID,
		MemberID:   p.MemberID,
		Amount:     p.Amount,
		Method:     string(p.Method),
		Type:       string(p.Type),
		PlanID:     p.PlanID,
		OccurredAt: p.OccurredAt,
		Note:       p.Note,
	}
}
