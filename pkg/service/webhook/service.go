// Package webhook processes payment-gateway notifications: signature
// verification, at-most-once application through the idempotency gate, and
// post-commit cache invalidation.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chaptertools/treasury/pkg/cache"
	"github.com/chaptertools/treasury/pkg/domain/ledger"
	"github.com/chaptertools/treasury/pkg/dto"
	"github.com/chaptertools/treasury/pkg/repository"
	ledgersvc "github.com/chaptertools/treasury/pkg/service/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Outcome classifies how a delivery was handled. Everything except a
// signature failure or a store error is acknowledged to the gateway.
type Outcome string

const (
	// OutcomeApplied means a Payment was created on this delivery.
	OutcomeApplied Outcome = "applied"
	// OutcomeDuplicate means the event identifier was already recorded.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeIgnored means the event type is not a completion event.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeOrphan means the payload referenced no known member; it is
	// acknowledged so a poison event cannot block the gateway's queue.
	OutcomeOrphan Outcome = "orphan"
	// OutcomeMalformed means the payload could not be decoded or carried a
	// non-positive amount. Retrying such a delivery can never succeed, so
	// it is acknowledged like an orphan and left unrecorded.
	OutcomeMalformed Outcome = "malformed"
)

// Result reports the processing outcome of one delivery.
type Result struct {
	Outcome   Outcome
	EventID   string
	PaymentID uuid.UUID
}

// Service is the webhook event processor.
type Service struct {
	uow         repository.UnitOfWork
	ledger      *ledgersvc.Service
	invalidator cache.Invalidator
	secret      string
	logger      *slog.Logger
}

// New creates a webhook Service verifying against the given signing secret.
func New(
	uow repository.UnitOfWork,
	ledgerSvc *ledgersvc.Service,
	invalidator cache.Invalidator,
	signingSecret string,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:         uow,
		ledger:      ledgerSvc,
		invalidator: invalidator,
		secret:      signingSecret,
		logger:      logger,
	}
}

// Process verifies and applies one gateway delivery.
//
// The event identifier is inserted into the processed-events table inside
// the same transaction that records the financial effect, so a retried
// delivery either sees the committed marker (duplicate, acknowledged) or
// nothing at all (safe to apply). Store failures roll everything back and
// surface as retryable; the gateway's own retry mechanism re-delivers.
func (s *Service) Process(ctx context.Context, payload []byte, sigHeader string) (*Result, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		s.logger.Warn("webhook signature rejected", "error", err)
		return nil, ledger.ErrSignatureVerification
	}

	log := s.logger.With("event_id", event.ID, "event_type", event.Type)

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		log.Debug("ignoring non-completion event")
		return &Result{Outcome: OutcomeIgnored, EventID: event.ID}, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Warn("undecodable checkout session; acknowledging for manual review", "error", err)
		return &Result{Outcome: OutcomeMalformed, EventID: event.ID}, nil
	}
	if session.AmountTotal <= 0 {
		log.Warn("non-positive session amount; acknowledging for manual review",
			"amount_total", session.AmountTotal)
		return &Result{Outcome: OutcomeMalformed, EventID: event.ID}, nil
	}
	// The gateway reports amounts in the smallest currency unit.
	amount := decimal.New(session.AmountTotal, -2)

	memberID, err := s.resolveMember(ctx, &session)
	if err != nil {
		if errors.Is(err, ledger.ErrMemberNotFound) {
			log.Warn("no member matches webhook payload; acknowledging for manual review",
				"client_reference_id", session.ClientReferenceID)
			return &Result{Outcome: OutcomeOrphan, EventID: event.ID}, nil
		}
		return nil, err
	}

	planID := planReference(&session)

	var payment *ledger.Payment
	duplicate := false
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		err := uow.Events().Create(ctx, dto.EventCreate{
			EventID:   event.ID,
			EventType: string(event.Type),
		})
		if errors.Is(err, ledger.ErrEventAlreadyProcessed) {
			duplicate = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("record event: %w", err)
		}

		payment, err = ledger.NewPayment(
			memberID, amount, ledger.MethodStripe, planID, time.Now().UTC(),
			"stripe session "+session.ID,
		)
		if err != nil {
			return err
		}
		if err := uow.Payments().Create(ctx, dto.PaymentCreate{
			ID:         payment.ID,
			MemberID:   payment.MemberID,
			Amount:     payment.Amount,
			Method:     string(payment.Method),
			Type:       string(payment.Type),
			PlanID:     payment.PlanID,
			OccurredAt: payment.OccurredAt,
			Note:       payment.Note,
		}); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		if planID != nil {
			return s.ledger.Reconcile(ctx, uow, *planID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if duplicate {
		log.Info("duplicate delivery acknowledged")
		return &Result{Outcome: OutcomeDuplicate, EventID: event.ID}, nil
	}

	// Invalidation must follow the commit: deleting before it would let a
	// reader repopulate the cache from not-yet-visible data.
	s.invalidator.InvalidateMember(ctx, memberID, payment.OccurredAt)

	log.Info("gateway payment applied",
		"payment_id", payment.ID,
		"member_id", memberID,
		"amount", amount,
	)
	return &Result{Outcome: OutcomeApplied, EventID: event.ID, PaymentID: payment.ID}, nil
}

// resolveMember maps the session to a member, preferring the explicit
// client reference and falling back to the checkout email.
func (s *Service) resolveMember(
	ctx context.Context,
	session *stripe.CheckoutSession,
) (uuid.UUID, error) {
	if session.ClientReferenceID != "" {
		id, err := uuid.Parse(session.ClientReferenceID)
		if err != nil {
			return uuid.Nil, ledger.ErrMemberNotFound
		}
		m, err := s.uow.Members().Get(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		return m.ID, nil
	}
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		m, err := s.uow.Members().GetByEmail(ctx, session.CustomerDetails.Email)
		if err != nil {
			return uuid.Nil, err
		}
		return m.ID, nil
	}
	return uuid.Nil, ledger.ErrMemberNotFound
}

func planReference(session *stripe.CheckoutSession) *uuid.UUID {
	raw, ok := session.Metadata["plan_id"]
	if !ok || raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
