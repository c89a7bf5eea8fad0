// Package ledgerapi exposes the manual-entry write endpoints: cash/check
// payments, donations, plan enrollment, and the treasurer's
// financial-status edit. Callers are assumed already authorized by the
// surrounding application's role gate.
package ledgerapi

import (
	"time"

	"github.com/chaptertools/treasury/pkg/domain/ledger"
	ledgersvc "github.com/chaptertools/treasury/pkg/service/ledger"
	"github.com/chaptertools/treasury/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Routes mounts the ledger write endpoints behind the given middleware.
func Routes(app *fiber.App, svc *ledgersvc.Service, guards ...fiber.Handler) {
	g := app.Group("/ledger", guards...)
	g.Post("/payments", RecordPayment(svc))
	g.Post("/donations", RecordDonation(svc))
	g.Post("/plans", CreatePlan(svc))
	g.Patch("/members/:id/financial-status", SetFinancialStatus(svc))
}

// PaymentRequest is a treasurer-entered payment.
type PaymentRequest struct {
	MemberID string          `json:"member_id" validate:"required,uuid4"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Method   string          `json:"method" validate:"required,oneof=cash check"`
	PlanID   *string         `json:"plan_id,omitempty" validate:"omitempty,uuid4"`
	Note     string          `json:"note,omitempty" validate:"max=255"`
}

// RecordPayment handles manual cash/check entry.
func RecordPayment(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[PaymentRequest](c)
		if input == nil {
			return err
		}
		memberID, err := uuid.Parse(input.MemberID)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid member ID", err.Error())
		}
		var planID *uuid.UUID
		if input.PlanID != nil {
			id, err := uuid.Parse(*input.PlanID)
			if err != nil {
				return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid plan ID", err.Error())
			}
			planID = &id
		}

		p, err := svc.RecordManualPayment(c.Context(), ledgersvc.ManualPaymentCommand{
			MemberID:   memberID,
			Amount:     input.Amount,
			Method:     ledger.Method(input.Method),
			PlanID:     planID,
			OccurredAt: time.Now().UTC(),
			Note:       input.Note,
		})
		if err != nil {
			return common.ErrorResponseJSON(
				c, common.ErrorToStatusCode(err), "Couldn't record payment", err.Error())
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Payment recorded", fiber.Map{
			"payment_id": p.ID,
		})
	}
}

// DonationRequest is a donation entry, possibly anonymous.
type DonationRequest struct {
	MemberID  *string         `json:"member_id,omitempty" validate:"omitempty,uuid4"`
	DonorName string          `json:"donor_name,omitempty" validate:"max=100"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Note      string          `json:"note,omitempty" validate:"max=255"`
}

// RecordDonation handles donation entry.
func RecordDonation(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[DonationRequest](c)
		if input == nil {
			return err
		}
		var memberID *uuid.UUID
		if input.MemberID != nil {
			id, err := uuid.Parse(*input.MemberID)
			if err != nil {
				return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid member ID", err.Error())
			}
			memberID = &id
		}

		d, err := svc.RecordDonation(c.Context(), ledgersvc.DonationCommand{
			MemberID:  memberID,
			DonorName: input.DonorName,
			Amount:    input.Amount,
			Note:      input.Note,
		})
		if err != nil {
			return common.ErrorResponseJSON(
				c, common.ErrorToStatusCode(err), "Couldn't record donation", err.Error())
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Donation recorded", fiber.Map{
			"donation_id": d.ID,
		})
	}
}

// PlanRequest enrolls a member in an installment plan.
type PlanRequest struct {
	MemberID  string          `json:"member_id" validate:"required,uuid4"`
	Total     decimal.Decimal `json:"total" validate:"required"`
	Frequency string          `json:"frequency" validate:"required,oneof=weekly biweekly monthly"`
	StartDate *time.Time      `json:"start_date,omitempty"`
}

// CreatePlan handles plan enrollment. A second active plan answers 409.
func CreatePlan(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[PlanRequest](c)
		if input == nil {
			return err
		}
		memberID, err := uuid.Parse(input.MemberID)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid member ID", err.Error())
		}
		start := time.Now().UTC()
		if input.StartDate != nil {
			start = *input.StartDate
		}

		p, err := svc.CreatePlan(c.Context(), ledgersvc.CreatePlanCommand{
			MemberID:  memberID,
			Total:     input.Total,
			Frequency: ledger.Frequency(input.Frequency),
			StartDate: start,
		})
		if err != nil {
			return common.ErrorResponseJSON(
				c, common.ErrorToStatusCode(err), "Couldn't create plan", err.Error())
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Plan created", fiber.Map{
			"plan_id":            p.ID,
			"installment_amount": p.InstallmentAmount,
		})
	}
}

// StatusRequest is the treasurer's financial-status edit.
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof='financial' 'not financial'"`
}

// SetFinancialStatus handles the manual financial-status edit.
func SetFinancialStatus(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid member ID", err.Error())
		}
		input, err := common.BindAndValidate[StatusRequest](c)
		if input == nil {
			return err
		}
		if err := svc.SetFinancialStatus(c.Context(), memberID, input.Status); err != nil {
			return common.ErrorResponseJSON(
				c, common.ErrorToStatusCode(err), "Couldn't update status", err.Error())
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Status updated", nil)
	}
}
