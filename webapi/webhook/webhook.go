// Package webhook exposes the payment-gateway ingress endpoint.
package webhook

import (
	"context"
	"errors"

	"github.com/chaptertools/treasury/pkg/config"
	"github.com/chaptertools/treasury/pkg/domain/ledger"
	websvc "github.com/chaptertools/treasury/pkg/service/webhook"
	"github.com/chaptertools/treasury/webapi/common"
	"github.com/gofiber/fiber/v2"
)

const maxBodyBytes = 65536

// Routes mounts the gateway webhook endpoint.
func Routes(app *fiber.App, svc *websvc.Service, cfg *config.Webhook) {
	app.Post("/webhooks/stripe", Handler(svc, cfg))
}

// Handler processes one signed gateway delivery within the configured time
// budget. Signature failures are permanent rejections; store failures
// answer 500 so the gateway's own retry mechanism re-delivers, which the
// idempotency gate makes safe. Duplicates, ignored event types, orphan
// payloads, and malformed sessions are all acknowledged.
func Handler(svc *websvc.Service, cfg *config.Webhook) fiber.Handler {
	return func(c *fiber.Ctx) error {
		signature := c.Get("Stripe-Signature")
		if signature == "" {
			return common.ErrorResponseJSON(
				c, fiber.StatusBadRequest, "Missing Stripe-Signature header", nil)
		}
		payload := c.Body()
		if len(payload) == 0 || len(payload) > maxBodyBytes {
			return common.ErrorResponseJSON(
				c, fiber.StatusBadRequest, "Invalid payload size", nil)
		}

		ctx, cancel := context.WithTimeout(c.Context(), cfg.Timeout)
		defer cancel()

		result, err := svc.Process(ctx, payload, signature)
		if err != nil {
			if errors.Is(err, ledger.ErrSignatureVerification) {
				return common.ErrorResponseJSON(
					c, fiber.StatusBadRequest, "Signature verification failed", nil)
			}
			// Transient store failure: retryable by the gateway.
			return common.ErrorResponseJSON(
				c, fiber.StatusInternalServerError, "Event processing failed", err.Error())
		}

		return common.SuccessResponseJSON(c, fiber.StatusOK, "acknowledged", fiber.Map{
			"outcome":  result.Outcome,
			"event_id": result.EventID,
		})
	}
}
