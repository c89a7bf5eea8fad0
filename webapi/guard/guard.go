// Package guard exposes the pre-action rate-limit check consulted by the
// surrounding application's authentication endpoints.
package guard

import (
	"github.com/chaptertools/treasury/pkg/config"
	"github.com/chaptertools/treasury/pkg/ratelimit"
	"github.com/chaptertools/treasury/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// CheckRequest asks whether a client may perform an action class.
type CheckRequest struct {
	Action   string `json:"action" validate:"required,oneof=auth write"`
	ClientID string `json:"client_id" validate:"required,max=255"`
}

// Routes mounts the guard endpoint.
func Routes(app *fiber.App, limiter *ratelimit.Limiter, cfg *config.RateLimit) {
	app.Post("/ratelimit/check", Check(limiter, cfg))
}

// Check consumes one slot of the client's window and answers allow/deny.
// Authentication attempts fail closed on a counter-store outage; that
// policy is part of the rule, not of this handler.
func Check(limiter *ratelimit.Limiter, cfg *config.RateLimit) fiber.Handler {
	rules := map[string]ratelimit.Rule{
		"auth":  ratelimit.RuleFromConfig("auth", cfg.Auth),
		"write": ratelimit.RuleFromConfig("write", cfg.Write),
	}
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CheckRequest](c)
		if input == nil {
			return err
		}
		rule := rules[input.Action]
		allowed := limiter.Allow(c.Context(), rule, input.ClientID)
		return common.SuccessResponseJSON(c, fiber.StatusOK, "checked", fiber.Map{
			"allowed": allowed,
		})
	}
}
