// Package middleware holds fiber middleware for the treasury API.
package middleware

import (
	"github.com/chaptertools/treasury/pkg/ratelimit"
	"github.com/chaptertools/treasury/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// RateLimit guards a route group with the given action-class rule, keyed
// by client IP. Denials answer 429 with a problem-details body.
func RateLimit(limiter *ratelimit.Limiter, rule ratelimit.Rule) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !limiter.Allow(c.Context(), rule, c.IP()) {
			return common.ErrorResponseJSON(
				c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
		}
		return c.Next()
	}
}
