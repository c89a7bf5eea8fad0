// Package webapi assembles the fiber application serving the treasury
// core's HTTP surface.
package webapi

import (
	"time"

	"github.com/chaptertools/treasury/pkg/config"
	"github.com/chaptertools/treasury/pkg/ratelimit"
	ledgersvc "github.com/chaptertools/treasury/pkg/service/ledger"
	statssvc "github.com/chaptertools/treasury/pkg/service/stats"
	websvc "github.com/chaptertools/treasury/pkg/service/webhook"
	"github.com/chaptertools/treasury/webapi/common"
	"github.com/chaptertools/treasury/webapi/guard"
	"github.com/chaptertools/treasury/webapi/health"
	"github.com/chaptertools/treasury/webapi/ledgerapi"
	"github.com/chaptertools/treasury/webapi/middleware"
	"github.com/chaptertools/treasury/webapi/statsapi"
	"github.com/chaptertools/treasury/webapi/webhook"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config      *config.App
	DB          *gorm.DB
	CachePinger health.CachePinger
	WebhookSvc  *websvc.Service
	LedgerSvc   *ledgersvc.Service
	StatsSvc    *statssvc.Service
	Limiter     *ratelimit.Limiter
}

// NewApp builds the fiber application: coarse per-IP limiting on the whole
// surface, the action-class limiter on write routes, and the webhook,
// statistics, ledger, and health route groups.
func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return common.ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ErrorResponseJSON(
				c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
		},
	}))

	writeRule := ratelimit.RuleFromConfig("write", d.Config.RateLimit.Write)

	webhook.Routes(app, d.WebhookSvc, d.Config.Webhook)
	statsapi.Routes(app, d.StatsSvc)
	ledgerapi.Routes(app, d.LedgerSvc, middleware.RateLimit(d.Limiter, writeRule))
	guard.Routes(app, d.Limiter, d.Config.RateLimit)
	health.Routes(app, d.DB, d.CachePinger)

	return app
}
