// Package health exposes the service health endpoint.
package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CachePinger reports cache-store connectivity.
type CachePinger interface {
	Ping(ctx context.Context) error
}

type check struct {
	Status    string  `json:"status"`
	LatencyMs float64 `json:"latency_ms,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// Routes mounts the health endpoint. A cache outage degrades statistics
// reads but does not make the service unhealthy; only a ledger-store
// failure answers 503.
func Routes(app *fiber.App, db *gorm.DB, cache CachePinger) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		checks := fiber.Map{}
		healthy := true

		start := time.Now()
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Context())
		}
		if err != nil {
			healthy = false
			checks["database"] = check{Status: "down", Error: err.Error()}
		} else {
			checks["database"] = check{
				Status:    "up",
				LatencyMs: float64(time.Since(start).Microseconds()) / 1000,
			}
		}

		if cache != nil {
			start = time.Now()
			if err := cache.Ping(c.Context()); err != nil {
				checks["cache"] = check{Status: "down", Error: err.Error()}
			} else {
				checks["cache"] = check{
					Status:    "up",
					LatencyMs: float64(time.Since(start).Microseconds()) / 1000,
				}
			}
		}

		status := fiber.StatusOK
		state := "healthy"
		if !healthy {
			status = fiber.StatusServiceUnavailable
			state = "unhealthy"
		}
		return c.Status(status).JSON(fiber.Map{
			"status":    state,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"checks":    checks,
		})
	})
}
