// Package statsapi exposes the cache-backed statistics reads consumed by
// dashboards and reports.
package statsapi

import (
	"strconv"

	statssvc "github.com/chaptertools/treasury/pkg/service/stats"
	"github.com/chaptertools/treasury/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Routes mounts the statistics read endpoints.
func Routes(app *fiber.App, svc *statssvc.Service) {
	g := app.Group("/stats")
	g.Get("/total", TotalCollected(svc))
	g.Get("/donations", DonationsTotal(svc))
	g.Get("/unpaid", UnpaidRoster(svc))
	g.Get("/types", TypeSummary(svc))
	g.Get("/methods", MethodSummary(svc))
	g.Get("/trend", MonthlyTrend(svc))
	g.Get("/members/:id", MemberSummary(svc))
	g.Post("/flush", Flush(svc))
}

// TotalCollected returns the ledger-wide payment total.
func TotalCollected(svc *statssvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		total, err := svc.TotalCollected(c.Context())
		if err != nil {
			return common.ErrorResponseJSON(
				c, common.ErrorToStatusCode(err), "Couldn't compute total", err.Error())
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Total collected", fiber.Map{
			"total": total,
		})
	}
}

// DonationsTotal returns the donation total.
func DonationsTotal(svc *statssvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		total, err := svc.DonationsTotal(c.Context())
		if err != nil {
			return common.ErrorResponseJSON(
				c, common.ErrorToStatusCode(err), "Couldn't compute donations", err.Error())
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Donations total", fiber.Map{
			"total": total,
		})
	}
}

// UnpaidRoster returns members behind on dues.
func UnpaidRoster(svc *statssvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		members, err := svc.UnpaidRoster(c.Context())
		if err != nil {
			return common.ErrorResponseJSON(
				c, common.ErrorToStatusCode(err), "Couldn't list unpaid members", err.Error())
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Unpaid members", members)
	}
}

// TypeSummary returns payment counts by type.
func TypeSummary(svc *statssvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := svc.TypeSummary(c.Context())
		if err != nil {
			return common.ErrorResponseJSON(
				c, common.ErrorToStatusCode(err), "Couldn't summarize types", err.Error())
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Payment types", summary)
	}
}

// MethodSummary returns payment counts by method.
func MethodSummary(svc *statssvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := svc.MethodSummary(c.Context())
		if err != nil {
			return common.ErrorResponseJSON(
				c, common.ErrorToStatusCode(err), "Couldn't summarize methods", err.Error())
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Payment methods", summary)
	}
}

// MonthlyTrend returns monthly payment totals for the trailing window.
func MonthlyTrend(svc *statssvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		months, _ := strconv.Atoi(c.Query("months", "6"))
		rows, err := svc.MonthlyTrend(c.Context(), months)
		if err != nil {
			return common.ErrorResponseJSON(
				c, common.ErrorToStatusCode(err), "Couldn't compute trend", err.Error())
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Monthly trend", rows)
	}
}

// MemberSummary returns one member's financial standing with plan progress.
func MemberSummary(svc *statssvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid member ID", err.Error())
		}
		summary, progress, err := svc.MemberSummary(c.Context(), id)
		if err != nil {
			return common.ErrorResponseJSON(
				c, common.ErrorToStatusCode(err), "Couldn't summarize member", err.Error())
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Member summary", fiber.Map{
			"summary":  summary,
			"progress": progress,
		})
	}
}

// Flush drops the whole statistics cache. Operational escape hatch.
func Flush(svc *statssvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Flush(c.Context()); err != nil {
			return common.ErrorResponseJSON(
				c, fiber.StatusInternalServerError, "Couldn't flush cache", err.Error())
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Cache flushed", nil)
	}
}
