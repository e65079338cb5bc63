// handlers/admin_routes.go
package handlers

import (
	"context"
	"errors"
	"strings"

	"achievement-engine/middleware"
	"achievement-engine/services"
	"achievement-engine/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Sweeper re-evaluates sweep candidates on demand.
type Sweeper interface {
	Sweep(ctx context.Context) (workers.SweepResult, error)
}

type grantRequest struct {
	UserID  string `json:"user_id"`
	GrantID string `json:"grant_id"`
	Points  int    `json:"points"`
	Reason  string `json:"reason"`
}

func SetupAdminRoutes(app *fiber.App, engine *services.Engine, sweeper Sweeper) {
	adminGroup := app.Group("/admin", middleware.UserContextMiddleware(), middleware.RequireRole(middleware.RoleAdmin))

	// Grants are idempotent per grant_id; one is generated when omitted.
	adminGroup.Post("/points/grant", func(c *fiber.Ctx) error {
		var req grantRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if strings.TrimSpace(req.GrantID) == "" {
			req.GrantID = uuid.NewString()
		}
		if len(req.Reason) > 255 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "reason must be at most 255 characters"})
		}

		applied, err := engine.Ledger().GrantPoints(c.UserContext(), req.UserID, req.GrantID, req.Points, req.Reason)
		if errors.Is(err, services.ErrInvalidGrant) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid grant",
				"cause": err.Error(),
			})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "point grant failed",
				"cause": err.Error(),
			})
		}

		// Bonus points can push the user over a points threshold.
		awarded := engine.CheckAndAward(c.UserContext(), req.UserID)

		status := fiber.StatusOK
		if applied {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(fiber.Map{
			"user_id":          req.UserID,
			"grant_id":         req.GrantID,
			"points":           req.Points,
			"applied":          applied,
			"new_achievements": viewsOf(awarded),
		})
	})

	adminGroup.Post("/achievements/sweep", func(c *fiber.Ctx) error {
		res, err := sweeper.Sweep(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "sweep failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(res)
	})

	adminGroup.Post("/users/:id/achievements/check", func(c *fiber.Ctx) error {
		awarded := engine.CheckAndAward(c.UserContext(), c.Params("id"))
		return c.JSON(fiber.Map{
			"user_id":          c.Params("id"),
			"new_achievements": viewsOf(awarded),
			"count":            len(awarded),
		})
	})
}
