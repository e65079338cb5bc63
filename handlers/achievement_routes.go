// handlers/achievement_routes.go
package handlers

import (
	"errors"
	"strings"
	"time"

	"achievement-engine/catalog"
	"achievement-engine/middleware"
	"achievement-engine/models"
	"achievement-engine/services"

	"github.com/gofiber/fiber/v2"
)

// achievementView adds display labels to a catalog entry.
type achievementView struct {
	models.Achievement
	CategoryLabel string `json:"category_label"`
	RarityLabel   string `json:"rarity_label"`
}

func viewOf(a models.Achievement) achievementView {
	return achievementView{
		Achievement:   a,
		CategoryLabel: catalog.CategoryLabel(a.Category),
		RarityLabel:   catalog.RarityLabel(a.Rarity),
	}
}

func viewsOf(as []models.Achievement) []achievementView {
	out := make([]achievementView, 0, len(as))
	for _, a := range as {
		out = append(out, viewOf(a))
	}
	return out
}

type earnedView struct {
	achievementView
	EarnedAt time.Time `json:"earned_at"`
}

func currentUser(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.LocalUserID).(string)
	return id
}

func SetupAchievementRoutes(app *fiber.App, engine *services.Engine) {
	cat := engine.Catalog()

	// Catalog browsing. Gateway auth only; hidden achievements stay out of listings.
	app.Get("/achievements", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"version":      cat.Version(),
			"achievements": viewsOf(cat.Visible()),
		})
	})

	app.Get("/achievements/category/:category", func(c *fiber.Ctx) error {
		category := models.Category(strings.ToLower(c.Params("category")))
		if !category.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown category",
				"cause": string(category),
			})
		}
		var visible []models.Achievement
		for _, a := range cat.ByCategory(category) {
			if !a.Hidden {
				visible = append(visible, a)
			}
		}
		return c.JSON(fiber.Map{
			"category":       category,
			"category_label": catalog.CategoryLabel(category),
			"achievements":   viewsOf(visible),
		})
	})

	// A hidden achievement is only revealed to a caller who has earned it.
	app.Get("/achievements/:id", func(c *fiber.Ctx) error {
		a, err := cat.Lookup(c.Params("id"))
		if errors.Is(err, catalog.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "achievement not found",
				"cause": err.Error(),
			})
		}
		if a.Hidden {
			userID := strings.TrimSpace(c.Get("X-User-ID"))
			if userID == "" {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "achievement not found"})
			}
			earned, err := engine.EarnedAchievements(c.UserContext(), userID)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to load earned achievements",
					"cause": err.Error(),
				})
			}
			revealed := false
			for _, e := range earned {
				if e.Achievement.ID == a.ID {
					revealed = true
					break
				}
			}
			if !revealed {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "achievement not found"})
			}
		}
		return c.JSON(viewOf(a))
	})

	// 🔐 Per-user routes, X-User-ID required
	requireUser := middleware.UserContextMiddleware()
	user := app.Group("/user/achievements")

	user.Post("/check", requireUser, func(c *fiber.Ctx) error {
		awarded := engine.CheckAndAward(c.UserContext(), currentUser(c))
		return c.JSON(fiber.Map{
			"new_achievements": viewsOf(awarded),
			"count":            len(awarded),
		})
	})

	user.Get("/progress", requireUser, func(c *fiber.Ctx) error {
		report, err := engine.ProgressReport(c.UserContext(), currentUser(c))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to build progress report",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"progress": report})
	})

	user.Get("/points", requireUser, func(c *fiber.Ctx) error {
		userID := currentUser(c)
		total, err := engine.Ledger().TotalPoints(c.UserContext(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to compute points",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"user_id": userID, "total_points": total})
	})

	app.Get("/user/achievements", requireUser, func(c *fiber.Ctx) error {
		earned, err := engine.EarnedAchievements(c.UserContext(), currentUser(c))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load earned achievements",
				"cause": err.Error(),
			})
		}
		out := make([]earnedView, 0, len(earned))
		for _, e := range earned {
			out = append(out, earnedView{achievementView: viewOf(e.Achievement), EarnedAt: e.EarnedAt})
		}
		return c.JSON(fiber.Map{"achievements": out, "count": len(out)})
	})
}
