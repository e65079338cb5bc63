// handlers/activity_routes.go
package handlers

import (
	"errors"
	"strings"
	"time"

	"achievement-engine/middleware"
	"achievement-engine/models"
	"achievement-engine/services"

	"github.com/gofiber/fiber/v2"
)

type trackEventRequest struct {
	EventType  string          `json:"event_type"`
	EventData  map[string]any  `json:"event_data"`
	SessionID  *string         `json:"session_id"`
	Platform   models.Platform `json:"platform"`
	AppVersion string          `json:"app_version"`
	Timestamp  *time.Time      `json:"timestamp"`
}

type startSessionRequest struct {
	Platform  models.Platform `json:"platform"`
	UserAgent string          `json:"user_agent"`
}

func validPlatform(p models.Platform) bool {
	switch p {
	case "", models.PlatformWeb, models.PlatformIOS, models.PlatformAndroid:
		return true
	}
	return false
}

// SetupActivityRoutes exposes activity tracking. Every write runs an award
// pass for the caller and returns anything newly earned.
func SetupActivityRoutes(app *fiber.App, analytics *services.AnalyticsService, engine *services.Engine) {
	requireUser := middleware.UserContextMiddleware()

	app.Post("/user/events", requireUser, func(c *fiber.Ctx) error {
		var req trackEventRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if !validPlatform(req.Platform) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown platform",
				"cause": string(req.Platform),
			})
		}

		userID := currentUser(c)
		ev := &models.AnalyticsEvent{
			UserID:     userID,
			EventType:  strings.TrimSpace(req.EventType),
			EventData:  req.EventData,
			SessionID:  req.SessionID,
			Platform:   req.Platform,
			AppVersion: req.AppVersion,
		}
		if req.Timestamp != nil {
			ev.OccurredAt = *req.Timestamp
		}

		if err := analytics.TrackEvent(c.UserContext(), ev); err != nil {
			status := fiber.StatusInternalServerError
			if errors.Is(err, services.ErrInvalidEvent) {
				status = fiber.StatusBadRequest
			}
			return c.Status(status).JSON(fiber.Map{
				"error": "failed to track event",
				"cause": err.Error(),
			})
		}

		awarded := engine.CheckAndAward(c.UserContext(), userID)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"event":            ev,
			"new_achievements": viewsOf(awarded),
		})
	})

	app.Post("/user/sessions/start", requireUser, func(c *fiber.Ctx) error {
		var req startSessionRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid JSON",
					"cause": err.Error(),
				})
			}
		}
		if !validPlatform(req.Platform) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown platform",
				"cause": string(req.Platform),
			})
		}
		if req.UserAgent == "" {
			req.UserAgent = c.Get(fiber.HeaderUserAgent)
		}

		userID := currentUser(c)
		sess, err := analytics.StartSession(c.UserContext(), userID, req.Platform, req.UserAgent)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to start session",
				"cause": err.Error(),
			})
		}

		// A new session can extend the login streak.
		awarded := engine.CheckAndAward(c.UserContext(), userID)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"session":          sess,
			"new_achievements": viewsOf(awarded),
		})
	})

	app.Post("/user/sessions/:id/end", requireUser, func(c *fiber.Ctx) error {
		sess, err := analytics.EndSession(c.UserContext(), currentUser(c), c.Params("id"))
		if errors.Is(err, services.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to end session",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"session": sess})
	})
}
