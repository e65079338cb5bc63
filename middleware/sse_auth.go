package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var errNoSubject = errors.New("token has no user")

// SSEAuthMiddleware validates the `token` query parameter. EventSource cannot
// send headers, so the stream carries a short-lived HS256 JWT whose `sub` (or
// `user_id`) claim names the user.
//
// Usage:
//
//	app.Get("/user/notifications/stream", middleware.SSEAuthMiddleware(secret), svc.StreamUserNotificationsSSE)
func SSEAuthMiddleware(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Query("token"))
		if raw == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing token in query",
			})
		}

		userID, err := ParseStreamToken(raw, secret)
		if err != nil {
			slog.Warn("[SSEAuth] token rejected", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals(LocalUserID, userID)
		return c.Next()
	}
}

// ParseStreamToken verifies raw and returns the user it was issued for.
// Tokens must carry an expiry.
func ParseStreamToken(raw string, secret []byte) (string, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errNoSubject
	}
	if sub, _ := claims.GetSubject(); sub != "" {
		return sub, nil
	}
	if uid, _ := claims["user_id"].(string); uid != "" {
		return uid, nil
	}
	return "", errNoSubject
}
