// handlers/notification_routes.go
package handlers

import (
	"achievement-engine/middleware"
	"achievement-engine/services"

	"github.com/gofiber/fiber/v2"
)

// SetupNotificationRoutes mounts the in-app inbox. The stream authenticates
// with a query token instead of gateway headers because EventSource cannot
// set them.
func SetupNotificationRoutes(app *fiber.App, notifications *services.NotificationService, streamSecret []byte) {
	requireUser := middleware.UserContextMiddleware()

	app.Get("/user/notifications/stream", middleware.SSEAuthMiddleware(streamSecret), notifications.StreamUserNotificationsSSE)

	app.Get("/user/notifications", requireUser, notifications.GetUserNotifications)
	app.Patch("/user/notifications/read-all", requireUser, notifications.MarkAllNotificationsRead)
	app.Patch("/user/notifications/:id/read", requireUser, notifications.MarkNotificationRead)
}
