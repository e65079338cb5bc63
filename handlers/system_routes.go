// handlers/system_routes.go
package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Paths served without gateway auth.
const (
	HealthPath  = "/healthz"
	MetricsPath = "/metrics"
)

// SetupSystemRoutes mounts the health probe and the prometheus scrape endpoint.
// ping reports whether the database is reachable.
func SetupSystemRoutes(app *fiber.App, gatherer prometheus.Gatherer, ping func(ctx context.Context) error) {
	app.Get(HealthPath, func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"cause":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}
