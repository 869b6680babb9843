package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/web-source-dev/questionare-server/internal/config"
	"github.com/web-source-dev/questionare-server/internal/handler"
	"github.com/web-source-dev/questionare-server/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SubmissionHandler *handler.SubmissionHandler
	CatalogSize       int
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	api.Get("/health", handler.HealthCheck(cfg, deps.CatalogSize))

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api)
	}

	app.Get("/metrics", observability.MetricsHandler())
}
