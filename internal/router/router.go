package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/activity-report-api/internal/config"
	"github.com/noah-isme/activity-report-api/internal/handler"
	"github.com/noah-isme/activity-report-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ReportHandler   *handler.ReportHandler
	ExportHandler   *handler.ExportHandler
	TemplateHandler *handler.TemplateHandler
	HealthProbes    []handler.HealthProbe
	JWTMiddleware   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	v1 := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	v1.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes...))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	api := app.Group("/api")

	if deps.ReportHandler != nil {
		deps.ReportHandler.Register(api.Group("/reports", jwtMiddleware))
	}

	if deps.ExportHandler != nil {
		deps.ExportHandler.Register(api.Group("/exports", jwtMiddleware))
	}

	if deps.TemplateHandler != nil {
		deps.TemplateHandler.Register(api.Group("/templates", jwtMiddleware))
	}
}
