package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/luct-report-api/internal/config"
	"github.com/noah-isme/luct-report-api/internal/handler"
	"github.com/noah-isme/luct-report-api/internal/middleware"
	"github.com/noah-isme/luct-report-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	Logger           zerolog.Logger
	DB               *gorm.DB
	ReportHandler    *handler.ReportHandler
	RatingHandler    *handler.RatingHandler
	DashboardHandler *handler.DashboardHandler
	JWTMiddleware    fiber.Handler
	RatingLimiter    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler(deps.Logger))

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	// Public routes must be registered before the authenticated group.
	api.Get("/health", handler.HealthCheck(cfg, deps.DB))
	if deps.RatingHandler != nil {
		deps.RatingHandler.RegisterPublic(api.Group("/ratings"))
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}
	protected := api.Group("", jwtMiddleware)

	if deps.ReportHandler != nil {
		deps.ReportHandler.Register(protected.Group("/reports"))
	}

	if deps.RatingHandler != nil {
		var guards []fiber.Handler
		if deps.RatingLimiter != nil {
			guards = append(guards, deps.RatingLimiter)
		}
		deps.RatingHandler.Register(protected.Group("/ratings"), guards...)
	}

	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(protected)
	}
}
