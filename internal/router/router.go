package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-grader/internal/config"
	"github.com/noah-isme/gema-grader/internal/handler"
	"github.com/noah-isme/gema-grader/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	GradingHandler *handler.GradingHandler
	JWTMiddleware  fiber.Handler
	RoleGuard      fiber.Handler
	RateLimiter    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.GradingHandler == nil {
		return
	}

	// Grading routes are open unless a JWT middleware is supplied
	handlers := make([]fiber.Handler, 0, 3)
	if deps.JWTMiddleware != nil {
		handlers = append(handlers, deps.JWTMiddleware)
		if deps.RoleGuard != nil {
			handlers = append(handlers, deps.RoleGuard)
		}
	}
	if deps.RateLimiter != nil {
		handlers = append(handlers, deps.RateLimiter)
	}

	grade := api.Group("/grade", handlers...)
	deps.GradingHandler.Register(grade)
}
