package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/learnora/learnora-api/internal/config"
	"github.com/learnora/learnora-api/internal/handler"
	"github.com/learnora/learnora-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SurveyHandler       *handler.SurveyHandler
	LearningPathHandler *handler.LearningPathHandler
	JWTMiddleware       fiber.Handler
	GenerateLimiter     fiber.Handler
	DB                  *gorm.DB
	Redis               *redis.Client
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB, deps.Redis))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.SurveyHandler != nil {
		survey := api.Group("/survey", jwtMiddleware)
		deps.SurveyHandler.Register(survey)
	}

	if deps.LearningPathHandler != nil {
		paths := api.Group("/learning-path", jwtMiddleware)
		if deps.GenerateLimiter != nil {
			deps.LearningPathHandler.Register(paths, deps.GenerateLimiter)
		} else {
			deps.LearningPathHandler.Register(paths)
		}
	}
}
