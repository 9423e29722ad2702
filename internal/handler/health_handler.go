package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/learnora/learnora-api/internal/config"
	"github.com/learnora/learnora-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Service     string            `json:"service"`
	Environment string            `json:"environment"`
	Checks      map[string]string `json:"checks,omitempty"`
}

// HealthCheck returns a handler that reports application health and the
// reachability of its backing stores. Nil dependencies are skipped so the
// endpoint stays usable in partial test setups.
func HealthCheck(cfg config.Config, db *gorm.DB, cache *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "ok"
		checks := map[string]string{}

		if db != nil {
			checks["database"] = "ok"
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Context()) != nil {
				checks["database"] = "unreachable"
				status = "degraded"
			}
		}
		if cache != nil {
			checks["redis"] = "ok"
			if err := cache.Ping(c.Context()).Err(); err != nil {
				checks["redis"] = "unreachable"
				status = "degraded"
			}
		}

		payload := HealthResponse{
			Status:      status,
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Checks:      checks,
		}

		message := "service healthy"
		if status != "ok" {
			message = "service degraded"
		}
		return utils.SendSuccess(c, message, payload)
	}
}
