package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/web-source-dev/questionare-server/internal/config"
	"github.com/web-source-dev/questionare-server/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Questions   int       `json:"questions"`
}

// HealthCheck returns a handler reporting liveness and catalog size.
func HealthCheck(cfg config.Config, catalogSize int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Questions:   catalogSize,
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
