package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-grader/internal/config"
	"github.com/noah-isme/gema-grader/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Semantic    bool      `json:"semantic"`
	Classifier  string    `json:"classifier,omitempty"`
	Encoder     string    `json:"encoder,omitempty"`
}

// HealthCheck returns a handler that reports application health and which model providers are wired.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Semantic:    cfg.SemanticEnabled(),
			Classifier:  cfg.ClassifierProvider,
			Encoder:     cfg.EncoderProvider,
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
