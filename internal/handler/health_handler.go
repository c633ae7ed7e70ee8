package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/twistedwarden/esmv2-sub001/internal/config"
	"github.com/twistedwarden/esmv2-sub001/internal/utils"
)

var startedAt = time.Now().UTC()

// HealthResponse is the payload of the liveness endpoint.
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Service       string    `json:"service"`
	Environment   string    `json:"environment"`
	UptimeSeconds float64   `json:"uptime_seconds"`
}

// HealthCheck reports liveness. It touches no dependencies so a degraded
// database or directory never fails the probe.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now().UTC()
		payload := HealthResponse{
			Status:        "ok",
			Timestamp:     now,
			Service:       cfg.AppName,
			Environment:   cfg.AppEnv,
			UptimeSeconds: now.Sub(startedAt).Seconds(),
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
