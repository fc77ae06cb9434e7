package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck returns basic service health
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"service":   "sekoly-go",
		"timestamp": time.Now().UTC(),
	})
}
