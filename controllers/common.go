package controllers

import (
	"errors"
	"strconv"

	"sekoly_go/services"

	"github.com/gofiber/fiber/v2"
)

// parseID reads a numeric path parameter
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// parseQueryID reads a required numeric query parameter
func parseQueryID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" is required")
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// serviceError maps a domain error to the HTTP response for it. Unknown errors
// become a 500 without leaking internals.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Record not found"})
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidMonth),
		errors.Is(err, services.ErrInvalidDateRange):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicateObligation),
		errors.Is(err, services.ErrDuplicateEnrollment):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrPaymentIncomplete),
		errors.Is(err, services.ErrCapacityExceeded),
		errors.Is(err, services.ErrDeletionBlocked):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
