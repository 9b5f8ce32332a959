package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/rentnest/rentnest-server/internal/apperr"
)

// fail maps the error taxonomy onto HTTP statuses. Anything unrecognized is a
// 502: a backend fault surfaced as a retryable notice, never a panic.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	case errors.Is(err, apperr.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	case errors.Is(err, apperr.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, apperr.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": apperr.ErrRateLimited.Error()})
	case errors.Is(err, apperr.ErrUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "temporarily unavailable, retry"})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "backend error, retry"})
	}
}
