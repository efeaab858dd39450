package utils

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// ValidationError renders a 400. Field errors from ozzo-validation are
// attached under "fields" so clients can highlight inputs.
func ValidationError(c *fiber.Ctx, err error) error {
	var fields validation.Errors
	if errors.As(err, &fields) {
		details := make(fiber.Map, len(fields))
		for name, fieldErr := range fields {
			details[name] = fieldErr.Error()
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "validation failed",
			"fields":  details,
		})
	}
	return Error(c, fiber.StatusBadRequest, err.Error())
}
