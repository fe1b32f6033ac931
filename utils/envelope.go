package utils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"tournament-score-system/models"
)

// Fail writes the standard error envelope. Message must be user-safe.
func Fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(models.ErrorEnvelope{
		Error: models.APIError{Code: code, Message: message},
	})
}

// ErrorHandler is installed as the fiber app's central error handler so that
// anything a handler did not map itself still leaves the service as an
// envelope instead of a bare string.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
	}

	code := models.CodeInternalError
	message := "internal server error"
	switch status {
	case fiber.StatusUnauthorized:
		code, message = models.CodeAuthRequired, "authentication required"
	case fiber.StatusForbidden:
		code, message = models.CodeForbidden, "forbidden"
	case fiber.StatusNotFound:
		code, message = models.CodeNotFound, "not found"
	case fiber.StatusBadRequest:
		code, message = models.CodeInvalidFormat, "invalid request"
	}

	if status >= fiber.StatusInternalServerError {
		log.Printf("❌ [HTTP] unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}

	return Fail(c, status, code, message)
}
