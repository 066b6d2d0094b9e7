package middleware

import (
	"errors"

	"github.com/attendcast/attendcast/internal/logging"
	"github.com/attendcast/attendcast/internal/models"
	"github.com/attendcast/attendcast/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler returns the fiber error handler. Service errors keep their
// code; fiber errors keep their status and message; anything else is a 500.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		detail := models.ErrorDetail{
			Code:    "ERROR",
			Message: "Internal Server Error",
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			detail.Message = fiberErr.Message
		} else if svcErr, ok := services.AsServiceError(err); ok {
			detail.Code = svcErr.Code
			detail.Message = svcErr.Message
			detail.Details = svcErr.Details
		}

		logger.WithContext(c.UserContext()).Error("Request error",
			"path", c.Path(),
			"method", c.Method(),
			"status", code,
			"error", err,
		)

		return c.Status(code).JSON(models.ErrorResponse{Error: detail})
	}
}
