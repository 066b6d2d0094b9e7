package handlers

import (
	"time"

	"github.com/attendcast/attendcast/internal/models"
	"github.com/gofiber/fiber/v2"
)

// Health reports liveness together with the forecast setup requests will use
func (h *Handler) Health(c *fiber.Ctx) error {
	opts := h.forecastService.Options().Forecast

	return c.JSON(models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
		Models:    append([]string{}, opts.Kinds...),
		Horizon:   opts.Horizon,
		Persist:   h.sink != nil,
	})
}

// NotFound handles 404 errors
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "NOT_FOUND",
			Message: "Route not found",
			Path:    c.Path(),
		},
	})
}
