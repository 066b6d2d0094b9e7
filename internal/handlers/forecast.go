package handlers

import (
	"bytes"
	"strings"

	"github.com/attendcast/attendcast/internal/datastore"
	"github.com/attendcast/attendcast/internal/models"
	"github.com/attendcast/attendcast/internal/services"
	"github.com/gofiber/fiber/v2"
)

// RunForecast handles POST /v1/forecasts
//
// The body is either a JSON ForecastRequest or a CSV attendance table
// (Content-Type: text/csv). With ?persist=true the result is also written
// to the configured sink.
func (h *Handler) RunForecast(c *fiber.Ctx) error {
	var req models.ForecastRequest

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), "text/csv") {
		records, err := datastore.ParseRecordsCSV(bytes.NewReader(c.Body()))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    services.CodeInvalidInput,
					Message: err.Error(),
				},
			})
		}
		req.Records = records
	} else if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    services.CodeInvalidInput,
				Message: "Invalid request body",
			},
		})
	}

	if len(req.Records) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    services.CodeInvalidInput,
				Message: "records is required",
			},
		})
	}

	svc, err := h.serviceFor(&req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    services.CodeInvalidInput,
				Message: err.Error(),
			},
		})
	}

	result, err := svc.Run(c.UserContext(), req.Records)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	resp := models.NewForecastResponse(result)

	if c.QueryBool("persist") {
		if h.sink == nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    services.CodeInvalidInput,
					Message: "no sink configured",
				},
			})
		}
		if err := h.sink.WriteResults(c.UserContext(), result); err != nil {
			return h.handleServiceError(c, services.WrapServiceError(services.CodeSinkFailed, err))
		}
		resp.Persisted = true
	}

	return c.JSON(resp)
}

// serviceFor returns the shared service, or a service built from the
// request's overrides.
func (h *Handler) serviceFor(req *models.ForecastRequest) (*services.ForecastService, error) {
	if !req.HasOverrides() {
		return h.forecastService, nil
	}

	cfg := h.forecastConfig
	if req.Horizon != 0 {
		cfg.Horizon = req.Horizon
	}
	if req.LagPolicy != "" {
		cfg.LagPolicy = req.LagPolicy
	}
	if req.Split != "" {
		cfg.Split = req.Split
	}
	if len(req.Models) > 0 {
		cfg.Models = req.Models
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts, err := services.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return services.NewForecastService(h.logger, opts), nil
}

// handleServiceError maps a service error to an HTTP response
func (h *Handler) handleServiceError(c *fiber.Ctx, err error) error {
	svcErr, ok := services.AsServiceError(err)
	if !ok {
		return err
	}

	status := fiber.StatusInternalServerError
	switch svcErr.Code {
	case services.CodeInvalidInput:
		status = fiber.StatusBadRequest
	case services.CodeFeatureConstruction:
		status = fiber.StatusUnprocessableEntity
	case services.CodeCanceled:
		status = fiber.StatusServiceUnavailable
	case services.CodeSinkFailed, services.CodeSourceFailed:
		status = fiber.StatusBadGateway
	}

	return c.Status(status).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    svcErr.Code,
			Message: svcErr.Message,
			Details: svcErr.Details,
		},
	})
}
