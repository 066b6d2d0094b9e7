package handlers

import (
	"github.com/attendcast/attendcast/internal/analytics/regression"
	"github.com/attendcast/attendcast/internal/models"
	"github.com/gofiber/fiber/v2"
)

// ListModels handles GET /v1/models
func (h *Handler) ListModels(c *fiber.Ctx) error {
	opts := h.forecastService.Options()

	enabled := make(map[string]bool, len(opts.Forecast.Kinds))
	for _, kind := range opts.Forecast.Kinds {
		enabled[kind] = true
	}

	kinds := regression.List()
	infos := make([]models.ModelInfo, 0, len(kinds))
	for _, kind := range kinds {
		info := models.ModelInfo{Name: kind, Enabled: enabled[kind]}
		if p, ok := opts.Forecast.Params[kind]; ok && p != (regression.Params{}) {
			info.Params = map[string]interface{}{
				"n_estimators":     p.NEstimators,
				"learning_rate":    p.LearningRate,
				"max_depth":        p.MaxDepth,
				"min_samples_leaf": p.MinSamplesLeaf,
				"subsample":        p.Subsample,
			}
		}
		infos = append(infos, info)
	}

	return c.JSON(models.ModelsResponse{
		Models:  infos,
		Horizon: opts.Forecast.Horizon,
		Seed:    opts.Forecast.Seed,
	})
}
