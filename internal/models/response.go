package models

import (
	"github.com/attendcast/attendcast/internal/analytics/forecast"
	"github.com/attendcast/attendcast/internal/services"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string   `json:"status"`
	Timestamp string   `json:"timestamp"`
	Version   string   `json:"version"`
	Models    []string `json:"models"`  // kinds trained per school
	Horizon   int      `json:"horizon"` // months forecast per school
	Persist   bool     `json:"persist"` // whether ?persist=true has a sink
}

// ModelInfo describes a registered regressor kind
type ModelInfo struct {
	Name    string                 `json:"name"`
	Enabled bool                   `json:"enabled"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// ModelsResponse represents list models response
type ModelsResponse struct {
	Models  []ModelInfo `json:"models"`
	Horizon int         `json:"horizon"`
	Seed    uint64      `json:"seed"`
}

// ForecastResponse represents the output of one forecast run
type ForecastResponse struct {
	RunID         string                   `json:"run_id"`
	Entities      int                      `json:"entities"`
	Errors        []forecast.ErrorRecord   `json:"errors"`
	Forecasts     []forecast.ForecastPoint `json:"forecasts"`
	Skipped       []services.SkippedEntity `json:"skipped"`
	SkippedModels []services.SkippedModel  `json:"skipped_models,omitempty"`
	Persisted     bool                     `json:"persisted"`
	LatencyMs     int64                    `json:"latency_ms"`
}

// NewForecastResponse converts a run result
func NewForecastResponse(res *services.RunResult) ForecastResponse {
	return ForecastResponse{
		RunID:         res.RunID,
		Entities:      res.Entities,
		Errors:        res.Errors,
		Forecasts:     res.Forecasts,
		Skipped:       res.Skipped,
		SkippedModels: res.SkippedModels,
		LatencyMs:     res.Duration.Milliseconds(),
	}
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
