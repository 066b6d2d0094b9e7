package handlers

import (
	"github.com/attendcast/attendcast/internal/config"
	"github.com/attendcast/attendcast/internal/datastore"
	"github.com/attendcast/attendcast/internal/logging"
	"github.com/attendcast/attendcast/internal/services"
)

// Version is reported by the health endpoint
var Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	logger          *logging.Logger
	forecastConfig  config.ForecastConfig
	forecastService *services.ForecastService
	sink            datastore.Sink
}

// New creates a new handler instance. sink may be nil, in which case
// results are never persisted.
func New(logger *logging.Logger, forecastConfig config.ForecastConfig, forecastService *services.ForecastService, sink datastore.Sink) *Handler {
	return &Handler{
		logger:          logger,
		forecastConfig:  forecastConfig,
		forecastService: forecastService,
		sink:            sink,
	}
}
