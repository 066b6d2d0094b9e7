package services

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/attendcast/attendcast/internal/analytics"
	"github.com/attendcast/attendcast/internal/analytics/features"
	"github.com/attendcast/attendcast/internal/analytics/forecast"
	"github.com/attendcast/attendcast/internal/analytics/regression"
	"github.com/attendcast/attendcast/internal/config"
	"github.com/attendcast/attendcast/internal/logging"
	"github.com/google/uuid"
)

// ForecastOptions configures a ForecastService
type ForecastOptions struct {
	Forecast  forecast.Config
	LagPolicy features.LagPolicy
}

// DefaultForecastOptions returns the default options
func DefaultForecastOptions() ForecastOptions {
	return ForecastOptions{
		Forecast:  forecast.DefaultConfig(),
		LagPolicy: features.LagLenient,
	}
}

// OptionsFromConfig converts the forecast section of the configuration
func OptionsFromConfig(cfg config.ForecastConfig) (ForecastOptions, error) {
	policy, err := features.ParseLagPolicy(cfg.LagPolicy)
	if err != nil {
		return ForecastOptions{}, err
	}

	split, err := regression.ParseSplitMode(cfg.Split)
	if err != nil {
		return ForecastOptions{}, err
	}

	for _, kind := range cfg.Models {
		if _, err := regression.New(kind, regression.Params{}); err != nil {
			return ForecastOptions{}, err
		}
	}

	opts := DefaultForecastOptions()
	opts.LagPolicy = policy
	opts.Forecast.Horizon = cfg.Horizon
	opts.Forecast.TestFraction = cfg.TestFraction
	opts.Forecast.Seed = cfg.Seed
	opts.Forecast.MinRows = cfg.MinRows
	opts.Forecast.Split = split
	opts.Forecast.Kinds = append([]string(nil), cfg.Models...)
	opts.Forecast.Params[regression.KindRandomForest] = ensembleParams(cfg.RandomForest)
	opts.Forecast.Params[regression.KindGBMTree] = ensembleParams(cfg.GBM)

	return opts, nil
}

func ensembleParams(c config.EnsembleConfig) regression.Params {
	return regression.Params{
		NEstimators:    c.NEstimators,
		LearningRate:   c.LearningRate,
		MaxDepth:       c.MaxDepth,
		MinSamplesLeaf: c.MinSamplesLeaf,
		Subsample:      c.Subsample,
	}
}

// RunResult is the output of one forecast run
type RunResult struct {
	RunID         string                   `json:"run_id"`
	Errors        []forecast.ErrorRecord   `json:"errors"`
	Forecasts     []forecast.ForecastPoint `json:"forecasts"`
	Skipped       []SkippedEntity          `json:"skipped"`
	SkippedModels []SkippedModel           `json:"skipped_models,omitempty"`
	Entities      int                      `json:"entities"`
	StartedAt     time.Time                `json:"started_at"`
	Duration      time.Duration            `json:"-"`
}

// ForecastService trains and forecasts every school in a table of monthly
// attendance records.
type ForecastService struct {
	logger     *logging.Logger
	opts       ForecastOptions
	trainer    *forecast.Trainer
	forecaster *forecast.Forecaster
}

// NewForecastService creates a new ForecastService
func NewForecastService(logger *logging.Logger, opts ForecastOptions) *ForecastService {
	return &ForecastService{
		logger:     logger,
		opts:       opts,
		trainer:    forecast.NewTrainer(opts.Forecast),
		forecaster: forecast.NewForecaster(opts.Forecast.Horizon),
	}
}

// Options returns the options the service was created with
func (s *ForecastService) Options() ForecastOptions {
	return s.opts
}

// Run processes every school sequentially. A school that fails is recorded
// in Skipped and the run continues; malformed input fails the whole run.
// Cancellation is only observed between schools.
func (s *ForecastService) Run(ctx context.Context, records []analytics.AttendanceRecord) (*RunResult, error) {
	started := time.Now()
	runID := uuid.New().String()
	ctx = logging.WithRunID(ctx, runID)
	logger := s.logger.WithContext(ctx)

	series, err := features.Build(records, s.opts.LagPolicy)
	if err != nil {
		logger.Error("Feature construction failed", "error", err)
		return nil, WrapServiceError(CodeFeatureConstruction, err)
	}

	logger.Info("Forecast run started",
		"records", len(records),
		"applications", len(series),
		"models", s.opts.Forecast.Kinds,
		"horizon", s.forecaster.Horizon())

	acc := NewAccumulator()
	for _, es := range series {
		if err := ctx.Err(); err != nil {
			logger.Warn("Forecast run canceled", "processed", acc.Entities(), "error", err)
			return nil, &ServiceError{Code: CodeCanceled, Message: err.Error(), cause: err}
		}

		res := s.processEntity(logger, es)
		if res.Err != nil {
			logger.Warn("Application skipped", "application_id", es.EntityID, "error", res.Err)
		}
		for _, f := range res.Failures {
			logger.Warn("Model skipped", "application_id", es.EntityID, "model", f.Kind, "error", f.Err)
		}
		acc.Add(res)
	}

	result := &RunResult{
		RunID:         runID,
		Errors:        acc.Errors(),
		Forecasts:     acc.Forecasts(),
		Skipped:       acc.Skipped(),
		SkippedModels: acc.SkippedModels(),
		Entities:      acc.Entities(),
		StartedAt:     started.UTC(),
		Duration:      time.Since(started),
	}

	logger.Info("Forecast run completed",
		"applications", result.Entities,
		"error_rows", len(result.Errors),
		"forecast_rows", len(result.Forecasts),
		"skipped", len(result.Skipped),
		"latency_ms", result.Duration.Milliseconds())

	return result, nil
}

// processEntity trains and forecasts one school, converting a panic into a
// failed EntityResult.
func (s *ForecastService) processEntity(logger *logging.Logger, series analytics.EntitySeries) (res EntityResult) {
	res.EntityID = series.EntityID

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic while processing application",
				"application_id", series.EntityID,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
			res = EntityResult{EntityID: series.EntityID, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	trained, err := s.trainer.Train(series)
	if err != nil {
		res.Err = err
		return res
	}
	res.Failures = trained.Failures

	out, err := s.forecaster.Forecast(trained.Models, trained.LastLag, trained.LastDate)
	if err != nil {
		res.Err = err
		return res
	}

	res.Errors = trained.Errors
	res.Forecasts = out.Points

	logger.Debug("Application forecast",
		"application_id", series.EntityID,
		"train_rows", trained.TrainRows,
		"test_rows", trained.TestRows,
		"models", len(trained.Models))

	return res
}
