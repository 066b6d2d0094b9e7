package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/attendcast/attendcast/internal/analytics"
	"github.com/attendcast/attendcast/internal/analytics/regression"
)

// TrainingResult is everything the forecaster needs from one school's training
type TrainingResult struct {
	EntityID  string
	Models    []TrainedModel
	Errors    []ErrorRecord
	Failures  []ModelFailure
	LastLag   float64   // Lag1 of the chronologically last record
	LastDate  time.Time // Month of the chronologically last record
	TrainRows int
	TestRows  int
}

// Trainer splits a school's series, fits every configured model kind on
// the training rows and measures its MSE on the held-out rows.
type Trainer struct {
	cfg Config
}

// NewTrainer creates a Trainer
func NewTrainer(cfg Config) *Trainer {
	return &Trainer{cfg: cfg}
}

// Train fits the models of one school. It fails with ErrInsufficientData
// when the series is too short to split, and with ErrModelFit when no model
// kind could be fitted. A single failing kind is reported in Failures.
func (t *Trainer) Train(series analytics.EntitySeries) (*TrainingResult, error) {
	minRows := t.cfg.MinRows
	if minRows < 2 {
		minRows = 2
	}
	if series.Len() < minRows {
		return nil, fmt.Errorf("%w: application %s has %d lagged rows, need %d",
			analytics.ErrInsufficientData, series.EntityID, series.Len(), minRows)
	}

	trainIdx, testIdx, err := regression.TrainTestSplit(series.Len(), t.cfg.TestFraction, t.cfg.Seed, t.cfg.Split)
	if err != nil {
		return nil, fmt.Errorf("application %s: %w", series.EntityID, err)
	}

	lags, values := series.Lags(), series.Values()
	xTrain, yTrain := pick(lags, trainIdx), pick(values, trainIdx)
	xTest, yTest := pick(lags, testIdx), pick(values, testIdx)

	last := series.Last()
	result := &TrainingResult{
		EntityID:  series.EntityID,
		LastLag:   last.Lag1,
		LastDate:  last.Date,
		TrainRows: len(trainIdx),
		TestRows:  len(testIdx),
	}

	for _, kind := range t.cfg.Kinds {
		model, testErr, err := t.fit(kind, xTrain, yTrain, xTest, yTest)
		if err != nil {
			result.Failures = append(result.Failures, ModelFailure{Kind: kind, Err: err})
			continue
		}

		result.Models = append(result.Models, TrainedModel{
			EntityID:  series.EntityID,
			Kind:      kind,
			Model:     model,
			TestError: testErr,
		})
		result.Errors = append(result.Errors, ErrorRecord{
			EntityID: series.EntityID,
			Model:    kind,
			MSE:      testErr,
		})
	}

	if len(result.Models) == 0 {
		errs := make([]error, 0, len(result.Failures))
		for _, f := range result.Failures {
			errs = append(errs, f.Err)
		}
		return nil, fmt.Errorf("%w: application %s: no model could be fitted: %w",
			analytics.ErrModelFit, series.EntityID, errors.Join(errs...))
	}

	return result, nil
}

// fit trains one model kind and evaluates it on the test rows
func (t *Trainer) fit(kind string, xTrain, yTrain, xTest, yTest []float64) (regression.Regressor, float64, error) {
	model, err := regression.New(kind, t.cfg.params(kind))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", analytics.ErrModelFit, err)
	}

	if err := model.Fit(xTrain, yTrain); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", kind, err)
	}

	predicted, err := regression.PredictAll(model, xTest)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", analytics.ErrModelFit, kind, err)
	}

	return model, regression.MSE(yTest, predicted), nil
}

func pick(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
