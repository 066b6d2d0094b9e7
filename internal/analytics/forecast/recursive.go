package forecast

import (
	"fmt"
	"time"

	"github.com/attendcast/attendcast/internal/analytics"
)

// Step is one transition of the recursive forecast. Input is the value every
// model was applied to; Blended is the mean of Predictions and becomes the
// Input of the next step.
type Step struct {
	Date        time.Time
	Input       float64
	Predictions []float64 // aligned with the models passed to Forecast
	Blended     float64
}

// Result holds the forecast rows of one school and the steps that produced them
type Result struct {
	Points []ForecastPoint
	Steps  []Step
}

// Forecaster produces multi-step forecasts by feeding the ensemble mean of
// each month's predictions back in as the next month's lag.
type Forecaster struct {
	horizon int
}

// NewForecaster creates a Forecaster. A non-positive horizon defaults to 6.
func NewForecaster(horizon int) *Forecaster {
	if horizon <= 0 {
		horizon = 6
	}
	return &Forecaster{horizon: horizon}
}

// Horizon returns the number of months forecast per school
func (f *Forecaster) Horizon() int {
	return f.horizon
}

// Forecast starts from (lastLag, lastDate) and emits one point per model per
// month for the configured horizon.
func (f *Forecaster) Forecast(models []TrainedModel, lastLag float64, lastDate time.Time) (*Result, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("%w: no fitted models to forecast with", analytics.ErrModelFit)
	}

	result := &Result{
		Points: make([]ForecastPoint, 0, f.horizon*len(models)),
		Steps:  make([]Step, 0, f.horizon),
	}

	input := lastLag
	date := lastDate
	for i := 0; i < f.horizon; i++ {
		next := analytics.NextMonth(date)
		label := analytics.MonthLabel(next)

		step := Step{Date: next, Input: input, Predictions: make([]float64, len(models))}
		sum := 0.0
		for j, m := range models {
			p, err := m.Model.Predict(input)
			if err != nil {
				return nil, fmt.Errorf("%s forecast for %s: %w", m.Kind, label, err)
			}
			step.Predictions[j] = p
			sum += p

			result.Points = append(result.Points, ForecastPoint{
				EntityID:   m.EntityID,
				Date:       label,
				Model:      m.Kind,
				Prediction: p,
				MSE:        m.TestError,
			})
		}

		step.Blended = sum / float64(len(models))
		result.Steps = append(result.Steps, step)

		input = step.Blended
		date = next
	}

	return result, nil
}
