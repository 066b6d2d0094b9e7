// Package forecast trains the per-school regressors and produces the
// recursive, ensemble-fed monthly attendance forecast.
package forecast

import (
	"github.com/attendcast/attendcast/internal/analytics/regression"
)

// DefaultKinds are the model kinds trained for every school, in output order.
var DefaultKinds = []string{regression.KindRandomForest, regression.KindGBMTree, regression.KindOLS}

// Config holds configuration for training and forecasting
type Config struct {
	Horizon      int                  // Number of months to forecast
	TestFraction float64              // Share of rows held out for evaluation
	Seed         uint64               // Seed for the split and the tree ensembles
	MinRows      int                  // Minimum lagged rows required per school
	Split        regression.SplitMode // random or chronological
	Kinds        []string             // Model kinds to train

	// Per-kind hyperparameters; Seed is overwritten with Config.Seed
	Params map[string]regression.Params
}

// DefaultConfig returns the default forecast configuration
func DefaultConfig() Config {
	return Config{
		Horizon:      6,
		TestFraction: 0.2,
		Seed:         42,
		MinRows:      2,
		Split:        regression.SplitRandom,
		Kinds:        append([]string(nil), DefaultKinds...),
		Params: map[string]regression.Params{
			regression.KindRandomForest: {NEstimators: 100, MinSamplesLeaf: 1},
			regression.KindGBMTree: {
				NEstimators:    100,
				LearningRate:   0.1,
				MaxDepth:       3,
				MinSamplesLeaf: 3,
				Subsample:      1,
			},
			regression.KindOLS: {},
		},
	}
}

// params returns the hyperparameters for a kind with the run seed applied
func (c Config) params(kind string) regression.Params {
	p := c.Params[kind]
	p.Seed = c.Seed
	return p
}

// TrainedModel is one fitted regressor of one school and its held-out error
type TrainedModel struct {
	EntityID  string
	Kind      string
	Model     regression.Regressor
	TestError float64
}

// ErrorRecord is one row of the error table
type ErrorRecord struct {
	EntityID string  `json:"application_id"`
	Model    string  `json:"model"`
	MSE      float64 `json:"mse"`
}

// ForecastPoint is one row of the forecast table
type ForecastPoint struct {
	EntityID   string  `json:"application_id"`
	Date       string  `json:"date"` // YYYY-MM
	Model      string  `json:"model"`
	Prediction float64 `json:"prediction"`
	MSE        float64 `json:"mse"`
}

// ModelFailure records a model kind that was skipped for one school
type ModelFailure struct {
	Kind string
	Err  error
}
