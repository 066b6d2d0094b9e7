// Package regression implements the single-feature regressors used to model
// monthly attendance: a bagged tree ensemble, a boosted tree ensemble and
// ordinary least squares with an intercept.
package regression

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/attendcast/attendcast/internal/analytics"
)

// Model kind names. These are also the values written to the "model" column
// of the result tables.
const (
	KindRandomForest = "RandomForest"
	KindGBMTree      = "GBMTree"
	KindOLS          = "OLS"
)

// ErrNotFitted is returned by Predict before a successful Fit.
var ErrNotFitted = errors.New("model not fitted")

// Regressor is a model with one predictor and one target.
type Regressor interface {
	// Name returns the model kind
	Name() string
	// Fit trains the model on paired predictor/target values
	Fit(x, y []float64) error
	// Predict returns the model output for one predictor value
	Predict(x float64) (float64, error)
}

// Params holds the hyperparameters shared by the regressors. Zero values are
// replaced by the per-model defaults.
type Params struct {
	NEstimators    int     // Number of trees or boosting rounds
	LearningRate   float64 // Shrinkage for boosting
	MaxDepth       int     // Maximum tree depth, 0 = unlimited
	MinSamplesLeaf int     // Minimum samples per tree leaf
	Subsample      float64 // Row fraction per boosting round (0-1]
	Seed           uint64  // Random seed for bootstrap and subsampling
}

// Factory builds an unfitted regressor from params
type Factory func(p Params) Regressor

var registry = make(map[string]Factory)

// Register adds a regressor factory under a kind name
func Register(kind string, factory Factory) {
	registry[kind] = factory
}

// New returns an unfitted regressor of the given kind
func New(kind string, p Params) (Regressor, error) {
	factory, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("unknown regressor: %s", kind)
	}
	return factory(p), nil
}

// List returns the registered kind names in sorted order
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkTraining rejects training data no regressor can learn from
func checkTraining(x, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("%w: empty training set", analytics.ErrModelFit)
	}
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d predictors for %d targets", analytics.ErrModelFit, len(x), len(y))
	}
	for i := range x {
		if !isFinite(x[i]) || !isFinite(y[i]) {
			return fmt.Errorf("%w: non-finite value at row %d", analytics.ErrModelFit, i)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// newRand returns a deterministic generator for a seed
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
