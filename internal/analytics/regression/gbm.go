package regression

import (
	"fmt"

	"github.com/attendcast/attendcast/internal/analytics"
	"gonum.org/v1/gonum/stat"
)

// GradientBoosting fits shallow regression trees to the residuals of the
// running prediction under squared loss, starting from the target mean.
type GradientBoosting struct {
	params Params
	base   float64
	trees  []*treeNode
}

// NewGradientBoosting creates an unfitted booster. Defaults: 100 rounds,
// learning rate 0.1, depth 3, three samples per leaf, no subsampling.
func NewGradientBoosting(p Params) *GradientBoosting {
	if p.NEstimators <= 0 {
		p.NEstimators = 100
	}
	if p.LearningRate <= 0 {
		p.LearningRate = 0.1
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = 3
	}
	if p.MinSamplesLeaf <= 0 {
		p.MinSamplesLeaf = 3
	}
	if p.Subsample <= 0 || p.Subsample > 1 {
		p.Subsample = 1
	}
	return &GradientBoosting{params: p}
}

func init() {
	Register(KindGBMTree, func(p Params) Regressor { return NewGradientBoosting(p) })
}

// Name returns the model kind
func (g *GradientBoosting) Name() string {
	return KindGBMTree
}

// Fit runs NEstimators boosting rounds
func (g *GradientBoosting) Fit(x, y []float64) error {
	if err := checkTraining(x, y); err != nil {
		return err
	}

	rng := newRand(g.params.Seed)
	cfg := treeConfig{maxDepth: g.params.MaxDepth, minSamplesLeaf: g.params.MinSamplesLeaf}

	base := stat.Mean(y, nil)
	current := make([]float64, len(y))
	for i := range current {
		current[i] = base
	}

	sampleSize := int(g.params.Subsample * float64(len(x)))
	if sampleSize < 1 {
		sampleSize = 1
	}

	residuals := make([]float64, len(y))
	trees := make([]*treeNode, 0, g.params.NEstimators)
	for round := 0; round < g.params.NEstimators; round++ {
		for i := range residuals {
			residuals[i] = y[i] - current[i]
		}

		rows := allRows(len(x))
		if sampleSize < len(x) {
			rows = rng.Perm(len(x))[:sampleSize]
		}

		tree := buildTree(x, residuals, rows, 0, cfg)
		for i := range current {
			current[i] += g.params.LearningRate * tree.predict(x[i])
		}
		trees = append(trees, tree)
	}

	g.base = base
	g.trees = trees
	return nil
}

// Predict returns the base value plus the shrunken sum of all tree outputs
func (g *GradientBoosting) Predict(x float64) (float64, error) {
	if g.trees == nil {
		return 0, fmt.Errorf("%s: %w", KindGBMTree, ErrNotFitted)
	}
	if !isFinite(x) {
		return 0, fmt.Errorf("%w: non-finite input %v", analytics.ErrModelFit, x)
	}

	out := g.base
	for _, tree := range g.trees {
		out += g.params.LearningRate * tree.predict(x)
	}
	return out, nil
}
