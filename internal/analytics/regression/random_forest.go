package regression

import (
	"fmt"

	"github.com/attendcast/attendcast/internal/analytics"
)

// RandomForest averages regression trees grown on bootstrap samples of the
// training set.
type RandomForest struct {
	params Params
	trees  []*treeNode
}

// NewRandomForest creates an unfitted forest. Defaults: 100 trees, unlimited
// depth, one sample per leaf.
func NewRandomForest(p Params) *RandomForest {
	if p.NEstimators <= 0 {
		p.NEstimators = 100
	}
	if p.MinSamplesLeaf <= 0 {
		p.MinSamplesLeaf = 1
	}
	return &RandomForest{params: p}
}

func init() {
	Register(KindRandomForest, func(p Params) Regressor { return NewRandomForest(p) })
}

// Name returns the model kind
func (f *RandomForest) Name() string {
	return KindRandomForest
}

// Fit grows NEstimators trees, each on a bootstrap sample drawn from a
// generator seeded with Params.Seed.
func (f *RandomForest) Fit(x, y []float64) error {
	if err := checkTraining(x, y); err != nil {
		return err
	}

	rng := newRand(f.params.Seed)
	cfg := treeConfig{maxDepth: f.params.MaxDepth, minSamplesLeaf: f.params.MinSamplesLeaf}
	trees := make([]*treeNode, f.params.NEstimators)

	for t := range trees {
		sample := make([]int, len(x))
		for i := range sample {
			sample[i] = rng.IntN(len(x))
		}
		trees[t] = buildTree(x, y, sample, 0, cfg)
	}

	f.trees = trees
	return nil
}

// Predict returns the mean prediction of all trees
func (f *RandomForest) Predict(x float64) (float64, error) {
	if len(f.trees) == 0 {
		return 0, fmt.Errorf("%s: %w", KindRandomForest, ErrNotFitted)
	}
	if !isFinite(x) {
		return 0, fmt.Errorf("%w: non-finite input %v", analytics.ErrModelFit, x)
	}

	sum := 0.0
	for _, tree := range f.trees {
		sum += tree.predict(x)
	}
	return sum / float64(len(f.trees)), nil
}
