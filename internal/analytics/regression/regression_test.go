package regression

import (
	"math"
	"testing"

	"github.com/attendcast/attendcast/internal/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearData returns x = 0.80 + 0.005*i and y = x + 0.005, i.e. the lag
// relation of a linearly increasing attendance series.
func linearData(n int) ([]float64, []float64) {
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = 0.80 + 0.005*float64(i)
		y[i] = x[i] + 0.005
	}
	return x, y
}

func constantData(n int, v float64) ([]float64, []float64) {
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = v
		y[i] = v
	}
	return x, y
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{KindGBMTree, KindOLS, KindRandomForest}, List())

	for _, kind := range List() {
		r, err := New(kind, Params{Seed: 42})
		require.NoError(t, err)
		assert.Equal(t, kind, r.Name())
	}

	_, err := New("svm", Params{})
	assert.Error(t, err)
}

func TestRegressors_PredictBeforeFit(t *testing.T) {
	for _, kind := range List() {
		r, err := New(kind, Params{})
		require.NoError(t, err)

		_, err = r.Predict(0.9)
		assert.ErrorIs(t, err, ErrNotFitted, kind)
	}
}

func TestRegressors_RejectBadTrainingData(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
	}{
		{name: "empty", x: nil, y: nil},
		{name: "length mismatch", x: []float64{1, 2}, y: []float64{1}},
		{name: "nan target", x: []float64{1, 2}, y: []float64{1, math.NaN()}},
		{name: "inf predictor", x: []float64{math.Inf(1), 2}, y: []float64{1, 2}},
	}

	for _, kind := range List() {
		for _, tt := range tests {
			t.Run(kind+"/"+tt.name, func(t *testing.T) {
				r, err := New(kind, Params{Seed: 42})
				require.NoError(t, err)
				err = r.Fit(tt.x, tt.y)
				assert.ErrorIs(t, err, analytics.ErrModelFit)
			})
		}
	}
}

func TestRegressors_ConstantSeries(t *testing.T) {
	x, y := constantData(10, 0.95)

	for _, kind := range List() {
		t.Run(kind, func(t *testing.T) {
			r, err := New(kind, Params{Seed: 42})
			require.NoError(t, err)
			require.NoError(t, r.Fit(x, y))

			p, err := r.Predict(0.95)
			require.NoError(t, err)
			assert.InDelta(t, 0.95, p, 1e-9)
		})
	}
}

func TestOLS_RecoversLine(t *testing.T) {
	x, y := linearData(20)

	m := NewOLS(Params{})
	require.NoError(t, m.Fit(x, y))

	intercept, slope := m.Coefficients()
	assert.InDelta(t, 0.005, intercept, 1e-9)
	assert.InDelta(t, 1.0, slope, 1e-9)
	assert.Equal(t, 2, m.Rank())

	p, err := m.Predict(1.2)
	require.NoError(t, err)
	assert.InDelta(t, 1.205, p, 1e-9)
}

func TestOLS_RankDeficientUsesMinimumNorm(t *testing.T) {
	x, y := constantData(8, 0.95)

	m := NewOLS(Params{})
	require.NoError(t, m.Fit(x, y))
	assert.Equal(t, 1, m.Rank())

	// Minimum-norm solution of b0 + 0.95*b1 = 0.95.
	intercept, slope := m.Coefficients()
	assert.InDelta(t, 0.95/(1+0.95*0.95), intercept, 1e-9)
	assert.InDelta(t, 0.95*0.95/(1+0.95*0.95), slope, 1e-9)
}

func TestOLS_SingleRow(t *testing.T) {
	m := NewOLS(Params{})
	require.NoError(t, m.Fit([]float64{0.9}, []float64{0.92}))

	p, err := m.Predict(0.9)
	require.NoError(t, err)
	assert.InDelta(t, 0.92, p, 1e-9)
}

func TestTrees_StepApproximation(t *testing.T) {
	x, y := linearData(20)

	for _, kind := range []string{KindRandomForest, KindGBMTree} {
		t.Run(kind, func(t *testing.T) {
			r, err := New(kind, Params{Seed: 42})
			require.NoError(t, err)
			require.NoError(t, r.Fit(x, y))

			preds, err := PredictAll(r, x)
			require.NoError(t, err)
			assert.Less(t, MSE(y, preds), 1e-4)

			// Trees are flat beyond the last split.
			far, err := r.Predict(5)
			require.NoError(t, err)
			edge, err := r.Predict(x[len(x)-1])
			require.NoError(t, err)
			assert.Equal(t, edge, far)
			if kind == KindRandomForest {
				assert.LessOrEqual(t, far, y[len(y)-1]+1e-9)
			}
		})
	}
}

func TestTrees_Deterministic(t *testing.T) {
	x, y := linearData(15)

	for _, kind := range []string{KindRandomForest, KindGBMTree} {
		a, _ := New(kind, Params{Seed: 7, Subsample: 0.8})
		b, _ := New(kind, Params{Seed: 7, Subsample: 0.8})
		require.NoError(t, a.Fit(x, y))
		require.NoError(t, b.Fit(x, y))

		pa, _ := a.Predict(0.83)
		pb, _ := b.Predict(0.83)
		assert.Equal(t, pa, pb, kind)
	}
}

func TestRandomForest_SingleRow(t *testing.T) {
	f := NewRandomForest(Params{Seed: 42})
	require.NoError(t, f.Fit([]float64{0.9}, []float64{0.91}))

	p, err := f.Predict(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.91, p, 1e-12)
}

func TestMetrics(t *testing.T) {
	actual := []float64{100, 200, 300}
	predicted := []float64{110, 190, 310}

	assert.Equal(t, 100.0, MSE(actual, predicted))
	assert.Equal(t, 10.0, RMSE(actual, predicted))
	assert.Equal(t, 10.0, MAE(actual, predicted))

	assert.Equal(t, 0.0, MSE(nil, nil))
	assert.Equal(t, 0.0, MAE([]float64{1}, []float64{1, 2}))
}

func TestTrainTestSplit(t *testing.T) {
	t.Run("random split sizes and coverage", func(t *testing.T) {
		train, test, err := TrainTestSplit(23, 0.2, 42, SplitRandom)
		require.NoError(t, err)
		assert.Len(t, test, 5)
		assert.Len(t, train, 18)

		seen := make(map[int]bool)
		for _, i := range append(append([]int{}, train...), test...) {
			assert.False(t, seen[i], "row %d assigned twice", i)
			seen[i] = true
		}
		assert.Len(t, seen, 23)
	})

	t.Run("random split is reproducible", func(t *testing.T) {
		_, a, err := TrainTestSplit(30, 0.2, 42, SplitRandom)
		require.NoError(t, err)
		_, b, err := TrainTestSplit(30, 0.2, 42, SplitRandom)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("chronological split holds out the tail", func(t *testing.T) {
		train, test, err := TrainTestSplit(10, 0.2, 42, SplitChronological)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, train)
		assert.Equal(t, []int{8, 9}, test)
	})

	t.Run("two rows is the minimum", func(t *testing.T) {
		train, test, err := TrainTestSplit(2, 0.2, 42, SplitRandom)
		require.NoError(t, err)
		assert.Len(t, train, 1)
		assert.Len(t, test, 1)

		_, _, err = TrainTestSplit(1, 0.2, 42, SplitRandom)
		assert.ErrorIs(t, err, analytics.ErrInsufficientData)
	})

	t.Run("invalid fraction", func(t *testing.T) {
		_, _, err := TrainTestSplit(10, 1.5, 42, SplitRandom)
		assert.Error(t, err)
	})
}

func TestParseSplitMode(t *testing.T) {
	m, err := ParseSplitMode("")
	require.NoError(t, err)
	assert.Equal(t, SplitRandom, m)

	m, err = ParseSplitMode("chronological")
	require.NoError(t, err)
	assert.Equal(t, SplitChronological, m)

	_, err = ParseSplitMode("kfold")
	assert.Error(t, err)
}

func BenchmarkRandomForestFit(b *testing.B) {
	x, y := linearData(40)
	for i := 0; i < b.N; i++ {
		_ = NewRandomForest(Params{Seed: 42}).Fit(x, y)
	}
}
