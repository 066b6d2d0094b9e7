package regression

import (
	"fmt"

	"github.com/attendcast/attendcast/internal/analytics"
	"gonum.org/v1/gonum/mat"
)

// rankTolerance is the relative singular value cutoff used to decide the
// numerical rank of the design matrix.
const rankTolerance = 1e-10

// OLS is ordinary least squares on the design matrix [1, x]. The intercept
// column is added here, at fit and at predict time, so callers always pass
// the bare predictor.
type OLS struct {
	intercept float64
	slope     float64
	rank      int
	fitted    bool
}

// NewOLS creates an unfitted linear model. OLS has no hyperparameters.
func NewOLS(Params) *OLS {
	return &OLS{}
}

func init() {
	Register(KindOLS, func(p Params) Regressor { return NewOLS(p) })
}

// Name returns the model kind
func (m *OLS) Name() string {
	return KindOLS
}

// Fit solves the least squares problem through an SVD. A rank-deficient
// design (a constant predictor, or a single row) gets the minimum-norm
// solution instead of failing.
func (m *OLS) Fit(x, y []float64) error {
	if err := checkTraining(x, y); err != nil {
		return err
	}

	design := mat.NewDense(len(x), 2, nil)
	for i, v := range x {
		design.Set(i, 0, 1)
		design.Set(i, 1, v)
	}

	var svd mat.SVD
	if ok := svd.Factorize(design, mat.SVDThin); !ok {
		return fmt.Errorf("%w: %s: SVD factorization failed", analytics.ErrModelFit, KindOLS)
	}

	rank := svd.Rank(rankTolerance)
	if rank == 0 {
		return fmt.Errorf("%w: %s: design matrix has rank 0", analytics.ErrModelFit, KindOLS)
	}

	var beta mat.VecDense
	svd.SolveVecTo(&beta, mat.NewVecDense(len(y), append([]float64(nil), y...)), rank)

	intercept, slope := beta.AtVec(0), beta.AtVec(1)
	if !isFinite(intercept) || !isFinite(slope) {
		return fmt.Errorf("%w: %s: non-finite coefficients", analytics.ErrModelFit, KindOLS)
	}

	m.intercept = intercept
	m.slope = slope
	m.rank = rank
	m.fitted = true
	return nil
}

// Predict returns intercept + slope*x
func (m *OLS) Predict(x float64) (float64, error) {
	if !m.fitted {
		return 0, fmt.Errorf("%s: %w", KindOLS, ErrNotFitted)
	}
	if !isFinite(x) {
		return 0, fmt.Errorf("%w: non-finite input %v", analytics.ErrModelFit, x)
	}
	return m.intercept + m.slope*x, nil
}

// Coefficients returns the fitted intercept and slope
func (m *OLS) Coefficients() (intercept, slope float64) {
	return m.intercept, m.slope
}

// Rank returns the numerical rank of the training design matrix
func (m *OLS) Rank() int {
	return m.rank
}
