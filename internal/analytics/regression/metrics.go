package regression

import "math"

// MSE calculates Mean Squared Error
func MSE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return sum / float64(len(actual))
}

// RMSE calculates Root Mean Squared Error
func RMSE(actual, predicted []float64) float64 {
	return math.Sqrt(MSE(actual, predicted))
}

// MAE calculates Mean Absolute Error
func MAE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// PredictAll applies a fitted regressor to every predictor value
func PredictAll(r Regressor, x []float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, v := range x {
		p, err := r.Predict(v)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
