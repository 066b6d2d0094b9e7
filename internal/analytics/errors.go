package analytics

import "errors"

var (
	// ErrInsufficientData means an entity has too few lagged rows to split
	// into train and test partitions. The entity is skipped.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrModelFit means a single regressor could not be fitted. Only that
	// model kind is skipped for the entity.
	ErrModelFit = errors.New("model fit failed")

	// ErrFeatureConstruction means the input table is malformed. It aborts the run.
	ErrFeatureConstruction = errors.New("feature construction failed")
)
