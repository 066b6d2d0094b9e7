// Package services runs the forecast pipeline on behalf of the CLI and the
// HTTP handlers. It owns run orchestration, per-school isolation and the
// accumulation of the two output tables.
package services

import "errors"

// Service error codes
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeFeatureConstruction = "FEATURE_CONSTRUCTION"
	CodeSourceFailed        = "SOURCE_FAILED"
	CodeSinkFailed          = "SINK_FAILED"
	CodeCanceled            = "CANCELED"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	cause   error
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error, if any
func (e *ServiceError) Unwrap() error {
	return e.cause
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// WrapServiceError creates a ServiceError whose message is err's message
func WrapServiceError(code string, err error) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: err.Error(),
		cause:   err,
	}
}

// AsServiceError extracts a ServiceError from err's chain
func AsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}
