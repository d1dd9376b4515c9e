package errors

import (
	"errors"
	"fmt"
)

// Domain error types for business logic

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")

	// ErrUnavailable indicates a service is unavailable
	ErrUnavailable = errors.New("service unavailable")
)

// Classification-specific errors

var (
	// ErrModelUnavailable indicates no persisted clustering model could be
	// loaded (missing or corrupt artifact). The classifier keeps serving
	// era-fallback results while this condition holds.
	ErrModelUnavailable = errors.New("clustering model unavailable")

	// ErrLookupMiss indicates the model produced a cluster id that is absent
	// from its own cluster-to-label map. This is a persistence defect signal,
	// not routine traffic.
	ErrLookupMiss = errors.New("cluster id missing from label map")

	// ErrInsufficientData indicates the training set is below the minimum
	// sample threshold. The previous model version remains in force.
	ErrInsufficientData = errors.New("training set below minimum size")

	// ErrTrainingInProgress indicates a retrain is already running
	ErrTrainingInProgress = errors.New("training already in progress")
)

// ValidationError represents a feature plausibility violation.
// Records failing validation are routed to the outlier state, never raised
// into the caller's control flow.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
