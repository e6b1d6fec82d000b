// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// ValidationError values match it with errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when a date or time string is not in the expected layout.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrEmptyContent is returned when required text is empty after trimming.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrTooLong is returned when text exceeds its maximum length.
	ErrTooLong = errors.New("content too long")

	// ErrInvalidTimeRange is returned when a task's end time does not follow its start time.
	ErrInvalidTimeRange = errors.New("end time must be after start time")

	// ErrInvalidCategory is returned when a list category is not one of the known buckets.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidRecurrence is returned when a recurrence type or interval is not valid.
	ErrInvalidRecurrence = errors.New("invalid recurrence")

	// ErrInvalidParent is returned when a subtask relation would nest deeper than one level
	// or cross lists.
	ErrInvalidParent = errors.New("invalid parent task")
)

// ValidationError describes a single field that failed validation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports every ValidationError as ErrValidation, whatever it wraps.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// IsValidationError reports whether err is, or wraps, a validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
