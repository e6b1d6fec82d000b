package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/todo-core/internal/domain"
	"github.com/phrazzld/todo-core/internal/store"
)

// Sentinel errors returned by the services. Callers check them with errors.Is.
var (
	// ErrTaskNotFound indicates that the task does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrListNotFound indicates that the list does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrListNotFound = errors.New("list not found")
)

// ServiceError wraps a storage failure with the operation that hit it.
type ServiceError struct {
	// Service is the service that failed (task or list).
	Service string
	// Operation is the operation that failed (e.g., "create_task").
	Operation string
	// Message is a human-readable description of the error.
	Message string
	// Err is the underlying error that caused the failure.
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// newServiceError maps store not-found sentinels to the service ones and
// wraps everything else in a ServiceError. Validation errors pass through.
func newServiceError(service, operation, message string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrValidation):
		return err
	case errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, store.ErrListNotFound):
		return ErrListNotFound
	}

	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// missingTask is the validation error for an operation that names a task
// which does not exist.
func missingTask(field string, id int64) error {
	return domain.NewValidationError(field, fmt.Sprintf("task %d does not exist", id), ErrTaskNotFound)
}

// missingList is the validation error for an operation that names a list
// which does not exist.
func missingList(field string, id int64) error {
	return domain.NewValidationError(field, fmt.Sprintf("list %d does not exist", id), ErrListNotFound)
}
