package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/schedule"
	"github.com/phrazzld/artquiz-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers use errors.Is to check for them; the API layer maps them to HTTP
// status codes.
var (
	// ErrQuizNotFound indicates that the quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")

	// ErrNoQuizzes indicates that no scheduled context yielded a quiz page.
	ErrNoQuizzes = errors.New("no available quizzes after multiple attempts")

	// ErrUnknownFilter indicates a context naming an artist, tag or style
	// that does not exist.
	ErrUnknownFilter = errors.New("context filter does not exist")

	// ErrSchedulerUnavailable indicates that the scheduler lock timed out.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrSchedulerUnavailable = errors.New("scheduler unavailable")

	// ErrTagExists indicates that a tag with the requested name already exists.
	// API layer should map this to HTTP 409 Conflict.
	ErrTagExists = errors.New("tag already exists")

	// ErrTagCreateFailed indicates that storing a batch of tags failed.
	ErrTagCreateFailed = errors.New("tag creation failed")
)

// ServiceError wraps unexpected errors from a service with context.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
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

// NewServiceError wraps err with context. Known conditions are translated to
// the service sentinel errors, and validation errors are returned unchanged.
func NewServiceError(service, operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrQuizNotFound),
		errors.Is(err, ErrNoQuizzes),
		errors.Is(err, ErrUnknownFilter),
		errors.Is(err, ErrSchedulerUnavailable),
		errors.Is(err, ErrTagExists),
		errors.Is(err, ErrTagCreateFailed):
		return err
	case errors.Is(err, store.ErrQuizNotFound):
		return ErrQuizNotFound
	case errors.Is(err, schedule.ErrUnavailable):
		return fmt.Errorf("%w: %s", ErrSchedulerUnavailable, operation)
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return err
	}

	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
