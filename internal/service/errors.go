package service

import (
	"errors"
	"fmt"
)

// ErrIDMismatch indicates that the id in a request path and the id in its
// body refer to different resources.
var ErrIDMismatch = errors.New("resource id does not match request path")

// ServiceError records which operation failed while keeping the cause
// reachable through errors.Is and errors.As.
type ServiceError struct {
	Service   string
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service %s failed: %v", e.Service, e.Operation, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newServiceError(service, operation string, err error) *ServiceError {
	return &ServiceError{Service: service, Operation: operation, Err: err}
}
