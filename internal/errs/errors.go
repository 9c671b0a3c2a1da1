// Package errs defines the error taxonomy surfaced by the service layer.
// Handlers map these to HTTP status codes; anything else is a server error.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports a rejected input with field-level detail.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// AuthorizationError reports a failed ownership or role check. It carries no
// detail about which check failed so denials don't leak row ownership.
type AuthorizationError struct{}

func (e *AuthorizationError) Error() string {
	return "operation not permitted"
}

// ConflictError reports a write that collided with an existing row, e.g. a
// duplicate rating submission. Surfaced distinctly so clients can offer an
// edit instead.
type ConflictError struct {
	Resource string `json:"resource"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists", e.Resource)
}

// NotFoundError reports a reference to a nonexistent row, checked before any
// write is attempted.
type NotFoundError struct {
	Resource string `json:"resource"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func Authorization() error {
	return &AuthorizationError{}
}

func Conflict(resource string) error {
	return &ConflictError{Resource: resource}
}

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsAuthorization(err error) bool {
	var e *AuthorizationError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}
