package types

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// StatusError is an error with an associated HTTP status code. Handlers
// only ever inspect the status, never the concrete kind.
type StatusError interface {
	error
	Status() int
}

// NotFoundError marks a missing project or document.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Status() int { return http.StatusNotFound }

// NewNotFound builds a NotFoundError for the named entity.
func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError marks a rejected request: disallowed mime type, oversize
// file or missing required field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Status() int { return http.StatusBadRequest }

// NewValidation builds a ValidationError from a format string.
func NewValidation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StorageError wraps a backend I/O or network failure. The original cause
// is preserved for logs and never surfaced to clients.
type StorageError struct {
	Message string
	Cause   error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StorageError) Unwrap() error { return e.Cause }

func (e *StorageError) Status() int { return http.StatusInternalServerError }

// NewStorage wraps a backend failure with a human readable prefix.
func NewStorage(cause error, format string, args ...interface{}) error {
	return &StorageError{Message: fmt.Sprintf(format, args...), Cause: errors.WithStack(cause)}
}

// AuthError marks a missing, invalid, expired or mismatched capability
// token. Forbidden distinguishes 403 from 401.
type AuthError struct {
	Message   string
	Forbidden bool
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Status() int {
	if e.Forbidden {
		return http.StatusForbidden
	}
	return http.StatusUnauthorized
}

// IsNotFound reports whether any error in the chain is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return stderrors.As(err, &nf)
}

// StatusFor maps an error chain to an HTTP status code, defaulting to 500.
func StatusFor(err error) int {
	var se StatusError
	if stderrors.As(err, &se) {
		return se.Status()
	}
	return http.StatusInternalServerError
}
