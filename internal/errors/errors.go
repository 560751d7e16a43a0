// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. Domain packages wrap these kinds so handlers
// can map any error to a transport status with errors.Is.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain error kinds shared by all modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key digest).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated principal doesn't have permission.
	ErrForbidden = errors.New("forbidden")

	// ErrGone indicates the resource existed but is no longer usable (e.g., expired lease).
	ErrGone = errors.New("gone")

	// ErrPaymentRequired indicates the feature is not available on the current plan.
	ErrPaymentRequired = errors.New("payment required")

	// ErrBadGateway indicates an upstream provider call failed.
	ErrBadGateway = errors.New("bad gateway")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors, discarding nils.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
