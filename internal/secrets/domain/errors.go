package domain

import (
	"strings"

	"github.com/allisson/envsecrets/internal/errors"
)

var (
	// ErrSecretNotFound indicates no live secret matches the lookup.
	ErrSecretNotFound = errors.Wrap(errors.ErrNotFound, "secret not found")

	// ErrDuplicateSecret indicates a live secret with the same key digest exists at the path.
	ErrDuplicateSecret = errors.Wrap(errors.ErrConflict, "secret with this key already exists at path")

	// ErrAppNotFound indicates no app matches the lookup.
	ErrAppNotFound = errors.Wrap(errors.ErrNotFound, "app not found")

	// ErrEnvironmentNotFound indicates no environment matches the lookup.
	ErrEnvironmentNotFound = errors.Wrap(errors.ErrNotFound, "environment not found")
)

// SecretReferenceError aggregates every reference that could not be resolved
// during one resolution.
type SecretReferenceError struct {
	Messages []string
}

func (e *SecretReferenceError) Error() string {
	return "unresolved secret references: " + strings.Join(e.Messages, "; ")
}

// Unwrap lets callers match the error kind with errors.Is.
func (e *SecretReferenceError) Unwrap() error {
	return errors.ErrInvalidInput
}
