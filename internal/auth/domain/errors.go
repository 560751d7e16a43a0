package domain

import (
	"github.com/allisson/envsecrets/internal/errors"
)

// Authentication and authorization errors.
var (
	// ErrServiceAccountNotFound indicates a service account with the specified ID was not found.
	ErrServiceAccountNotFound = errors.Wrap(errors.ErrNotFound, "service account not found")

	// ErrTokenNotFound indicates a token with the specified hash was not found.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrInvalidCredentials covers unknown accounts, wrong secrets and bad tokens alike.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrServiceAccountInactive indicates the account exists but is disabled.
	ErrServiceAccountInactive = errors.Wrap(errors.ErrForbidden, "service account is inactive")

	// ErrEnvironmentAccessDenied indicates the principal has no grant on the environment.
	ErrEnvironmentAccessDenied = errors.Wrap(errors.ErrForbidden, "environment access denied")

	// ErrInvalidPrincipalType indicates an unknown principal type.
	ErrInvalidPrincipalType = errors.Wrap(errors.ErrInvalidInput, "invalid principal type")

	ErrInvalidCleanupDays = errors.Wrap(errors.ErrInvalidInput, "days must not be negative")
)
