// Package usecase implements secret storage over envelope encryption and the
// ${...} reference resolver used on every server-side read.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	secretsDomain "github.com/allisson/envsecrets/internal/secrets/domain"
)

// SecretRepository persists encrypted secrets.
type SecretRepository interface {
	Create(ctx context.Context, secret *secretsDomain.Secret) error
	Update(ctx context.Context, secret *secretsDomain.Secret) error
	Delete(ctx context.Context, secretID uuid.UUID) error
	Get(ctx context.Context, secretID uuid.UUID) (*secretsDomain.Secret, error)
	GetByDigest(
		ctx context.Context,
		environmentID uuid.UUID,
		path, keyDigest string,
	) (*secretsDomain.Secret, error)
	ListByPath(ctx context.Context, environmentID uuid.UUID, path string) ([]*secretsDomain.Secret, error)
}

// AppRepository looks up apps.
type AppRepository interface {
	Get(ctx context.Context, appID uuid.UUID) (*secretsDomain.App, error)
	GetByName(ctx context.Context, organizationID uuid.UUID, name string) (*secretsDomain.App, error)
}

// EnvironmentRepository looks up environments.
type EnvironmentRepository interface {
	Get(ctx context.Context, environmentID uuid.UUID) (*secretsDomain.Environment, error)
	GetByName(ctx context.Context, appID uuid.UUID, name string) (*secretsDomain.Environment, error)
}

// AccessChecker decides whether a principal may read an environment. A nil
// principal is always allowed.
type AccessChecker interface {
	CanAccessEnvironment(ctx context.Context, principal *authDomain.Principal, environmentID uuid.UUID) (bool, error)
}

// ReferenceResolver substitutes ${...} placeholders in a decrypted value.
type ReferenceResolver interface {
	Resolve(
		ctx context.Context,
		environmentID uuid.UUID,
		value string,
		opts secretsDomain.ResolveOptions,
	) (string, error)
}

// SecretUseCase is the read/write boundary for environment secrets.
type SecretUseCase interface {
	Create(ctx context.Context, input *secretsDomain.CreateSecretInput) (*secretsDomain.DecryptedSecret, error)
	Update(ctx context.Context, input *secretsDomain.UpdateSecretInput) (*secretsDomain.DecryptedSecret, error)
	Delete(ctx context.Context, secretID uuid.UUID) error
	// Get returns one secret with its value resolved.
	Get(
		ctx context.Context,
		environmentID uuid.UUID,
		path, keyName string,
		opts secretsDomain.ResolveOptions,
	) (*secretsDomain.DecryptedSecret, error)
	// List returns every live secret directly under path, decrypted and resolved.
	List(
		ctx context.Context,
		environmentID uuid.UUID,
		path string,
		opts secretsDomain.ResolveOptions,
	) ([]*secretsDomain.DecryptedSecret, error)
}
