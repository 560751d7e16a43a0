// Package usecase manages per-environment key material: creating wrapped
// seed/salt pairs and unwrapping them into an environment crypto context.
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
)

// EnvironmentKeyRepository persists wrapped environment key material.
type EnvironmentKeyRepository interface {
	Create(ctx context.Context, keys *cryptoDomain.EnvironmentKeys) error
	GetByEnvironmentID(ctx context.Context, environmentID uuid.UUID) (*cryptoDomain.EnvironmentKeys, error)
}

// EnvironmentKeyUseCase creates and unwraps environment key material.
type EnvironmentKeyUseCase interface {
	// Create generates and stores a random seed and salt for the environment,
	// both wrapped under the server public key.
	Create(ctx context.Context, environmentID uuid.UUID) (*cryptoDomain.EnvironmentKeys, error)

	// Unwrap returns the environment's salt and derived keypair.
	Unwrap(ctx context.Context, environmentID uuid.UUID) (*cryptoDomain.EnvironmentContext, error)
}
