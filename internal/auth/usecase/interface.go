// Package usecase implements service account authentication and the
// environment access checks consulted by secret reads, reference resolution
// and lease creation.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
)

// ServiceAccountRepository persists service accounts.
type ServiceAccountRepository interface {
	Create(ctx context.Context, sa *authDomain.ServiceAccount) error
	Get(ctx context.Context, id uuid.UUID) (*authDomain.ServiceAccount, error)
}

// TokenRepository persists issued token hashes.
type TokenRepository interface {
	Create(ctx context.Context, token *authDomain.Token) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error)
	DeleteExpired(ctx context.Context, before time.Time, dryRun bool) (int64, error)
}

// EnvironmentAccessRepository persists environment grants.
type EnvironmentAccessRepository interface {
	Create(ctx context.Context, access *authDomain.EnvironmentAccess) error
	Exists(
		ctx context.Context,
		principalType authDomain.PrincipalType,
		principalID uuid.UUID,
		environmentID uuid.UUID,
	) (bool, error)
}

// ServiceAccountUseCase manages service accounts.
type ServiceAccountUseCase interface {
	Create(ctx context.Context, organizationID uuid.UUID, name string) (*authDomain.CreateServiceAccountOutput, error)
}

// TokenUseCase issues and authenticates bearer tokens.
type TokenUseCase interface {
	Issue(ctx context.Context, input *authDomain.IssueTokenInput) (*authDomain.IssueTokenOutput, error)
	Authenticate(ctx context.Context, tokenHash string) (*authDomain.Principal, error)

	// CleanupExpired deletes tokens expired for more than days days and
	// returns how many were (or, with dryRun, would be) removed.
	CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error)
}

// AccessUseCase answers and records environment access.
type AccessUseCase interface {
	// CanAccessEnvironment reports whether principal may read environmentID.
	// A nil principal is a system call and is always allowed.
	CanAccessEnvironment(ctx context.Context, principal *authDomain.Principal, environmentID uuid.UUID) (bool, error)

	// Grant records access for a principal on an environment. Granting twice is a no-op.
	Grant(
		ctx context.Context,
		principalType authDomain.PrincipalType,
		principalID uuid.UUID,
		environmentID uuid.UUID,
	) error
}
