// Package usecase implements the dynamic secret lease engine: provisioning
// through provider adapters, TTL policy, renewal, revocation and the expiry
// sweeper.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
	dynamicService "github.com/allisson/envsecrets/internal/dynamicsecrets/service"
)

// DynamicSecretRepository persists dynamic secret definitions. Get returns
// soft-deleted rows so leases of deleted definitions can still be revoked.
type DynamicSecretRepository interface {
	Create(ctx context.Context, dynamicSecret *dynamicDomain.DynamicSecret) error
	Get(ctx context.Context, dynamicSecretID uuid.UUID) (*dynamicDomain.DynamicSecret, error)
	Delete(ctx context.Context, dynamicSecretID uuid.UUID) error
}

// LeaseRepository persists leases.
type LeaseRepository interface {
	Create(ctx context.Context, lease *dynamicDomain.Lease) error
	Get(ctx context.Context, leaseID uuid.UUID) (*dynamicDomain.Lease, error)
	// GetForUpdate locks the lease row for the surrounding transaction.
	GetForUpdate(ctx context.Context, leaseID uuid.UUID) (*dynamicDomain.Lease, error)
	Update(ctx context.Context, lease *dynamicDomain.Lease) error
	ListByDynamicSecret(
		ctx context.Context,
		dynamicSecretID uuid.UUID,
		offset, limit int,
	) ([]*dynamicDomain.Lease, error)
	// ListExpired returns live leases whose expiry is before now.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*dynamicDomain.Lease, error)
}

// LeaseEventRepository appends lease audit events.
type LeaseEventRepository interface {
	Create(ctx context.Context, event *dynamicDomain.LeaseEvent) error
}

// ProviderCredentialsRepository persists encrypted provider credentials.
type ProviderCredentialsRepository interface {
	Create(ctx context.Context, credentials *dynamicDomain.ProviderCredentials) error
	Get(ctx context.Context, credentialsID uuid.UUID) (*dynamicDomain.ProviderCredentials, error)
}

// Scheduler enqueues delayed lease revocations. Both calls join the
// transaction carried by ctx.
type Scheduler interface {
	Schedule(ctx context.Context, leaseID uuid.UUID, runAt time.Time) (uuid.UUID, error)
	Cancel(ctx context.Context, jobID uuid.UUID) error
}

// AccessChecker decides whether a principal may use an environment. A nil
// principal is always allowed.
type AccessChecker interface {
	CanAccessEnvironment(ctx context.Context, principal *authDomain.Principal, environmentID uuid.UUID) (bool, error)
}

// PlanChecker answers whether the environment's plan includes dynamic secrets.
type PlanChecker interface {
	CanUseDynamicSecrets(ctx context.Context, environmentID uuid.UUID) (bool, error)
}

// ProviderRegistry resolves provider adapters.
type ProviderRegistry interface {
	Get(provider dynamicDomain.Provider) (dynamicService.ProviderAdapter, error)
}

// LeaseUseCase is the lease engine.
type LeaseUseCase interface {
	// Create provisions credentials and persists an ACTIVE lease with its
	// revocation job. The returned values are keyed by output key name.
	Create(ctx context.Context, input *dynamicDomain.CreateLeaseInput) (*dynamicDomain.LeaseCredentials, error)

	// Renew moves the expiry to now+TTL, bounded by createdAt+maxTTL.
	Renew(ctx context.Context, input *dynamicDomain.RenewLeaseInput) (*dynamicDomain.Lease, error)

	// Revoke tears the credentials down and marks the lease terminal.
	// Revoking a terminal lease is a successful no-op.
	Revoke(ctx context.Context, input *dynamicDomain.RevokeLeaseInput) error

	GetCredentials(
		ctx context.Context,
		leaseID uuid.UUID,
		principal *authDomain.Principal,
	) (*dynamicDomain.LeaseCredentials, error)

	Get(ctx context.Context, leaseID uuid.UUID, principal *authDomain.Principal) (*dynamicDomain.Lease, error)

	ListBySecret(
		ctx context.Context,
		dynamicSecretID uuid.UUID,
		offset, limit int,
		principal *authDomain.Principal,
	) ([]*dynamicDomain.Lease, error)

	// SweepExpired revokes up to limit live leases past their expiry and
	// returns how many were revoked.
	SweepExpired(ctx context.Context, limit int) (int, error)
}

// DynamicSecretUseCase manages dynamic secret definitions and provider
// credentials.
type DynamicSecretUseCase interface {
	Create(ctx context.Context, input *dynamicDomain.CreateDynamicSecretInput) (*dynamicDomain.DynamicSecret, error)
	Get(ctx context.Context, dynamicSecretID uuid.UUID) (*dynamicDomain.DynamicSecret, error)
	Delete(ctx context.Context, dynamicSecretID uuid.UUID) error
	CreateProviderCredentials(
		ctx context.Context,
		input *dynamicDomain.CreateProviderCredentialsInput,
	) (*dynamicDomain.ProviderCredentials, error)
}
