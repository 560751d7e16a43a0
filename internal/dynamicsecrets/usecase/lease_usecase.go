package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	"github.com/allisson/envsecrets/internal/config"
	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
	cryptoService "github.com/allisson/envsecrets/internal/crypto/service"
	cryptoUseCase "github.com/allisson/envsecrets/internal/crypto/usecase"
	"github.com/allisson/envsecrets/internal/database"
	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
	dynamicService "github.com/allisson/envsecrets/internal/dynamicsecrets/service"
	"github.com/allisson/envsecrets/internal/errors"
)

type leaseUseCase struct {
	mode          config.DeploymentMode
	serverKeyPair *cryptoDomain.KeyPair
	registry      ProviderRegistry
	envKeys       cryptoUseCase.EnvironmentKeyUseCase
	txManager     database.TxManager
	secretRepo    DynamicSecretRepository
	leaseRepo     LeaseRepository
	eventRepo     LeaseEventRepository
	credsRepo     ProviderCredentialsRepository
	scheduler     Scheduler
	access        AccessChecker
	plan          PlanChecker
	logger        *slog.Logger
	now           func() time.Time
}

// Create provisions credentials for a new lease. Once the provider has
// created anything, any later failure cleans it up and records a
// create_failed event before the original error is returned.
func (l *leaseUseCase) Create(
	ctx context.Context,
	input *dynamicDomain.CreateLeaseInput,
) (*dynamicDomain.LeaseCredentials, error) {
	dynamicSecret, err := l.secretRepo.Get(ctx, input.DynamicSecretID)
	if err != nil {
		return nil, err
	}
	if dynamicSecret.DeletedAt != nil {
		return nil, dynamicDomain.ErrDynamicSecretNotFound
	}

	if err := l.checkPlan(ctx, dynamicSecret.EnvironmentID); err != nil {
		return nil, err
	}
	if err := l.checkAccess(ctx, input.Request.Principal, dynamicSecret.EnvironmentID); err != nil {
		return nil, err
	}

	ttl, err := dynamicSecret.ResolveTTL(input.TTL)
	if err != nil {
		return nil, err
	}

	now := l.now()
	lease := &dynamicDomain.Lease{
		ID:              uuid.Must(uuid.NewV7()),
		DynamicSecretID: dynamicSecret.ID,
		Name:            input.Name,
		TTL:             ttl,
		ExpiresAt:       now.Add(ttl),
		Status:          dynamicDomain.LeaseActive,
		Credentials:     make(map[string]string, len(dynamicSecret.KeyMap)),
		CreatedAt:       now,
	}
	if err := lease.SetHolder(input.Request.Principal); err != nil {
		return nil, err
	}

	adapter, err := l.registry.Get(dynamicSecret.Provider)
	if err != nil {
		return nil, err
	}
	auth, err := l.providerAuth(ctx, dynamicSecret.AuthenticationRef)
	if err != nil {
		return nil, err
	}
	envCtx, err := l.envKeys.Unwrap(ctx, dynamicSecret.EnvironmentID)
	if err != nil {
		return nil, err
	}

	// Provider calls and everything after them must outlive the request.
	detached := context.WithoutCancel(ctx)

	result, err := adapter.Provision(detached, &dynamicDomain.ProvisionRequest{
		LeaseID:   lease.ID,
		Config:    dynamicSecret.Config,
		Auth:      auth,
		TTL:       ttl,
		CreatedAt: lease.CreatedAt,
		ExpiresAt: lease.ExpiresAt,
	})
	if err != nil {
		l.recordCreateFailed(detached, lease.ID, input.Request, err, providerMeta(err), nil)
		return nil, err
	}
	lease.ExternalHandle = result.Handle

	values, err := l.sealCredentials(lease, dynamicSecret, envCtx, result.Credentials)
	if err == nil {
		err = l.txManager.WithTx(detached, func(txCtx context.Context) error {
			jobID, err := l.scheduler.Schedule(txCtx, lease.ID, lease.ExpiresAt)
			if err != nil {
				return err
			}
			lease.CleanupJobID = &jobID

			if err := l.leaseRepo.Create(txCtx, lease); err != nil {
				return err
			}

			event := dynamicDomain.NewLeaseEvent(lease.ID, dynamicDomain.LeaseEventCreated, input.Request, map[string]any{
				"provision":   result.Metadata,
				"ttl_seconds": int64(ttl.Seconds()),
				"expires_at":  lease.ExpiresAt.Format(time.RFC3339),
			})
			return l.eventRepo.Create(txCtx, event)
		})
	}
	if err != nil {
		cleanupMeta, cleanupErr := adapter.Cleanup(detached, &dynamicDomain.TeardownRequest{
			Handle: result.Handle,
			Config: dynamicSecret.Config,
			Auth:   auth,
		})
		if cleanupErr != nil {
			l.logger.Error("failed to clean up provisioned credentials",
				slog.String("lease_id", lease.ID.String()),
				slog.Any("error", cleanupErr),
			)
		}
		l.recordCreateFailed(detached, lease.ID, input.Request, err, result.Metadata, map[string]any{
			"cleanup":       cleanupMeta,
			"cleanup_error": errorString(cleanupErr),
		})
		return nil, err
	}

	l.logger.Info("lease created",
		slog.String("lease_id", lease.ID.String()),
		slog.String("dynamic_secret_id", dynamicSecret.ID.String()),
		slog.Time("expires_at", lease.ExpiresAt),
	)

	return &dynamicDomain.LeaseCredentials{Lease: lease, Values: values}, nil
}

// Renew extends a live lease. The pending revocation job is replaced so a
// lease never has more than one.
func (l *leaseUseCase) Renew(
	ctx context.Context,
	input *dynamicDomain.RenewLeaseInput,
) (*dynamicDomain.Lease, error) {
	var renewed *dynamicDomain.Lease

	err := l.txManager.WithTx(ctx, func(txCtx context.Context) error {
		lease, err := l.leaseRepo.GetForUpdate(txCtx, input.LeaseID)
		if err != nil {
			return err
		}

		now := l.now()
		if lease.IsExpiredAt(now) {
			return dynamicDomain.ErrLeaseExpired
		}
		if input.TTL <= 0 {
			return dynamicDomain.ErrLeaseRenewal
		}

		dynamicSecret, err := l.secretRepo.Get(txCtx, lease.DynamicSecretID)
		if err != nil {
			return err
		}
		if err := l.checkAccess(txCtx, input.Request.Principal, dynamicSecret.EnvironmentID); err != nil {
			return err
		}

		expiresAt := now.Add(input.TTL)
		if expiresAt.After(lease.CreatedAt.Add(dynamicSecret.MaxTTL)) {
			return dynamicDomain.ErrTTLExceeded
		}

		if lease.CleanupJobID != nil {
			if err := l.scheduler.Cancel(txCtx, *lease.CleanupJobID); err != nil {
				return err
			}
		}
		jobID, err := l.scheduler.Schedule(txCtx, lease.ID, expiresAt)
		if err != nil {
			return err
		}

		lease.TTL = input.TTL
		lease.ExpiresAt = expiresAt
		lease.RenewedAt = &now
		lease.CleanupJobID = &jobID
		lease.Status = dynamicDomain.LeaseActive
		if err := l.leaseRepo.Update(txCtx, lease); err != nil {
			return err
		}

		event := dynamicDomain.NewLeaseEvent(lease.ID, dynamicDomain.LeaseEventRenewed, input.Request, map[string]any{
			"ttl_seconds": int64(input.TTL.Seconds()),
			"expires_at":  expiresAt.Format(time.RFC3339),
		})
		if err := l.eventRepo.Create(txCtx, event); err != nil {
			return err
		}

		renewed = lease
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renewed, nil
}

// renewedSinceScheduled reports whether a scheduled revoke targets a lease
// that was renewed after its job was queued.
func (l *leaseUseCase) renewedSinceScheduled(lease *dynamicDomain.Lease, input *dynamicDomain.RevokeLeaseInput) bool {
	return !input.Manual && !lease.IsExpiredAt(l.now())
}

// Revoke tears down the external credentials first and only then marks the
// lease terminal, so a failed teardown leaves the lease live for a retry.
func (l *leaseUseCase) Revoke(ctx context.Context, input *dynamicDomain.RevokeLeaseInput) error {
	lease, err := l.leaseRepo.Get(ctx, input.LeaseID)
	if err != nil {
		return err
	}
	if !lease.Status.IsLive() || l.renewedSinceScheduled(lease, input) {
		return nil
	}

	dynamicSecret, err := l.secretRepo.Get(ctx, lease.DynamicSecretID)
	if err != nil {
		return err
	}
	if err := l.checkAccess(ctx, input.Request.Principal, dynamicSecret.EnvironmentID); err != nil {
		return err
	}

	adapter, err := l.registry.Get(dynamicSecret.Provider)
	if err != nil {
		return err
	}
	auth, err := l.providerAuth(ctx, dynamicSecret.AuthenticationRef)
	if err != nil {
		return err
	}

	detached := context.WithoutCancel(ctx)
	teardownMeta, err := adapter.Teardown(detached, &dynamicDomain.TeardownRequest{
		Handle: lease.ExternalHandle,
		Config: dynamicSecret.Config,
		Auth:   auth,
	})
	if err != nil {
		return err
	}

	status, eventType := dynamicDomain.LeaseExpired, dynamicDomain.LeaseEventExpired
	if input.Manual {
		status, eventType = dynamicDomain.LeaseRevoked, dynamicDomain.LeaseEventRevoked
	}

	err = l.txManager.WithTx(detached, func(txCtx context.Context) error {
		locked, err := l.leaseRepo.GetForUpdate(txCtx, lease.ID)
		if err != nil {
			return err
		}
		if !locked.Status.IsLive() || l.renewedSinceScheduled(locked, input) {
			return dynamicDomain.ErrLeaseAlreadyRevoked
		}

		if input.Manual && locked.CleanupJobID != nil {
			if err := l.scheduler.Cancel(txCtx, *locked.CleanupJobID); err != nil {
				return err
			}
		}

		now := l.now()
		locked.Status = status
		locked.Credentials = map[string]string{}
		locked.RevokedAt = &now
		if err := l.leaseRepo.Update(txCtx, locked); err != nil {
			return err
		}

		request := input.Request
		if input.Manual && request.Principal == nil && request.Source == "" {
			request.Source = dynamicDomain.EventSourceOperator
		}
		event := dynamicDomain.NewLeaseEvent(locked.ID, eventType, request, map[string]any{
			"teardown": teardownMeta,
		})
		return l.eventRepo.Create(txCtx, event)
	})
	if errors.Is(err, dynamicDomain.ErrLeaseAlreadyRevoked) {
		return nil
	}
	if err != nil {
		return err
	}

	l.logger.Info("lease revoked",
		slog.String("lease_id", lease.ID.String()),
		slog.String("status", string(status)),
	)
	return nil
}

// GetCredentials decrypts a live lease's credentials keyed by output key name.
func (l *leaseUseCase) GetCredentials(
	ctx context.Context,
	leaseID uuid.UUID,
	principal *authDomain.Principal,
) (*dynamicDomain.LeaseCredentials, error) {
	lease, err := l.leaseRepo.Get(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if lease.IsExpiredAt(l.now()) {
		return nil, dynamicDomain.ErrLeaseExpired
	}

	dynamicSecret, err := l.secretRepo.Get(ctx, lease.DynamicSecretID)
	if err != nil {
		return nil, err
	}
	if err := l.checkAccess(ctx, principal, dynamicSecret.EnvironmentID); err != nil {
		return nil, err
	}

	envCtx, err := l.envKeys.Unwrap(ctx, dynamicSecret.EnvironmentID)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(dynamicSecret.KeyMap))
	for _, entry := range dynamicSecret.KeyMap {
		sealed, ok := lease.Credentials[entry.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", dynamicDomain.ErrMissingCredentialField, entry.ID)
		}
		keyName, err := cryptoService.DecryptWithKeyPair(entry.KeyName, envCtx.KeyPair)
		if err != nil {
			return nil, err
		}
		value, err := cryptoService.DecryptWithKeyPair(sealed, envCtx.KeyPair)
		if err != nil {
			return nil, err
		}
		values[keyName] = value
	}

	return &dynamicDomain.LeaseCredentials{Lease: lease, Values: values}, nil
}

func (l *leaseUseCase) Get(
	ctx context.Context,
	leaseID uuid.UUID,
	principal *authDomain.Principal,
) (*dynamicDomain.Lease, error) {
	lease, err := l.leaseRepo.Get(ctx, leaseID)
	if err != nil {
		return nil, err
	}

	dynamicSecret, err := l.secretRepo.Get(ctx, lease.DynamicSecretID)
	if err != nil {
		return nil, err
	}
	if err := l.checkAccess(ctx, principal, dynamicSecret.EnvironmentID); err != nil {
		return nil, err
	}
	return lease, nil
}

func (l *leaseUseCase) ListBySecret(
	ctx context.Context,
	dynamicSecretID uuid.UUID,
	offset, limit int,
	principal *authDomain.Principal,
) ([]*dynamicDomain.Lease, error) {
	dynamicSecret, err := l.secretRepo.Get(ctx, dynamicSecretID)
	if err != nil {
		return nil, err
	}
	if err := l.checkAccess(ctx, principal, dynamicSecret.EnvironmentID); err != nil {
		return nil, err
	}
	return l.leaseRepo.ListByDynamicSecret(ctx, dynamicSecretID, offset, limit)
}

// SweepExpired revokes leases whose revocation job was lost. Failures are
// logged and joined; the sweep carries on with the remaining leases.
func (l *leaseUseCase) SweepExpired(ctx context.Context, limit int) (int, error) {
	leases, err := l.leaseRepo.ListExpired(ctx, l.now(), limit)
	if err != nil {
		return 0, err
	}

	var (
		revoked int
		errs    []error
	)
	for _, lease := range leases {
		if err := l.Revoke(ctx, &dynamicDomain.RevokeLeaseInput{LeaseID: lease.ID}); err != nil {
			l.logger.Error("failed to revoke expired lease",
				slog.String("lease_id", lease.ID.String()),
				slog.Any("error", err),
			)
			errs = append(errs, err)
			continue
		}
		revoked++
	}

	if revoked > 0 {
		l.logger.Info("expired leases swept", slog.Int("count", revoked))
	}
	return revoked, errors.Join(errs...)
}

func (l *leaseUseCase) checkPlan(ctx context.Context, environmentID uuid.UUID) error {
	if l.mode != config.DeploymentCloud {
		return nil
	}
	allowed, err := l.plan.CanUseDynamicSecrets(ctx, environmentID)
	if err != nil {
		return err
	}
	if !allowed {
		return dynamicDomain.ErrPlanRestriction
	}
	return nil
}

func (l *leaseUseCase) checkAccess(
	ctx context.Context,
	principal *authDomain.Principal,
	environmentID uuid.UUID,
) error {
	allowed, err := l.access.CanAccessEnvironment(ctx, principal, environmentID)
	if err != nil {
		return err
	}
	if !allowed {
		return authDomain.ErrEnvironmentAccessDenied
	}
	return nil
}

// providerAuth decrypts provider credentials with the server keypair.
func (l *leaseUseCase) providerAuth(ctx context.Context, credentialsID uuid.UUID) (map[string]string, error) {
	creds, err := l.credsRepo.Get(ctx, credentialsID)
	if err != nil {
		return nil, err
	}

	auth := make(map[string]string, len(creds.Credentials))
	for field, sealed := range creds.Credentials {
		value, err := cryptoService.DecryptWithKeyPair(sealed, l.serverKeyPair)
		if err != nil {
			return nil, err
		}
		auth[field] = value
	}
	return auth, nil
}

// sealCredentials encrypts every mapped credential field under the
// environment public key and returns the plaintext values by key name.
func (l *leaseUseCase) sealCredentials(
	lease *dynamicDomain.Lease,
	dynamicSecret *dynamicDomain.DynamicSecret,
	envCtx *cryptoDomain.EnvironmentContext,
	credentials map[string]string,
) (map[string]string, error) {
	publicKey := envCtx.KeyPair.PublicKeyHex()
	values := make(map[string]string, len(dynamicSecret.KeyMap))

	for _, entry := range dynamicSecret.KeyMap {
		value, ok := credentials[entry.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", dynamicDomain.ErrMissingCredentialField, entry.ID)
		}
		sealed, err := cryptoService.EncryptAsymmetric(value, publicKey)
		if err != nil {
			return nil, err
		}
		keyName, err := cryptoService.DecryptWithKeyPair(entry.KeyName, envCtx.KeyPair)
		if err != nil {
			return nil, err
		}
		lease.Credentials[entry.ID] = sealed
		values[keyName] = value
	}
	return values, nil
}

// recordCreateFailed writes a create_failed event. It is best effort: the
// caller is already returning an error.
func (l *leaseUseCase) recordCreateFailed(
	ctx context.Context,
	leaseID uuid.UUID,
	request dynamicDomain.RequestInfo,
	cause error,
	provisionMeta map[string]any,
	extra map[string]any,
) {
	metadata := map[string]any{
		"error":     cause.Error(),
		"provision": provisionMeta,
	}
	for k, v := range extra {
		metadata[k] = v
	}

	event := dynamicDomain.NewLeaseEvent(leaseID, dynamicDomain.LeaseEventCreateFailed, request, metadata)
	if err := l.eventRepo.Create(ctx, event); err != nil {
		l.logger.Error("failed to record lease create failure",
			slog.String("lease_id", leaseID.String()),
			slog.Any("error", err),
		)
	}
}

func providerMeta(err error) map[string]any {
	var providerErr *dynamicDomain.ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Meta
	}
	return nil
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewLeaseUseCase creates the lease engine. Plan gating applies only in cloud
// deployments.
func NewLeaseUseCase(
	mode config.DeploymentMode,
	serverKeyPair *cryptoDomain.KeyPair,
	registry ProviderRegistry,
	envKeys cryptoUseCase.EnvironmentKeyUseCase,
	txManager database.TxManager,
	secretRepo DynamicSecretRepository,
	leaseRepo LeaseRepository,
	eventRepo LeaseEventRepository,
	credsRepo ProviderCredentialsRepository,
	scheduler Scheduler,
	access AccessChecker,
	plan PlanChecker,
	logger *slog.Logger,
) LeaseUseCase {
	return &leaseUseCase{
		mode:          mode,
		serverKeyPair: serverKeyPair,
		registry:      registry,
		envKeys:       envKeys,
		txManager:     txManager,
		secretRepo:    secretRepo,
		leaseRepo:     leaseRepo,
		eventRepo:     eventRepo,
		credsRepo:     credsRepo,
		scheduler:     scheduler,
		access:        access,
		plan:          plan,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

var _ ProviderRegistry = (*dynamicService.ProviderRegistry)(nil)
