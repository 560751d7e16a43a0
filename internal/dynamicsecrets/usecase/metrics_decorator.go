package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
	"github.com/allisson/envsecrets/internal/metrics"
)

// leaseUseCaseWithMetrics decorates LeaseUseCase with metrics instrumentation.
type leaseUseCaseWithMetrics struct {
	next    LeaseUseCase
	metrics metrics.BusinessMetrics
}

// NewLeaseUseCaseWithMetrics wraps a LeaseUseCase with metrics recording.
func NewLeaseUseCaseWithMetrics(useCase LeaseUseCase, m metrics.BusinessMetrics) LeaseUseCase {
	return &leaseUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (l *leaseUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	l.metrics.RecordOperation(ctx, "dynamic_secrets", operation, status)
	l.metrics.RecordDuration(ctx, "dynamic_secrets", operation, time.Since(start), status)
}

func (l *leaseUseCaseWithMetrics) Create(
	ctx context.Context,
	input *dynamicDomain.CreateLeaseInput,
) (*dynamicDomain.LeaseCredentials, error) {
	start := time.Now()
	creds, err := l.next.Create(ctx, input)
	l.record(ctx, "lease_create", start, err)
	return creds, err
}

func (l *leaseUseCaseWithMetrics) Renew(
	ctx context.Context,
	input *dynamicDomain.RenewLeaseInput,
) (*dynamicDomain.Lease, error) {
	start := time.Now()
	lease, err := l.next.Renew(ctx, input)
	l.record(ctx, "lease_renew", start, err)
	return lease, err
}

func (l *leaseUseCaseWithMetrics) Revoke(ctx context.Context, input *dynamicDomain.RevokeLeaseInput) error {
	start := time.Now()
	err := l.next.Revoke(ctx, input)
	l.record(ctx, "lease_revoke", start, err)
	return err
}

func (l *leaseUseCaseWithMetrics) GetCredentials(
	ctx context.Context,
	leaseID uuid.UUID,
	principal *authDomain.Principal,
) (*dynamicDomain.LeaseCredentials, error) {
	start := time.Now()
	creds, err := l.next.GetCredentials(ctx, leaseID, principal)
	l.record(ctx, "lease_get_credentials", start, err)
	return creds, err
}

func (l *leaseUseCaseWithMetrics) Get(
	ctx context.Context,
	leaseID uuid.UUID,
	principal *authDomain.Principal,
) (*dynamicDomain.Lease, error) {
	start := time.Now()
	lease, err := l.next.Get(ctx, leaseID, principal)
	l.record(ctx, "lease_get", start, err)
	return lease, err
}

func (l *leaseUseCaseWithMetrics) ListBySecret(
	ctx context.Context,
	dynamicSecretID uuid.UUID,
	offset, limit int,
	principal *authDomain.Principal,
) ([]*dynamicDomain.Lease, error) {
	start := time.Now()
	leases, err := l.next.ListBySecret(ctx, dynamicSecretID, offset, limit, principal)
	l.record(ctx, "lease_list", start, err)
	return leases, err
}

func (l *leaseUseCaseWithMetrics) SweepExpired(ctx context.Context, limit int) (int, error) {
	start := time.Now()
	count, err := l.next.SweepExpired(ctx, limit)
	l.record(ctx, "lease_sweep", start, err)
	l.metrics.RecordLeasesSwept(ctx, count)
	return count, err
}
