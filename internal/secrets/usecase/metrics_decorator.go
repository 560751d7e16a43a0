package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/envsecrets/internal/metrics"
	secretsDomain "github.com/allisson/envsecrets/internal/secrets/domain"
)

// secretUseCaseWithMetrics decorates SecretUseCase with metrics instrumentation.
type secretUseCaseWithMetrics struct {
	next    SecretUseCase
	metrics metrics.BusinessMetrics
}

// NewSecretUseCaseWithMetrics wraps a SecretUseCase with metrics recording.
func NewSecretUseCaseWithMetrics(useCase SecretUseCase, m metrics.BusinessMetrics) SecretUseCase {
	return &secretUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *secretUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secrets", operation, status)
	s.metrics.RecordDuration(ctx, "secrets", operation, time.Since(start), status)
}

func (s *secretUseCaseWithMetrics) Create(
	ctx context.Context,
	input *secretsDomain.CreateSecretInput,
) (*secretsDomain.DecryptedSecret, error) {
	start := time.Now()
	secret, err := s.next.Create(ctx, input)
	s.record(ctx, "secret_create", start, err)
	return secret, err
}

func (s *secretUseCaseWithMetrics) Update(
	ctx context.Context,
	input *secretsDomain.UpdateSecretInput,
) (*secretsDomain.DecryptedSecret, error) {
	start := time.Now()
	secret, err := s.next.Update(ctx, input)
	s.record(ctx, "secret_update", start, err)
	return secret, err
}

func (s *secretUseCaseWithMetrics) Delete(ctx context.Context, secretID uuid.UUID) error {
	start := time.Now()
	err := s.next.Delete(ctx, secretID)
	s.record(ctx, "secret_delete", start, err)
	return err
}

func (s *secretUseCaseWithMetrics) Get(
	ctx context.Context,
	environmentID uuid.UUID,
	path, keyName string,
	opts secretsDomain.ResolveOptions,
) (*secretsDomain.DecryptedSecret, error) {
	start := time.Now()
	secret, err := s.next.Get(ctx, environmentID, path, keyName, opts)
	s.record(ctx, "secret_get", start, err)
	return secret, err
}

func (s *secretUseCaseWithMetrics) List(
	ctx context.Context,
	environmentID uuid.UUID,
	path string,
	opts secretsDomain.ResolveOptions,
) ([]*secretsDomain.DecryptedSecret, error) {
	start := time.Now()
	secrets, err := s.next.List(ctx, environmentID, path, opts)
	s.record(ctx, "secret_list", start, err)
	return secrets, err
}
