package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
	"github.com/allisson/envsecrets/internal/dynamicsecrets/usecase/mocks"
	"github.com/allisson/envsecrets/internal/metrics"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordLeasesSwept(ctx context.Context, count int) {
	m.Called(ctx, count)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

func TestLeaseMetricsDecorator(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("records revoke error", func(t *testing.T) {
		next := &mocks.MockLeaseUseCase{}
		m := &mockBusinessMetrics{}
		input := &dynamicDomain.RevokeLeaseInput{LeaseID: id, Manual: true}
		boom := errors.New("boom")

		next.On("Revoke", ctx, input).Return(boom).Once()
		m.On("RecordOperation", ctx, "dynamic_secrets", "lease_revoke", "error").Return().Once()
		m.On("RecordDuration", ctx, "dynamic_secrets", "lease_revoke", mock.AnythingOfType("time.Duration"), "error").
			Return().Once()

		err := NewLeaseUseCaseWithMetrics(next, m).Revoke(ctx, input)

		assert.ErrorIs(t, err, boom)
		m.AssertExpectations(t)
	})

	t.Run("records every operation", func(t *testing.T) {
		next := &mocks.MockLeaseUseCase{}
		m := &mockBusinessMetrics{}
		m.On("RecordOperation", ctx, "dynamic_secrets", mock.Anything, "success").Return()
		m.On("RecordDuration", ctx, "dynamic_secrets", mock.Anything, mock.Anything, "success").Return()

		createInput := &dynamicDomain.CreateLeaseInput{DynamicSecretID: id}
		renewInput := &dynamicDomain.RenewLeaseInput{LeaseID: id, TTL: time.Hour}
		next.On("Create", ctx, createInput).Return(&dynamicDomain.LeaseCredentials{}, nil)
		next.On("Renew", ctx, renewInput).Return(&dynamicDomain.Lease{}, nil)
		next.On("GetCredentials", ctx, id, mock.Anything).Return(&dynamicDomain.LeaseCredentials{}, nil)
		next.On("Get", ctx, id, mock.Anything).Return(&dynamicDomain.Lease{}, nil)
		next.On("ListBySecret", ctx, id, 0, 10, mock.Anything).Return([]*dynamicDomain.Lease{}, nil)
		next.On("SweepExpired", ctx, 50).Return(2, nil)
		m.On("RecordLeasesSwept", ctx, 2).Return().Once()

		uc := NewLeaseUseCaseWithMetrics(next, m)
		_, _ = uc.Create(ctx, createInput)
		_, _ = uc.Renew(ctx, renewInput)
		_, _ = uc.GetCredentials(ctx, id, nil)
		_, _ = uc.Get(ctx, id, nil)
		_, _ = uc.ListBySecret(ctx, id, 0, 10, nil)
		count, _ := uc.SweepExpired(ctx, 50)

		assert.Equal(t, 2, count)
		for _, op := range []string{
			"lease_create", "lease_renew", "lease_get_credentials", "lease_get", "lease_list", "lease_sweep",
		} {
			m.AssertCalled(t, "RecordOperation", ctx, "dynamic_secrets", op, "success")
		}
		m.AssertCalled(t, "RecordLeasesSwept", ctx, 2)
	})
}
