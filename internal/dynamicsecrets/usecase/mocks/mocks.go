// Package mocks provides testify mocks for the dynamic secrets interfaces.
package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
	dynamicService "github.com/allisson/envsecrets/internal/dynamicsecrets/service"
)

// MockDynamicSecretRepository is a mock implementation of DynamicSecretRepository.
type MockDynamicSecretRepository struct {
	mock.Mock
}

func (m *MockDynamicSecretRepository) Create(ctx context.Context, dynamicSecret *dynamicDomain.DynamicSecret) error {
	args := m.Called(ctx, dynamicSecret)
	return args.Error(0)
}

func (m *MockDynamicSecretRepository) Get(
	ctx context.Context,
	dynamicSecretID uuid.UUID,
) (*dynamicDomain.DynamicSecret, error) {
	args := m.Called(ctx, dynamicSecretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamicDomain.DynamicSecret), args.Error(1)
}

func (m *MockDynamicSecretRepository) Delete(ctx context.Context, dynamicSecretID uuid.UUID) error {
	args := m.Called(ctx, dynamicSecretID)
	return args.Error(0)
}

// MockLeaseRepository is a mock implementation of LeaseRepository.
type MockLeaseRepository struct {
	mock.Mock
}

func (m *MockLeaseRepository) Create(ctx context.Context, lease *dynamicDomain.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockLeaseRepository) Get(ctx context.Context, leaseID uuid.UUID) (*dynamicDomain.Lease, error) {
	args := m.Called(ctx, leaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamicDomain.Lease), args.Error(1)
}

func (m *MockLeaseRepository) GetForUpdate(ctx context.Context, leaseID uuid.UUID) (*dynamicDomain.Lease, error) {
	args := m.Called(ctx, leaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamicDomain.Lease), args.Error(1)
}

func (m *MockLeaseRepository) Update(ctx context.Context, lease *dynamicDomain.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockLeaseRepository) ListByDynamicSecret(
	ctx context.Context,
	dynamicSecretID uuid.UUID,
	offset, limit int,
) ([]*dynamicDomain.Lease, error) {
	args := m.Called(ctx, dynamicSecretID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dynamicDomain.Lease), args.Error(1)
}

func (m *MockLeaseRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*dynamicDomain.Lease, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dynamicDomain.Lease), args.Error(1)
}

// MockLeaseEventRepository is a mock implementation of LeaseEventRepository.
type MockLeaseEventRepository struct {
	mock.Mock
}

func (m *MockLeaseEventRepository) Create(ctx context.Context, event *dynamicDomain.LeaseEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockProviderCredentialsRepository is a mock implementation of ProviderCredentialsRepository.
type MockProviderCredentialsRepository struct {
	mock.Mock
}

func (m *MockProviderCredentialsRepository) Create(
	ctx context.Context,
	credentials *dynamicDomain.ProviderCredentials,
) error {
	args := m.Called(ctx, credentials)
	return args.Error(0)
}

func (m *MockProviderCredentialsRepository) Get(
	ctx context.Context,
	credentialsID uuid.UUID,
) (*dynamicDomain.ProviderCredentials, error) {
	args := m.Called(ctx, credentialsID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamicDomain.ProviderCredentials), args.Error(1)
}

// MockScheduler is a mock implementation of Scheduler.
type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Schedule(ctx context.Context, leaseID uuid.UUID, runAt time.Time) (uuid.UUID, error) {
	args := m.Called(ctx, leaseID, runAt)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockScheduler) Cancel(ctx context.Context, jobID uuid.UUID) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

// MockPlanChecker is a mock implementation of PlanChecker.
type MockPlanChecker struct {
	mock.Mock
}

func (m *MockPlanChecker) CanUseDynamicSecrets(ctx context.Context, environmentID uuid.UUID) (bool, error) {
	args := m.Called(ctx, environmentID)
	return args.Bool(0), args.Error(1)
}

// MockProviderRegistry is a mock implementation of ProviderRegistry.
type MockProviderRegistry struct {
	mock.Mock
}

func (m *MockProviderRegistry) Get(provider dynamicDomain.Provider) (dynamicService.ProviderAdapter, error) {
	args := m.Called(provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(dynamicService.ProviderAdapter), args.Error(1)
}

// MockProviderAdapter is a mock implementation of ProviderAdapter.
type MockProviderAdapter struct {
	mock.Mock
}

func (m *MockProviderAdapter) Provider() dynamicDomain.Provider {
	args := m.Called()
	return args.Get(0).(dynamicDomain.Provider)
}

func (m *MockProviderAdapter) CredentialFields() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockProviderAdapter) ValidateConfig(config json.RawMessage) error {
	args := m.Called(config)
	return args.Error(0)
}

func (m *MockProviderAdapter) Provision(
	ctx context.Context,
	req *dynamicDomain.ProvisionRequest,
) (*dynamicDomain.ProvisionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamicDomain.ProvisionResult), args.Error(1)
}

func (m *MockProviderAdapter) Teardown(
	ctx context.Context,
	req *dynamicDomain.TeardownRequest,
) (map[string]any, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockProviderAdapter) Cleanup(
	ctx context.Context,
	req *dynamicDomain.TeardownRequest,
) (map[string]any, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

// MockLeaseUseCase is a mock implementation of LeaseUseCase.
type MockLeaseUseCase struct {
	mock.Mock
}

func (m *MockLeaseUseCase) Create(
	ctx context.Context,
	input *dynamicDomain.CreateLeaseInput,
) (*dynamicDomain.LeaseCredentials, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamicDomain.LeaseCredentials), args.Error(1)
}

func (m *MockLeaseUseCase) Renew(
	ctx context.Context,
	input *dynamicDomain.RenewLeaseInput,
) (*dynamicDomain.Lease, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamicDomain.Lease), args.Error(1)
}

func (m *MockLeaseUseCase) Revoke(ctx context.Context, input *dynamicDomain.RevokeLeaseInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockLeaseUseCase) GetCredentials(
	ctx context.Context,
	leaseID uuid.UUID,
	principal *authDomain.Principal,
) (*dynamicDomain.LeaseCredentials, error) {
	args := m.Called(ctx, leaseID, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamicDomain.LeaseCredentials), args.Error(1)
}

func (m *MockLeaseUseCase) Get(
	ctx context.Context,
	leaseID uuid.UUID,
	principal *authDomain.Principal,
) (*dynamicDomain.Lease, error) {
	args := m.Called(ctx, leaseID, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamicDomain.Lease), args.Error(1)
}

func (m *MockLeaseUseCase) ListBySecret(
	ctx context.Context,
	dynamicSecretID uuid.UUID,
	offset, limit int,
	principal *authDomain.Principal,
) ([]*dynamicDomain.Lease, error) {
	args := m.Called(ctx, dynamicSecretID, offset, limit, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dynamicDomain.Lease), args.Error(1)
}

func (m *MockLeaseUseCase) SweepExpired(ctx context.Context, limit int) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}

// MockDynamicSecretUseCase is a mock implementation of DynamicSecretUseCase.
type MockDynamicSecretUseCase struct {
	mock.Mock
}

func (m *MockDynamicSecretUseCase) Create(
	ctx context.Context,
	input *dynamicDomain.CreateDynamicSecretInput,
) (*dynamicDomain.DynamicSecret, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamicDomain.DynamicSecret), args.Error(1)
}

func (m *MockDynamicSecretUseCase) Get(
	ctx context.Context,
	dynamicSecretID uuid.UUID,
) (*dynamicDomain.DynamicSecret, error) {
	args := m.Called(ctx, dynamicSecretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamicDomain.DynamicSecret), args.Error(1)
}

func (m *MockDynamicSecretUseCase) Delete(ctx context.Context, dynamicSecretID uuid.UUID) error {
	return m.Called(ctx, dynamicSecretID).Error(0)
}

func (m *MockDynamicSecretUseCase) CreateProviderCredentials(
	ctx context.Context,
	input *dynamicDomain.CreateProviderCredentialsInput,
) (*dynamicDomain.ProviderCredentials, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamicDomain.ProviderCredentials), args.Error(1)
}
