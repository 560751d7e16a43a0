// Package mocks provides testify mocks for the auth use case interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
)

// MockServiceAccountRepository is a mock implementation of ServiceAccountRepository.
type MockServiceAccountRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockServiceAccountRepository) Create(ctx context.Context, sa *authDomain.ServiceAccount) error {
	args := m.Called(ctx, sa)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockServiceAccountRepository) Get(ctx context.Context, id uuid.UUID) (*authDomain.ServiceAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.ServiceAccount), args.Error(1)
}

// MockTokenRepository is a mock implementation of TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockTokenRepository) Create(ctx context.Context, token *authDomain.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// GetByTokenHash mocks the GetByTokenHash method.
func (m *MockTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Token), args.Error(1)
}

// DeleteExpired mocks the DeleteExpired method.
func (m *MockTokenRepository) DeleteExpired(ctx context.Context, before time.Time, dryRun bool) (int64, error) {
	args := m.Called(ctx, before, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// MockEnvironmentAccessRepository is a mock implementation of EnvironmentAccessRepository.
type MockEnvironmentAccessRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockEnvironmentAccessRepository) Create(ctx context.Context, access *authDomain.EnvironmentAccess) error {
	args := m.Called(ctx, access)
	return args.Error(0)
}

// Exists mocks the Exists method.
func (m *MockEnvironmentAccessRepository) Exists(
	ctx context.Context,
	principalType authDomain.PrincipalType,
	principalID uuid.UUID,
	environmentID uuid.UUID,
) (bool, error) {
	args := m.Called(ctx, principalType, principalID, environmentID)
	return args.Bool(0), args.Error(1)
}

// MockSecretService is a mock implementation of SecretService.
type MockSecretService struct {
	mock.Mock
}

// GenerateSecret mocks the GenerateSecret method.
func (m *MockSecretService) GenerateSecret() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

// CompareSecret mocks the CompareSecret method.
func (m *MockSecretService) CompareSecret(plainSecret string, hashedSecret string) bool {
	args := m.Called(plainSecret, hashedSecret)
	return args.Bool(0)
}

// MockTokenService is a mock implementation of TokenService.
type MockTokenService struct {
	mock.Mock
}

// GenerateToken mocks the GenerateToken method.
func (m *MockTokenService) GenerateToken() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

// HashToken mocks the HashToken method.
func (m *MockTokenService) HashToken(plainToken string) string {
	args := m.Called(plainToken)
	return args.String(0)
}

// MockTokenUseCase is a mock implementation of TokenUseCase.
type MockTokenUseCase struct {
	mock.Mock
}

// Issue mocks the Issue method.
func (m *MockTokenUseCase) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssueTokenOutput), args.Error(1)
}

// Authenticate mocks the Authenticate method.
func (m *MockTokenUseCase) Authenticate(ctx context.Context, tokenHash string) (*authDomain.Principal, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Principal), args.Error(1)
}

// CleanupExpired mocks the CleanupExpired method.
func (m *MockTokenUseCase) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// MockAccessUseCase is a mock implementation of AccessUseCase.
type MockAccessUseCase struct {
	mock.Mock
}

// CanAccessEnvironment mocks the CanAccessEnvironment method.
func (m *MockAccessUseCase) CanAccessEnvironment(
	ctx context.Context,
	principal *authDomain.Principal,
	environmentID uuid.UUID,
) (bool, error) {
	args := m.Called(ctx, principal, environmentID)
	return args.Bool(0), args.Error(1)
}

// Grant mocks the Grant method.
func (m *MockAccessUseCase) Grant(
	ctx context.Context,
	principalType authDomain.PrincipalType,
	principalID uuid.UUID,
	environmentID uuid.UUID,
) error {
	args := m.Called(ctx, principalType, principalID, environmentID)
	return args.Error(0)
}

// MockServiceAccountUseCase is a mock implementation of ServiceAccountUseCase.
type MockServiceAccountUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockServiceAccountUseCase) Create(
	ctx context.Context,
	organizationID uuid.UUID,
	name string,
) (*authDomain.CreateServiceAccountOutput, error) {
	args := m.Called(ctx, organizationID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.CreateServiceAccountOutput), args.Error(1)
}
