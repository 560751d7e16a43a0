// Package mocks provides testify mocks for the secrets use case interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	secretsDomain "github.com/allisson/envsecrets/internal/secrets/domain"
)

// MockSecretRepository is a mock implementation of SecretRepository.
type MockSecretRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockSecretRepository) Create(ctx context.Context, secret *secretsDomain.Secret) error {
	args := m.Called(ctx, secret)
	return args.Error(0)
}

// Update mocks the Update method.
func (m *MockSecretRepository) Update(ctx context.Context, secret *secretsDomain.Secret) error {
	args := m.Called(ctx, secret)
	return args.Error(0)
}

// Delete mocks the Delete method.
func (m *MockSecretRepository) Delete(ctx context.Context, secretID uuid.UUID) error {
	args := m.Called(ctx, secretID)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockSecretRepository) Get(ctx context.Context, secretID uuid.UUID) (*secretsDomain.Secret, error) {
	args := m.Called(ctx, secretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.Secret), args.Error(1)
}

// GetByDigest mocks the GetByDigest method.
func (m *MockSecretRepository) GetByDigest(
	ctx context.Context,
	environmentID uuid.UUID,
	path, keyDigest string,
) (*secretsDomain.Secret, error) {
	args := m.Called(ctx, environmentID, path, keyDigest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.Secret), args.Error(1)
}

// ListByPath mocks the ListByPath method.
func (m *MockSecretRepository) ListByPath(
	ctx context.Context,
	environmentID uuid.UUID,
	path string,
) ([]*secretsDomain.Secret, error) {
	args := m.Called(ctx, environmentID, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*secretsDomain.Secret), args.Error(1)
}

// MockAppRepository is a mock implementation of AppRepository.
type MockAppRepository struct {
	mock.Mock
}

// Get mocks the Get method.
func (m *MockAppRepository) Get(ctx context.Context, appID uuid.UUID) (*secretsDomain.App, error) {
	args := m.Called(ctx, appID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.App), args.Error(1)
}

// GetByName mocks the GetByName method.
func (m *MockAppRepository) GetByName(
	ctx context.Context,
	organizationID uuid.UUID,
	name string,
) (*secretsDomain.App, error) {
	args := m.Called(ctx, organizationID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.App), args.Error(1)
}

// MockEnvironmentRepository is a mock implementation of EnvironmentRepository.
type MockEnvironmentRepository struct {
	mock.Mock
}

// Get mocks the Get method.
func (m *MockEnvironmentRepository) Get(
	ctx context.Context,
	environmentID uuid.UUID,
) (*secretsDomain.Environment, error) {
	args := m.Called(ctx, environmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.Environment), args.Error(1)
}

// GetByName mocks the GetByName method.
func (m *MockEnvironmentRepository) GetByName(
	ctx context.Context,
	appID uuid.UUID,
	name string,
) (*secretsDomain.Environment, error) {
	args := m.Called(ctx, appID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.Environment), args.Error(1)
}

// MockReferenceResolver is a mock implementation of ReferenceResolver.
type MockReferenceResolver struct {
	mock.Mock
}

// Resolve mocks the Resolve method.
func (m *MockReferenceResolver) Resolve(
	ctx context.Context,
	environmentID uuid.UUID,
	value string,
	opts secretsDomain.ResolveOptions,
) (string, error) {
	args := m.Called(ctx, environmentID, value, opts)
	return args.String(0), args.Error(1)
}

// MockSecretUseCase is a mock implementation of SecretUseCase.
type MockSecretUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockSecretUseCase) Create(
	ctx context.Context,
	input *secretsDomain.CreateSecretInput,
) (*secretsDomain.DecryptedSecret, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.DecryptedSecret), args.Error(1)
}

// Update mocks the Update method.
func (m *MockSecretUseCase) Update(
	ctx context.Context,
	input *secretsDomain.UpdateSecretInput,
) (*secretsDomain.DecryptedSecret, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.DecryptedSecret), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockSecretUseCase) Delete(ctx context.Context, secretID uuid.UUID) error {
	args := m.Called(ctx, secretID)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockSecretUseCase) Get(
	ctx context.Context,
	environmentID uuid.UUID,
	path, keyName string,
	opts secretsDomain.ResolveOptions,
) (*secretsDomain.DecryptedSecret, error) {
	args := m.Called(ctx, environmentID, path, keyName, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.DecryptedSecret), args.Error(1)
}

// List mocks the List method.
func (m *MockSecretUseCase) List(
	ctx context.Context,
	environmentID uuid.UUID,
	path string,
	opts secretsDomain.ResolveOptions,
) ([]*secretsDomain.DecryptedSecret, error) {
	args := m.Called(ctx, environmentID, path, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*secretsDomain.DecryptedSecret), args.Error(1)
}
