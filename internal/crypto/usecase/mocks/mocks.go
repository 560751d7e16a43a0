// Package mocks provides testify mocks for the crypto use case interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
)

// MockEnvironmentKeyRepository is a mock implementation of EnvironmentKeyRepository.
type MockEnvironmentKeyRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockEnvironmentKeyRepository) Create(ctx context.Context, keys *cryptoDomain.EnvironmentKeys) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

// GetByEnvironmentID mocks the GetByEnvironmentID method.
func (m *MockEnvironmentKeyRepository) GetByEnvironmentID(
	ctx context.Context,
	environmentID uuid.UUID,
) (*cryptoDomain.EnvironmentKeys, error) {
	args := m.Called(ctx, environmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.EnvironmentKeys), args.Error(1)
}

// MockEnvironmentKeyUseCase is a mock implementation of EnvironmentKeyUseCase.
type MockEnvironmentKeyUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockEnvironmentKeyUseCase) Create(
	ctx context.Context,
	environmentID uuid.UUID,
) (*cryptoDomain.EnvironmentKeys, error) {
	args := m.Called(ctx, environmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.EnvironmentKeys), args.Error(1)
}

// Unwrap mocks the Unwrap method.
func (m *MockEnvironmentKeyUseCase) Unwrap(
	ctx context.Context,
	environmentID uuid.UUID,
) (*cryptoDomain.EnvironmentContext, error) {
	args := m.Called(ctx, environmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.EnvironmentContext), args.Error(1)
}
