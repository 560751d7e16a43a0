// Package mocks provides testify mocks for the scheduler use case interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
	schedulerDomain "github.com/allisson/envsecrets/internal/scheduler/domain"
)

// MockRevocationJobRepository is a mock implementation of RevocationJobRepository.
type MockRevocationJobRepository struct {
	mock.Mock
}

func (m *MockRevocationJobRepository) Create(ctx context.Context, job *schedulerDomain.RevocationJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockRevocationJobRepository) Cancel(ctx context.Context, jobID uuid.UUID, now time.Time) error {
	args := m.Called(ctx, jobID, now)
	return args.Error(0)
}

func (m *MockRevocationJobRepository) ClaimDue(
	ctx context.Context,
	now, staleBefore time.Time,
	limit int,
) ([]*schedulerDomain.RevocationJob, error) {
	args := m.Called(ctx, now, staleBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schedulerDomain.RevocationJob), args.Error(1)
}

func (m *MockRevocationJobRepository) Update(ctx context.Context, job *schedulerDomain.RevocationJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockLeaseRevoker is a mock implementation of LeaseRevoker.
type MockLeaseRevoker struct {
	mock.Mock
}

func (m *MockLeaseRevoker) Revoke(ctx context.Context, input *dynamicDomain.RevokeLeaseInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockLeaseRevoker) SweepExpired(ctx context.Context, limit int) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}
