package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	schedulerDomain "github.com/allisson/envsecrets/internal/scheduler/domain"
	"github.com/allisson/envsecrets/internal/scheduler/usecase/mocks"
)

func TestScheduler_Schedule(t *testing.T) {
	ctx := context.Background()
	leaseID := uuid.New()
	runAt := time.Now().Add(time.Hour)

	t.Run("Success", func(t *testing.T) {
		repo := &mocks.MockRevocationJobRepository{}
		var created *schedulerDomain.RevocationJob
		repo.On("Create", ctx, mock.AnythingOfType("*domain.RevocationJob")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*schedulerDomain.RevocationJob) }).
			Return(nil).Once()

		jobID, err := NewScheduler(repo).Schedule(ctx, leaseID, runAt)

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, created.ID, jobID)
		assert.Equal(t, leaseID, created.LeaseID)
		assert.Equal(t, runAt, created.RunAt)
		assert.Equal(t, schedulerDomain.JobPending, created.Status)
	})

	t.Run("Error: repository failure", func(t *testing.T) {
		repo := &mocks.MockRevocationJobRepository{}
		repo.On("Create", ctx, mock.Anything).Return(errors.New("db down")).Once()

		jobID, err := NewScheduler(repo).Schedule(ctx, leaseID, runAt)

		assert.Error(t, err)
		assert.Equal(t, uuid.Nil, jobID)
	})
}

func TestScheduler_Cancel(t *testing.T) {
	ctx := context.Background()
	jobID := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := &mocks.MockRevocationJobRepository{}
	repo.On("Cancel", ctx, jobID, now).Return(nil).Once()

	s := NewScheduler(repo)
	s.now = func() time.Time { return now }

	assert.NoError(t, s.Cancel(ctx, jobID))
	repo.AssertExpectations(t)
}
