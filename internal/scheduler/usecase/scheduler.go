package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	schedulerDomain "github.com/allisson/envsecrets/internal/scheduler/domain"
)

// Scheduler enqueues and cancels revocation jobs inside the caller's transaction.
type Scheduler struct {
	jobRepo RevocationJobRepository
	now     func() time.Time
}

// Schedule enqueues a job that expires leaseID at runAt.
func (s *Scheduler) Schedule(ctx context.Context, leaseID uuid.UUID, runAt time.Time) (uuid.UUID, error) {
	job := schedulerDomain.NewRevocationJob(leaseID, runAt, s.now())
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return uuid.Nil, err
	}
	return job.ID, nil
}

// Cancel drops a pending job.
func (s *Scheduler) Cancel(ctx context.Context, jobID uuid.UUID) error {
	return s.jobRepo.Cancel(ctx, jobID, s.now())
}

// NewScheduler creates a Scheduler backed by jobRepo.
func NewScheduler(jobRepo RevocationJobRepository) *Scheduler {
	return &Scheduler{jobRepo: jobRepo, now: time.Now}
}
