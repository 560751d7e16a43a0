// Package usecase schedules lease revocations and runs the worker that
// executes them.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
	schedulerDomain "github.com/allisson/envsecrets/internal/scheduler/domain"
)

// RevocationJobRepository persists revocation jobs.
type RevocationJobRepository interface {
	Create(ctx context.Context, job *schedulerDomain.RevocationJob) error
	Cancel(ctx context.Context, jobID uuid.UUID, now time.Time) error
	ClaimDue(ctx context.Context, now, staleBefore time.Time, limit int) ([]*schedulerDomain.RevocationJob, error)
	Update(ctx context.Context, job *schedulerDomain.RevocationJob) error
}

// LeaseRevoker is the part of the lease engine the worker drives.
type LeaseRevoker interface {
	Revoke(ctx context.Context, input *dynamicDomain.RevokeLeaseInput) error
	SweepExpired(ctx context.Context, limit int) (int, error)
}
