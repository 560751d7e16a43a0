// Package domain defines delayed lease revocation jobs.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a revocation job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobCancelled  JobStatus = "cancelled"
	JobFailed     JobStatus = "failed"
)

// RevocationJob expires a lease once RunAt has passed.
type RevocationJob struct {
	ID        uuid.UUID
	LeaseID   uuid.UUID
	RunAt     time.Time
	Status    JobStatus
	Attempts  int
	LastError *string
	ClaimedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRevocationJob creates a pending job for leaseID.
func NewRevocationJob(leaseID uuid.UUID, runAt, now time.Time) *RevocationJob {
	return &RevocationJob{
		ID:        uuid.Must(uuid.NewV7()),
		LeaseID:   leaseID,
		RunAt:     runAt,
		Status:    JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Fail records a failed attempt. Below maxRetries the job is rescheduled with
// a linear backoff of retryInterval per attempt, otherwise it becomes failed.
func (j *RevocationJob) Fail(err error, now time.Time, maxRetries int, retryInterval time.Duration) {
	msg := err.Error()
	j.Attempts++
	j.LastError = &msg
	j.ClaimedAt = nil
	j.UpdatedAt = now
	if j.Attempts >= maxRetries {
		j.Status = JobFailed
		return
	}
	j.Status = JobPending
	j.RunAt = now.Add(time.Duration(j.Attempts) * retryInterval)
}

// Complete marks the job done.
func (j *RevocationJob) Complete(now time.Time) {
	j.Status = JobDone
	j.ClaimedAt = nil
	j.UpdatedAt = now
}
