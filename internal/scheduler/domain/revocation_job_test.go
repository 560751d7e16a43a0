package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRevocationJob_Fail(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("linear backoff while retries remain", func(t *testing.T) {
		job := NewRevocationJob(uuid.New(), now, now)
		claimed := now
		job.Status = JobProcessing
		job.ClaimedAt = &claimed

		job.Fail(errors.New("throttled"), now, 3, 30*time.Second)
		assert.Equal(t, JobPending, job.Status)
		assert.Equal(t, 1, job.Attempts)
		assert.Equal(t, now.Add(30*time.Second), job.RunAt)
		assert.Nil(t, job.ClaimedAt)
		assert.Equal(t, "throttled", *job.LastError)

		job.Fail(errors.New("throttled"), now, 3, 30*time.Second)
		assert.Equal(t, now.Add(time.Minute), job.RunAt)
	})

	t.Run("failed after max retries", func(t *testing.T) {
		job := NewRevocationJob(uuid.New(), now, now)
		job.Attempts = 2

		job.Fail(errors.New("boom"), now, 3, time.Second)
		assert.Equal(t, JobFailed, job.Status)
		assert.Equal(t, 3, job.Attempts)
	})
}

func TestRevocationJob_Complete(t *testing.T) {
	now := time.Now()
	job := NewRevocationJob(uuid.New(), now, now)
	job.Status = JobProcessing
	job.ClaimedAt = &now

	job.Complete(now)

	assert.Equal(t, JobDone, job.Status)
	assert.Nil(t, job.ClaimedAt)
}
