// Package repository persists revocation jobs for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/envsecrets/internal/database"
	apperrors "github.com/allisson/envsecrets/internal/errors"
	schedulerDomain "github.com/allisson/envsecrets/internal/scheduler/domain"
)

const jobColumns = `id, lease_id, run_at, status, attempts, last_error, claimed_at, created_at, updated_at`

// RevocationJobRepository stores revocation jobs. All methods join the
// transaction carried by ctx.
type RevocationJobRepository struct {
	db     *sql.DB
	driver string
}

func (r *RevocationJobRepository) Create(ctx context.Context, job *schedulerDomain.RevocationJob) error {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `INSERT INTO revocation_jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := querier.ExecContext(ctx, query, job.ID, job.LeaseID, job.RunAt, string(job.Status),
		job.Attempts, job.LastError, job.ClaimedAt, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create revocation job")
	}
	return nil
}

// Cancel marks a pending job cancelled. Jobs that are already claimed or
// finished are left alone.
func (r *RevocationJobRepository) Cancel(ctx context.Context, jobID uuid.UUID, now time.Time) error {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `UPDATE revocation_jobs SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`)

	_, err := querier.ExecContext(ctx, query, string(schedulerDomain.JobCancelled), now, jobID,
		string(schedulerDomain.JobPending))
	if err != nil {
		return apperrors.Wrap(err, "failed to cancel revocation job")
	}
	return nil
}

// ClaimDue locks up to limit due jobs, skipping rows locked by other workers,
// and moves them to processing. Processing jobs claimed before staleBefore
// are reclaimed.
func (r *RevocationJobRepository) ClaimDue(
	ctx context.Context,
	now, staleBefore time.Time,
	limit int,
) ([]*schedulerDomain.RevocationJob, error) {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `SELECT `+jobColumns+` FROM revocation_jobs
		WHERE (status = ? AND run_at <= ?) OR (status = ? AND claimed_at < ?)
		ORDER BY run_at ASC
		LIMIT ?
		FOR UPDATE SKIP LOCKED`)

	rows, err := querier.QueryContext(ctx, query,
		string(schedulerDomain.JobPending), now,
		string(schedulerDomain.JobProcessing), staleBefore,
		limit,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to select due revocation jobs")
	}
	defer rows.Close() //nolint:errcheck

	var jobs []*schedulerDomain.RevocationJob
	for rows.Next() {
		var job schedulerDomain.RevocationJob
		var status string
		if err := rows.Scan(&job.ID, &job.LeaseID, &job.RunAt, &status, &job.Attempts, &job.LastError,
			&job.ClaimedAt, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan revocation job")
		}
		job.Status = schedulerDomain.JobStatus(status)
		jobs = append(jobs, &job)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate revocation jobs")
	}

	claim := database.Rebind(r.driver, `UPDATE revocation_jobs SET status = ?, claimed_at = ?, updated_at = ?
		WHERE id = ?`)
	for _, job := range jobs {
		if _, err := querier.ExecContext(ctx, claim, string(schedulerDomain.JobProcessing), now, now, job.ID); err != nil {
			return nil, apperrors.Wrap(err, "failed to claim revocation job")
		}
		claimedAt := now
		job.Status = schedulerDomain.JobProcessing
		job.ClaimedAt = &claimedAt
		job.UpdatedAt = now
	}

	return jobs, nil
}

// Update persists the outcome of a processing attempt.
func (r *RevocationJobRepository) Update(ctx context.Context, job *schedulerDomain.RevocationJob) error {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `UPDATE revocation_jobs
		SET run_at = ?, status = ?, attempts = ?, last_error = ?, claimed_at = ?, updated_at = ?
		WHERE id = ?`)

	_, err := querier.ExecContext(ctx, query, job.RunAt, string(job.Status), job.Attempts, job.LastError,
		job.ClaimedAt, job.UpdatedAt, job.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update revocation job")
	}
	return nil
}

// NewRevocationJobRepository creates a RevocationJobRepository for the given driver.
func NewRevocationJobRepository(db *sql.DB, driver string) *RevocationJobRepository {
	return &RevocationJobRepository{db: db, driver: driver}
}
