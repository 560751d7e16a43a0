package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/envsecrets/internal/database"
	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
	apperrors "github.com/allisson/envsecrets/internal/errors"
)

const leaseColumns = `id, dynamic_secret_id, name, holder_user_id, holder_service_account_id, ttl_seconds,
	expires_at, status, credentials, external_handle, cleanup_job_id, created_at, renewed_at, revoked_at`

// LeaseRepository implements Lease persistence. Credentials are stored as a
// JSON object of ciphertexts.
type LeaseRepository struct {
	db     *sql.DB
	driver string
}

func (r *LeaseRepository) Create(ctx context.Context, lease *dynamicDomain.Lease) error {
	querier := database.GetTx(ctx, r.db)

	credentials, err := marshalCredentials(lease.Credentials)
	if err != nil {
		return err
	}

	query := database.Rebind(r.driver, `INSERT INTO leases (`+leaseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = querier.ExecContext(
		ctx,
		query,
		lease.ID,
		lease.DynamicSecretID,
		lease.Name,
		lease.HolderUserID,
		lease.HolderServiceAccountID,
		int64(lease.TTL/time.Second),
		lease.ExpiresAt,
		string(lease.Status),
		credentials,
		lease.ExternalHandle,
		lease.CleanupJobID,
		lease.CreatedAt,
		lease.RenewedAt,
		lease.RevokedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create lease")
	}
	return nil
}

func (r *LeaseRepository) Get(ctx context.Context, leaseID uuid.UUID) (*dynamicDomain.Lease, error) {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `SELECT `+leaseColumns+` FROM leases WHERE id = ?`)

	return scanLease(querier.QueryRowContext(ctx, query, leaseID))
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (r *LeaseRepository) GetForUpdate(ctx context.Context, leaseID uuid.UUID) (*dynamicDomain.Lease, error) {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `SELECT `+leaseColumns+` FROM leases WHERE id = ? FOR UPDATE`)

	return scanLease(querier.QueryRowContext(ctx, query, leaseID))
}

// Update rewrites the mutable lease state.
func (r *LeaseRepository) Update(ctx context.Context, lease *dynamicDomain.Lease) error {
	querier := database.GetTx(ctx, r.db)

	credentials, err := marshalCredentials(lease.Credentials)
	if err != nil {
		return err
	}

	query := database.Rebind(r.driver, `UPDATE leases
		SET ttl_seconds = ?, expires_at = ?, status = ?, credentials = ?, cleanup_job_id = ?,
			renewed_at = ?, revoked_at = ?
		WHERE id = ?`)

	result, err := querier.ExecContext(
		ctx,
		query,
		int64(lease.TTL/time.Second),
		lease.ExpiresAt,
		string(lease.Status),
		credentials,
		lease.CleanupJobID,
		lease.RenewedAt,
		lease.RevokedAt,
		lease.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update lease")
	}
	return requireAffected(result, dynamicDomain.ErrLeaseNotFound)
}

// ListByDynamicSecret pages through leases newest first.
func (r *LeaseRepository) ListByDynamicSecret(
	ctx context.Context,
	dynamicSecretID uuid.UUID,
	offset, limit int,
) ([]*dynamicDomain.Lease, error) {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `SELECT `+leaseColumns+`
		FROM leases
		WHERE dynamic_secret_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`)

	rows, err := querier.QueryContext(ctx, query, dynamicSecretID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list leases")
	}
	return collectLeases(rows)
}

// ListExpired returns live leases past their expiry, oldest expiry first.
func (r *LeaseRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*dynamicDomain.Lease, error) {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `SELECT `+leaseColumns+`
		FROM leases
		WHERE status IN (?, ?) AND expires_at < ?
		ORDER BY expires_at ASC
		LIMIT ?`)

	rows, err := querier.QueryContext(
		ctx,
		query,
		string(dynamicDomain.LeaseActive),
		string(dynamicDomain.LeaseRenewed),
		now,
		limit,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expired leases")
	}
	return collectLeases(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLease(row rowScanner) (*dynamicDomain.Lease, error) {
	var (
		lease       dynamicDomain.Lease
		ttl         int64
		status      string
		credentials []byte
	)
	err := row.Scan(
		&lease.ID,
		&lease.DynamicSecretID,
		&lease.Name,
		&lease.HolderUserID,
		&lease.HolderServiceAccountID,
		&ttl,
		&lease.ExpiresAt,
		&status,
		&credentials,
		&lease.ExternalHandle,
		&lease.CleanupJobID,
		&lease.CreatedAt,
		&lease.RenewedAt,
		&lease.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dynamicDomain.ErrLeaseNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan lease")
	}

	lease.Credentials = make(map[string]string)
	if len(credentials) > 0 {
		if err := json.Unmarshal(credentials, &lease.Credentials); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal lease credentials")
		}
	}
	lease.TTL = time.Duration(ttl) * time.Second
	lease.Status = dynamicDomain.LeaseStatus(status)
	return &lease, nil
}

func collectLeases(rows *sql.Rows) ([]*dynamicDomain.Lease, error) {
	defer func() { _ = rows.Close() }()

	leases := make([]*dynamicDomain.Lease, 0)
	for rows.Next() {
		lease, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		leases = append(leases, lease)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate leases")
	}
	return leases, nil
}

func marshalCredentials(credentials map[string]string) (string, error) {
	if credentials == nil {
		credentials = map[string]string{}
	}
	data, err := json.Marshal(credentials)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal lease credentials")
	}
	return string(data), nil
}

// NewLeaseRepository creates a LeaseRepository for the given driver.
func NewLeaseRepository(db *sql.DB, driver string) *LeaseRepository {
	return &LeaseRepository{db: db, driver: driver}
}
