// Package repository implements persistence for secrets, apps and environments
// on PostgreSQL and MySQL. Queries use '?' placeholders rebound per driver.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/envsecrets/internal/database"
	apperrors "github.com/allisson/envsecrets/internal/errors"
	secretsDomain "github.com/allisson/envsecrets/internal/secrets/domain"
)

const secretColumns = `id, environment_id, path, secret_key, key_digest, secret_value, secret_comment,
	version, created_at, updated_at, deleted_at`

// SecretRepository implements Secret persistence.
type SecretRepository struct {
	db     *sql.DB
	driver string
}

func (r *SecretRepository) Create(ctx context.Context, secret *secretsDomain.Secret) error {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `INSERT INTO secrets (`+secretColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := querier.ExecContext(
		ctx,
		query,
		secret.ID,
		secret.EnvironmentID,
		secret.Path,
		secret.Key,
		secret.KeyDigest,
		secret.Value,
		secret.Comment,
		secret.Version,
		secret.CreatedAt,
		secret.UpdatedAt,
		secret.DeletedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return secretsDomain.ErrDuplicateSecret
		}
		return apperrors.Wrap(err, "failed to create secret")
	}
	return nil
}

// Update rewrites the encrypted fields and version of a live secret.
func (r *SecretRepository) Update(ctx context.Context, secret *secretsDomain.Secret) error {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `UPDATE secrets
		SET secret_key = ?, key_digest = ?, secret_value = ?, secret_comment = ?, version = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`)

	result, err := querier.ExecContext(
		ctx,
		query,
		secret.Key,
		secret.KeyDigest,
		secret.Value,
		secret.Comment,
		secret.Version,
		secret.UpdatedAt,
		secret.ID,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return secretsDomain.ErrDuplicateSecret
		}
		return apperrors.Wrap(err, "failed to update secret")
	}
	return requireAffected(result, secretsDomain.ErrSecretNotFound)
}

// Delete tombstones a live secret.
func (r *SecretRepository) Delete(ctx context.Context, secretID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `UPDATE secrets SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`)

	result, err := querier.ExecContext(ctx, query, time.Now().UTC(), secretID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete secret")
	}
	return requireAffected(result, secretsDomain.ErrSecretNotFound)
}

func (r *SecretRepository) Get(ctx context.Context, secretID uuid.UUID) (*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `SELECT `+secretColumns+`
		FROM secrets WHERE id = ? AND deleted_at IS NULL`)

	return scanSecret(querier.QueryRowContext(ctx, query, secretID))
}

// GetByDigest finds the live secret with keyDigest at (environment, path).
func (r *SecretRepository) GetByDigest(
	ctx context.Context,
	environmentID uuid.UUID,
	path, keyDigest string,
) (*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `SELECT `+secretColumns+`
		FROM secrets
		WHERE environment_id = ? AND path = ? AND key_digest = ? AND deleted_at IS NULL`)

	return scanSecret(querier.QueryRowContext(ctx, query, environmentID, path, keyDigest))
}

// ListByPath returns the live secrets at path in creation order.
func (r *SecretRepository) ListByPath(
	ctx context.Context,
	environmentID uuid.UUID,
	path string,
) ([]*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `SELECT `+secretColumns+`
		FROM secrets
		WHERE environment_id = ? AND path = ? AND deleted_at IS NULL
		ORDER BY created_at ASC, id ASC`)

	rows, err := querier.QueryContext(ctx, query, environmentID, path)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secrets")
	}
	defer func() { _ = rows.Close() }()

	secrets := make([]*secretsDomain.Secret, 0)
	for rows.Next() {
		secret, err := scanSecret(rows)
		if err != nil {
			return nil, err
		}
		secrets = append(secrets, secret)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate secrets")
	}
	return secrets, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSecret(row rowScanner) (*secretsDomain.Secret, error) {
	var secret secretsDomain.Secret
	err := row.Scan(
		&secret.ID,
		&secret.EnvironmentID,
		&secret.Path,
		&secret.Key,
		&secret.KeyDigest,
		&secret.Value,
		&secret.Comment,
		&secret.Version,
		&secret.CreatedAt,
		&secret.UpdatedAt,
		&secret.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, secretsDomain.ErrSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan secret")
	}
	return &secret, nil
}

func requireAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

// NewSecretRepository creates a SecretRepository for the given driver.
func NewSecretRepository(db *sql.DB, driver string) *SecretRepository {
	return &SecretRepository{db: db, driver: driver}
}
