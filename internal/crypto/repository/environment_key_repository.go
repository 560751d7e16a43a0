// Package repository persists wrapped environment key material for PostgreSQL
// and MySQL. Queries are written with '?' placeholders and rebound per driver.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
	"github.com/allisson/envsecrets/internal/database"
	apperrors "github.com/allisson/envsecrets/internal/errors"
)

// EnvironmentKeyRepository implements environment key persistence.
type EnvironmentKeyRepository struct {
	db     *sql.DB
	driver string
}

// Create inserts the wrapped key material. A second insert for the same
// environment fails with ErrEnvironmentKeysAlreadyExist.
func (r *EnvironmentKeyRepository) Create(ctx context.Context, keys *cryptoDomain.EnvironmentKeys) error {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `INSERT INTO environment_keys
		(environment_id, wrapped_seed, wrapped_salt, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?)`)

	_, err := querier.ExecContext(
		ctx,
		query,
		keys.EnvironmentID,
		keys.WrappedSeed,
		keys.WrappedSalt,
		keys.CreatedAt,
		keys.DeletedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return cryptoDomain.ErrEnvironmentKeysAlreadyExist
		}
		return apperrors.Wrap(err, "failed to create environment keys")
	}
	return nil
}

// GetByEnvironmentID returns the live key material of an environment.
func (r *EnvironmentKeyRepository) GetByEnvironmentID(
	ctx context.Context,
	environmentID uuid.UUID,
) (*cryptoDomain.EnvironmentKeys, error) {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `SELECT environment_id, wrapped_seed, wrapped_salt, created_at, deleted_at
		FROM environment_keys
		WHERE environment_id = ? AND deleted_at IS NULL`)

	var keys cryptoDomain.EnvironmentKeys
	err := querier.QueryRowContext(ctx, query, environmentID).Scan(
		&keys.EnvironmentID,
		&keys.WrappedSeed,
		&keys.WrappedSalt,
		&keys.CreatedAt,
		&keys.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrEnvironmentKeysNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get environment keys")
	}
	return &keys, nil
}

// NewEnvironmentKeyRepository creates a repository for the given driver.
func NewEnvironmentKeyRepository(db *sql.DB, driver string) *EnvironmentKeyRepository {
	return &EnvironmentKeyRepository{db: db, driver: driver}
}
