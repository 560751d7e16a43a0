package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	"github.com/allisson/envsecrets/internal/database"
	apperrors "github.com/allisson/envsecrets/internal/errors"
)

// EnvironmentAccessRepository implements environment grant persistence.
type EnvironmentAccessRepository struct {
	db     *sql.DB
	driver string
}

// Create inserts a grant. An existing grant yields ErrConflict.
func (r *EnvironmentAccessRepository) Create(ctx context.Context, access *authDomain.EnvironmentAccess) error {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `INSERT INTO environment_access
		(principal_type, principal_id, environment_id, created_at)
		VALUES (?, ?, ?, ?)`)

	_, err := querier.ExecContext(ctx, query,
		string(access.PrincipalType), access.PrincipalID, access.EnvironmentID, access.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "environment access already granted")
		}
		return apperrors.Wrap(err, "failed to create environment access")
	}
	return nil
}

// Exists reports whether a grant exists.
func (r *EnvironmentAccessRepository) Exists(
	ctx context.Context,
	principalType authDomain.PrincipalType,
	principalID uuid.UUID,
	environmentID uuid.UUID,
) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `SELECT COUNT(*) FROM environment_access
		WHERE principal_type = ? AND principal_id = ? AND environment_id = ?`)

	var count int
	if err := querier.QueryRowContext(ctx, query, string(principalType), principalID, environmentID).
		Scan(&count); err != nil {
		return false, apperrors.Wrap(err, "failed to check environment access")
	}
	return count > 0, nil
}

// NewEnvironmentAccessRepository creates a repository for the given driver.
func NewEnvironmentAccessRepository(db *sql.DB, driver string) *EnvironmentAccessRepository {
	return &EnvironmentAccessRepository{db: db, driver: driver}
}
