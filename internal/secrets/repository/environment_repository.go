package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/envsecrets/internal/database"
	apperrors "github.com/allisson/envsecrets/internal/errors"
	secretsDomain "github.com/allisson/envsecrets/internal/secrets/domain"
)

// EnvironmentRepository reads environments. Name lookups are case-insensitive.
type EnvironmentRepository struct {
	db     *sql.DB
	driver string
}

func (r *EnvironmentRepository) Get(ctx context.Context, environmentID uuid.UUID) (*secretsDomain.Environment, error) {
	query := database.Rebind(r.driver, `SELECT id, app_id, name
		FROM environments WHERE id = ? AND deleted_at IS NULL`)

	return r.scan(database.GetTx(ctx, r.db).QueryRowContext(ctx, query, environmentID))
}

func (r *EnvironmentRepository) GetByName(
	ctx context.Context,
	appID uuid.UUID,
	name string,
) (*secretsDomain.Environment, error) {
	query := database.Rebind(r.driver, `SELECT id, app_id, name
		FROM environments
		WHERE app_id = ? AND LOWER(name) = LOWER(?) AND deleted_at IS NULL`)

	return r.scan(database.GetTx(ctx, r.db).QueryRowContext(ctx, query, appID, name))
}

func (r *EnvironmentRepository) scan(row *sql.Row) (*secretsDomain.Environment, error) {
	var env secretsDomain.Environment
	if err := row.Scan(&env.ID, &env.AppID, &env.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, secretsDomain.ErrEnvironmentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get environment")
	}
	return &env, nil
}

// NewEnvironmentRepository creates an EnvironmentRepository for the given driver.
func NewEnvironmentRepository(db *sql.DB, driver string) *EnvironmentRepository {
	return &EnvironmentRepository{db: db, driver: driver}
}
