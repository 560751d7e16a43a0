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

// AppRepository reads apps. Name lookups are case-insensitive.
type AppRepository struct {
	db     *sql.DB
	driver string
}

func (r *AppRepository) Get(ctx context.Context, appID uuid.UUID) (*secretsDomain.App, error) {
	query := database.Rebind(r.driver, `SELECT id, organization_id, name
		FROM apps WHERE id = ? AND deleted_at IS NULL`)

	return r.scan(database.GetTx(ctx, r.db).QueryRowContext(ctx, query, appID))
}

func (r *AppRepository) GetByName(
	ctx context.Context,
	organizationID uuid.UUID,
	name string,
) (*secretsDomain.App, error) {
	query := database.Rebind(r.driver, `SELECT id, organization_id, name
		FROM apps
		WHERE organization_id = ? AND LOWER(name) = LOWER(?) AND deleted_at IS NULL`)

	return r.scan(database.GetTx(ctx, r.db).QueryRowContext(ctx, query, organizationID, name))
}

func (r *AppRepository) scan(row *sql.Row) (*secretsDomain.App, error) {
	var app secretsDomain.App
	if err := row.Scan(&app.ID, &app.OrganizationID, &app.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, secretsDomain.ErrAppNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get app")
	}
	return &app, nil
}

// NewAppRepository creates an AppRepository for the given driver.
func NewAppRepository(db *sql.DB, driver string) *AppRepository {
	return &AppRepository{db: db, driver: driver}
}
