// Package repository implements auth persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	"github.com/allisson/envsecrets/internal/database"
	apperrors "github.com/allisson/envsecrets/internal/errors"
)

// ServiceAccountRepository implements service account persistence.
type ServiceAccountRepository struct {
	db     *sql.DB
	driver string
}

// Create inserts a new service account.
func (r *ServiceAccountRepository) Create(ctx context.Context, sa *authDomain.ServiceAccount) error {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `INSERT INTO service_accounts
		(id, organization_id, name, secret_hash, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := querier.ExecContext(ctx, query,
		sa.ID, sa.OrganizationID, sa.Name, sa.SecretHash, sa.IsActive, sa.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create service account")
	}
	return nil
}

// Get retrieves a service account by ID.
func (r *ServiceAccountRepository) Get(ctx context.Context, id uuid.UUID) (*authDomain.ServiceAccount, error) {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `SELECT id, organization_id, name, secret_hash, is_active, created_at
		FROM service_accounts WHERE id = ?`)

	var sa authDomain.ServiceAccount
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&sa.ID, &sa.OrganizationID, &sa.Name, &sa.SecretHash, &sa.IsActive, &sa.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrServiceAccountNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get service account")
	}
	return &sa, nil
}

// NewServiceAccountRepository creates a repository for the given driver.
func NewServiceAccountRepository(db *sql.DB, driver string) *ServiceAccountRepository {
	return &ServiceAccountRepository{db: db, driver: driver}
}
