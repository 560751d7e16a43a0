package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/envsecrets/internal/database"
	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
	apperrors "github.com/allisson/envsecrets/internal/errors"
)

// ProviderCredentialsRepository implements ProviderCredentials persistence.
type ProviderCredentialsRepository struct {
	db     *sql.DB
	driver string
}

func (r *ProviderCredentialsRepository) Create(
	ctx context.Context,
	credentials *dynamicDomain.ProviderCredentials,
) error {
	querier := database.GetTx(ctx, r.db)

	sealed, err := json.Marshal(credentials.Credentials)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal provider credentials")
	}

	query := database.Rebind(r.driver, `INSERT INTO provider_credentials
		(id, organization_id, name, provider, credentials, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err = querier.ExecContext(
		ctx,
		query,
		credentials.ID,
		credentials.OrganizationID,
		credentials.Name,
		string(credentials.Provider),
		string(sealed),
		credentials.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "provider credentials name already in use")
		}
		return apperrors.Wrap(err, "failed to create provider credentials")
	}
	return nil
}

func (r *ProviderCredentialsRepository) Get(
	ctx context.Context,
	credentialsID uuid.UUID,
) (*dynamicDomain.ProviderCredentials, error) {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `SELECT id, organization_id, name, provider, credentials, created_at
		FROM provider_credentials WHERE id = ?`)

	var (
		creds    dynamicDomain.ProviderCredentials
		provider string
		sealed   []byte
	)
	err := querier.QueryRowContext(ctx, query, credentialsID).Scan(
		&creds.ID,
		&creds.OrganizationID,
		&creds.Name,
		&provider,
		&sealed,
		&creds.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dynamicDomain.ErrProviderCredentialsNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get provider credentials")
	}

	if err := json.Unmarshal(sealed, &creds.Credentials); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal provider credentials")
	}
	creds.Provider = dynamicDomain.Provider(provider)
	return &creds, nil
}

// NewProviderCredentialsRepository creates a ProviderCredentialsRepository for the given driver.
func NewProviderCredentialsRepository(db *sql.DB, driver string) *ProviderCredentialsRepository {
	return &ProviderCredentialsRepository{db: db, driver: driver}
}
