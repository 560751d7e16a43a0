// Package repository implements persistence for dynamic secrets, leases,
// lease events and provider credentials on PostgreSQL and MySQL.
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

const dynamicSecretColumns = `id, environment_id, name, path, provider, config, key_map,
	default_ttl_seconds, max_ttl_seconds, authentication_ref, created_at, deleted_at`

// DynamicSecretRepository implements DynamicSecret persistence. Config and
// key map are stored as JSON documents.
type DynamicSecretRepository struct {
	db     *sql.DB
	driver string
}

func (r *DynamicSecretRepository) Create(ctx context.Context, dynamicSecret *dynamicDomain.DynamicSecret) error {
	querier := database.GetTx(ctx, r.db)

	keyMap, err := json.Marshal(dynamicSecret.KeyMap)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key map")
	}
	config := dynamicSecret.Config
	if len(config) == 0 {
		config = json.RawMessage("{}")
	}

	query := database.Rebind(r.driver, `INSERT INTO dynamic_secrets (`+dynamicSecretColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = querier.ExecContext(
		ctx,
		query,
		dynamicSecret.ID,
		dynamicSecret.EnvironmentID,
		dynamicSecret.Name,
		dynamicSecret.Path,
		string(dynamicSecret.Provider),
		string(config),
		string(keyMap),
		int64(dynamicSecret.DefaultTTL/time.Second),
		int64(dynamicSecret.MaxTTL/time.Second),
		dynamicSecret.AuthenticationRef,
		dynamicSecret.CreatedAt,
		dynamicSecret.DeletedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create dynamic secret")
	}
	return nil
}

// Get returns the dynamic secret, soft-deleted or not.
func (r *DynamicSecretRepository) Get(
	ctx context.Context,
	dynamicSecretID uuid.UUID,
) (*dynamicDomain.DynamicSecret, error) {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `SELECT `+dynamicSecretColumns+` FROM dynamic_secrets WHERE id = ?`)

	var (
		ds         dynamicDomain.DynamicSecret
		provider   string
		config     []byte
		keyMap     []byte
		defaultTTL int64
		maxTTL     int64
	)
	err := querier.QueryRowContext(ctx, query, dynamicSecretID).Scan(
		&ds.ID,
		&ds.EnvironmentID,
		&ds.Name,
		&ds.Path,
		&provider,
		&config,
		&keyMap,
		&defaultTTL,
		&maxTTL,
		&ds.AuthenticationRef,
		&ds.CreatedAt,
		&ds.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dynamicDomain.ErrDynamicSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get dynamic secret")
	}

	if err := json.Unmarshal(keyMap, &ds.KeyMap); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal key map")
	}
	ds.Provider = dynamicDomain.Provider(provider)
	ds.Config = json.RawMessage(config)
	ds.DefaultTTL = time.Duration(defaultTTL) * time.Second
	ds.MaxTTL = time.Duration(maxTTL) * time.Second
	return &ds, nil
}

// Delete soft deletes a live dynamic secret.
func (r *DynamicSecretRepository) Delete(ctx context.Context, dynamicSecretID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `UPDATE dynamic_secrets SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`)

	result, err := querier.ExecContext(ctx, query, time.Now().UTC(), dynamicSecretID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete dynamic secret")
	}
	return requireAffected(result, dynamicDomain.ErrDynamicSecretNotFound)
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

// NewDynamicSecretRepository creates a DynamicSecretRepository for the given driver.
func NewDynamicSecretRepository(db *sql.DB, driver string) *DynamicSecretRepository {
	return &DynamicSecretRepository{db: db, driver: driver}
}
