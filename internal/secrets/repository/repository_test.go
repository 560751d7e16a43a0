package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/envsecrets/internal/database"
	secretsDomain "github.com/allisson/envsecrets/internal/secrets/domain"
)

var secretRowColumns = []string{
	"id", "environment_id", "path", "secret_key", "key_digest", "secret_value", "secret_comment",
	"version", "created_at", "updated_at", "deleted_at",
}

func newSecret() *secretsDomain.Secret {
	now := time.Now().UTC()
	return &secretsDomain.Secret{
		ID:            uuid.Must(uuid.NewV7()),
		EnvironmentID: uuid.Must(uuid.NewV7()),
		Path:          "/db",
		Key:           "ph:v1:key",
		KeyDigest:     "digest",
		Value:         "ph:v1:value",
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func secretRow(s *secretsDomain.Secret) *sqlmock.Rows {
	return sqlmock.NewRows(secretRowColumns).AddRow(
		s.ID.String(), s.EnvironmentID.String(), s.Path, s.Key, s.KeyDigest, s.Value, s.Comment,
		s.Version, s.CreatedAt, s.UpdatedAt, nil,
	)
}

func TestSecretRepository_Create(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewSecretRepository(db, database.DriverPostgres)
	secret := newSecret()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO secrets")).
		WithArgs(secret.ID, secret.EnvironmentID, secret.Path, secret.Key, secret.KeyDigest, secret.Value,
			secret.Comment, secret.Version, secret.CreatedAt, secret.UpdatedAt, secret.DeletedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(ctx, secret))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO secrets")).
		WillReturnError(&pq.Error{Code: "23505"})
	assert.ErrorIs(t, repo.Create(ctx, secret), secretsDomain.ErrDuplicateSecret)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSecretRepository_GetByDigest(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewSecretRepository(db, database.DriverPostgres)
	secret := newSecret()

	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE environment_id = $1 AND path = $2 AND key_digest = $3 AND deleted_at IS NULL")).
		WithArgs(secret.EnvironmentID, secret.Path, secret.KeyDigest).
		WillReturnRows(secretRow(secret))

	got, err := repo.GetByDigest(ctx, secret.EnvironmentID, secret.Path, secret.KeyDigest)
	require.NoError(t, err)
	assert.Equal(t, secret.ID, got.ID)
	assert.Equal(t, uint(1), got.Version)
	assert.Nil(t, got.DeletedAt)

	mock.ExpectQuery("FROM secrets").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByDigest(ctx, secret.EnvironmentID, secret.Path, "other")
	assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSecretRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewSecretRepository(db, database.DriverMySQL)
	secret := newSecret()
	secret.Version = 2

	mock.ExpectExec(regexp.QuoteMeta("UPDATE secrets")).
		WithArgs(secret.Key, secret.KeyDigest, secret.Value, secret.Comment, secret.Version, secret.UpdatedAt, secret.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(ctx, secret))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE secrets")).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Update(ctx, secret), secretsDomain.ErrSecretNotFound)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE secrets SET deleted_at = ? WHERE id = ?")).
		WithArgs(sqlmock.AnyArg(), secret.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(ctx, secret.ID))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE secrets SET deleted_at")).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, secret.ID), secretsDomain.ErrSecretNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSecretRepository_ListByPath(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewSecretRepository(db, database.DriverPostgres)
	first := newSecret()
	second := newSecret()
	second.EnvironmentID = first.EnvironmentID

	rows := secretRow(first).AddRow(
		second.ID.String(), second.EnvironmentID.String(), second.Path, second.Key, second.KeyDigest,
		second.Value, second.Comment, second.Version, second.CreatedAt, second.UpdatedAt, nil,
	)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at ASC, id ASC")).
		WithArgs(first.EnvironmentID, "/db").
		WillReturnRows(rows)

	got, err := repo.ListByPath(ctx, first.EnvironmentID, "/db")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppAndEnvironmentRepositories(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	apps := NewAppRepository(db, database.DriverPostgres)
	envs := NewEnvironmentRepository(db, database.DriverPostgres)
	orgID := uuid.Must(uuid.NewV7())
	appID := uuid.Must(uuid.NewV7())
	envID := uuid.Must(uuid.NewV7())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE organization_id = $1 AND LOWER(name) = LOWER($2)")).
		WithArgs(orgID, "billing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "name"}).
			AddRow(appID.String(), orgID.String(), "Billing"))

	app, err := apps.GetByName(ctx, orgID, "billing")
	require.NoError(t, err)
	assert.Equal(t, appID, app.ID)
	assert.Equal(t, "Billing", app.Name)

	mock.ExpectQuery("FROM apps").WillReturnError(sql.ErrNoRows)
	_, err = apps.Get(ctx, appID)
	assert.ErrorIs(t, err, secretsDomain.ErrAppNotFound)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE app_id = $1 AND LOWER(name) = LOWER($2)")).
		WithArgs(appID, "PROD").
		WillReturnRows(sqlmock.NewRows([]string{"id", "app_id", "name"}).
			AddRow(envID.String(), appID.String(), "Prod"))

	env, err := envs.GetByName(ctx, appID, "PROD")
	require.NoError(t, err)
	assert.Equal(t, envID, env.ID)

	mock.ExpectQuery("FROM environments").WillReturnError(sql.ErrNoRows)
	_, err = envs.Get(ctx, envID)
	assert.ErrorIs(t, err, secretsDomain.ErrEnvironmentNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
