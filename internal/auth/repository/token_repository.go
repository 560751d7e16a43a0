package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	"github.com/allisson/envsecrets/internal/database"
	apperrors "github.com/allisson/envsecrets/internal/errors"
)

// TokenRepository implements token persistence.
type TokenRepository struct {
	db     *sql.DB
	driver string
}

// Create inserts a new token hash.
func (r *TokenRepository) Create(ctx context.Context, token *authDomain.Token) error {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `INSERT INTO tokens
		(id, service_account_id, token_hash, expires_at, revoked_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := querier.ExecContext(ctx, query,
		token.ID, token.ServiceAccountID, token.TokenHash, token.ExpiresAt, token.RevokedAt, token.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create token")
	}
	return nil
}

// GetByTokenHash retrieves a token by its SHA-256 hash.
func (r *TokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error) {
	querier := database.GetTx(ctx, r.db)

	query := database.Rebind(r.driver, `SELECT id, service_account_id, token_hash, expires_at, revoked_at, created_at
		FROM tokens WHERE token_hash = ?`)

	var token authDomain.Token
	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID, &token.ServiceAccountID, &token.TokenHash, &token.ExpiresAt, &token.RevokedAt, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token")
	}
	return &token, nil
}

// DeleteExpired removes tokens that expired before the cutoff. With dryRun
// the matching rows are only counted.
func (r *TokenRepository) DeleteExpired(ctx context.Context, before time.Time, dryRun bool) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	if dryRun {
		var count int64
		query := database.Rebind(r.driver, `SELECT COUNT(*) FROM tokens WHERE expires_at < ?`)
		if err := querier.QueryRowContext(ctx, query, before).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count expired tokens")
		}
		return count, nil
	}

	query := database.Rebind(r.driver, `DELETE FROM tokens WHERE expires_at < ?`)
	result, err := querier.ExecContext(ctx, query, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired tokens")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows")
	}
	return count, nil
}

// NewTokenRepository creates a repository for the given driver.
func NewTokenRepository(db *sql.DB, driver string) *TokenRepository {
	return &TokenRepository{db: db, driver: driver}
}
