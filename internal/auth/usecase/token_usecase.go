package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	authService "github.com/allisson/envsecrets/internal/auth/service"
)

type tokenUseCase struct {
	tokenExpiration    time.Duration
	serviceAccountRepo ServiceAccountRepository
	tokenRepo          TokenRepository
	secretService      authService.SecretService
	tokenService       authService.TokenService
}

// Issue verifies the service account secret and stores a new token hash.
// Unknown accounts and wrong secrets both yield ErrInvalidCredentials.
func (t *tokenUseCase) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	sa, err := t.serviceAccountRepo.Get(ctx, input.ServiceAccountID)
	if err != nil {
		if errors.Is(err, authDomain.ErrServiceAccountNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !t.secretService.CompareSecret(input.Secret, sa.SecretHash) {
		return nil, authDomain.ErrInvalidCredentials
	}
	if !sa.IsActive {
		return nil, authDomain.ErrServiceAccountInactive
	}

	plainToken, tokenHash, err := t.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	token := &authDomain.Token{
		ID:               uuid.Must(uuid.NewV7()),
		ServiceAccountID: sa.ID,
		TokenHash:        tokenHash,
		ExpiresAt:        now.Add(t.tokenExpiration),
		CreatedAt:        now,
	}
	if err := t.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return &authDomain.IssueTokenOutput{
		PlainToken: plainToken,
		ExpiresAt:  token.ExpiresAt,
	}, nil
}

// Authenticate resolves a token hash to the acting principal.
func (t *tokenUseCase) Authenticate(ctx context.Context, tokenHash string) (*authDomain.Principal, error) {
	token, err := t.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, authDomain.ErrTokenNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if token.RevokedAt != nil || token.ExpiresAt.Before(time.Now().UTC()) {
		return nil, authDomain.ErrInvalidCredentials
	}

	sa, err := t.serviceAccountRepo.Get(ctx, token.ServiceAccountID)
	if err != nil {
		if errors.Is(err, authDomain.ErrServiceAccountNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !sa.IsActive {
		return nil, authDomain.ErrServiceAccountInactive
	}

	return sa.Principal(), nil
}

func (t *tokenUseCase) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, authDomain.ErrInvalidCleanupDays
	}
	before := time.Now().UTC().AddDate(0, 0, -days)
	return t.tokenRepo.DeleteExpired(ctx, before, dryRun)
}

// NewTokenUseCase creates a new TokenUseCase.
func NewTokenUseCase(
	tokenExpiration time.Duration,
	serviceAccountRepo ServiceAccountRepository,
	tokenRepo TokenRepository,
	secretService authService.SecretService,
	tokenService authService.TokenService,
) TokenUseCase {
	return &tokenUseCase{
		tokenExpiration:    tokenExpiration,
		serviceAccountRepo: serviceAccountRepo,
		tokenRepo:          tokenRepo,
		secretService:      secretService,
		tokenService:       tokenService,
	}
}
