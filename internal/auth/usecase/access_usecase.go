package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	apperrors "github.com/allisson/envsecrets/internal/errors"
)

type accessUseCase struct {
	repo EnvironmentAccessRepository
}

func (a *accessUseCase) CanAccessEnvironment(
	ctx context.Context,
	principal *authDomain.Principal,
	environmentID uuid.UUID,
) (bool, error) {
	if principal == nil {
		return true, nil
	}
	return a.repo.Exists(ctx, principal.Type, principal.ID, environmentID)
}

func (a *accessUseCase) Grant(
	ctx context.Context,
	principalType authDomain.PrincipalType,
	principalID uuid.UUID,
	environmentID uuid.UUID,
) error {
	if !principalType.Valid() {
		return authDomain.ErrInvalidPrincipalType
	}

	err := a.repo.Create(ctx, &authDomain.EnvironmentAccess{
		PrincipalType: principalType,
		PrincipalID:   principalID,
		EnvironmentID: environmentID,
		CreatedAt:     time.Now().UTC(),
	})
	if errors.Is(err, apperrors.ErrConflict) {
		return nil
	}
	return err
}

// NewAccessUseCase creates the grant-table backed AccessUseCase.
func NewAccessUseCase(repo EnvironmentAccessRepository) AccessUseCase {
	return &accessUseCase{repo: repo}
}
