package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	authService "github.com/allisson/envsecrets/internal/auth/service"
	apperrors "github.com/allisson/envsecrets/internal/errors"
)

type serviceAccountUseCase struct {
	repo          ServiceAccountRepository
	secretService authService.SecretService
}

func (s *serviceAccountUseCase) Create(
	ctx context.Context,
	organizationID uuid.UUID,
	name string,
) (*authDomain.CreateServiceAccountOutput, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "service account name is required")
	}

	plainSecret, hashedSecret, err := s.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	sa := &authDomain.ServiceAccount{
		ID:             uuid.Must(uuid.NewV7()),
		OrganizationID: organizationID,
		Name:           name,
		SecretHash:     hashedSecret,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, sa); err != nil {
		return nil, err
	}

	return &authDomain.CreateServiceAccountOutput{ServiceAccount: sa, PlainSecret: plainSecret}, nil
}

// NewServiceAccountUseCase creates a new ServiceAccountUseCase.
func NewServiceAccountUseCase(
	repo ServiceAccountRepository,
	secretService authService.SecretService,
) ServiceAccountUseCase {
	return &serviceAccountUseCase{repo: repo, secretService: secretService}
}
