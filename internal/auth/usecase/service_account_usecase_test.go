package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	"github.com/allisson/envsecrets/internal/auth/usecase/mocks"
	apperrors "github.com/allisson/envsecrets/internal/errors"
)

func TestServiceAccountUseCase_Create(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.Must(uuid.NewV7())

	t.Run("success", func(t *testing.T) {
		repo := &mocks.MockServiceAccountRepository{}
		secretSvc := &mocks.MockSecretService{}
		secretSvc.On("GenerateSecret").Return("es_sa_plain", "hashed", nil)
		repo.On("Create", ctx, mock.MatchedBy(func(sa *authDomain.ServiceAccount) bool {
			return sa.OrganizationID == orgID && sa.Name == "deploy-bot" && sa.SecretHash == "hashed" && sa.IsActive
		})).Return(nil)

		out, err := NewServiceAccountUseCase(repo, secretSvc).Create(ctx, orgID, "  deploy-bot ")

		require.NoError(t, err)
		assert.Equal(t, "es_sa_plain", out.PlainSecret)
		assert.Equal(t, "deploy-bot", out.ServiceAccount.Name)
		assert.NotEqual(t, uuid.Nil, out.ServiceAccount.ID)
		repo.AssertExpectations(t)
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := NewServiceAccountUseCase(nil, nil).Create(ctx, orgID, "   ")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := &mocks.MockServiceAccountRepository{}
		secretSvc := &mocks.MockSecretService{}
		boom := errors.New("insert failed")
		secretSvc.On("GenerateSecret").Return("plain", "hashed", nil)
		repo.On("Create", ctx, mock.Anything).Return(boom)

		_, err := NewServiceAccountUseCase(repo, secretSvc).Create(ctx, orgID, "ci")
		assert.ErrorIs(t, err, boom)
	})
}
