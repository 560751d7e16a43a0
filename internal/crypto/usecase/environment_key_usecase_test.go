package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
	cryptoService "github.com/allisson/envsecrets/internal/crypto/service"
	"github.com/allisson/envsecrets/internal/crypto/usecase/mocks"
)

func newServerKey(t *testing.T) *cryptoDomain.KeyPair {
	t.Helper()
	kp, err := cryptoService.GenerateKeyPair()
	require.NoError(t, err)
	return kp
}

func TestEnvironmentKeyUseCase_CreateAndUnwrap(t *testing.T) {
	ctx := context.Background()
	serverKey := newServerKey(t)
	envID := uuid.Must(uuid.NewV7())

	repo := &mocks.MockEnvironmentKeyRepository{}
	var stored *cryptoDomain.EnvironmentKeys
	repo.On("Create", ctx, mock.AnythingOfType("*domain.EnvironmentKeys")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*cryptoDomain.EnvironmentKeys)
		}).
		Return(nil).Once()

	uc := NewEnvironmentKeyUseCase(repo, serverKey)

	keys, err := uc.Create(ctx, envID)
	require.NoError(t, err)
	assert.Equal(t, envID, keys.EnvironmentID)
	assert.True(t, cryptoService.ValidateEncryptedStringFormat(keys.WrappedSeed))
	assert.True(t, cryptoService.ValidateEncryptedStringFormat(keys.WrappedSalt))
	assert.NotEqual(t, keys.WrappedSeed, keys.WrappedSalt)

	repo.On("GetByEnvironmentID", ctx, envID).Return(stored, nil).Once()

	envCtx, err := uc.Unwrap(ctx, envID)
	require.NoError(t, err)
	assert.Len(t, envCtx.Salt, 64)
	assert.Len(t, envCtx.KeyPair.PublicKey, 32)

	// cached: the repository is not consulted again
	again, err := uc.Unwrap(ctx, envID)
	require.NoError(t, err)
	assert.Same(t, envCtx, again)

	repo.AssertExpectations(t)
}

func TestEnvironmentKeyUseCase_UnwrapIsDeterministic(t *testing.T) {
	ctx := context.Background()
	serverKey := newServerKey(t)
	envID := uuid.Must(uuid.NewV7())

	repo := &mocks.MockEnvironmentKeyRepository{}
	var stored *cryptoDomain.EnvironmentKeys
	repo.On("Create", ctx, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*cryptoDomain.EnvironmentKeys) }).
		Return(nil)

	_, err := NewEnvironmentKeyUseCase(repo, serverKey).Create(ctx, envID)
	require.NoError(t, err)
	repo.On("GetByEnvironmentID", ctx, envID).Return(stored, nil)

	a, err := NewEnvironmentKeyUseCase(repo, serverKey).Unwrap(ctx, envID)
	require.NoError(t, err)
	b, err := NewEnvironmentKeyUseCase(repo, serverKey).Unwrap(ctx, envID)
	require.NoError(t, err)

	assert.Equal(t, a.KeyPair.PublicKey, b.KeyPair.PublicKey)
	assert.Equal(t, a.Salt, b.Salt)
}

func TestEnvironmentKeyUseCase_UnwrapErrors(t *testing.T) {
	ctx := context.Background()
	envID := uuid.Must(uuid.NewV7())

	t.Run("not found", func(t *testing.T) {
		repo := &mocks.MockEnvironmentKeyRepository{}
		repo.On("GetByEnvironmentID", ctx, envID).Return(nil, cryptoDomain.ErrEnvironmentKeysNotFound)

		_, err := NewEnvironmentKeyUseCase(repo, newServerKey(t)).Unwrap(ctx, envID)
		assert.ErrorIs(t, err, cryptoDomain.ErrEnvironmentKeysNotFound)
	})

	t.Run("wrapped under another server key", func(t *testing.T) {
		other := newServerKey(t)
		seed, err := cryptoService.EncryptAsymmetric("00", other.PublicKeyHex())
		require.NoError(t, err)

		repo := &mocks.MockEnvironmentKeyRepository{}
		repo.On("GetByEnvironmentID", ctx, envID).Return(&cryptoDomain.EnvironmentKeys{
			EnvironmentID: envID,
			WrappedSeed:   seed,
			WrappedSalt:   seed,
		}, nil)

		_, err = NewEnvironmentKeyUseCase(repo, newServerKey(t)).Unwrap(ctx, envID)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})
}
