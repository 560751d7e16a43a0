package usecase

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
	cryptoService "github.com/allisson/envsecrets/internal/crypto/service"
	apperrors "github.com/allisson/envsecrets/internal/errors"
)

// environmentKeyUseCase caches unwrapped contexts; key material never changes
// after creation so entries are never invalidated.
type environmentKeyUseCase struct {
	repo      EnvironmentKeyRepository
	serverKey *cryptoDomain.KeyPair
	cache     sync.Map
}

func (e *environmentKeyUseCase) Create(
	ctx context.Context,
	environmentID uuid.UUID,
) (*cryptoDomain.EnvironmentKeys, error) {
	seedHex, err := cryptoService.RandomHex(cryptoDomain.KeySize)
	if err != nil {
		return nil, err
	}
	saltHex, err := cryptoService.RandomHex(cryptoDomain.KeySize)
	if err != nil {
		return nil, err
	}

	serverPub := e.serverKey.PublicKeyHex()
	wrappedSeed, err := cryptoService.EncryptAsymmetric(seedHex, serverPub)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to wrap environment seed")
	}
	wrappedSalt, err := cryptoService.EncryptAsymmetric(saltHex, serverPub)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to wrap environment salt")
	}

	keys := &cryptoDomain.EnvironmentKeys{
		EnvironmentID: environmentID,
		WrappedSeed:   wrappedSeed,
		WrappedSalt:   wrappedSalt,
		CreatedAt:     time.Now().UTC(),
	}
	if err := e.repo.Create(ctx, keys); err != nil {
		return nil, err
	}
	return keys, nil
}

func (e *environmentKeyUseCase) Unwrap(
	ctx context.Context,
	environmentID uuid.UUID,
) (*cryptoDomain.EnvironmentContext, error) {
	if cached, ok := e.cache.Load(environmentID); ok {
		return cached.(*cryptoDomain.EnvironmentContext), nil
	}

	keys, err := e.repo.GetByEnvironmentID(ctx, environmentID)
	if err != nil {
		return nil, err
	}

	seedHex, err := cryptoService.DecryptWithKeyPair(keys.WrappedSeed, e.serverKey)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unwrap environment seed")
	}
	salt, err := cryptoService.DecryptWithKeyPair(keys.WrappedSalt, e.serverKey)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unwrap environment salt")
	}

	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, cryptoDomain.ErrInvalidKeyEncoding
	}
	defer cryptoDomain.Zero(seed)

	kp, err := cryptoService.DeriveKeyPair(seed)
	if err != nil {
		return nil, err
	}

	envCtx := &cryptoDomain.EnvironmentContext{
		EnvironmentID: environmentID,
		Salt:          salt,
		KeyPair:       kp,
	}
	actual, _ := e.cache.LoadOrStore(environmentID, envCtx)
	return actual.(*cryptoDomain.EnvironmentContext), nil
}

// NewEnvironmentKeyUseCase creates an EnvironmentKeyUseCase bound to the server keypair.
func NewEnvironmentKeyUseCase(
	repo EnvironmentKeyRepository,
	serverKey *cryptoDomain.KeyPair,
) EnvironmentKeyUseCase {
	return &environmentKeyUseCase{repo: repo, serverKey: serverKey}
}
