package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
	cryptoService "github.com/allisson/envsecrets/internal/crypto/service"
	cryptoUseCase "github.com/allisson/envsecrets/internal/crypto/usecase"
	"github.com/allisson/envsecrets/internal/database"
	secretsDomain "github.com/allisson/envsecrets/internal/secrets/domain"
)

type secretUseCase struct {
	txManager  database.TxManager
	secretRepo SecretRepository
	envKeys    cryptoUseCase.EnvironmentKeyUseCase
	access     AccessChecker
	resolver   ReferenceResolver
}

// Create encrypts and stores a new secret at version 1.
func (s *secretUseCase) Create(
	ctx context.Context,
	input *secretsDomain.CreateSecretInput,
) (*secretsDomain.DecryptedSecret, error) {
	envCtx, err := s.envKeys.Unwrap(ctx, input.EnvironmentID)
	if err != nil {
		return nil, err
	}

	path := secretsDomain.NormalizePath(input.Path)
	digest, err := cryptoService.KeyDigest(input.Key, envCtx.Salt)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	secret := &secretsDomain.Secret{
		ID:            uuid.Must(uuid.NewV7()),
		EnvironmentID: input.EnvironmentID,
		Path:          path,
		KeyDigest:     digest,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := encryptFields(secret, envCtx, input.Key, input.Value, input.Comment); err != nil {
		return nil, err
	}

	err = s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.ensureUnique(txCtx, input.EnvironmentID, path, digest); err != nil {
			return err
		}
		return s.secretRepo.Create(txCtx, secret)
	})
	if err != nil {
		return nil, err
	}

	return decryptedView(secret, input.Key, input.Value, input.Comment), nil
}

// Update re-encrypts every field and bumps the version. A changed key name is
// checked against the other secrets at the same path.
func (s *secretUseCase) Update(
	ctx context.Context,
	input *secretsDomain.UpdateSecretInput,
) (*secretsDomain.DecryptedSecret, error) {
	var updated *secretsDomain.Secret

	err := s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		secret, err := s.secretRepo.Get(txCtx, input.ID)
		if err != nil {
			return err
		}

		envCtx, err := s.envKeys.Unwrap(txCtx, secret.EnvironmentID)
		if err != nil {
			return err
		}

		digest, err := cryptoService.KeyDigest(input.Key, envCtx.Salt)
		if err != nil {
			return err
		}
		if !cryptoService.DigestEqual(digest, secret.KeyDigest) {
			if err := s.ensureUnique(txCtx, secret.EnvironmentID, secret.Path, digest); err != nil {
				return err
			}
		}

		secret.KeyDigest = digest
		secret.Version++
		secret.UpdatedAt = time.Now().UTC()
		if err := encryptFields(secret, envCtx, input.Key, input.Value, input.Comment); err != nil {
			return err
		}
		if err := s.secretRepo.Update(txCtx, secret); err != nil {
			return err
		}

		updated = secret
		return nil
	})
	if err != nil {
		return nil, err
	}

	return decryptedView(updated, input.Key, input.Value, input.Comment), nil
}

// Delete tombstones a secret.
func (s *secretUseCase) Delete(ctx context.Context, secretID uuid.UUID) error {
	return s.secretRepo.Delete(ctx, secretID)
}

func (s *secretUseCase) Get(
	ctx context.Context,
	environmentID uuid.UUID,
	path, keyName string,
	opts secretsDomain.ResolveOptions,
) (*secretsDomain.DecryptedSecret, error) {
	if err := s.checkAccess(ctx, opts.Principal, environmentID); err != nil {
		return nil, err
	}

	envCtx, err := s.envKeys.Unwrap(ctx, environmentID)
	if err != nil {
		return nil, err
	}

	digest, err := cryptoService.KeyDigest(keyName, envCtx.Salt)
	if err != nil {
		return nil, err
	}

	secret, err := s.secretRepo.GetByDigest(ctx, environmentID, secretsDomain.NormalizePath(path), digest)
	if err != nil {
		return nil, err
	}
	if !cryptoService.DigestEqual(secret.KeyDigest, digest) {
		return nil, secretsDomain.ErrSecretNotFound
	}

	return s.decryptAndResolve(ctx, secret, envCtx, opts)
}

func (s *secretUseCase) List(
	ctx context.Context,
	environmentID uuid.UUID,
	path string,
	opts secretsDomain.ResolveOptions,
) ([]*secretsDomain.DecryptedSecret, error) {
	if err := s.checkAccess(ctx, opts.Principal, environmentID); err != nil {
		return nil, err
	}

	envCtx, err := s.envKeys.Unwrap(ctx, environmentID)
	if err != nil {
		return nil, err
	}

	secrets, err := s.secretRepo.ListByPath(ctx, environmentID, secretsDomain.NormalizePath(path))
	if err != nil {
		return nil, err
	}

	out := make([]*secretsDomain.DecryptedSecret, 0, len(secrets))
	for _, secret := range secrets {
		decrypted, err := s.decryptAndResolve(ctx, secret, envCtx, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, decrypted)
	}
	return out, nil
}

func (s *secretUseCase) checkAccess(
	ctx context.Context,
	principal *authDomain.Principal,
	environmentID uuid.UUID,
) error {
	allowed, err := s.access.CanAccessEnvironment(ctx, principal, environmentID)
	if err != nil {
		return err
	}
	if !allowed {
		return authDomain.ErrEnvironmentAccessDenied
	}
	return nil
}

func (s *secretUseCase) ensureUnique(
	ctx context.Context,
	environmentID uuid.UUID,
	path, digest string,
) error {
	_, err := s.secretRepo.GetByDigest(ctx, environmentID, path, digest)
	switch {
	case err == nil:
		return secretsDomain.ErrDuplicateSecret
	case errors.Is(err, secretsDomain.ErrSecretNotFound):
		return nil
	default:
		return err
	}
}

func (s *secretUseCase) decryptAndResolve(
	ctx context.Context,
	secret *secretsDomain.Secret,
	envCtx *cryptoDomain.EnvironmentContext,
	opts secretsDomain.ResolveOptions,
) (*secretsDomain.DecryptedSecret, error) {
	key, err := cryptoService.DecryptWithKeyPair(secret.Key, envCtx.KeyPair)
	if err != nil {
		return nil, err
	}
	value, err := cryptoService.DecryptWithKeyPair(secret.Value, envCtx.KeyPair)
	if err != nil {
		return nil, err
	}
	comment := ""
	if secret.Comment != "" {
		comment, err = cryptoService.DecryptWithKeyPair(secret.Comment, envCtx.KeyPair)
		if err != nil {
			return nil, err
		}
	}

	value, err = s.resolver.Resolve(ctx, secret.EnvironmentID, value, opts)
	if err != nil {
		return nil, err
	}

	return decryptedView(secret, key, value, comment), nil
}

// encryptFields seals key, value and comment under the environment public key.
// An empty comment is stored empty.
func encryptFields(
	secret *secretsDomain.Secret,
	envCtx *cryptoDomain.EnvironmentContext,
	key, value, comment string,
) error {
	publicKey := envCtx.KeyPair.PublicKeyHex()

	var err error
	if secret.Key, err = cryptoService.EncryptAsymmetric(key, publicKey); err != nil {
		return err
	}
	if secret.Value, err = cryptoService.EncryptAsymmetric(value, publicKey); err != nil {
		return err
	}
	secret.Comment = ""
	if comment != "" {
		if secret.Comment, err = cryptoService.EncryptAsymmetric(comment, publicKey); err != nil {
			return err
		}
	}
	return nil
}

func decryptedView(secret *secretsDomain.Secret, key, value, comment string) *secretsDomain.DecryptedSecret {
	return &secretsDomain.DecryptedSecret{
		ID:            secret.ID,
		EnvironmentID: secret.EnvironmentID,
		Path:          secret.Path,
		Key:           key,
		Value:         value,
		Comment:       comment,
		Version:       secret.Version,
		UpdatedAt:     secret.UpdatedAt,
	}
}

// NewSecretUseCase creates a SecretUseCase.
func NewSecretUseCase(
	txManager database.TxManager,
	secretRepo SecretRepository,
	envKeys cryptoUseCase.EnvironmentKeyUseCase,
	access AccessChecker,
	resolver ReferenceResolver,
) SecretUseCase {
	return &secretUseCase{
		txManager:  txManager,
		secretRepo: secretRepo,
		envKeys:    envKeys,
		access:     access,
		resolver:   resolver,
	}
}
