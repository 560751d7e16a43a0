package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
	cryptoService "github.com/allisson/envsecrets/internal/crypto/service"
	cryptoUseCase "github.com/allisson/envsecrets/internal/crypto/usecase"
	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
	secretsDomain "github.com/allisson/envsecrets/internal/secrets/domain"
)

type dynamicSecretUseCase struct {
	serverKeyPair *cryptoDomain.KeyPair
	registry      ProviderRegistry
	envKeys       cryptoUseCase.EnvironmentKeyUseCase
	secretRepo    DynamicSecretRepository
	credsRepo     ProviderCredentialsRepository
}

// Create validates the provider config and key map, then stores the
// definition with key names encrypted under the environment public key.
func (d *dynamicSecretUseCase) Create(
	ctx context.Context,
	input *dynamicDomain.CreateDynamicSecretInput,
) (*dynamicDomain.DynamicSecret, error) {
	if input.DefaultTTL <= 0 || input.MaxTTL <= 0 || input.DefaultTTL > input.MaxTTL {
		return nil, dynamicDomain.ErrInvalidTTLRange
	}

	adapter, err := d.registry.Get(input.Provider)
	if err != nil {
		return nil, err
	}
	if err := adapter.ValidateConfig(input.Config); err != nil {
		return nil, err
	}
	if err := validateKeyMap(input.KeyMap, adapter.CredentialFields()); err != nil {
		return nil, err
	}

	creds, err := d.credsRepo.Get(ctx, input.AuthenticationRef)
	if err != nil {
		return nil, err
	}
	if creds.Provider != input.Provider {
		return nil, fmt.Errorf("%w: credentials are for provider %s", dynamicDomain.ErrInvalidProviderConfig, creds.Provider)
	}

	envCtx, err := d.envKeys.Unwrap(ctx, input.EnvironmentID)
	if err != nil {
		return nil, err
	}
	publicKey := envCtx.KeyPair.PublicKeyHex()

	keyMap := make([]dynamicDomain.KeyMapEntry, 0, len(input.KeyMap))
	for _, entry := range input.KeyMap {
		sealed, err := cryptoService.EncryptAsymmetric(strings.TrimSpace(entry.KeyName), publicKey)
		if err != nil {
			return nil, err
		}
		keyMap = append(keyMap, dynamicDomain.KeyMapEntry{ID: entry.ID, KeyName: sealed})
	}

	dynamicSecret := &dynamicDomain.DynamicSecret{
		ID:                uuid.Must(uuid.NewV7()),
		EnvironmentID:     input.EnvironmentID,
		Name:              strings.TrimSpace(input.Name),
		Path:              secretsDomain.NormalizePath(input.Path),
		Provider:          input.Provider,
		Config:            input.Config,
		KeyMap:            keyMap,
		DefaultTTL:        input.DefaultTTL,
		MaxTTL:            input.MaxTTL,
		AuthenticationRef: input.AuthenticationRef,
		CreatedAt:         time.Now().UTC(),
	}
	if err := d.secretRepo.Create(ctx, dynamicSecret); err != nil {
		return nil, err
	}
	return dynamicSecret, nil
}

// Get returns a live dynamic secret.
func (d *dynamicSecretUseCase) Get(ctx context.Context, dynamicSecretID uuid.UUID) (*dynamicDomain.DynamicSecret, error) {
	dynamicSecret, err := d.secretRepo.Get(ctx, dynamicSecretID)
	if err != nil {
		return nil, err
	}
	if dynamicSecret.DeletedAt != nil {
		return nil, dynamicDomain.ErrDynamicSecretNotFound
	}
	return dynamicSecret, nil
}

// Delete soft deletes the definition. Existing leases keep running until
// they expire or are revoked.
func (d *dynamicSecretUseCase) Delete(ctx context.Context, dynamicSecretID uuid.UUID) error {
	return d.secretRepo.Delete(ctx, dynamicSecretID)
}

// CreateProviderCredentials encrypts every credential value under the server
// public key.
func (d *dynamicSecretUseCase) CreateProviderCredentials(
	ctx context.Context,
	input *dynamicDomain.CreateProviderCredentialsInput,
) (*dynamicDomain.ProviderCredentials, error) {
	if _, err := d.registry.Get(input.Provider); err != nil {
		return nil, err
	}

	publicKey := d.serverKeyPair.PublicKeyHex()
	sealed := make(map[string]string, len(input.Credentials))
	for field, value := range input.Credentials {
		ct, err := cryptoService.EncryptAsymmetric(value, publicKey)
		if err != nil {
			return nil, err
		}
		sealed[field] = ct
	}

	creds := &dynamicDomain.ProviderCredentials{
		ID:             uuid.Must(uuid.NewV7()),
		OrganizationID: input.OrganizationID,
		Name:           strings.TrimSpace(input.Name),
		Provider:       input.Provider,
		Credentials:    sealed,
		CreatedAt:      time.Now().UTC(),
	}
	if err := d.credsRepo.Create(ctx, creds); err != nil {
		return nil, err
	}
	return creds, nil
}

// validateKeyMap requires at least one entry, ids the provider produces, no
// repeated id or key name, and no blank key name.
func validateKeyMap(keyMap []dynamicDomain.KeyMapInput, fields []string) error {
	if len(keyMap) == 0 {
		return fmt.Errorf("%w: at least one entry is required", dynamicDomain.ErrInvalidKeyMap)
	}

	ids := make(map[string]struct{}, len(keyMap))
	names := make(map[string]struct{}, len(keyMap))
	for _, entry := range keyMap {
		if !slices.Contains(fields, entry.ID) {
			return fmt.Errorf("%w: unknown field %q", dynamicDomain.ErrInvalidKeyMap, entry.ID)
		}
		if _, dup := ids[entry.ID]; dup {
			return fmt.Errorf("%w: duplicate field %q", dynamicDomain.ErrInvalidKeyMap, entry.ID)
		}
		ids[entry.ID] = struct{}{}

		name := strings.ToUpper(strings.TrimSpace(entry.KeyName))
		if name == "" {
			return fmt.Errorf("%w: key name for %q is blank", dynamicDomain.ErrInvalidKeyMap, entry.ID)
		}
		if _, dup := names[name]; dup {
			return fmt.Errorf("%w: duplicate key name", dynamicDomain.ErrInvalidKeyMap)
		}
		names[name] = struct{}{}
	}
	return nil
}

// NewDynamicSecretUseCase creates a DynamicSecretUseCase.
func NewDynamicSecretUseCase(
	serverKeyPair *cryptoDomain.KeyPair,
	registry ProviderRegistry,
	envKeys cryptoUseCase.EnvironmentKeyUseCase,
	secretRepo DynamicSecretRepository,
	credsRepo ProviderCredentialsRepository,
) DynamicSecretUseCase {
	return &dynamicSecretUseCase{
		serverKeyPair: serverKeyPair,
		registry:      registry,
		envKeys:       envKeys,
		secretRepo:    secretRepo,
		credsRepo:     credsRepo,
	}
}
