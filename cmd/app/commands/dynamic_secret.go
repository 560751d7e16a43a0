package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
	dynamicUseCase "github.com/allisson/envsecrets/internal/dynamicsecrets/usecase"
)

// DynamicSecretFlags carries the raw create-dynamic-secret flag values.
type DynamicSecretFlags struct {
	EnvironmentID     string
	Name              string
	Path              string
	Provider          string
	Config            string
	KeyMap            string
	DefaultTTL        time.Duration
	MaxTTL            time.Duration
	AuthenticationRef string
}

type keyMapFlag struct {
	ID      string `json:"id"`
	KeyName string `json:"key_name"`
}

// RunCreateDynamicSecret defines a dynamic secret. Config is validated against
// the provider schema; the config and key map are stored encrypted under the
// environment keypair.
func RunCreateDynamicSecret(
	ctx context.Context,
	dynamicSecretUseCase dynamicUseCase.DynamicSecretUseCase,
	logger *slog.Logger,
	writer io.Writer,
	flags DynamicSecretFlags,
	format string,
) error {
	envID, err := parseUUIDFlag("environment-id", flags.EnvironmentID)
	if err != nil {
		return err
	}
	authRef, err := parseUUIDFlag("authentication-ref", flags.AuthenticationRef)
	if err != nil {
		return err
	}
	if !json.Valid([]byte(flags.Config)) {
		return fmt.Errorf("invalid --config: not a JSON document")
	}

	var keyMap []keyMapFlag
	if err := json.Unmarshal([]byte(flags.KeyMap), &keyMap); err != nil {
		return fmt.Errorf("failed to parse --key-map JSON: %w", err)
	}
	input := &dynamicDomain.CreateDynamicSecretInput{
		EnvironmentID:     envID,
		Name:              flags.Name,
		Path:              flags.Path,
		Provider:          dynamicDomain.Provider(flags.Provider),
		Config:            json.RawMessage(flags.Config),
		DefaultTTL:        flags.DefaultTTL,
		MaxTTL:            flags.MaxTTL,
		AuthenticationRef: authRef,
	}
	for _, entry := range keyMap {
		input.KeyMap = append(input.KeyMap, dynamicDomain.KeyMapInput{ID: entry.ID, KeyName: entry.KeyName})
	}

	dynamicSecret, err := dynamicSecretUseCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create dynamic secret: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]string{
			"dynamic_secret_id": dynamicSecret.ID.String(),
			"provider":          string(dynamicSecret.Provider),
		}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Dynamic secret created: %s\n", dynamicSecret.ID)
	}

	logger.Info("dynamic secret created",
		slog.String("dynamic_secret_id", dynamicSecret.ID.String()),
		slog.String("environment_id", envID.String()),
		slog.String("provider", flags.Provider),
	)
	return nil
}

// RunCreateProviderCredentials stores provider credentials for an
// organization, encrypted under the server keypair.
func RunCreateProviderCredentials(
	ctx context.Context,
	dynamicSecretUseCase dynamicUseCase.DynamicSecretUseCase,
	logger *slog.Logger,
	writer io.Writer,
	organizationID string,
	name string,
	provider string,
	credentialsJSON string,
	format string,
) error {
	orgID, err := parseUUIDFlag("organization-id", organizationID)
	if err != nil {
		return err
	}

	var credentials map[string]string
	if err := json.Unmarshal([]byte(credentialsJSON), &credentials); err != nil {
		return fmt.Errorf("failed to parse --credentials JSON: %w", err)
	}

	creds, err := dynamicSecretUseCase.CreateProviderCredentials(ctx, &dynamicDomain.CreateProviderCredentialsInput{
		OrganizationID: orgID,
		Name:           name,
		Provider:       dynamicDomain.Provider(provider),
		Credentials:    credentials,
	})
	if err != nil {
		return fmt.Errorf("failed to create provider credentials: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]string{"authentication_ref": creds.ID.String()}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Provider credentials created: %s\n", creds.ID)
	}

	logger.Info("provider credentials created",
		slog.String("authentication_ref", creds.ID.String()),
		slog.String("provider", provider),
	)
	return nil
}
