package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoUseCase "github.com/allisson/envsecrets/internal/crypto/usecase"
)

// RunCreateEnvironmentKeys generates the wrapped seed and blind-index salt of
// an environment. Fails with a conflict when the environment already has keys.
func RunCreateEnvironmentKeys(
	ctx context.Context,
	envKeyUseCase cryptoUseCase.EnvironmentKeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	environmentID string,
	format string,
) error {
	envID, err := parseUUIDFlag("environment-id", environmentID)
	if err != nil {
		return err
	}

	keys, err := envKeyUseCase.Create(ctx, envID)
	if err != nil {
		return fmt.Errorf("failed to create environment keys: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]string{
			"environment_id": keys.EnvironmentID.String(),
			"created_at":     keys.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Environment keys created for %s\n", keys.EnvironmentID)
	}

	logger.Info("environment keys created", slog.String("environment_id", envID.String()))
	return nil
}
