package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
	cryptoService "github.com/allisson/envsecrets/internal/crypto/service"
)

// RunCreateServerSecret generates a new SERVER_SECRET and prints it as env
// lines. With a KMS key URI the seed is wrapped by the keeper; without one the
// raw hex seed is printed and must be stored in a secrets manager.
func RunCreateServerSecret(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI string,
) error {
	var keeper cryptoDomain.KMSKeeper
	if kmsKeyURI != "" {
		var err error
		keeper, err = kmsService.OpenKeeper(ctx, kmsKeyURI)
		if err != nil {
			return fmt.Errorf("failed to open KMS keeper: %w", err)
		}
		defer func() {
			if closeErr := keeper.Close(); closeErr != nil {
				logger.Error("failed to close KMS keeper", slog.Any("error", closeErr))
			}
		}()
	}

	serverSecret, err := cryptoService.GenerateServerSecret(ctx, keeper)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(writer, "# Server secret configuration")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	if kmsKeyURI != "" {
		_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	} else {
		_, _ = fmt.Fprintln(writer, "# WARNING: plaintext seed, prefer --kms-key-uri in production")
	}
	_, _ = fmt.Fprintf(writer, "SERVER_SECRET=\"%s\"\n", serverSecret)

	logger.Info("server secret generated", slog.Bool("kms", kmsKeyURI != ""))
	return nil
}
