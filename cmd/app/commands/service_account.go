package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	authUseCase "github.com/allisson/envsecrets/internal/auth/usecase"
)

// RunCreateServiceAccount creates a service account and prints its id and
// plain secret. The secret is shown only once.
func RunCreateServiceAccount(
	ctx context.Context,
	serviceAccountUseCase authUseCase.ServiceAccountUseCase,
	logger *slog.Logger,
	writer io.Writer,
	organizationID string,
	name string,
	format string,
) error {
	orgID, err := parseUUIDFlag("organization-id", organizationID)
	if err != nil {
		return err
	}

	logger.Info("creating service account", slog.String("name", name))

	output, err := serviceAccountUseCase.Create(ctx, orgID, name)
	if err != nil {
		return fmt.Errorf("failed to create service account: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]string{
			"service_account_id": output.ServiceAccount.ID.String(),
			"secret":             output.PlainSecret,
		}); err != nil {
			return err
		}
	} else {
		outputServiceAccountText(output, writer)
	}

	logger.Info("service account created",
		slog.String("service_account_id", output.ServiceAccount.ID.String()),
		slog.String("organization_id", orgID.String()),
	)
	return nil
}

func outputServiceAccountText(output *authDomain.CreateServiceAccountOutput, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nService account created successfully!")
	_, _ = fmt.Fprintf(writer, "Service Account ID: %s\n", output.ServiceAccount.ID.String())
	_, _ = fmt.Fprintf(writer, "Secret: %s\n", output.PlainSecret)
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The secret is shown only once. Store it securely.")
}
