package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	authUseCase "github.com/allisson/envsecrets/internal/auth/usecase"
)

// RunGrantEnvironmentAccess grants a user or service account access to an
// environment. Granting twice is a no-op.
func RunGrantEnvironmentAccess(
	ctx context.Context,
	accessUseCase authUseCase.AccessUseCase,
	logger *slog.Logger,
	writer io.Writer,
	principalType string,
	principalID string,
	environmentID string,
) error {
	pType := authDomain.PrincipalType(principalType)
	if !pType.Valid() {
		return fmt.Errorf(
			"invalid --principal-type: %s (valid options: %s, %s)",
			principalType,
			authDomain.PrincipalUser,
			authDomain.PrincipalServiceAccount,
		)
	}
	pID, err := parseUUIDFlag("principal-id", principalID)
	if err != nil {
		return err
	}
	envID, err := parseUUIDFlag("environment-id", environmentID)
	if err != nil {
		return err
	}

	if err := accessUseCase.Grant(ctx, pType, pID, envID); err != nil {
		return fmt.Errorf("failed to grant environment access: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Granted %s %s access to environment %s\n", pType, pID, envID)
	logger.Info("environment access granted",
		slog.String("principal_type", string(pType)),
		slog.String("principal_id", pID.String()),
		slog.String("environment_id", envID.String()),
	)
	return nil
}
