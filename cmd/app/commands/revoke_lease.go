package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
	dynamicUseCase "github.com/allisson/envsecrets/internal/dynamicsecrets/usecase"
)

// RunRevokeLease revokes a lease as an operator. The provider teardown runs
// synchronously; a lease that is already terminal is reported as revoked.
func RunRevokeLease(
	ctx context.Context,
	leaseUseCase dynamicUseCase.LeaseUseCase,
	logger *slog.Logger,
	writer io.Writer,
	leaseID string,
) error {
	id, err := parseUUIDFlag("lease-id", leaseID)
	if err != nil {
		return err
	}

	if err := leaseUseCase.Revoke(ctx, &dynamicDomain.RevokeLeaseInput{
		LeaseID: id,
		Manual:  true,
		Request: dynamicDomain.RequestInfo{
			UserAgent: "envsecrets-cli",
			Source:    dynamicDomain.EventSourceOperator,
		},
	}); err != nil {
		return fmt.Errorf("failed to revoke lease: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Lease %s revoked\n", id)
	logger.Info("lease revoked", slog.String("lease_id", id.String()))
	return nil
}
