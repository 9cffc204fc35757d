package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	credentialUseCase "github.com/allisson/actiongate/internal/credential/usecase"
)

// RunCleanupExpired deactivates all active credentials whose expiry has
// passed. Rows are never deleted, so the audit trail survives cleanup. The
// operation is idempotent: a second run finds nothing to deactivate.
//
// Requirements: Database must be migrated and accessible.
func RunCleanupExpired(
	ctx context.Context,
	credentialUC credentialUseCase.CredentialUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	logger.Info("cleaning up expired credentials")

	count, err := credentialUC.CleanupExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to cleanup expired credentials: %w", err)
	}

	// Output result based on format
	if format == "json" {
		outputCleanupExpiredJSON(count, writer)
	} else {
		outputCleanupExpiredText(count, writer)
	}

	logger.Info("cleanup completed", slog.Int64("count", count))

	return nil
}

// outputCleanupExpiredText outputs the result in human-readable text format.
func outputCleanupExpiredText(count int64, writer io.Writer) {
	_, _ = fmt.Fprintf(writer, "Successfully deactivated %d expired credential(s)\n", count)
}

// outputCleanupExpiredJSON outputs the result in JSON format for machine consumption.
func outputCleanupExpiredJSON(count int64, writer io.Writer) {
	result := map[string]any{
		"deactivated": count,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
