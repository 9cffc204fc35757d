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

// RunRevokeCredential revokes credentials by secret, by owner, or by owner and
// name. Revocation is one-directional: a revoked credential is never
// reactivated. Exactly one targeting mode must be supplied: a secret, an
// owner, or an owner plus a name.
//
// Requirements: Database must be migrated and accessible.
func RunRevokeCredential(
	ctx context.Context,
	credentialUC credentialUseCase.CredentialUseCase,
	logger *slog.Logger,
	writer io.Writer,
	secret string,
	ownerID string,
	name string,
	format string,
) error {
	if secret == "" && ownerID == "" {
		return fmt.Errorf("either a secret or an owner id is required")
	}
	if secret != "" && ownerID != "" {
		return fmt.Errorf("a secret and an owner id are mutually exclusive")
	}

	var count int64

	switch {
	case secret != "":
		logger.Info("revoking credential by secret")

		revoked, err := credentialUC.Revoke(ctx, secret)
		if err != nil {
			return fmt.Errorf("failed to revoke credential: %w", err)
		}
		if revoked {
			count = 1
		}
	case name != "":
		logger.Info("revoking credentials by owner and name",
			slog.String("owner_id", ownerID),
			slog.String("name", name),
		)

		revoked, err := credentialUC.RevokeByName(ctx, ownerID, name)
		if err != nil {
			return fmt.Errorf("failed to revoke credentials: %w", err)
		}
		count = revoked
	default:
		logger.Info("revoking all credentials for owner",
			slog.String("owner_id", ownerID),
		)

		revoked, err := credentialUC.RevokeAllForOwner(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("failed to revoke credentials: %w", err)
		}
		count = revoked
	}

	// Output result based on format
	if format == "json" {
		outputRevokeCredentialJSON(count, writer)
	} else {
		outputRevokeCredentialText(count, writer)
	}

	logger.Info("revocation completed", slog.Int64("count", count))

	return nil
}

// outputRevokeCredentialText outputs the result in human-readable text format.
func outputRevokeCredentialText(count int64, writer io.Writer) {
	if count == 0 {
		_, _ = fmt.Fprintln(writer, "No active credentials matched; nothing revoked")
		return
	}
	_, _ = fmt.Fprintf(writer, "Successfully revoked %d credential(s)\n", count)
}

// outputRevokeCredentialJSON outputs the result in JSON format for machine consumption.
func outputRevokeCredentialJSON(count int64, writer io.Writer) {
	result := map[string]any{
		"revoked": count,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
