package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	credentialDomain "github.com/allisson/actiongate/internal/credential/domain"
	credentialUseCase "github.com/allisson/actiongate/internal/credential/usecase"
)

// RunListCredentials prints all of an owner's credentials, revoked and
// expired included. Secrets and hashes are never part of the output.
//
// Requirements: Database must be migrated and accessible.
func RunListCredentials(
	ctx context.Context,
	credentialUC credentialUseCase.CredentialUseCase,
	logger *slog.Logger,
	writer io.Writer,
	ownerID string,
	format string,
) error {
	logger.Info("listing credentials", slog.String("owner_id", ownerID))

	credentials, err := credentialUC.ListForOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to list credentials: %w", err)
	}

	// Output result based on format
	if format == "json" {
		outputListCredentialsJSON(credentials, writer)
	} else {
		outputListCredentialsText(ownerID, credentials, writer)
	}

	return nil
}

// outputListCredentialsText outputs the result in human-readable text format.
func outputListCredentialsText(ownerID string, credentials []*credentialDomain.Credential, writer io.Writer) {
	_, _ = fmt.Fprintf(writer, "Credentials for %s (%d):\n\n", ownerID, len(credentials))

	for _, credential := range credentials {
		state := "active"
		if !credential.IsActive {
			state = "revoked"
		}

		_, _ = fmt.Fprintf(writer, "%s (%s, %s)\n", credential.Name, credential.ID.String(), state)
		if len(credential.Permissions) > 0 {
			_, _ = fmt.Fprintf(writer, "  Permissions: %s\n", strings.Join(credential.Permissions, ", "))
		}
		if credential.ExpiresAt != nil {
			_, _ = fmt.Fprintf(writer, "  Expires at: %s\n", credential.ExpiresAt.Format(time.RFC3339))
		}
		if credential.LastUsedAt != nil {
			_, _ = fmt.Fprintf(writer, "  Last used: %s\n", credential.LastUsedAt.Format(time.RFC3339))
		}
		_, _ = fmt.Fprintf(writer, "  Created at: %s\n\n", credential.CreatedAt.Format(time.RFC3339))
	}
}

// outputListCredentialsJSON outputs the result in JSON format for machine consumption.
func outputListCredentialsJSON(credentials []*credentialDomain.Credential, writer io.Writer) {
	entries := make([]map[string]any, 0, len(credentials))
	for _, credential := range credentials {
		entry := map[string]any{
			"credential_id": credential.ID.String(),
			"owner_id":      credential.OwnerID,
			"name":          credential.Name,
			"permissions":   credential.Permissions,
			"is_active":     credential.IsActive,
			"created_at":    credential.CreatedAt.Format(time.RFC3339),
		}
		if credential.ExpiresAt != nil {
			entry["expires_at"] = credential.ExpiresAt.Format(time.RFC3339)
		}
		if credential.LastUsedAt != nil {
			entry["last_used_at"] = credential.LastUsedAt.Format(time.RFC3339)
		}
		entries = append(entries, entry)
	}

	jsonBytes, err := json.MarshalIndent(map[string]any{"credentials": entries}, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
