package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	credentialDomain "github.com/allisson/actiongate/internal/credential/domain"
	credentialUseCase "github.com/allisson/actiongate/internal/credential/usecase"
)

// RunCreateCredential issues a new bearer credential for an owner. The
// plaintext secret is printed exactly once; only its hash is stored. An
// expiresInDays of zero issues a credential that never expires.
//
// Requirements: Database must be migrated and accessible.
func RunCreateCredential(
	ctx context.Context,
	credentialUC credentialUseCase.CredentialUseCase,
	logger *slog.Logger,
	ioTuple IOTuple,
	ownerID string,
	name string,
	permissionsCSV string,
	expiresInDays int,
	format string,
) error {
	if expiresInDays < 0 {
		return fmt.Errorf("expires-in-days must be a positive number, got: %d", expiresInDays)
	}

	logger.Info("creating new credential",
		slog.String("owner_id", ownerID),
		slog.String("name", name),
	)

	var expiresAt *time.Time
	if expiresInDays > 0 {
		expiry := time.Now().UTC().Add(time.Duration(expiresInDays) * 24 * time.Hour)
		expiresAt = &expiry
	}

	input := &credentialDomain.IssueCredentialInput{
		OwnerID:     ownerID,
		Name:        name,
		Permissions: parsePermissions(permissionsCSV),
		ExpiresAt:   expiresAt,
	}

	output, err := credentialUC.Issue(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to issue credential: %w", err)
	}

	// Output result based on format
	if format == "json" {
		outputCreateCredentialJSON(output, ioTuple.Writer)
	} else {
		outputCreateCredentialText(output, ioTuple.Writer)
	}

	logger.Info("credential created successfully",
		slog.String("credential_id", output.Credential.ID.String()),
		slog.String("owner_id", ownerID),
		slog.String("name", name),
	)

	return nil
}

// outputCreateCredentialText outputs the result in human-readable text format.
func outputCreateCredentialText(output *credentialDomain.IssueCredentialOutput, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nCredential created successfully!")
	_, _ = fmt.Fprintf(writer, "Credential ID: %s\n", output.Credential.ID.String())
	_, _ = fmt.Fprintf(writer, "Secret: %s\n", output.PlainSecret)
	if output.Credential.ExpiresAt != nil {
		_, _ = fmt.Fprintf(writer, "Expires at: %s\n", output.Credential.ExpiresAt.Format(time.RFC3339))
	}
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The secret is shown only once. Store it securely.")
}

// outputCreateCredentialJSON outputs the result in JSON format for machine consumption.
func outputCreateCredentialJSON(output *credentialDomain.IssueCredentialOutput, writer io.Writer) {
	result := map[string]any{
		"credential_id": output.Credential.ID.String(),
		"secret":        output.PlainSecret,
	}
	if output.Credential.ExpiresAt != nil {
		result["expires_at"] = output.Credential.ExpiresAt.Format(time.RFC3339)
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
