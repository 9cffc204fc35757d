package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	permissionDomain "github.com/allisson/actiongate/internal/permission/domain"
	permissionUseCase "github.com/allisson/actiongate/internal/permission/usecase"
)

// overridePayload is the JSON shape of one desired override in a sync
// document. Active defaults to true when omitted.
type overridePayload struct {
	Permissions []string `json:"permissions"`
	Description string   `json:"description"`
	Active      *bool    `json:"active"`
}

// RunSyncPermissions bulk-applies a JSON document mapping action identifiers
// to override specs. Each entry independently creates or replaces its
// override; persisted overrides absent from the document are left untouched.
// When specJSON is empty the document is read from the reader, so a file can
// be piped in.
//
// Requirements: Database must be migrated and accessible.
func RunSyncPermissions(
	ctx context.Context,
	resolver permissionUseCase.Resolver,
	logger *slog.Logger,
	ioTuple IOTuple,
	specJSON string,
	format string,
) error {
	document := []byte(specJSON)
	if specJSON == "" {
		raw, err := io.ReadAll(ioTuple.Reader)
		if err != nil {
			return fmt.Errorf("failed to read sync document: %w", err)
		}
		document = raw
	}

	var payload map[string]overridePayload
	if err := json.Unmarshal(document, &payload); err != nil {
		return fmt.Errorf("failed to parse sync document: %w", err)
	}
	if len(payload) == 0 {
		return fmt.Errorf("sync document must contain at least one override")
	}

	desired := make(map[string]permissionDomain.OverrideSpec, len(payload))
	for actionType, entry := range payload {
		desired[actionType] = permissionDomain.OverrideSpec{
			Permissions: entry.Permissions,
			Description: entry.Description,
			Active:      entry.Active,
		}
	}

	logger.Info("syncing permission overrides", slog.Int("desired", len(desired)))

	upserted, err := resolver.SyncOverrides(ctx, desired)
	if err != nil {
		return fmt.Errorf("failed to sync permission overrides: %w", err)
	}

	// Output result based on format
	if format == "json" {
		outputSyncPermissionsJSON(upserted, ioTuple.Writer)
	} else {
		outputSyncPermissionsText(upserted, ioTuple.Writer)
	}

	logger.Info("permission sync completed", slog.Int("upserted", upserted))

	return nil
}

// outputSyncPermissionsText outputs the result in human-readable text format.
func outputSyncPermissionsText(upserted int, writer io.Writer) {
	_, _ = fmt.Fprintf(writer, "Sync completed: %d override(s) upserted\n", upserted)
}

// outputSyncPermissionsJSON outputs the result in JSON format for machine consumption.
func outputSyncPermissionsJSON(upserted int, writer io.Writer) {
	result := map[string]any{
		"upserted": upserted,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
