package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	permissionUseCase "github.com/allisson/actiongate/internal/permission/usecase"
)

// RunRemovePermission deletes the permission override for an action,
// restoring the handler's default permission requirement.
//
// Requirements: Database must be migrated and accessible.
func RunRemovePermission(
	ctx context.Context,
	resolver permissionUseCase.Resolver,
	logger *slog.Logger,
	writer io.Writer,
	actionType string,
	format string,
) error {
	logger.Info("removing permission override",
		slog.String("action_type", actionType),
	)

	removed, err := resolver.RemoveOverride(ctx, actionType)
	if err != nil {
		return fmt.Errorf("failed to remove permission override: %w", err)
	}

	// Output result based on format
	if format == "json" {
		outputRemovePermissionJSON(actionType, removed, writer)
	} else {
		outputRemovePermissionText(actionType, removed, writer)
	}

	logger.Info("permission override removal completed",
		slog.String("action_type", actionType),
		slog.Bool("removed", removed),
	)

	return nil
}

// outputRemovePermissionText outputs the result in human-readable text format.
func outputRemovePermissionText(actionType string, removed bool, writer io.Writer) {
	if removed {
		_, _ = fmt.Fprintf(writer, "Override for %s removed; handler default restored\n", actionType)
	} else {
		_, _ = fmt.Fprintf(writer, "No override found for %s\n", actionType)
	}
}

// outputRemovePermissionJSON outputs the result in JSON format for machine consumption.
func outputRemovePermissionJSON(actionType string, removed bool, writer io.Writer) {
	result := map[string]any{
		"action_type": actionType,
		"removed":     removed,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
