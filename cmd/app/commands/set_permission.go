package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	permissionDomain "github.com/allisson/actiongate/internal/permission/domain"
	permissionUseCase "github.com/allisson/actiongate/internal/permission/usecase"
)

// RunSetPermission creates or replaces the permission override for an action.
// An active override replaces the handler's default permission requirement;
// an inactive one is kept but ignored by the resolver.
//
// Requirements: Database must be migrated and accessible.
func RunSetPermission(
	ctx context.Context,
	resolver permissionUseCase.Resolver,
	logger *slog.Logger,
	writer io.Writer,
	actionType string,
	permissionsCSV string,
	description string,
	active bool,
	format string,
) error {
	logger.Info("setting permission override",
		slog.String("action_type", actionType),
	)

	spec := &permissionDomain.OverrideSpec{
		Permissions: parsePermissions(permissionsCSV),
		Description: description,
		Active:      &active,
	}

	override, err := resolver.SetOverride(ctx, actionType, spec)
	if err != nil {
		return fmt.Errorf("failed to set permission override: %w", err)
	}

	// Output result based on format
	if format == "json" {
		outputSetPermissionJSON(override, writer)
	} else {
		outputSetPermissionText(override, writer)
	}

	logger.Info("permission override set",
		slog.String("action_type", actionType),
		slog.Any("permissions", override.Permissions),
		slog.Bool("is_active", override.IsActive),
	)

	return nil
}

// outputSetPermissionText outputs the result in human-readable text format.
func outputSetPermissionText(override *permissionDomain.Override, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "Permission override saved!")
	_, _ = fmt.Fprintf(writer, "Action type: %s\n", override.ActionType)
	_, _ = fmt.Fprintf(writer, "Permissions: %v\n", override.Permissions)
	_, _ = fmt.Fprintf(writer, "Active: %t\n", override.IsActive)
	if override.Description != "" {
		_, _ = fmt.Fprintf(writer, "Description: %s\n", override.Description)
	}
	_, _ = fmt.Fprintf(writer, "Updated at: %s\n", override.UpdatedAt.Format(time.RFC3339))
}

// outputSetPermissionJSON outputs the result in JSON format for machine consumption.
func outputSetPermissionJSON(override *permissionDomain.Override, writer io.Writer) {
	result := map[string]any{
		"action_type": override.ActionType,
		"permissions": override.Permissions,
		"is_active":   override.IsActive,
		"description": override.Description,
		"updated_at":  override.UpdatedAt.Format(time.RFC3339),
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
