package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/allisson/actiongate/internal/action"
)

// RunListActions prints every registered action with its self-description and
// a summary of the registry contents. Handlers whose factories fail are
// reported and skipped.
func RunListActions(
	registry *action.Registry,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	actionTypes := registry.ActionTypes()

	descriptions := make([]action.Description, 0, len(actionTypes))
	for _, actionType := range actionTypes {
		handler, err := registry.Resolve(actionType)
		if err != nil {
			logger.Warn("skipping unresolvable action",
				slog.String("action_type", actionType),
				slog.Any("error", err),
			)
			continue
		}
		descriptions = append(descriptions, handler.Describe())
	}

	stats := registry.Statistics()

	// Output result based on format
	if format == "json" {
		outputListActionsJSON(descriptions, stats, writer)
	} else {
		outputListActionsText(descriptions, stats, registry, writer)
	}

	return nil
}

// outputListActionsText outputs the result in human-readable text format.
func outputListActionsText(
	descriptions []action.Description,
	stats action.Statistics,
	registry *action.Registry,
	writer io.Writer,
) {
	_, _ = fmt.Fprintf(writer, "Registered actions (%d):\n\n", len(descriptions))

	for _, description := range descriptions {
		handler, err := registry.Resolve(description.ActionType)
		enabled := err == nil && handler.Enabled()

		state := "enabled"
		if !enabled {
			state = "disabled"
		}

		_, _ = fmt.Fprintf(writer, "%s (v%s, %s)\n", description.ActionType, description.Version, state)
		if description.Summary != "" {
			_, _ = fmt.Fprintf(writer, "  %s\n", description.Summary)
		}
		if len(description.Permissions) > 0 {
			_, _ = fmt.Fprintf(writer, "  Permissions: %s\n", strings.Join(description.Permissions, ", "))
		} else {
			_, _ = fmt.Fprintln(writer, "  Permissions: none (any authenticated caller)")
		}
		_, _ = fmt.Fprintln(writer)
	}

	_, _ = fmt.Fprintf(writer, "Total: %d, enabled: %d, disabled: %d, cached: %d\n",
		stats.Total, stats.Enabled, stats.Disabled, stats.Cached)
}

// outputListActionsJSON outputs the result in JSON format for machine consumption.
func outputListActionsJSON(descriptions []action.Description, stats action.Statistics, writer io.Writer) {
	result := map[string]any{
		"actions": descriptions,
		"statistics": map[string]any{
			"total":    stats.Total,
			"enabled":  stats.Enabled,
			"disabled": stats.Disabled,
			"cached":   stats.Cached,
			"versions": stats.Versions,
		},
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
