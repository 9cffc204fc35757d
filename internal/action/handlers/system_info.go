package handlers

import (
	"context"
	"runtime"
	"time"

	"github.com/allisson/actiongate/internal/action"
)

// systemInfoHandler reports service version, uptime and registry statistics.
// Requires the system.read permission.
type systemInfoHandler struct {
	registry       *action.Registry
	serviceVersion string
	startedAt      time.Time
}

func (h *systemInfoHandler) ActionType() string           { return "system.info" }
func (h *systemInfoHandler) Enabled() bool                { return true }
func (h *systemInfoHandler) Version() string              { return "1.0.0" }
func (h *systemInfoHandler) DefaultPermissions() []string { return []string{"system.read"} }

// ValidateParams accepts no parameters.
func (h *systemInfoHandler) ValidateParams(req *action.Request) error {
	if len(req.Params) == 0 {
		return nil
	}

	var verr action.ValidationErrors
	for field := range req.Params {
		verr.Add(field, "unknown parameter")
	}
	return &verr
}

func (h *systemInfoHandler) Execute(
	_ context.Context,
	_ *action.Request,
	_ *action.Caller,
) (any, error) {
	stats := h.registry.Statistics()

	return map[string]any{
		"service_version": h.serviceVersion,
		"go_version":      runtime.Version(),
		"uptime_seconds":  int64(time.Since(h.startedAt).Seconds()),
		"actions": map[string]any{
			"total":    stats.Total,
			"enabled":  stats.Enabled,
			"disabled": stats.Disabled,
			"cached":   stats.Cached,
			"versions": stats.Versions,
		},
	}, nil
}

func (h *systemInfoHandler) Describe() action.Description {
	return action.Description{
		ActionType:  h.ActionType(),
		Summary:     "Reports service version, uptime and action registry statistics.",
		Version:     h.Version(),
		Permissions: h.DefaultPermissions(),
		Examples: []map[string]any{
			{"action_type": "system.info", "params": map[string]any{}},
		},
	}
}
