// Package handlers provides the built-in action catalog: system.ping,
// system.info and user.info.
package handlers

import (
	"context"
	"time"

	"github.com/allisson/actiongate/internal/action"
)

const maxPingMessageLength = 256

// pingHandler answers liveness probes. Open to any authenticated caller.
type pingHandler struct{}

func (h *pingHandler) ActionType() string           { return "system.ping" }
func (h *pingHandler) Enabled() bool                { return true }
func (h *pingHandler) Version() string              { return "1.0.0" }
func (h *pingHandler) DefaultPermissions() []string { return nil }

// ValidateParams accepts an optional string message to echo back.
func (h *pingHandler) ValidateParams(req *action.Request) error {
	raw, ok := req.Params["message"]
	if !ok {
		return nil
	}

	var verr action.ValidationErrors
	message, isString := raw.(string)
	switch {
	case !isString:
		verr.Add("message", "must be a string")
	case len(message) > maxPingMessageLength:
		verr.Add("message", "must be at most 256 characters")
	}

	if verr.HasErrors() {
		return &verr
	}
	return nil
}

func (h *pingHandler) Execute(
	_ context.Context,
	req *action.Request,
	_ *action.Caller,
) (any, error) {
	result := map[string]any{
		"pong": true,
		"time": time.Now().UTC().Format(time.RFC3339),
	}
	if message, ok := req.Params["message"].(string); ok {
		result["message"] = message
	}
	return result, nil
}

func (h *pingHandler) Describe() action.Description {
	return action.Description{
		ActionType:  h.ActionType(),
		Summary:     "Answers liveness probes, optionally echoing a message.",
		Version:     h.Version(),
		Permissions: h.DefaultPermissions(),
		Params: []action.ParamSpec{
			{Name: "message", Type: "string", Required: false, Description: "Echoed back in the response."},
		},
		Examples: []map[string]any{
			{"action_type": "system.ping", "params": map[string]any{"message": "hello"}},
		},
	}
}
