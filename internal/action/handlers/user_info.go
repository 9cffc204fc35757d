package handlers

import (
	"context"

	"github.com/allisson/actiongate/internal/action"
)

// userInfoHandler echoes the authenticated caller's identity and permissions.
// Requires the user.read permission.
type userInfoHandler struct{}

func (h *userInfoHandler) ActionType() string           { return "user.info" }
func (h *userInfoHandler) Enabled() bool                { return true }
func (h *userInfoHandler) Version() string              { return "1.0.0" }
func (h *userInfoHandler) DefaultPermissions() []string { return []string{"user.read"} }

// ValidateParams accepts no parameters.
func (h *userInfoHandler) ValidateParams(req *action.Request) error {
	if len(req.Params) == 0 {
		return nil
	}

	var verr action.ValidationErrors
	for field := range req.Params {
		verr.Add(field, "unknown parameter")
	}
	return &verr
}

func (h *userInfoHandler) Execute(
	_ context.Context,
	_ *action.Request,
	caller *action.Caller,
) (any, error) {
	permissions := caller.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	return map[string]any{
		"caller_id":   caller.ID,
		"name":        caller.Name,
		"permissions": permissions,
	}, nil
}

func (h *userInfoHandler) Describe() action.Description {
	return action.Description{
		ActionType:  h.ActionType(),
		Summary:     "Echoes the authenticated caller's identity and permission set.",
		Version:     h.Version(),
		Permissions: h.DefaultPermissions(),
		Examples: []map[string]any{
			{"action_type": "user.info", "params": map[string]any{}},
		},
	}
}
