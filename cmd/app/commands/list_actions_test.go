package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/allisson/actiongate/internal/action"
)

type listStubHandler struct {
	actionType  string
	enabled     bool
	permissions []string
}

func (h *listStubHandler) ActionType() string           { return h.actionType }
func (h *listStubHandler) Enabled() bool                { return h.enabled }
func (h *listStubHandler) Version() string              { return "1.0.0" }
func (h *listStubHandler) DefaultPermissions() []string { return h.permissions }

func (h *listStubHandler) ValidateParams(*action.Request) error {
	return nil
}

func (h *listStubHandler) Execute(context.Context, *action.Request, *action.Caller) (any, error) {
	return nil, nil
}

func (h *listStubHandler) Describe() action.Description {
	return action.Description{
		ActionType:  h.actionType,
		Summary:     "stub action",
		Version:     "1.0.0",
		Permissions: h.permissions,
	}
}

func TestRunListActions(t *testing.T) {
	logger := slog.Default()

	newRegistry := func(t *testing.T) *action.Registry {
		t.Helper()
		registry := action.NewRegistry(logger)

		require.NoError(t, registry.Register(func() action.Handler {
			return &listStubHandler{actionType: "demo.open", enabled: true}
		}))
		require.NoError(t, registry.Register(func() action.Handler {
			return &listStubHandler{actionType: "demo.guarded", enabled: true, permissions: []string{"demo.read"}}
		}))

		return registry
	}

	t.Run("text-output", func(t *testing.T) {
		var out bytes.Buffer
		err := RunListActions(newRegistry(t), logger, &out, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "demo.open")
		require.Contains(t, out.String(), "Permissions: none (any authenticated caller)")
		require.Contains(t, out.String(), "Permissions: demo.read")
		require.Contains(t, out.String(), "Total: 2, enabled: 2, disabled: 0")
	})

	t.Run("json-output", func(t *testing.T) {
		var out bytes.Buffer
		err := RunListActions(newRegistry(t), logger, &out, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"action_type": "demo.guarded"`)
		require.Contains(t, out.String(), `"total": 2`)
	})
}
