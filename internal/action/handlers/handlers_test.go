package handlers

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/actiongate/internal/action"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func builtinRegistry(t *testing.T) *action.Registry {
	t.Helper()

	registry := action.NewRegistry(testLogger())
	added := registry.AutoDiscover(Builtin(registry, "1.2.3", time.Now().Add(-time.Minute)))
	require.Equal(t, []string{"system.ping", "system.info", "user.info"}, added)

	return registry
}

func TestBuiltinCatalog(t *testing.T) {
	registry := builtinRegistry(t)

	for _, actionType := range []string{"system.ping", "system.info", "user.info"} {
		handler, err := registry.Resolve(actionType)
		require.NoError(t, err)

		assert.Equal(t, actionType, handler.ActionType())
		assert.True(t, handler.Enabled())
		assert.NotEmpty(t, handler.Version())
		assert.Equal(t, actionType, handler.Describe().ActionType)
	}
}

func TestPingHandler(t *testing.T) {
	handler := &pingHandler{}

	t.Run("Success_NoParams", func(t *testing.T) {
		req := &action.Request{ActionType: "system.ping", Params: map[string]any{}}
		require.NoError(t, handler.ValidateParams(req))

		result, err := handler.Execute(context.Background(), req, &action.Caller{ID: "caller-1"})
		require.NoError(t, err)

		data := result.(map[string]any)
		assert.Equal(t, true, data["pong"])
		assert.NotContains(t, data, "message")
	})

	t.Run("Success_EchoesMessage", func(t *testing.T) {
		req := &action.Request{
			ActionType: "system.ping",
			Params:     map[string]any{"message": "hello"},
		}
		require.NoError(t, handler.ValidateParams(req))

		result, err := handler.Execute(context.Background(), req, &action.Caller{ID: "caller-1"})
		require.NoError(t, err)
		assert.Equal(t, "hello", result.(map[string]any)["message"])
	})

	t.Run("Error_MessageNotAString", func(t *testing.T) {
		req := &action.Request{
			ActionType: "system.ping",
			Params:     map[string]any{"message": 42},
		}

		err := handler.ValidateParams(req)
		var verr *action.ValidationErrors
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"must be a string"}, verr.Fields["message"])
	})

	t.Run("Error_MessageTooLong", func(t *testing.T) {
		req := &action.Request{
			ActionType: "system.ping",
			Params:     map[string]any{"message": strings.Repeat("x", 257)},
		}

		err := handler.ValidateParams(req)
		var verr *action.ValidationErrors
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"must be at most 256 characters"}, verr.Fields["message"])
	})
}

func TestSystemInfoHandler(t *testing.T) {
	t.Run("Success_ReportsRegistryStatistics", func(t *testing.T) {
		registry := builtinRegistry(t)
		handler, err := registry.Resolve("system.info")
		require.NoError(t, err)

		req := &action.Request{ActionType: "system.info", Params: map[string]any{}}
		require.NoError(t, handler.ValidateParams(req))

		result, err := handler.Execute(context.Background(), req, &action.Caller{ID: "caller-1"})
		require.NoError(t, err)

		data := result.(map[string]any)
		assert.Equal(t, "1.2.3", data["service_version"])
		assert.GreaterOrEqual(t, data["uptime_seconds"].(int64), int64(59))

		actions := data["actions"].(map[string]any)
		assert.Equal(t, 3, actions["total"])
		assert.Equal(t, 3, actions["enabled"])
		assert.Equal(t, 0, actions["disabled"])
	})

	t.Run("Error_RejectsUnknownParams", func(t *testing.T) {
		handler := &systemInfoHandler{}
		req := &action.Request{
			ActionType: "system.info",
			Params:     map[string]any{"verbose": true},
		}

		err := handler.ValidateParams(req)
		var verr *action.ValidationErrors
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "verbose")
	})
}

func TestUserInfoHandler(t *testing.T) {
	handler := &userInfoHandler{}

	t.Run("Success_EchoesCaller", func(t *testing.T) {
		caller := &action.Caller{
			ID:          "caller-1",
			Name:        "ci-deploy",
			Permissions: []string{"user.read", "user.write"},
		}
		req := &action.Request{ActionType: "user.info", Params: map[string]any{}}

		result, err := handler.Execute(context.Background(), req, caller)
		require.NoError(t, err)

		data := result.(map[string]any)
		assert.Equal(t, "caller-1", data["caller_id"])
		assert.Equal(t, "ci-deploy", data["name"])
		assert.Equal(t, []string{"user.read", "user.write"}, data["permissions"])
	})

	t.Run("Success_NilPermissionsRenderedEmpty", func(t *testing.T) {
		caller := &action.Caller{ID: "caller-1"}
		req := &action.Request{ActionType: "user.info", Params: map[string]any{}}

		result, err := handler.Execute(context.Background(), req, caller)
		require.NoError(t, err)
		assert.Equal(t, []string{}, result.(map[string]any)["permissions"])
	})
}
