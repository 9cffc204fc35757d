package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/actiongate/internal/action"
	credentialDomain "github.com/allisson/actiongate/internal/credential/domain"
	"github.com/allisson/actiongate/internal/httputil"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, plainSecret string) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, plainSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Credential), args.Error(1)
}

type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) Authorize(ctx context.Context, callerID, actionType string, held, handlerDefault []string) (bool, error) {
	args := m.Called(ctx, callerID, actionType, held, handlerDefault)
	return args.Bool(0), args.Error(1)
}

type recordedDispatch struct {
	actionType string
	outcome    string
}

type captureRecorder struct {
	dispatches []recordedDispatch
}

func (c *captureRecorder) RecordDispatch(_ context.Context, actionType, outcome string, _ time.Duration) {
	c.dispatches = append(c.dispatches, recordedDispatch{actionType: actionType, outcome: outcome})
}

// testHandler is a configurable Handler for pipeline tests.
type testHandler struct {
	actionType  string
	enabled     bool
	permissions []string
	validateErr error
	execute     func(ctx context.Context, req *action.Request, caller *action.Caller) (any, error)
}

func (h *testHandler) ActionType() string           { return h.actionType }
func (h *testHandler) Enabled() bool                { return h.enabled }
func (h *testHandler) Version() string              { return "1.0.0" }
func (h *testHandler) DefaultPermissions() []string { return h.permissions }

func (h *testHandler) ValidateParams(*action.Request) error { return h.validateErr }

func (h *testHandler) Execute(ctx context.Context, req *action.Request, caller *action.Caller) (any, error) {
	if h.execute != nil {
		return h.execute(ctx, req, caller)
	}
	return map[string]any{"ok": true}, nil
}

func (h *testHandler) Describe() action.Description {
	return action.Description{ActionType: h.actionType, Version: "1.0.0"}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegistry(t *testing.T, handlers ...*testHandler) *action.Registry {
	t.Helper()

	registry := action.NewRegistry(testLogger())
	for _, handler := range handlers {
		handler := handler
		require.NoError(t, registry.Register(func() action.Handler { return handler }))
	}
	return registry
}

func testCredential(permissions ...string) *credentialDomain.Credential {
	return &credentialDomain.Credential{
		OwnerID:     "owner-1",
		Name:        "ci-deploy",
		Permissions: permissions,
		IsActive:    true,
	}
}

func dispatchOnce(
	t *testing.T,
	dispatcher *Dispatcher,
	body string,
	bearer string,
) (int, httputil.Envelope) {
	t.Helper()

	formatter := httputil.NewFormatter()
	return dispatcher.Dispatch(context.Background(), formatter, []byte(body), bearer)
}

func TestDispatcher_Success(t *testing.T) {
	registry := testRegistry(t, &testHandler{actionType: "system.ping", enabled: true})
	authenticator := new(mockAuthenticator)
	authorizer := new(mockAuthorizer)
	recorder := &captureRecorder{}
	dispatcher := NewDispatcher(registry, authenticator, authorizer, recorder, testLogger(), false)

	authenticator.On("Authenticate", mock.Anything, "valid-secret").
		Return(testCredential("*"), nil)
	authorizer.On("Authorize", mock.Anything, "owner-1", "system.ping", []string{"*"}, []string(nil)).
		Return(true, nil)

	status, envelope := dispatchOnce(t, dispatcher, `{"action_type":"system.ping","params":{}}`, "valid-secret")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, httputil.StatusSuccess, envelope.Status)
	assert.Empty(t, envelope.ErrorCode)
	assert.Equal(t, map[string]any{"ok": true}, envelope.Data)
	assert.Equal(t, "system.ping", envelope.Meta["action_type"])
	assert.NotEmpty(t, envelope.RequestID)
	assert.NotEmpty(t, envelope.Timestamp)

	require.Len(t, recorder.dispatches, 1)
	assert.Equal(t, recordedDispatch{actionType: "system.ping", outcome: "SUCCESS"}, recorder.dispatches[0])
}

func TestDispatcher_MalformedRequest(t *testing.T) {
	registry := testRegistry(t)
	dispatcher := NewDispatcher(registry, new(mockAuthenticator), new(mockAuthorizer), nil, testLogger(), false)

	tests := []struct {
		name string
		body string
	}{
		{"Error_InvalidJSON", `{"action_type":`},
		{"Error_MissingActionType", `{"params":{}}`},
		{"Error_BlankActionType", `{"action_type":"","params":{}}`},
		{"Error_IllegalCharacters", `{"action_type":"system ping!","params":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, envelope := dispatchOnce(t, dispatcher, tt.body, "valid-secret")

			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, CodeMalformedRequest, envelope.ErrorCode)
		})
	}

	t.Run("Error_ActionTypeWrongType", func(t *testing.T) {
		// A well-formed object with a non-string action_type names the field
		// in the details instead of blaming the whole body.
		status, envelope := dispatchOnce(t, dispatcher, `{"action_type":7}`, "valid-secret")

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, CodeMalformedRequest, envelope.ErrorCode)

		details := envelope.Details.(map[string]any)
		assert.Contains(t, details, "action_type")
		assert.NotContains(t, details, "body")
	})
}

func TestDispatcher_TopLevelHandlerFields(t *testing.T) {
	var received map[string]any
	registry := testRegistry(t, &testHandler{
		actionType: "system.ping",
		enabled:    true,
		execute: func(_ context.Context, req *action.Request, _ *action.Caller) (any, error) {
			received = req.Params
			return map[string]any{"ok": true}, nil
		},
	})
	authenticator := new(mockAuthenticator)
	authorizer := new(mockAuthorizer)
	dispatcher := NewDispatcher(registry, authenticator, authorizer, nil, testLogger(), false)

	authenticator.On("Authenticate", mock.Anything, "valid-secret").
		Return(testCredential("*"), nil)
	authorizer.On("Authorize", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(true, nil)

	// Handler fields spelled next to action_type reach the handler instead of
	// being silently dropped.
	status, _ := dispatchOnce(t, dispatcher, `{"action_type":"system.ping","message":"hello"}`, "valid-secret")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello", received["message"])
}

func TestDispatcher_UnknownAction(t *testing.T) {
	registry := testRegistry(t)
	dispatcher := NewDispatcher(registry, new(mockAuthenticator), new(mockAuthorizer), nil, testLogger(), false)

	status, envelope := dispatchOnce(t, dispatcher, `{"action_type":"missing.action","params":{}}`, "valid-secret")

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, CodeUnknownAction, envelope.ErrorCode)
}

func TestDispatcher_ActionDisabled(t *testing.T) {
	registry := testRegistry(t, &testHandler{actionType: "legacy.export", enabled: false})
	authenticator := new(mockAuthenticator)
	dispatcher := NewDispatcher(registry, authenticator, new(mockAuthorizer), nil, testLogger(), false)

	status, envelope := dispatchOnce(t, dispatcher, `{"action_type":"legacy.export","params":{}}`, "valid-secret")

	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, CodeActionDisabled, envelope.ErrorCode)
	// Enablement is checked before authentication.
	authenticator.AssertNotCalled(t, "Authenticate")
}

func TestDispatcher_Unauthorized(t *testing.T) {
	registry := testRegistry(t, &testHandler{actionType: "system.ping", enabled: true})

	t.Run("Error_MissingBearerToken", func(t *testing.T) {
		authenticator := new(mockAuthenticator)
		dispatcher := NewDispatcher(registry, authenticator, new(mockAuthorizer), nil, testLogger(), false)

		status, envelope := dispatchOnce(t, dispatcher, `{"action_type":"system.ping","params":{}}`, "")

		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, CodeUnauthorized, envelope.ErrorCode)
		authenticator.AssertNotCalled(t, "Authenticate")
	})

	t.Run("Error_InvalidCredential", func(t *testing.T) {
		authenticator := new(mockAuthenticator)
		dispatcher := NewDispatcher(registry, authenticator, new(mockAuthorizer), nil, testLogger(), false)

		authenticator.On("Authenticate", mock.Anything, "garbage").
			Return(nil, credentialDomain.ErrInvalidCredential)

		status, envelope := dispatchOnce(t, dispatcher, `{"action_type":"system.ping","params":{}}`, "garbage")

		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, CodeUnauthorized, envelope.ErrorCode)
		// The response never reveals whether the credential was unknown,
		// expired or revoked.
		assert.Equal(t, "authentication required", envelope.Message)
		assert.Nil(t, envelope.Details)
	})

	t.Run("Error_StoreFailureMapsToExecutionFailed", func(t *testing.T) {
		authenticator := new(mockAuthenticator)
		dispatcher := NewDispatcher(registry, authenticator, new(mockAuthorizer), nil, testLogger(), false)

		authenticator.On("Authenticate", mock.Anything, "valid-secret").
			Return(nil, errors.New("connection refused"))

		status, envelope := dispatchOnce(t, dispatcher, `{"action_type":"system.ping","params":{}}`, "valid-secret")

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, CodeExecutionFailed, envelope.ErrorCode)
	})
}

func TestDispatcher_InsufficientPermissions(t *testing.T) {
	registry := testRegistry(t, &testHandler{
		actionType:  "user.info",
		enabled:     true,
		permissions: []string{"user.read"},
	})
	authenticator := new(mockAuthenticator)
	authorizer := new(mockAuthorizer)
	dispatcher := NewDispatcher(registry, authenticator, authorizer, nil, testLogger(), false)

	authenticator.On("Authenticate", mock.Anything, "valid-secret").
		Return(testCredential("other.permission"), nil)
	authorizer.On("Authorize", mock.Anything, "owner-1", "user.info", []string{"other.permission"}, []string{"user.read"}).
		Return(false, nil)

	status, envelope := dispatchOnce(t, dispatcher, `{"action_type":"user.info","params":{}}`, "valid-secret")

	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, CodeInsufficientPermissions, envelope.ErrorCode)
	// Permission sets stay server-side.
	assert.Nil(t, envelope.Details)
}

func TestDispatcher_ValidationFailed(t *testing.T) {
	verr := &action.ValidationErrors{}
	verr.Add("message", "must be a string")

	registry := testRegistry(t, &testHandler{
		actionType:  "system.ping",
		enabled:     true,
		validateErr: verr,
	})
	authenticator := new(mockAuthenticator)
	authorizer := new(mockAuthorizer)
	dispatcher := NewDispatcher(registry, authenticator, authorizer, nil, testLogger(), false)

	authenticator.On("Authenticate", mock.Anything, "valid-secret").
		Return(testCredential("*"), nil)
	authorizer.On("Authorize", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(true, nil)

	status, envelope := dispatchOnce(t, dispatcher, `{"action_type":"system.ping","params":{"message":42}}`, "valid-secret")

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, CodeValidationFailed, envelope.ErrorCode)

	details := envelope.Details.(map[string]any)
	fields := details["fields"].(map[string][]string)
	assert.Equal(t, []string{"must be a string"}, fields["message"])
}

func TestDispatcher_ExecutionFailed(t *testing.T) {
	newDispatcher := func(t *testing.T, handler *testHandler, development bool) *Dispatcher {
		registry := testRegistry(t, handler)
		authenticator := new(mockAuthenticator)
		authorizer := new(mockAuthorizer)

		authenticator.On("Authenticate", mock.Anything, "valid-secret").
			Return(testCredential("*"), nil)
		authorizer.On("Authorize", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(true, nil)

		return NewDispatcher(registry, authenticator, authorizer, nil, testLogger(), development)
	}

	t.Run("Error_HandlerError", func(t *testing.T) {
		dispatcher := newDispatcher(t, &testHandler{
			actionType: "system.ping",
			enabled:    true,
			execute: func(context.Context, *action.Request, *action.Caller) (any, error) {
				return nil, errors.New("downstream unavailable")
			},
		}, false)

		status, envelope := dispatchOnce(t, dispatcher, `{"action_type":"system.ping","params":{}}`, "valid-secret")

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, CodeExecutionFailed, envelope.ErrorCode)
		assert.Equal(t, "action execution failed", envelope.Message)
		assert.Nil(t, envelope.Details)
	})

	t.Run("Error_HandlerPanicRecovered", func(t *testing.T) {
		dispatcher := newDispatcher(t, &testHandler{
			actionType: "system.ping",
			enabled:    true,
			execute: func(context.Context, *action.Request, *action.Caller) (any, error) {
				panic("unexpected state")
			},
		}, false)

		status, envelope := dispatchOnce(t, dispatcher, `{"action_type":"system.ping","params":{}}`, "valid-secret")

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, CodeExecutionFailed, envelope.ErrorCode)
	})

	t.Run("Error_DevelopmentExposesDiagnostic", func(t *testing.T) {
		dispatcher := newDispatcher(t, &testHandler{
			actionType: "system.ping",
			enabled:    true,
			execute: func(context.Context, *action.Request, *action.Caller) (any, error) {
				return nil, errors.New("downstream unavailable")
			},
		}, true)

		_, envelope := dispatchOnce(t, dispatcher, `{"action_type":"system.ping","params":{}}`, "valid-secret")

		details := envelope.Details.(map[string]any)
		assert.Contains(t, details["error"], "downstream unavailable")
	})
}
