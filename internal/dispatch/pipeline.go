package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/allisson/actiongate/internal/action"
	credentialDomain "github.com/allisson/actiongate/internal/credential/domain"
	"github.com/allisson/actiongate/internal/httputil"
	"github.com/allisson/actiongate/internal/validation"
)

// HandlerResolver resolves action identifiers to handler instances.
// *action.Registry satisfies it.
type HandlerResolver interface {
	Resolve(actionType string) (action.Handler, error)
}

// Authenticator validates a bearer secret. The credential usecase satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, plainSecret string) (*credentialDomain.Credential, error)
}

// Authorizer decides whether a caller may invoke an action. The permission
// resolver satisfies it.
type Authorizer interface {
	Authorize(ctx context.Context, callerID, actionType string, held, handlerDefault []string) (bool, error)
}

// MetricsRecorder records per-dispatch metrics. A nil recorder disables
// recording.
type MetricsRecorder interface {
	RecordDispatch(ctx context.Context, actionType, outcome string, duration time.Duration)
}

// Dispatcher runs the dispatch pipeline.
type Dispatcher struct {
	registry    HandlerResolver
	credentials Authenticator
	permissions Authorizer
	metrics     MetricsRecorder
	logger      *slog.Logger
	development bool
}

// NewDispatcher creates a Dispatcher. metrics may be nil.
func NewDispatcher(
	registry HandlerResolver,
	credentials Authenticator,
	permissions Authorizer,
	metrics MetricsRecorder,
	logger *slog.Logger,
	development bool,
) *Dispatcher {
	return &Dispatcher{
		registry:    registry,
		credentials: credentials,
		permissions: permissions,
		metrics:     metrics,
		logger:      logger,
		development: development,
	}
}

// Dispatch runs one request through the pipeline and returns the HTTP status
// plus the response envelope. bearerSecret is the raw bearer token, empty when
// the request carried none. Exactly one log entry is written per dispatch,
// tagged with the formatter's request id.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	formatter *httputil.Formatter,
	body []byte,
	bearerSecret string,
) (int, httputil.Envelope) {
	started := time.Now()

	status, envelope, logAttrs := d.run(ctx, formatter, body, bearerSecret)

	duration := time.Since(started)
	actionType := attrString(logAttrs, "action_type")
	outcome := envelope.ErrorCode
	if outcome == "" {
		outcome = "SUCCESS"
	}

	if d.metrics != nil {
		d.metrics.RecordDispatch(ctx, actionType, outcome, duration)
	}

	attrs := append(logAttrs,
		slog.String("request_id", formatter.RequestID()),
		slog.String("outcome", outcome),
		slog.Int("http_status", status),
		slog.Duration("duration", duration))

	switch {
	case envelope.ErrorCode == "":
		d.logger.LogAttrs(ctx, slog.LevelInfo, "action dispatched", attrs...)
	case envelope.ErrorCode == CodeExecutionFailed:
		d.logger.LogAttrs(ctx, slog.LevelError, "action dispatch failed", attrs...)
	default:
		d.logger.LogAttrs(ctx, slog.LevelWarn, "action dispatch rejected", attrs...)
	}

	return status, envelope
}

// run executes the pipeline stages and returns the outcome plus the log
// attributes accumulated along the way.
func (d *Dispatcher) run(
	ctx context.Context,
	formatter *httputil.Formatter,
	body []byte,
	bearerSecret string,
) (int, httputil.Envelope, []slog.Attr) {
	var attrs []slog.Attr

	// Extract.
	var req action.Request
	if err := json.Unmarshal(body, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			status, envelope := d.failure(formatter, CodeMalformedRequest, map[string]any{
				typeErr.Field: fmt.Sprintf("cannot be a JSON %s", typeErr.Value),
			})
			return status, envelope, attrs
		}
		status, envelope := d.failure(formatter, CodeMalformedRequest, map[string]any{"body": "must be a JSON object"})
		return status, envelope, attrs
	}
	if !validation.IsValidActionType(req.ActionType) {
		status, envelope := d.failure(formatter, CodeMalformedRequest, map[string]any{
			"action_type": "must be a non-empty string of at most 128 characters from [A-Za-z0-9_.-]",
		})
		return status, envelope, attrs
	}
	attrs = append(attrs, slog.String("action_type", req.ActionType))

	// Resolve.
	handler, err := d.registry.Resolve(req.ActionType)
	if err != nil {
		if errors.Is(err, action.ErrUnknownAction) {
			status, envelope := d.failure(formatter, CodeUnknownAction, nil)
			return status, envelope, attrs
		}
		attrs = append(attrs, slog.Any("error", err))
		status, envelope := d.failure(formatter, CodeExecutionFailed, d.diagnostic(err))
		return status, envelope, attrs
	}

	// Enablement, checked before authentication so a disabled action is
	// reported regardless of credentials.
	if !handler.Enabled() {
		status, envelope := d.failure(formatter, CodeActionDisabled, nil)
		return status, envelope, attrs
	}

	// Authenticate.
	if bearerSecret == "" {
		status, envelope := d.failure(formatter, CodeUnauthorized, nil)
		return status, envelope, attrs
	}
	credential, err := d.credentials.Authenticate(ctx, bearerSecret)
	if err != nil {
		if errors.Is(err, credentialDomain.ErrInvalidCredential) {
			status, envelope := d.failure(formatter, CodeUnauthorized, nil)
			return status, envelope, attrs
		}
		attrs = append(attrs, slog.Any("error", err))
		status, envelope := d.failure(formatter, CodeExecutionFailed, d.diagnostic(err))
		return status, envelope, attrs
	}
	attrs = append(attrs, slog.String("caller_id", credential.OwnerID))

	// Authorize. The full permission sets stay server-side: the resolver
	// logs them on denial, the response never carries them.
	allowed, err := d.permissions.Authorize(
		ctx,
		credential.OwnerID,
		req.ActionType,
		credential.Permissions,
		handler.DefaultPermissions(),
	)
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
		status, envelope := d.failure(formatter, CodeExecutionFailed, d.diagnostic(err))
		return status, envelope, attrs
	}
	if !allowed {
		status, envelope := d.failure(formatter, CodeInsufficientPermissions, nil)
		return status, envelope, attrs
	}

	// Validate.
	if err := handler.ValidateParams(&req); err != nil {
		var verr *action.ValidationErrors
		if errors.As(err, &verr) {
			status, envelope := d.failure(formatter, CodeValidationFailed, map[string]any{"fields": verr.Fields})
			return status, envelope, attrs
		}
		status, envelope := d.failure(formatter, CodeValidationFailed, nil)
		return status, envelope, attrs
	}

	// Execute.
	caller := &action.Caller{
		ID:          credential.OwnerID,
		Name:        credential.Name,
		Permissions: credential.Permissions,
	}
	result, err := d.execute(ctx, handler, &req, caller)
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
		status, envelope := d.failure(formatter, CodeExecutionFailed, d.diagnostic(err))
		return status, envelope, attrs
	}

	envelope := formatter.Success("action executed", result, map[string]any{
		"action_type": req.ActionType,
		"version":     handler.Version(),
	})
	return http.StatusOK, envelope, attrs
}

// execute runs the handler, converting panics into errors.
func (d *Dispatcher) execute(
	ctx context.Context,
	handler action.Handler,
	req *action.Request,
	caller *action.Caller,
) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return handler.Execute(ctx, req, caller)
}

// failure builds the terminal error response for a code.
func (d *Dispatcher) failure(
	formatter *httputil.Formatter,
	code string,
	details any,
) (int, httputil.Envelope) {
	return httpStatus[code], formatter.Error(code, publicMessage[code], details, nil)
}

// diagnostic exposes the underlying error only in development; production
// responses carry the generic message alone.
func (d *Dispatcher) diagnostic(err error) any {
	if !d.development {
		return nil
	}
	return map[string]any{"error": err.Error()}
}

func attrString(attrs []slog.Attr, key string) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value.String()
		}
	}
	return ""
}
