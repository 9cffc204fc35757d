// Package dispatch implements the action dispatch pipeline: extract the
// action identifier, resolve the handler, check enablement, authenticate the
// bearer credential, authorize against effective permissions, validate
// parameters, execute, and wrap the outcome in a response envelope.
//
// Every dispatch terminates in exactly one state of a fixed taxonomy and
// logs exactly one entry carrying the request's correlation id.
package dispatch

import "net/http"

// Terminal error codes. Each failed dispatch carries exactly one.
const (
	CodeMalformedRequest        = "MALFORMED_REQUEST"
	CodeUnknownAction           = "UNKNOWN_ACTION"
	CodeActionDisabled          = "ACTION_DISABLED"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeValidationFailed        = "VALIDATION_FAILED"
	CodeExecutionFailed         = "EXECUTION_FAILED"
)

// httpStatus maps each terminal code to its HTTP status.
var httpStatus = map[string]int{
	CodeMalformedRequest:        http.StatusBadRequest,
	CodeUnknownAction:           http.StatusNotFound,
	CodeActionDisabled:          http.StatusForbidden,
	CodeUnauthorized:            http.StatusUnauthorized,
	CodeInsufficientPermissions: http.StatusForbidden,
	CodeValidationFailed:        http.StatusUnprocessableEntity,
	CodeExecutionFailed:         http.StatusInternalServerError,
}

// publicMessage maps each terminal code to its client-facing message. The
// unauthorized message never reveals whether the credential was unknown,
// expired or revoked.
var publicMessage = map[string]string{
	CodeMalformedRequest:        "malformed request",
	CodeUnknownAction:           "unknown action",
	CodeActionDisabled:          "action is disabled",
	CodeUnauthorized:            "authentication required",
	CodeInsufficientPermissions: "insufficient permissions",
	CodeValidationFailed:        "parameter validation failed",
	CodeExecutionFailed:         "action execution failed",
}
