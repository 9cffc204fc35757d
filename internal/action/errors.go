package action

import (
	"github.com/allisson/actiongate/internal/errors"
)

// Registry errors.
var (
	// ErrUnknownAction indicates no handler is registered for the identifier.
	ErrUnknownAction = errors.Wrap(errors.ErrNotFound, "unknown action")

	// ErrDuplicateAction indicates the identifier is already registered.
	ErrDuplicateAction = errors.Wrap(errors.ErrConflict, "action already registered")

	// ErrInvalidHandler indicates a factory produced a handler that does not
	// satisfy the capability contract.
	ErrInvalidHandler = errors.Wrap(errors.ErrInvalidInput, "invalid action handler")

	// ErrActionDisabled indicates the handler exists but refuses dispatches.
	ErrActionDisabled = errors.Wrap(errors.ErrForbidden, "action disabled")
)
