// Package action defines the handler capability contract and the registry
// that maps action identifiers to handler instances.
//
// Handlers self-declare their identifier, enablement, version and default
// permission requirement. The registry constructs each handler lazily and
// caches the single instance until unregistration or an explicit cache clear.
package action

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Request is the caller-supplied portion of a dispatch: the action identifier
// and the free-form parameter document.
type Request struct {
	ActionType string         `json:"action_type"`
	Params     map[string]any `json:"params"`
}

// UnmarshalJSON accepts both request shapes: handler fields nested under a
// "params" object and handler fields spelled at the top level next to
// "action_type". Both end up in Params; the top-level spelling wins on a key
// collision. Type errors carry the offending field name.
func (r *Request) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.ActionType = ""
	r.Params = nil

	params := make(map[string]any, len(raw))
	for key, value := range raw {
		switch key {
		case "action_type":
			if err := json.Unmarshal(value, &r.ActionType); err != nil {
				return tagFieldError(err, key)
			}
		case "params":
			var nested map[string]any
			if err := json.Unmarshal(value, &nested); err != nil {
				return tagFieldError(err, key)
			}
			for nestedKey, nestedValue := range nested {
				if _, shadowed := raw[nestedKey]; shadowed && nestedKey != "action_type" && nestedKey != "params" {
					continue
				}
				params[nestedKey] = nestedValue
			}
		default:
			var decoded any
			if err := json.Unmarshal(value, &decoded); err != nil {
				return err
			}
			params[key] = decoded
		}
	}

	if len(params) > 0 {
		r.Params = params
	}
	return nil
}

// tagFieldError records the field a JSON type error occurred on so callers
// can report it instead of a generic body error.
func tagFieldError(err error, field string) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "" {
		typeErr.Field = field
	}
	return err
}

// Caller is the authenticated identity a handler executes on behalf of.
type Caller struct {
	ID          string
	Name        string
	Permissions []string
}

// ValidationErrors maps parameter field names to human-readable messages.
// A handler returns it from ValidateParams to reject a request before
// execution.
type ValidationErrors struct {
	Fields map[string][]string
}

// Add appends a message for a field, allocating the map on first use.
func (v *ValidationErrors) Add(field, message string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], message)
}

// HasErrors reports whether any field carries a message.
func (v *ValidationErrors) HasErrors() bool {
	return v != nil && len(v.Fields) > 0
}

// Error implements the error interface with a deterministic field order.
func (v *ValidationErrors) Error() string {
	if !v.HasErrors() {
		return "validation failed"
	}

	fields := make([]string, 0, len(v.Fields))
	for field := range v.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(v.Fields[field], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// ParamSpec documents one parameter a handler accepts.
type ParamSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// Description is a handler's self-description for catalogs and tooling.
type Description struct {
	ActionType  string           `json:"action_type"`
	Summary     string           `json:"summary"`
	Version     string           `json:"version"`
	Permissions []string         `json:"permissions,omitempty"`
	Params      []ParamSpec      `json:"params,omitempty"`
	Examples    []map[string]any `json:"examples,omitempty"`
}

// Handler is the capability contract every action implements.
type Handler interface {
	// ActionType returns the handler's unique action identifier.
	ActionType() string

	// Enabled reports whether the action accepts dispatches. A disabled
	// handler stays registered and resolvable but is rejected before
	// authentication.
	Enabled() bool

	// Version returns the handler's version string.
	Version() string

	// DefaultPermissions returns the permissions required to invoke the
	// action when no persisted override is active. Empty means open to any
	// authenticated caller.
	DefaultPermissions() []string

	// ValidateParams checks the request parameters before execution.
	// Returns *ValidationErrors on rejection, nil on acceptance.
	ValidateParams(req *Request) error

	// Execute runs the action for an authenticated, authorized caller.
	Execute(ctx context.Context, req *Request, caller *Caller) (any, error)

	// Describe returns the handler's self-description.
	Describe() Description
}

// Factory constructs a handler instance. The registry calls it at most once
// per cached lifetime; a panicking factory is reported as an invalid handler.
type Factory func() Handler

// Catalog is a named collection of handler factories offered to
// Registry.AutoDiscover. Packages expose their handlers as a catalog instead
// of registering at init time, keeping registration explicit and testable.
type Catalog struct {
	Name      string
	Factories []Factory
}

// EventKind identifies a registry lifecycle notification.
type EventKind string

// Registry lifecycle notifications.
const (
	EventRegister   EventKind = "register"
	EventDiscover   EventKind = "discover"
	EventUnregister EventKind = "unregister"
)

// Event is delivered to subscribed observers on registry changes. Discover
// events aggregate every identifier added by one AutoDiscover call.
type Event struct {
	Kind        EventKind
	ActionTypes []string
}

// Observer receives registry lifecycle events. Observers are invoked
// synchronously outside the registry lock and must not block.
type Observer func(Event)

// Statistics is a point-in-time summary of the registry's contents.
type Statistics struct {
	Total    int
	Enabled  int
	Disabled int
	Cached   int
	Versions map[string]int
}
