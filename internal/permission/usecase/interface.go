// Package usecase implements permission resolution and authorization decisions.
package usecase

import (
	"context"

	permissionDomain "github.com/allisson/actiongate/internal/permission/domain"
)

// OverrideRepository defines persistence operations for permission overrides.
type OverrideRepository interface {
	// Upsert creates the override for override.ActionType or replaces the
	// existing one, preserving ID and CreatedAt on replace.
	Upsert(ctx context.Context, override *permissionDomain.Override) error

	// GetByActionType retrieves the override for an action identifier.
	// Returns ErrOverrideNotFound when none exists, active or not.
	GetByActionType(ctx context.Context, actionType string) (*permissionDomain.Override, error)

	// Delete removes the override for an action identifier. Returns true when
	// a row was removed.
	Delete(ctx context.Context, actionType string) (bool, error)

	// List retrieves all overrides ordered by action identifier.
	List(ctx context.Context) ([]*permissionDomain.Override, error)
}

// Resolver decides which permissions an action requires and whether a caller
// holds them.
type Resolver interface {
	// EffectivePermissions returns the permissions required to invoke an
	// action: an active persisted override when present, the handler default
	// otherwise. Inactive overrides are treated as absent.
	EffectivePermissions(ctx context.Context, actionType string, handlerDefault []string) ([]string, error)

	// Authorize checks a caller's held permissions against an action's
	// effective requirement and logs denials for audit.
	Authorize(ctx context.Context, callerID, actionType string, held, handlerDefault []string) (bool, error)

	// SetOverride creates or replaces the override for an action identifier.
	SetOverride(ctx context.Context, actionType string, spec *permissionDomain.OverrideSpec) (*permissionDomain.Override, error)

	// RemoveOverride deletes the override for an action identifier, restoring
	// the handler default. Returns true when an override was removed.
	RemoveOverride(ctx context.Context, actionType string) (bool, error)

	// SyncOverrides bulk-upserts the desired map in one transaction: each
	// entry independently creates or replaces its override. Persisted
	// overrides absent from the map are left untouched. Returns the number
	// of upserts.
	SyncOverrides(ctx context.Context, desired map[string]permissionDomain.OverrideSpec) (int, error)

	// ListOverrides returns all persisted overrides.
	ListOverrides(ctx context.Context) ([]*permissionDomain.Override, error)
}
