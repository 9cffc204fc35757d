package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/actiongate/internal/database"
	permissionDomain "github.com/allisson/actiongate/internal/permission/domain"
	appvalidation "github.com/allisson/actiongate/internal/validation"
)

// resolver implements Resolver backed by an OverrideRepository.
type resolver struct {
	overrideRepo OverrideRepository
	txManager    database.TxManager
	logger       *slog.Logger
}

// EffectivePermissions returns an active persisted override's permissions when
// one exists, the handler default otherwise. No caching: each call reads the
// store so administrative changes take effect on the next dispatch.
func (r *resolver) EffectivePermissions(
	ctx context.Context,
	actionType string,
	handlerDefault []string,
) ([]string, error) {
	override, err := r.overrideRepo.GetByActionType(ctx, actionType)
	if err != nil {
		if errors.Is(err, permissionDomain.ErrOverrideNotFound) {
			return handlerDefault, nil
		}
		return nil, err
	}

	if !override.IsActive {
		return handlerDefault, nil
	}

	return override.Permissions, nil
}

// Authorize evaluates held permissions against the action's effective
// requirement. Denials are logged with caller, action and both permission
// sets for audit.
func (r *resolver) Authorize(
	ctx context.Context,
	callerID, actionType string,
	held, handlerDefault []string,
) (bool, error) {
	required, err := r.EffectivePermissions(ctx, actionType, handlerDefault)
	if err != nil {
		return false, err
	}

	if permissionDomain.Allows(held, required) {
		return true, nil
	}

	r.logger.Warn("authorization denied",
		slog.String("caller_id", callerID),
		slog.String("action_type", actionType),
		slog.Any("required_permissions", required),
		slog.Any("held_permissions", held))

	return false, nil
}

// SetOverride validates and upserts the override for an action identifier.
func (r *resolver) SetOverride(
	ctx context.Context,
	actionType string,
	spec *permissionDomain.OverrideSpec,
) (*permissionDomain.Override, error) {
	if err := validateOverride(actionType, spec.Permissions); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	override := &permissionDomain.Override{
		ID:          uuid.Must(uuid.NewV7()),
		ActionType:  actionType,
		Permissions: spec.Permissions,
		IsActive:    spec.Active == nil || *spec.Active,
		Description: spec.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := r.overrideRepo.Upsert(ctx, override); err != nil {
		return nil, err
	}

	r.logger.Info("permission override set",
		slog.String("action_type", actionType),
		slog.Any("permissions", override.Permissions),
		slog.Bool("is_active", override.IsActive))

	return override, nil
}

// RemoveOverride deletes the override for an action identifier.
func (r *resolver) RemoveOverride(ctx context.Context, actionType string) (bool, error) {
	removed, err := r.overrideRepo.Delete(ctx, actionType)
	if err != nil {
		return false, err
	}

	if removed {
		r.logger.Info("permission override removed",
			slog.String("action_type", actionType))
	}

	return removed, nil
}

// SyncOverrides bulk-upserts a desired-state map. Entries are validated up
// front and applied in one transaction, so either every override lands or
// none do. Persisted overrides absent from the map are left untouched;
// removal stays an explicit RemoveOverride call.
func (r *resolver) SyncOverrides(
	ctx context.Context,
	desired map[string]permissionDomain.OverrideSpec,
) (int, error) {
	for actionType, spec := range desired {
		if err := validateOverride(actionType, spec.Permissions); err != nil {
			return 0, err
		}
	}

	upserted := 0
	err := r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		for actionType, spec := range desired {
			spec := spec
			if _, err := r.SetOverride(txCtx, actionType, &spec); err != nil {
				return err
			}
			upserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Info("permission overrides synced", slog.Int("upserted", upserted))

	return upserted, nil
}

// ListOverrides returns all persisted overrides.
func (r *resolver) ListOverrides(ctx context.Context) ([]*permissionDomain.Override, error) {
	return r.overrideRepo.List(ctx)
}

func validateOverride(actionType string, permissions []string) error {
	if err := validation.Validate(actionType, validation.Required, appvalidation.ActionType); err != nil {
		return appvalidation.WrapValidationError(err)
	}
	for _, p := range permissions {
		if err := validation.Validate(p, validation.Required, appvalidation.PermissionName); err != nil {
			return appvalidation.WrapValidationError(err)
		}
	}
	return nil
}

// NewResolver creates a new Resolver with the provided dependencies.
func NewResolver(overrideRepo OverrideRepository, txManager database.TxManager, logger *slog.Logger) Resolver {
	return &resolver{
		overrideRepo: overrideRepo,
		txManager:    txManager,
		logger:       logger,
	}
}
