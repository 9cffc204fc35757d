package action

import (
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/allisson/actiongate/internal/errors"
	"github.com/allisson/actiongate/internal/validation"
)

// Registry maps action identifiers to handler factories and caches at most
// one constructed instance per identifier.
//
// All methods are safe for concurrent use. Construction on first resolve is
// double-checked under the write lock so concurrent callers observe either
// no instance or the fully built one, never a partial.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	cache     map[string]Handler
	observers []Observer
	logger    *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		cache:     make(map[string]Handler),
		logger:    logger,
	}
}

// Register adds a handler factory under the identifier its probe instance
// declares. The factory is invoked once to verify the contract; the probe is
// discarded and the cached instance is built lazily on first Resolve.
//
// Returns ErrInvalidHandler when the factory panics, returns nil or declares
// a malformed identifier, and ErrDuplicateAction when the identifier is
// already taken. Duplicate registration fails closed: the original mapping
// is never replaced.
func (r *Registry) Register(factory Factory) error {
	probe, err := construct(factory)
	if err != nil {
		return err
	}

	actionType := probe.ActionType()
	if !validation.IsValidActionType(actionType) {
		return apperrors.Wrap(ErrInvalidHandler, fmt.Sprintf("malformed action identifier %q", actionType))
	}

	r.mu.Lock()
	if _, exists := r.factories[actionType]; exists {
		r.mu.Unlock()
		return apperrors.Wrap(ErrDuplicateAction, actionType)
	}
	r.factories[actionType] = factory
	observers := r.snapshotObserversLocked()
	r.mu.Unlock()

	r.logger.Info("action registered",
		slog.String("action_type", actionType),
		slog.String("version", probe.Version()))

	notify(observers, Event{Kind: EventRegister, ActionTypes: []string{actionType}})
	return nil
}

// Resolve returns the handler instance for an identifier, constructing and
// caching it on first use. Returns ErrUnknownAction when no factory is
// registered and ErrInvalidHandler when construction fails.
func (r *Registry) Resolve(actionType string) (Handler, error) {
	r.mu.RLock()
	if handler, ok := r.cache[actionType]; ok {
		r.mu.RUnlock()
		return handler, nil
	}
	factory, ok := r.factories[actionType]
	r.mu.RUnlock()

	if !ok {
		return nil, apperrors.Wrap(ErrUnknownAction, actionType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have constructed while we waited for the lock.
	if handler, ok := r.cache[actionType]; ok {
		return handler, nil
	}

	// The factory may have been unregistered while we waited.
	factory, ok = r.factories[actionType]
	if !ok {
		return nil, apperrors.Wrap(ErrUnknownAction, actionType)
	}

	handler, err := construct(factory)
	if err != nil {
		return nil, err
	}

	r.cache[actionType] = handler
	return handler, nil
}

// Has reports whether an identifier is registered.
func (r *Registry) Has(actionType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[actionType]
	return ok
}

// Unregister removes an identifier's factory and cached instance. Idempotent:
// removing an unknown identifier is a no-op and emits no notification.
func (r *Registry) Unregister(actionType string) {
	r.mu.Lock()
	_, existed := r.factories[actionType]
	delete(r.factories, actionType)
	delete(r.cache, actionType)
	observers := r.snapshotObserversLocked()
	r.mu.Unlock()

	if !existed {
		return
	}

	r.logger.Info("action unregistered", slog.String("action_type", actionType))
	notify(observers, Event{Kind: EventUnregister, ActionTypes: []string{actionType}})
}

// AutoDiscover offers every factory in the given catalogs to the registry.
// Each candidate is constructed and contract-checked; identifiers already
// registered are skipped so explicit registrations are never overwritten.
// Candidate failures are logged and skipped, never aborting the scan.
//
// Returns the identifiers added, in discovery order. One aggregated discover
// notification covers all of them.
func (r *Registry) AutoDiscover(catalogs ...Catalog) []string {
	var added []string

	for _, catalog := range catalogs {
		for _, factory := range catalog.Factories {
			probe, err := construct(factory)
			if err != nil {
				r.logger.Warn("discovery candidate rejected",
					slog.String("catalog", catalog.Name),
					slog.Any("error", err))
				continue
			}

			actionType := probe.ActionType()
			if !validation.IsValidActionType(actionType) {
				r.logger.Warn("discovery candidate rejected",
					slog.String("catalog", catalog.Name),
					slog.String("action_type", actionType),
					slog.String("reason", "malformed action identifier"))
				continue
			}

			r.mu.Lock()
			if _, exists := r.factories[actionType]; exists {
				r.mu.Unlock()
				r.logger.Debug("discovery candidate already registered",
					slog.String("catalog", catalog.Name),
					slog.String("action_type", actionType))
				continue
			}
			r.factories[actionType] = factory
			r.mu.Unlock()

			added = append(added, actionType)
		}
	}

	if len(added) == 0 {
		return nil
	}

	r.logger.Info("actions discovered", slog.Any("action_types", added))

	r.mu.RLock()
	observers := r.snapshotObserversLocked()
	r.mu.RUnlock()
	notify(observers, Event{Kind: EventDiscover, ActionTypes: added})

	return added
}

// ClearCache drops all cached instances. Factories stay registered and the
// next Resolve of each identifier constructs a fresh instance.
func (r *Registry) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache = make(map[string]Handler)
}

// Subscribe adds an observer for registry lifecycle events.
func (r *Registry) Subscribe(observer Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.observers = append(r.observers, observer)
}

// ActionTypes returns all registered identifiers. Order is unspecified.
func (r *Registry) ActionTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.factories))
	for actionType := range r.factories {
		out = append(out, actionType)
	}
	return out
}

// Statistics summarizes the registry's contents. Uncached handlers are
// constructed transiently to read enablement and version; a handler whose
// construction fails counts as disabled and contributes no version.
func (r *Registry) Statistics() Statistics {
	r.mu.RLock()
	factories := make(map[string]Factory, len(r.factories))
	for actionType, factory := range r.factories {
		factories[actionType] = factory
	}
	cache := make(map[string]Handler, len(r.cache))
	for actionType, handler := range r.cache {
		cache[actionType] = handler
	}
	r.mu.RUnlock()

	stats := Statistics{
		Total:    len(factories),
		Cached:   len(cache),
		Versions: make(map[string]int),
	}

	for actionType, factory := range factories {
		handler, ok := cache[actionType]
		if !ok {
			probe, err := construct(factory)
			if err != nil {
				stats.Disabled++
				continue
			}
			handler = probe
		}

		if handler.Enabled() {
			stats.Enabled++
		} else {
			stats.Disabled++
		}
		stats.Versions[handler.Version()]++
	}

	return stats
}

// construct invokes a factory, converting panics and nil results into
// ErrInvalidHandler.
func construct(factory Factory) (handler Handler, err error) {
	if factory == nil {
		return nil, apperrors.Wrap(ErrInvalidHandler, "nil factory")
	}

	defer func() {
		if r := recover(); r != nil {
			handler = nil
			err = apperrors.Wrap(ErrInvalidHandler, fmt.Sprintf("factory panicked: %v", r))
		}
	}()

	handler = factory()
	if handler == nil {
		return nil, apperrors.Wrap(ErrInvalidHandler, "factory returned nil handler")
	}
	return handler, nil
}

// snapshotObserversLocked copies the observer list; callers hold r.mu.
func (r *Registry) snapshotObserversLocked() []Observer {
	if len(r.observers) == 0 {
		return nil
	}
	out := make([]Observer, len(r.observers))
	copy(out, r.observers)
	return out
}

func notify(observers []Observer, event Event) {
	for _, observer := range observers {
		observer(event)
	}
}
