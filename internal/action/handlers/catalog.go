package handlers

import (
	"time"

	"github.com/allisson/actiongate/internal/action"
)

// Builtin returns the catalog of built-in handlers for registry discovery.
// The registry reference lets system.info report live registry statistics.
func Builtin(registry *action.Registry, serviceVersion string, startedAt time.Time) action.Catalog {
	return action.Catalog{
		Name: "builtin",
		Factories: []action.Factory{
			func() action.Handler { return &pingHandler{} },
			func() action.Handler {
				return &systemInfoHandler{
					registry:       registry,
					serviceVersion: serviceVersion,
					startedAt:      startedAt,
				}
			},
			func() action.Handler { return &userInfoHandler{} },
		},
	}
}
