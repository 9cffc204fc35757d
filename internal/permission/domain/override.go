package domain

import (
	"time"

	"github.com/google/uuid"
)

// Override is a persisted, administrator-controlled permission requirement
// for one action identifier. An active override supersedes the handler's
// compiled-in default permissions; an inactive override is treated as absent.
type Override struct {
	ID          uuid.UUID
	ActionType  string // unique key
	Permissions []string
	IsActive    bool
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OverrideSpec describes the desired state of one override during a bulk sync.
// Active defaults to true when nil.
type OverrideSpec struct {
	Permissions []string
	Description string
	Active      *bool
}
