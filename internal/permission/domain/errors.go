package domain

import (
	"github.com/allisson/actiongate/internal/errors"
)

// Permission override errors.
var (
	// ErrOverrideNotFound indicates no override exists for the action identifier.
	ErrOverrideNotFound = errors.Wrap(errors.ErrNotFound, "permission override not found")
)
