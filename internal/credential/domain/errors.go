package domain

import (
	"github.com/allisson/actiongate/internal/errors"
)

// Credential errors.
var (
	// ErrCredentialNotFound indicates no credential matches the given key.
	ErrCredentialNotFound = errors.Wrap(errors.ErrNotFound, "credential not found")

	// ErrInvalidCredential indicates the presented secret does not authenticate.
	// Unknown, expired and revoked secrets all produce this error so callers
	// cannot distinguish the cause.
	ErrInvalidCredential = errors.Wrap(errors.ErrUnauthorized, "invalid credential")
)
