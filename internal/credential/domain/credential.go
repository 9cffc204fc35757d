// Package domain defines credential models and business logic for bearer
// authentication.
//
// A credential is an opaque bearer secret plus its persisted metadata. Only
// the SHA-256 hash of the secret is ever stored; the plaintext exists exactly
// once, in the issuance response.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Credential represents one issued bearer credential.
type Credential struct {
	ID          uuid.UUID  // Unique identifier (UUIDv7)
	OwnerID     string     // Opaque owner identifier
	Name        string     // Human-readable credential name
	TokenHash   string     // SHA-256 hex of the secret (never the plaintext)
	Permissions []string   // Held permission set ("*" grants everything)
	ExpiresAt   *time.Time // Optional expiry (nil = never expires)
	LastUsedAt  *time.Time // Last successful authentication (nil = never used)
	IsActive    bool       // Cleared on revocation; never set back to true
	CreatedAt   time.Time
}

// IsExpired reports whether the credential's expiry has passed at the given time.
// Credentials without an expiry never expire.
func (c *Credential) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// CanAuthenticate reports whether the credential is valid for authentication:
// active and not expired. Expiry wins over the active flag.
func (c *Credential) CanAuthenticate(now time.Time) bool {
	return c.IsActive && !c.IsExpired(now)
}

// IssueCredentialInput contains the parameters for issuing a new credential.
// The secret is always generated server-side and cannot be supplied.
type IssueCredentialInput struct {
	OwnerID     string
	Name        string
	Permissions []string
	ExpiresAt   *time.Time
}

// IssueCredentialOutput contains the result of issuing a credential.
// SECURITY: PlainSecret is only returned once and is unrecoverable afterwards.
type IssueCredentialOutput struct {
	PlainSecret string
	Credential  *Credential
}
