// Package usecase defines business logic interfaces for the credential lifecycle.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	credentialDomain "github.com/allisson/actiongate/internal/credential/domain"
)

// CredentialRepository defines persistence operations for credentials.
// Implementations must support transaction-aware operations via context propagation.
type CredentialRepository interface {
	// Create stores a new credential in the repository.
	Create(ctx context.Context, credential *credentialDomain.Credential) error

	// Update modifies an existing credential in the repository.
	Update(ctx context.Context, credential *credentialDomain.Credential) error

	// Get retrieves a credential by ID. Returns ErrCredentialNotFound if not found.
	Get(ctx context.Context, credentialID uuid.UUID) (*credentialDomain.Credential, error)

	// GetByTokenHash retrieves a credential by its secret hash.
	// Returns ErrCredentialNotFound if not found.
	GetByTokenHash(ctx context.Context, tokenHash string) (*credentialDomain.Credential, error)

	// ListByOwner retrieves all of an owner's credentials, active or not,
	// ordered by creation time.
	ListByOwner(ctx context.Context, ownerID string) ([]*credentialDomain.Credential, error)

	// DeactivateByOwner clears the active flag on all of an owner's active
	// credentials and returns the number of rows affected.
	DeactivateByOwner(ctx context.Context, ownerID string) (int64, error)

	// DeactivateByOwnerAndName clears the active flag on an owner's active
	// credentials with the given name and returns the number of rows affected.
	DeactivateByOwnerAndName(ctx context.Context, ownerID, name string) (int64, error)

	// DeactivateExpired clears the active flag on all active credentials whose
	// expiry has passed and returns the number of rows affected. Rows are never
	// deleted.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)

	// TouchLastUsed records a successful authentication time. Last-write-wins
	// under concurrency.
	TouchLastUsed(ctx context.Context, credentialID uuid.UUID, usedAt time.Time) error
}

// CredentialUseCase defines the credential lifecycle: issuance, authentication,
// revocation and expiry cleanup. It is the only component that ever sees a
// secret in plaintext (at issuance) or hashes one for comparison.
type CredentialUseCase interface {
	// Issue generates a high-entropy secret, persists its hash together with
	// the credential metadata, and returns the plaintext exactly once.
	Issue(
		ctx context.Context,
		input *credentialDomain.IssueCredentialInput,
	) (*credentialDomain.IssueCredentialOutput, error)

	// Authenticate validates a presented secret and returns the matching
	// credential with its stored permission set attached.
	//
	// Unknown, expired and revoked secrets all fail with ErrInvalidCredential
	// after the same amount of work (a single lookup by hash), so the failure
	// cause is not observable from timing or content. On success the last-used
	// timestamp is recorded best-effort; a failure to record it never fails
	// the authentication.
	Authenticate(ctx context.Context, plainSecret string) (*credentialDomain.Credential, error)

	// Revoke clears the active flag for the credential matching the secret.
	// Returns false when no match exists or the credential is already inactive;
	// revocation is one-directional.
	Revoke(ctx context.Context, plainSecret string) (bool, error)

	// RevokeAllForOwner revokes all of an owner's active credentials.
	RevokeAllForOwner(ctx context.Context, ownerID string) (int64, error)

	// RevokeByName revokes an owner's active credentials with the given name.
	RevokeByName(ctx context.Context, ownerID, name string) (int64, error)

	// CleanupExpired deactivates (never deletes) all active credentials whose
	// expiry has passed. Idempotent: a second run finds nothing to deactivate.
	CleanupExpired(ctx context.Context) (int64, error)

	// ListForOwner returns all of an owner's credentials, revoked and expired
	// included. Plaintext secrets are never part of the result.
	ListForOwner(ctx context.Context, ownerID string) ([]*credentialDomain.Credential, error)

	// HasPermission reports whether the credential matching the secret holds
	// the given permission (directly or via the "*" wildcard).
	HasPermission(ctx context.Context, plainSecret, permission string) (bool, error)

	// RemainingValidDays returns the number of whole days until the credential
	// expires, or nil when it has no expiry. Fails with ErrInvalidCredential
	// for secrets that do not authenticate.
	RemainingValidDays(ctx context.Context, plainSecret string) (*int, error)
}
