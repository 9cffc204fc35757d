// Package usecase implements business logic orchestration for the credential lifecycle.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	credentialDomain "github.com/allisson/actiongate/internal/credential/domain"
	credentialService "github.com/allisson/actiongate/internal/credential/service"
	permissionDomain "github.com/allisson/actiongate/internal/permission/domain"
)

// credentialUseCase implements CredentialUseCase.
type credentialUseCase struct {
	credentialRepo CredentialRepository
	secretService  credentialService.SecretService
	logger         *slog.Logger
}

// Issue generates a new credential secret and persists its hash.
//
// The plain secret is only returned once and should be transmitted securely.
// The stored record never contains the plaintext.
func (u *credentialUseCase) Issue(
	ctx context.Context,
	input *credentialDomain.IssueCredentialInput,
) (*credentialDomain.IssueCredentialOutput, error) {
	plainSecret, secretHash, err := u.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	credential := &credentialDomain.Credential{
		ID:          uuid.Must(uuid.NewV7()),
		OwnerID:     input.OwnerID,
		Name:        input.Name,
		TokenHash:   secretHash,
		Permissions: input.Permissions,
		ExpiresAt:   input.ExpiresAt,
		LastUsedAt:  nil,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}

	if err := u.credentialRepo.Create(ctx, credential); err != nil {
		return nil, err
	}

	return &credentialDomain.IssueCredentialOutput{
		PlainSecret: plainSecret,
		Credential:  credential,
	}, nil
}

// Authenticate validates a presented secret and returns the matching credential.
//
// Security notes:
//   - Unknown hash, expired credential and revoked credential all return
//     ErrInvalidCredential after exactly one store lookup, so the failure
//     cause cannot be distinguished from response timing or content.
//   - The last-used timestamp update is best-effort: a failure is logged and
//     swallowed, never failing the authentication.
//   - All time comparisons use UTC.
func (u *credentialUseCase) Authenticate(
	ctx context.Context,
	plainSecret string,
) (*credentialDomain.Credential, error) {
	secretHash := u.secretService.HashSecret(plainSecret)

	credential, err := u.credentialRepo.GetByTokenHash(ctx, secretHash)
	if err != nil {
		if errors.Is(err, credentialDomain.ErrCredentialNotFound) {
			return nil, credentialDomain.ErrInvalidCredential
		}
		return nil, err
	}

	if !credential.CanAuthenticate(time.Now().UTC()) {
		return nil, credentialDomain.ErrInvalidCredential
	}

	// Best-effort last-used tracking; last write wins under concurrent hits.
	now := time.Now().UTC()
	if err := u.credentialRepo.TouchLastUsed(ctx, credential.ID, now); err != nil {
		u.logger.Warn("failed to record credential last-used time",
			slog.String("credential_id", credential.ID.String()),
			slog.Any("error", err))
	} else {
		credential.LastUsedAt = &now
	}

	return credential, nil
}

// Revoke clears the active flag for the credential matching the secret.
// Returns true only when the call transitions the credential from active to
// inactive; revoking an already revoked (or unknown) secret returns false.
func (u *credentialUseCase) Revoke(ctx context.Context, plainSecret string) (bool, error) {
	secretHash := u.secretService.HashSecret(plainSecret)

	credential, err := u.credentialRepo.GetByTokenHash(ctx, secretHash)
	if err != nil {
		if errors.Is(err, credentialDomain.ErrCredentialNotFound) {
			return false, nil
		}
		return false, err
	}

	if !credential.IsActive {
		return false, nil
	}

	credential.IsActive = false
	if err := u.credentialRepo.Update(ctx, credential); err != nil {
		return false, err
	}

	u.logger.Info("credential revoked",
		slog.String("credential_id", credential.ID.String()),
		slog.String("owner_id", credential.OwnerID),
		slog.String("name", credential.Name))

	return true, nil
}

// RevokeAllForOwner revokes all of an owner's active credentials.
func (u *credentialUseCase) RevokeAllForOwner(ctx context.Context, ownerID string) (int64, error) {
	count, err := u.credentialRepo.DeactivateByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	u.logger.Info("credentials revoked for owner",
		slog.String("owner_id", ownerID),
		slog.Int64("count", count))

	return count, nil
}

// RevokeByName revokes an owner's active credentials with the given name.
func (u *credentialUseCase) RevokeByName(ctx context.Context, ownerID, name string) (int64, error) {
	count, err := u.credentialRepo.DeactivateByOwnerAndName(ctx, ownerID, name)
	if err != nil {
		return 0, err
	}

	u.logger.Info("credentials revoked by name",
		slog.String("owner_id", ownerID),
		slog.String("name", name),
		slog.Int64("count", count))

	return count, nil
}

// CleanupExpired deactivates all active credentials whose expiry has passed.
// Rows are never deleted. Safe to run repeatedly and concurrently: a second
// run finds nothing left to deactivate and reports zero.
func (u *credentialUseCase) CleanupExpired(ctx context.Context) (int64, error) {
	count, err := u.credentialRepo.DeactivateExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	if count > 0 {
		u.logger.Info("expired credentials deactivated", slog.Int64("count", count))
	}

	return count, nil
}

// ListForOwner returns all of an owner's credentials, revoked and expired
// included.
func (u *credentialUseCase) ListForOwner(
	ctx context.Context,
	ownerID string,
) ([]*credentialDomain.Credential, error) {
	return u.credentialRepo.ListByOwner(ctx, ownerID)
}

// HasPermission reports whether the credential matching the secret holds the
// given permission, honoring the "*" wildcard grant.
func (u *credentialUseCase) HasPermission(
	ctx context.Context,
	plainSecret, permission string,
) (bool, error) {
	credential, err := u.Authenticate(ctx, plainSecret)
	if err != nil {
		if errors.Is(err, credentialDomain.ErrInvalidCredential) {
			return false, nil
		}
		return false, err
	}

	return permissionDomain.Allows(credential.Permissions, []string{permission}), nil
}

// RemainingValidDays returns the number of whole days until the credential
// expires, or nil when it never expires. Already-expired credentials fail
// authentication and therefore return ErrInvalidCredential.
func (u *credentialUseCase) RemainingValidDays(
	ctx context.Context,
	plainSecret string,
) (*int, error) {
	credential, err := u.Authenticate(ctx, plainSecret)
	if err != nil {
		return nil, err
	}

	if credential.ExpiresAt == nil {
		return nil, nil
	}

	days := int(time.Until(*credential.ExpiresAt).Hours() / 24)
	return &days, nil
}

// NewCredentialUseCase creates a new CredentialUseCase with the provided dependencies.
func NewCredentialUseCase(
	credentialRepo CredentialRepository,
	secretService credentialService.SecretService,
	logger *slog.Logger,
) CredentialUseCase {
	return &credentialUseCase{
		credentialRepo: credentialRepo,
		secretService:  secretService,
		logger:         logger,
	}
}
