// Package repository implements data persistence for credentials.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). PostgreSQL uses native UUID and JSONB types, MySQL uses
// BINARY(16) and JSON types.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	credentialDomain "github.com/allisson/actiongate/internal/credential/domain"
	"github.com/allisson/actiongate/internal/database"
	apperrors "github.com/allisson/actiongate/internal/errors"
)

// PostgreSQLCredentialRepository implements Credential persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLCredentialRepository struct {
	db *sql.DB
}

// Create inserts a new Credential into the PostgreSQL database.
func (p *PostgreSQLCredentialRepository) Create(
	ctx context.Context,
	credential *credentialDomain.Credential,
) error {
	querier := database.GetTx(ctx, p.db)

	permissions, err := json.Marshal(credential.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal permissions")
	}

	query := `INSERT INTO credentials
			  (id, owner_id, name, token_hash, permissions, expires_at, last_used_at, is_active, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		credential.ID,
		credential.OwnerID,
		credential.Name,
		credential.TokenHash,
		permissions,
		credential.ExpiresAt,
		credential.LastUsedAt,
		credential.IsActive,
		credential.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create credential")
	}
	return nil
}

// Update modifies an existing Credential in the PostgreSQL database.
func (p *PostgreSQLCredentialRepository) Update(
	ctx context.Context,
	credential *credentialDomain.Credential,
) error {
	querier := database.GetTx(ctx, p.db)

	permissions, err := json.Marshal(credential.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal permissions")
	}

	query := `UPDATE credentials
			  SET owner_id = $1,
			  	  name = $2,
				  token_hash = $3,
				  permissions = $4,
				  expires_at = $5,
				  last_used_at = $6,
				  is_active = $7
			  WHERE id = $8`

	_, err = querier.ExecContext(
		ctx,
		query,
		credential.OwnerID,
		credential.Name,
		credential.TokenHash,
		permissions,
		credential.ExpiresAt,
		credential.LastUsedAt,
		credential.IsActive,
		credential.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update credential")
	}

	return nil
}

// Get retrieves a Credential by ID from the PostgreSQL database.
// Returns ErrCredentialNotFound if the credential doesn't exist.
func (p *PostgreSQLCredentialRepository) Get(
	ctx context.Context,
	credentialID uuid.UUID,
) (*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, owner_id, name, token_hash, permissions, expires_at, last_used_at, is_active, created_at
			  FROM credentials WHERE id = $1`

	return p.scanCredential(querier.QueryRowContext(ctx, query, credentialID))
}

// GetByTokenHash retrieves a Credential by its secret hash from the PostgreSQL database.
// Returns ErrCredentialNotFound if no credential matches.
func (p *PostgreSQLCredentialRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, owner_id, name, token_hash, permissions, expires_at, last_used_at, is_active, created_at
			  FROM credentials WHERE token_hash = $1`

	return p.scanCredential(querier.QueryRowContext(ctx, query, tokenHash))
}

// ListByOwner retrieves all of an owner's credentials ordered by creation time.
func (p *PostgreSQLCredentialRepository) ListByOwner(
	ctx context.Context,
	ownerID string,
) ([]*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, owner_id, name, token_hash, permissions, expires_at, last_used_at, is_active, created_at
			  FROM credentials WHERE owner_id = $1 ORDER BY created_at`

	rows, err := querier.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials by owner")
	}
	defer func() { _ = rows.Close() }()

	var credentials []*credentialDomain.Credential
	for rows.Next() {
		var credential credentialDomain.Credential
		var permissions []byte

		err := rows.Scan(
			&credential.ID,
			&credential.OwnerID,
			&credential.Name,
			&credential.TokenHash,
			&permissions,
			&credential.ExpiresAt,
			&credential.LastUsedAt,
			&credential.IsActive,
			&credential.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan credential")
		}

		if err := json.Unmarshal(permissions, &credential.Permissions); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal permissions")
		}

		credentials = append(credentials, &credential)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials by owner")
	}

	return credentials, nil
}

// DeactivateByOwner clears the active flag on all of an owner's active credentials.
func (p *PostgreSQLCredentialRepository) DeactivateByOwner(
	ctx context.Context,
	ownerID string,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE credentials SET is_active = FALSE WHERE owner_id = $1 AND is_active = TRUE`

	result, err := querier.ExecContext(ctx, query, ownerID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to deactivate credentials by owner")
	}

	return result.RowsAffected()
}

// DeactivateByOwnerAndName clears the active flag on an owner's active
// credentials with the given name.
func (p *PostgreSQLCredentialRepository) DeactivateByOwnerAndName(
	ctx context.Context,
	ownerID, name string,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE credentials SET is_active = FALSE
			  WHERE owner_id = $1 AND name = $2 AND is_active = TRUE`

	result, err := querier.ExecContext(ctx, query, ownerID, name)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to deactivate credentials by name")
	}

	return result.RowsAffected()
}

// DeactivateExpired clears the active flag on all active credentials whose
// expiry has passed. Rows are never deleted.
func (p *PostgreSQLCredentialRepository) DeactivateExpired(
	ctx context.Context,
	now time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE credentials SET is_active = FALSE
			  WHERE is_active = TRUE AND expires_at IS NOT NULL AND expires_at < $1`

	result, err := querier.ExecContext(ctx, query, now)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to deactivate expired credentials")
	}

	return result.RowsAffected()
}

// TouchLastUsed records a successful authentication time. Last write wins.
func (p *PostgreSQLCredentialRepository) TouchLastUsed(
	ctx context.Context,
	credentialID uuid.UUID,
	usedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE credentials SET last_used_at = $1 WHERE id = $2`

	if _, err := querier.ExecContext(ctx, query, usedAt, credentialID); err != nil {
		return apperrors.Wrap(err, "failed to record credential last-used time")
	}
	return nil
}

// scanCredential scans a single credential row, unmarshaling the permission set.
func (p *PostgreSQLCredentialRepository) scanCredential(
	row *sql.Row,
) (*credentialDomain.Credential, error) {
	var credential credentialDomain.Credential
	var permissions []byte

	err := row.Scan(
		&credential.ID,
		&credential.OwnerID,
		&credential.Name,
		&credential.TokenHash,
		&permissions,
		&credential.ExpiresAt,
		&credential.LastUsedAt,
		&credential.IsActive,
		&credential.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, credentialDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get credential")
	}

	if err := json.Unmarshal(permissions, &credential.Permissions); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal permissions")
	}

	return &credential, nil
}

// NewPostgreSQLCredentialRepository creates a new PostgreSQL Credential repository.
func NewPostgreSQLCredentialRepository(db *sql.DB) *PostgreSQLCredentialRepository {
	return &PostgreSQLCredentialRepository{db: db}
}
