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

// MySQLCredentialRepository implements Credential persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLCredentialRepository struct {
	db *sql.DB
}

// Create inserts a new Credential into the MySQL database using BINARY(16) for UUIDs.
func (m *MySQLCredentialRepository) Create(
	ctx context.Context,
	credential *credentialDomain.Credential,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := credential.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	permissions, err := json.Marshal(credential.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal permissions")
	}

	query := `INSERT INTO credentials
			  (id, owner_id, name, token_hash, permissions, expires_at, last_used_at, is_active, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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

// Update modifies an existing Credential in the MySQL database.
func (m *MySQLCredentialRepository) Update(
	ctx context.Context,
	credential *credentialDomain.Credential,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := credential.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	permissions, err := json.Marshal(credential.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal permissions")
	}

	query := `UPDATE credentials
			  SET owner_id = ?,
			  	  name = ?,
				  token_hash = ?,
				  permissions = ?,
				  expires_at = ?,
				  last_used_at = ?,
				  is_active = ?
			  WHERE id = ?`

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
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update credential")
	}

	return nil
}

// Get retrieves a Credential by ID from the MySQL database.
// Returns ErrCredentialNotFound if the credential doesn't exist.
func (m *MySQLCredentialRepository) Get(
	ctx context.Context,
	credentialID uuid.UUID,
) (*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := credentialID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := `SELECT id, owner_id, name, token_hash, permissions, expires_at, last_used_at, is_active, created_at
			  FROM credentials WHERE id = ?`

	return m.scanCredential(querier.QueryRowContext(ctx, query, id))
}

// GetByTokenHash retrieves a Credential by its secret hash from the MySQL database.
// Returns ErrCredentialNotFound if no credential matches.
func (m *MySQLCredentialRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, owner_id, name, token_hash, permissions, expires_at, last_used_at, is_active, created_at
			  FROM credentials WHERE token_hash = ?`

	return m.scanCredential(querier.QueryRowContext(ctx, query, tokenHash))
}

// ListByOwner retrieves all of an owner's credentials ordered by creation time.
func (m *MySQLCredentialRepository) ListByOwner(
	ctx context.Context,
	ownerID string,
) ([]*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, owner_id, name, token_hash, permissions, expires_at, last_used_at, is_active, created_at
			  FROM credentials WHERE owner_id = ? ORDER BY created_at`

	rows, err := querier.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials by owner")
	}
	defer func() { _ = rows.Close() }()

	var credentials []*credentialDomain.Credential
	for rows.Next() {
		var credential credentialDomain.Credential
		var id []byte
		var permissions []byte

		err := rows.Scan(
			&id,
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

		if err := credential.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal credential id")
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
func (m *MySQLCredentialRepository) DeactivateByOwner(
	ctx context.Context,
	ownerID string,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE credentials SET is_active = FALSE WHERE owner_id = ? AND is_active = TRUE`

	result, err := querier.ExecContext(ctx, query, ownerID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to deactivate credentials by owner")
	}

	return result.RowsAffected()
}

// DeactivateByOwnerAndName clears the active flag on an owner's active
// credentials with the given name.
func (m *MySQLCredentialRepository) DeactivateByOwnerAndName(
	ctx context.Context,
	ownerID, name string,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE credentials SET is_active = FALSE
			  WHERE owner_id = ? AND name = ? AND is_active = TRUE`

	result, err := querier.ExecContext(ctx, query, ownerID, name)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to deactivate credentials by name")
	}

	return result.RowsAffected()
}

// DeactivateExpired clears the active flag on all active credentials whose
// expiry has passed. Rows are never deleted.
func (m *MySQLCredentialRepository) DeactivateExpired(
	ctx context.Context,
	now time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE credentials SET is_active = FALSE
			  WHERE is_active = TRUE AND expires_at IS NOT NULL AND expires_at < ?`

	result, err := querier.ExecContext(ctx, query, now)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to deactivate expired credentials")
	}

	return result.RowsAffected()
}

// TouchLastUsed records a successful authentication time. Last write wins.
func (m *MySQLCredentialRepository) TouchLastUsed(
	ctx context.Context,
	credentialID uuid.UUID,
	usedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := credentialID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := `UPDATE credentials SET last_used_at = ? WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, usedAt, id); err != nil {
		return apperrors.Wrap(err, "failed to record credential last-used time")
	}
	return nil
}

// scanCredential scans a single credential row, converting the BINARY(16) id
// and unmarshaling the permission set.
func (m *MySQLCredentialRepository) scanCredential(
	row *sql.Row,
) (*credentialDomain.Credential, error) {
	var credential credentialDomain.Credential
	var id []byte
	var permissions []byte

	err := row.Scan(
		&id,
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

	if err := credential.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal credential id")
	}

	if err := json.Unmarshal(permissions, &credential.Permissions); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal permissions")
	}

	return &credential, nil
}

// NewMySQLCredentialRepository creates a new MySQL Credential repository.
func NewMySQLCredentialRepository(db *sql.DB) *MySQLCredentialRepository {
	return &MySQLCredentialRepository{db: db}
}
