package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/allisson/actiongate/internal/database"
	apperrors "github.com/allisson/actiongate/internal/errors"
	permissionDomain "github.com/allisson/actiongate/internal/permission/domain"
)

// MySQLOverrideRepository implements Override persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLOverrideRepository struct {
	db *sql.DB
}

// Upsert creates or replaces the override for override.ActionType.
// On duplicate key the existing row keeps its id and created_at.
func (m *MySQLOverrideRepository) Upsert(
	ctx context.Context,
	override *permissionDomain.Override,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := override.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal override id")
	}

	permissions, err := json.Marshal(override.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal permissions")
	}

	query := `INSERT INTO action_permissions
			  (id, action_type, permissions, is_active, description, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			  permissions = VALUES(permissions),
			  is_active = VALUES(is_active),
			  description = VALUES(description),
			  updated_at = VALUES(updated_at)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		override.ActionType,
		permissions,
		override.IsActive,
		override.Description,
		override.CreatedAt,
		override.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert permission override")
	}
	return nil
}

// GetByActionType retrieves the override for an action identifier.
// Returns ErrOverrideNotFound if none exists.
func (m *MySQLOverrideRepository) GetByActionType(
	ctx context.Context,
	actionType string,
) (*permissionDomain.Override, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, action_type, permissions, is_active, description, created_at, updated_at
			  FROM action_permissions WHERE action_type = ?`

	row := querier.QueryRowContext(ctx, query, actionType)

	override, err := scanOverrideRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, permissionDomain.ErrOverrideNotFound
		}
		return nil, err
	}

	return override, nil
}

// Delete removes the override for an action identifier.
func (m *MySQLOverrideRepository) Delete(
	ctx context.Context,
	actionType string,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM action_permissions WHERE action_type = ?`

	result, err := querier.ExecContext(ctx, query, actionType)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to delete permission override")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to delete permission override")
	}

	return count > 0, nil
}

// List retrieves all overrides ordered by action identifier.
func (m *MySQLOverrideRepository) List(
	ctx context.Context,
) ([]*permissionDomain.Override, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, action_type, permissions, is_active, description, created_at, updated_at
			  FROM action_permissions ORDER BY action_type`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permission overrides")
	}
	defer func() { _ = rows.Close() }()

	var overrides []*permissionDomain.Override
	for rows.Next() {
		override, err := scanOverrideRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, override)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list permission overrides")
	}

	return overrides, nil
}

// scanOverrideRow scans a single override row, converting the BINARY(16) id
// and unmarshaling the permission set. Passes sql.ErrNoRows through unwrapped
// so callers can map it to ErrOverrideNotFound.
func scanOverrideRow(scan func(dest ...any) error) (*permissionDomain.Override, error) {
	var override permissionDomain.Override
	var id []byte
	var permissions []byte

	err := scan(
		&id,
		&override.ActionType,
		&permissions,
		&override.IsActive,
		&override.Description,
		&override.CreatedAt,
		&override.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, "failed to scan permission override")
	}

	if err := override.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal override id")
	}

	if err := json.Unmarshal(permissions, &override.Permissions); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal permissions")
	}

	return &override, nil
}

// NewMySQLOverrideRepository creates a new MySQL Override repository.
func NewMySQLOverrideRepository(db *sql.DB) *MySQLOverrideRepository {
	return &MySQLOverrideRepository{db: db}
}
