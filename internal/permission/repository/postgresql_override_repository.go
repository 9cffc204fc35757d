// Package repository implements data persistence for permission overrides.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). Upserts are keyed on the unique action_type column and
// preserve the original row's id and created_at.
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

// PostgreSQLOverrideRepository implements Override persistence for PostgreSQL.
type PostgreSQLOverrideRepository struct {
	db *sql.DB
}

// Upsert creates or replaces the override for override.ActionType.
// On conflict the existing row keeps its id and created_at.
func (p *PostgreSQLOverrideRepository) Upsert(
	ctx context.Context,
	override *permissionDomain.Override,
) error {
	querier := database.GetTx(ctx, p.db)

	permissions, err := json.Marshal(override.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal permissions")
	}

	query := `INSERT INTO action_permissions
			  (id, action_type, permissions, is_active, description, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (action_type) DO UPDATE
			  SET permissions = EXCLUDED.permissions,
			  	  is_active = EXCLUDED.is_active,
				  description = EXCLUDED.description,
				  updated_at = EXCLUDED.updated_at`

	_, err = querier.ExecContext(
		ctx,
		query,
		override.ID,
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
func (p *PostgreSQLOverrideRepository) GetByActionType(
	ctx context.Context,
	actionType string,
) (*permissionDomain.Override, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, action_type, permissions, is_active, description, created_at, updated_at
			  FROM action_permissions WHERE action_type = $1`

	row := querier.QueryRowContext(ctx, query, actionType)

	var override permissionDomain.Override
	var permissions []byte

	err := row.Scan(
		&override.ID,
		&override.ActionType,
		&permissions,
		&override.IsActive,
		&override.Description,
		&override.CreatedAt,
		&override.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, permissionDomain.ErrOverrideNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get permission override")
	}

	if err := json.Unmarshal(permissions, &override.Permissions); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal permissions")
	}

	return &override, nil
}

// Delete removes the override for an action identifier.
func (p *PostgreSQLOverrideRepository) Delete(
	ctx context.Context,
	actionType string,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM action_permissions WHERE action_type = $1`

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
func (p *PostgreSQLOverrideRepository) List(
	ctx context.Context,
) ([]*permissionDomain.Override, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, action_type, permissions, is_active, description, created_at, updated_at
			  FROM action_permissions ORDER BY action_type`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permission overrides")
	}
	defer func() { _ = rows.Close() }()

	var overrides []*permissionDomain.Override
	for rows.Next() {
		var override permissionDomain.Override
		var permissions []byte

		err := rows.Scan(
			&override.ID,
			&override.ActionType,
			&permissions,
			&override.IsActive,
			&override.Description,
			&override.CreatedAt,
			&override.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan permission override")
		}

		if err := json.Unmarshal(permissions, &override.Permissions); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal permissions")
		}

		overrides = append(overrides, &override)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list permission overrides")
	}

	return overrides, nil
}

// NewPostgreSQLOverrideRepository creates a new PostgreSQL Override repository.
func NewPostgreSQLOverrideRepository(db *sql.DB) *PostgreSQLOverrideRepository {
	return &PostgreSQLOverrideRepository{db: db}
}
