package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	permissionDomain "github.com/allisson/actiongate/internal/permission/domain"
)

func TestRunSetPermission(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("text-output", func(t *testing.T) {
		mockRes := &mockResolver{}
		override := &permissionDomain.Override{
			ID:          uuid.New(),
			ActionType:  "system.info",
			Permissions: []string{"system.read", "system.admin"},
			IsActive:    true,
			Description: "restricted during audit",
			CreatedAt:   fixedTime,
			UpdatedAt:   fixedTime,
		}

		mockRes.On("SetOverride", ctx, "system.info", mock.MatchedBy(func(spec *permissionDomain.OverrideSpec) bool {
			return len(spec.Permissions) == 2 &&
				spec.Active != nil && *spec.Active &&
				spec.Description == "restricted during audit"
		})).Return(override, nil)

		var out bytes.Buffer
		err := RunSetPermission(
			ctx,
			mockRes,
			logger,
			&out,
			"system.info",
			"system.read, system.admin",
			"restricted during audit",
			true,
			"text",
		)

		require.NoError(t, err)
		require.Contains(t, out.String(), "system.info")
		require.Contains(t, out.String(), "system.admin")
		require.Contains(t, out.String(), "Active: true")
		mockRes.AssertExpectations(t)
	})

	t.Run("json-output-inactive", func(t *testing.T) {
		mockRes := &mockResolver{}
		override := &permissionDomain.Override{
			ID:          uuid.New(),
			ActionType:  "user.info",
			Permissions: []string{"user.admin"},
			IsActive:    false,
			UpdatedAt:   fixedTime,
		}

		mockRes.On("SetOverride", ctx, "user.info", mock.Anything).Return(override, nil)

		var out bytes.Buffer
		err := RunSetPermission(ctx, mockRes, logger, &out, "user.info", "user.admin", "", false, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"action_type": "user.info"`)
		require.Contains(t, out.String(), `"is_active": false`)
		mockRes.AssertExpectations(t)
	})

	t.Run("resolver-error", func(t *testing.T) {
		mockRes := &mockResolver{}
		mockRes.On("SetOverride", ctx, "bad id", mock.Anything).
			Return(nil, errors.New("invalid action type"))

		err := RunSetPermission(ctx, mockRes, logger, &bytes.Buffer{}, "bad id", "", "", true, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to set permission override")
	})
}
