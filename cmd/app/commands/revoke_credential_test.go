package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRunRevokeCredential(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("by-secret", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}
		mockUseCase.On("Revoke", ctx, "plain-secret").Return(true, nil)

		var out bytes.Buffer
		err := RunRevokeCredential(ctx, mockUseCase, logger, &out, "plain-secret", "", "", "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Successfully revoked 1 credential(s)")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("by-secret-no-match", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}
		mockUseCase.On("Revoke", ctx, "unknown-secret").Return(false, nil)

		var out bytes.Buffer
		err := RunRevokeCredential(ctx, mockUseCase, logger, &out, "unknown-secret", "", "", "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "nothing revoked")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("by-owner", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}
		mockUseCase.On("RevokeAllForOwner", ctx, "owner-1").Return(int64(3), nil)

		var out bytes.Buffer
		err := RunRevokeCredential(ctx, mockUseCase, logger, &out, "", "owner-1", "", "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"revoked": 3`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("by-owner-and-name", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}
		mockUseCase.On("RevokeByName", ctx, "owner-1", "ci-deploy").Return(int64(1), nil)

		var out bytes.Buffer
		err := RunRevokeCredential(ctx, mockUseCase, logger, &out, "", "owner-1", "ci-deploy", "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Successfully revoked 1 credential(s)")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("missing-target", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}

		err := RunRevokeCredential(ctx, mockUseCase, logger, &bytes.Buffer{}, "", "", "", "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "either a secret or an owner id is required")
	})

	t.Run("conflicting-targets", func(t *testing.T) {
		mockUseCase := &mockCredentialUseCase{}

		err := RunRevokeCredential(ctx, mockUseCase, logger, &bytes.Buffer{}, "secret", "owner-1", "", "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "mutually exclusive")
		mockUseCase.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
	})
}
