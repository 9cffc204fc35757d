package commands

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	credentialDomain "github.com/allisson/actiongate/internal/credential/domain"
	permissionDomain "github.com/allisson/actiongate/internal/permission/domain"
)

// mockCredentialUseCase is a testify mock of the credential use case.
type mockCredentialUseCase struct {
	mock.Mock
}

func (m *mockCredentialUseCase) Issue(
	ctx context.Context,
	input *credentialDomain.IssueCredentialInput,
) (*credentialDomain.IssueCredentialOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.IssueCredentialOutput), args.Error(1)
}

func (m *mockCredentialUseCase) Authenticate(ctx context.Context, plainSecret string) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, plainSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Credential), args.Error(1)
}

func (m *mockCredentialUseCase) Revoke(ctx context.Context, plainSecret string) (bool, error) {
	args := m.Called(ctx, plainSecret)
	return args.Bool(0), args.Error(1)
}

func (m *mockCredentialUseCase) RevokeAllForOwner(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCredentialUseCase) RevokeByName(ctx context.Context, ownerID, name string) (int64, error) {
	args := m.Called(ctx, ownerID, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCredentialUseCase) CleanupExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCredentialUseCase) ListForOwner(ctx context.Context, ownerID string) ([]*credentialDomain.Credential, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*credentialDomain.Credential), args.Error(1)
}

func (m *mockCredentialUseCase) HasPermission(ctx context.Context, plainSecret, permission string) (bool, error) {
	args := m.Called(ctx, plainSecret, permission)
	return args.Bool(0), args.Error(1)
}

func (m *mockCredentialUseCase) RemainingValidDays(ctx context.Context, plainSecret string) (*int, error) {
	args := m.Called(ctx, plainSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int), args.Error(1)
}

// mockResolver is a testify mock of the permission resolver.
type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) EffectivePermissions(ctx context.Context, actionType string, handlerDefault []string) ([]string, error) {
	args := m.Called(ctx, actionType, handlerDefault)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockResolver) Authorize(ctx context.Context, callerID, actionType string, held, handlerDefault []string) (bool, error) {
	args := m.Called(ctx, callerID, actionType, held, handlerDefault)
	return args.Bool(0), args.Error(1)
}

func (m *mockResolver) SetOverride(
	ctx context.Context,
	actionType string,
	spec *permissionDomain.OverrideSpec,
) (*permissionDomain.Override, error) {
	args := m.Called(ctx, actionType, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*permissionDomain.Override), args.Error(1)
}

func (m *mockResolver) RemoveOverride(ctx context.Context, actionType string) (bool, error) {
	args := m.Called(ctx, actionType)
	return args.Bool(0), args.Error(1)
}

func (m *mockResolver) SyncOverrides(
	ctx context.Context,
	desired map[string]permissionDomain.OverrideSpec,
) (int, error) {
	args := m.Called(ctx, desired)
	return args.Int(0), args.Error(1)
}

func (m *mockResolver) ListOverrides(ctx context.Context) ([]*permissionDomain.Override, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*permissionDomain.Override), args.Error(1)
}

// fixedTime is a stable timestamp for command output assertions.
var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
