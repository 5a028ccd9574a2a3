package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/auth_service/internal/apperr"
	"github.com/Skotchmaster/auth_service/internal/hash"
)

func newTestUserService(t *testing.T) (*UserService, *AuthService) {
	t.Helper()
	authSvc, _ := newTestAuthService(t)
	return &UserService{Repo: authSvc.Repo}, authSvc
}

func TestUserService_GetUnknown(t *testing.T) {
	t.Parallel()

	svc, _ := newTestUserService(t)
	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))
}

func TestUserService_UpdateInfo(t *testing.T) {
	t.Parallel()

	svc, authSvc := newTestUserService(t)
	ctx := context.Background()
	user := register(t, authSvc, "t@x.com")

	err := svc.UpdateInfo(ctx, user.ID, UpdateInfoInput{FirstName: "Renamed"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.FirstName)
	assert.Equal(t, "User", got.LastName)
}

func TestUserService_UpdateInfo_EmptyPatch(t *testing.T) {
	t.Parallel()

	svc, authSvc := newTestUserService(t)
	user := register(t, authSvc, "t@x.com")

	err := svc.UpdateInfo(context.Background(), user.ID, UpdateInfoInput{})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
}

func TestUserService_UpdateInfo_EmailConflict(t *testing.T) {
	t.Parallel()

	svc, authSvc := newTestUserService(t)
	ctx := context.Background()
	register(t, authSvc, "taken@x.com")
	user := register(t, authSvc, "t@x.com")

	err := svc.UpdateInfo(ctx, user.ID, UpdateInfoInput{Email: "Taken@X.com"})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperr.StatusOf(err))

	// Re-submitting the current address is not a conflict.
	err = svc.UpdateInfo(ctx, user.ID, UpdateInfoInput{Email: "t@x.com"})
	require.NoError(t, err)
}

func TestUserService_UpdatePassword(t *testing.T) {
	t.Parallel()

	svc, authSvc := newTestUserService(t)
	ctx := context.Background()
	user := register(t, authSvc, "t@x.com")

	err := svc.UpdatePassword(ctx, user.ID, "wrong-password", "newsecret")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperr.StatusOf(err))

	err = svc.UpdatePassword(ctx, user.ID, "secret1", "newsecret")
	require.NoError(t, err)

	got, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, hash.CheckPassword(got.PasswordHash, "newsecret"))
}

func TestUserService_DeleteIsSoft(t *testing.T) {
	t.Parallel()

	svc, authSvc := newTestUserService(t)
	ctx := context.Background()
	user := register(t, authSvc, "t@x.com")

	require.NoError(t, svc.Delete(ctx, user.ID))

	_, err := svc.Get(ctx, user.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))

	// The row itself survives; the listing still shows it.
	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.False(t, users[0].IsActive)

	// And logging in as a deleted account fails.
	_, err = authSvc.Login(ctx, "t@x.com", "secret1", "")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))
}
