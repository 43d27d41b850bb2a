package service

import (
	"context"
	"testing"

	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/stretchr/testify/require"
)

func newAdminService(s store.Store) *AdminService {
	return &AdminService{Store: s, Audit: newRecorder(s)}
}

func TestCreatePrincipal(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newAdminService(st)
	tokenSvc := newTokenService(t, st)

	actor := seedPrincipal(t, st, "root", "keys-to-the-castle", "super_admin")
	meta := testMeta(actor.ID)

	created, err := svc.CreatePrincipal(ctx, meta, CreatePrincipalRequest{
		Username: "newhire",
		Email:    "newhire@meridian.test",
		FullName: "New Hire",
		Password: "first-day-badge",
		Role:     "editor",
	})
	require.NoError(t, err)
	require.Equal(t, "editor", created.Role)
	require.True(t, created.Active)

	// The account can log in straight away.
	pair, _, err := tokenSvc.Login(ctx, "newhire", "first-day-badge")
	require.NoError(t, err)
	require.NotNil(t, pair)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.CreatePrincipal(ctx, meta, CreatePrincipalRequest{
			Username: "newhire",
			Email:    "other@meridian.test",
			FullName: "Other",
			Password: "another-password",
			Role:     "viewer",
		})
		require.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := svc.CreatePrincipal(ctx, meta, CreatePrincipalRequest{
			Username: "poweruser",
			Email:    "power@meridian.test",
			FullName: "Power User",
			Password: "long-enough-pw",
			Role:     "owner",
		})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := svc.CreatePrincipal(ctx, meta, CreatePrincipalRequest{
			Username: "shorty",
			Email:    "shorty@meridian.test",
			FullName: "Short Password",
			Password: "short",
			Role:     "viewer",
		})
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestSetActiveCannotDisableSelf(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newAdminService(st)

	actor := seedPrincipal(t, st, "root2", "sole-operator", "super_admin")
	meta := testMeta(actor.ID)

	require.ErrorIs(t, svc.SetActive(ctx, meta, actor.ID, false), ErrCannotDisableSelf)

	// Re-enabling yourself is harmless and allowed.
	require.NoError(t, svc.SetActive(ctx, meta, actor.ID, true))
}

func TestDisablePrincipalEndsSessions(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newAdminService(st)
	tokenSvc := newTokenService(t, st)

	actor := seedPrincipal(t, st, "root3", "offboarding-day", "super_admin")
	target := seedPrincipal(t, st, "leaver", "last-day-today", "editor")
	meta := testMeta(actor.ID)

	pair, _, err := tokenSvc.Login(ctx, "leaver", "last-day-today")
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(ctx, meta, target.ID, false))

	// The live refresh chain dies with the account.
	_, err = tokenSvc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)

	_, _, err = tokenSvc.Login(ctx, "leaver", "last-day-today")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetPasswordRevokesSessions(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newAdminService(st)
	tokenSvc := newTokenService(t, st)

	actor := seedPrincipal(t, st, "root4", "helpdesk-hat", "super_admin")
	target := seedPrincipal(t, st, "forgetful", "old-password-1", "viewer")
	meta := testMeta(actor.ID)

	pair, _, err := tokenSvc.Login(ctx, "forgetful", "old-password-1")
	require.NoError(t, err)

	require.ErrorIs(t, svc.ResetPassword(ctx, meta, target.ID, "short"), ErrValidation)
	require.NoError(t, svc.ResetPassword(ctx, meta, target.ID, "brand-new-password"))

	_, err = tokenSvc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)

	_, _, err = tokenSvc.Login(ctx, "forgetful", "old-password-1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	pair, _, err = tokenSvc.Login(ctx, "forgetful", "brand-new-password")
	require.NoError(t, err)
	require.NotNil(t, pair)
}

func TestUpdatePrincipal(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newAdminService(st)

	actor := seedPrincipal(t, st, "root5", "org-chart-editor", "super_admin")
	target := seedPrincipal(t, st, "promotee", "career-ladder", "viewer")
	meta := testMeta(actor.ID)

	updated, err := svc.UpdatePrincipal(ctx, meta, target.ID, "promotee@meridian.test", "Promoted Person", "admin")
	require.NoError(t, err)
	require.Equal(t, "admin", updated.Role)
	require.Equal(t, "Promoted Person", updated.FullName)

	_, err = svc.UpdatePrincipal(ctx, meta, target.ID, "promotee@meridian.test", "Promoted Person", "emperor")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdatePrincipal(ctx, meta, "missing", "x@meridian.test", "X", "viewer")
	require.ErrorIs(t, err, ErrPrincipalNotFound)
}
