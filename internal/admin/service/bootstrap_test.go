package service

import (
	"context"
	"testing"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/stretchr/testify/require"
)

func TestBootstrapCreatesFirstSuperAdmin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &BootstrapService{Store: st, Audit: newRecorder(st), Token: "install-secret"}
	tokenSvc := newTokenService(t, st)

	done, err := svc.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.False(t, done)

	data := domain.BootstrapData{
		AdminUsername: "founder",
		AdminEmail:    "founder@meridian.test",
		AdminFullName: "Founding Admin",
		AdminPassword: "very-first-password",
	}

	_, err = svc.Bootstrap(ctx, "wrong-secret", data)
	require.ErrorIs(t, err, ErrBootstrapUnauthorized)

	adminID, err := svc.Bootstrap(ctx, "install-secret", data)
	require.NoError(t, err)
	require.NotEmpty(t, adminID)

	p, err := st.Principals().GetPrincipalByID(ctx, adminID)
	require.NoError(t, err)
	require.Equal(t, "super_admin", p.Role)
	require.True(t, p.Active)

	done, err = svc.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.True(t, done)

	// The endpoint seals itself after the first success.
	_, err = svc.Bootstrap(ctx, "install-secret", data)
	require.ErrorIs(t, err, ErrBootstrapAlready)

	pair, _, err := tokenSvc.Login(ctx, "founder", "very-first-password")
	require.NoError(t, err)
	require.NotNil(t, pair)
}

func TestBootstrapRefusedWithoutConfiguredToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &BootstrapService{Store: st, Audit: newRecorder(st)}

	_, err := svc.Bootstrap(ctx, "", domain.BootstrapData{
		AdminUsername: "ghost",
		AdminEmail:    "ghost@meridian.test",
		AdminFullName: "Ghost",
		AdminPassword: "should-not-matter",
	})
	require.ErrorIs(t, err, ErrBootstrapUnauthorized)
}

func TestBootstrapValidatesRequiredFields(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &BootstrapService{Store: st, Audit: newRecorder(st), Token: "install-secret"}

	_, err := svc.Bootstrap(ctx, "install-secret", domain.BootstrapData{
		AdminUsername: "incomplete",
	})
	require.ErrorIs(t, err, ErrValidation)
}
