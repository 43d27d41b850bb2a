package service

import (
	"context"
	"testing"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/stretchr/testify/require"
)

func newClientsService(s store.Store) *ClientsService {
	return &ClientsService{Store: s, Audit: newRecorder(s)}
}

func TestCreateClientNormalizesEmail(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newClientsService(st)

	actor := seedPrincipal(t, st, "intake", "welcome-aboard", "admin")
	meta := testMeta(actor.ID)

	c, err := svc.Create(ctx, meta, ClientInput{
		FullName: "Ada Lovelace",
		Email:    "Ada.Lovelace@Example.COM",
	})
	require.NoError(t, err)
	require.Equal(t, "ada.lovelace@example.com", c.Email)
	require.True(t, c.Active)

	// The unique check is case-insensitive through normalisation.
	_, err = svc.Create(ctx, meta, ClientInput{
		FullName: "Ada L.",
		Email:    "ADA.LOVELACE@example.com",
	})
	require.ErrorIs(t, err, ErrClientEmailTaken)
}

func TestClientInputValidation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newClientsService(st)

	actor := seedPrincipal(t, st, "intake2", "form-checker", "admin")
	meta := testMeta(actor.ID)

	tests := []struct {
		name  string
		input ClientInput
	}{
		{"missing name", ClientInput{Email: "x@example.com"}},
		{"missing email", ClientInput{FullName: "No Email"}},
		{"malformed email", ClientInput{FullName: "Bad Email", Email: "not-an-address"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, meta, tt.input)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUpdateClient(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newClientsService(st)

	actor := seedPrincipal(t, st, "intake3", "detail-editor", "admin")
	meta := testMeta(actor.ID)

	c, err := svc.Create(ctx, meta, ClientInput{
		FullName:    "Omar Haddad",
		Email:       "omar@example.com",
		Nationality: "JO",
	})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(ctx, meta, c.ID, ClientInput{
		FullName:       "Omar Haddad",
		Email:          "omar@example.com",
		Nationality:    "JO",
		PassportNumber: "N1234567",
		Company:        "Haddad Trading LLC",
		Active:         &inactive,
	})
	require.NoError(t, err)
	require.Equal(t, "N1234567", updated.PassportNumber)
	require.Equal(t, "Haddad Trading LLC", updated.Company)
	require.False(t, updated.Active)

	_, err = svc.Update(ctx, meta, "missing", ClientInput{FullName: "X", Email: "x@example.com"})
	require.ErrorIs(t, err, ErrClientNotFound)
}

func TestDeleteClientGuardsOpenApplications(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	clients := newClientsService(st)
	apps := newApplicationsService(st)

	actor := seedPrincipal(t, st, "offboarder", "gdpr-requests", "admin")
	meta := testMeta(actor.ID)

	c, err := clients.Create(ctx, meta, ClientInput{
		FullName: "Ingrid Svensson",
		Email:    "ingrid@example.com",
	})
	require.NoError(t, err)

	app, err := apps.Create(ctx, meta, CreateApplicationRequest{
		ClientID: c.ID,
		Type:     domain.TypeVisa,
	})
	require.NoError(t, err)

	require.ErrorIs(t, clients.Delete(ctx, meta, c.ID), ErrClientHasOpenApplications)

	// Once every application reaches a terminal status the client can go.
	_, err = apps.Transition(ctx, meta, app.ID, domain.StatusCancelled, "client left")
	require.NoError(t, err)

	require.NoError(t, clients.Delete(ctx, meta, c.ID))

	_, _, err = clients.Get(ctx, c.ID)
	require.ErrorIs(t, err, ErrClientNotFound)

	require.ErrorIs(t, clients.Delete(ctx, meta, c.ID), ErrClientNotFound)
}

func TestGetClientIncludesApplications(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	clients := newClientsService(st)
	apps := newApplicationsService(st)

	actor := seedPrincipal(t, st, "caseworker", "one-stop-view", "admin")
	meta := testMeta(actor.ID)

	c := seedClient(t, st, "pierre@example.com")

	for _, typ := range []domain.ApplicationType{domain.TypeVisa, domain.TypeBusinessLicense} {
		_, err := apps.Create(ctx, meta, CreateApplicationRequest{ClientID: c.ID, Type: typ})
		require.NoError(t, err)
	}

	got, clientApps, err := clients.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, c.Email, got.Email)
	require.Len(t, clientApps, 2)
}
