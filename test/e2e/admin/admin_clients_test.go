package admin_test

import (
	"testing"

	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/stretchr/testify/require"
)

// TestClientCRUD walks a CRM record through its full lifecycle:
// 1. Create with profile fields
// 2. Get returns the record with an empty application list
// 3. Update replaces the profile
// 4. Delete removes the record
func TestClientCRUD(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	created, err := session.CreateClient(ctx, adminsdk.ClientPayload{
		FullName:       "Nguyen Van An",
		Email:          "an.nguyen@example.com",
		Phone:          "+84 90 123 4567",
		Nationality:    "VN",
		PassportNumber: "C1234567",
		Company:        "An Trading Co",
		Notes:          "Referred by the Hanoi office",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.True(t, created.Active)
	require.NotEmpty(t, created.CreatedAt)
	t.Logf("Created client %s", created.ID)

	detail, err := session.GetClient(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, detail.Client.ID)
	require.Equal(t, "Nguyen Van An", detail.Client.FullName)
	require.Equal(t, "an.nguyen@example.com", detail.Client.Email)
	require.Empty(t, detail.Applications, "New client should have no applications")

	updated, err := session.UpdateClient(ctx, created.ID, adminsdk.ClientPayload{
		FullName:    "Nguyen Van An",
		Email:       "an.nguyen@antrading.example.com",
		Phone:       "+84 90 123 4567",
		Nationality: "VN",
		Company:     "An Trading Co",
	})
	require.NoError(t, err)
	require.Equal(t, "an.nguyen@antrading.example.com", updated.Email)
	require.Empty(t, updated.PassportNumber, "Update replaces the whole profile")
	t.Logf("Updated client %s", created.ID)

	err = session.DeleteClient(ctx, created.ID)
	require.NoError(t, err)

	_, err = session.GetClient(ctx, created.ID)
	assertNotFound(t, err, "Get after delete")
	t.Logf("Client lifecycle complete")
}

// TestClientListFilters verifies search and filter behaviour on the client
// book.
func TestClientListFilters(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	createTestClient(t, session, "Alice Walker", "alice@example.com")
	createTestClient(t, session, "Bob Fisher", "bob@example.com")
	carol, err := session.CreateClient(ctx, adminsdk.ClientPayload{
		FullName:    "Carol Tran",
		Email:       "carol@example.com",
		Nationality: "VN",
	})
	require.NoError(t, err)

	// No filter returns everyone
	all, err := session.ListClients(ctx, adminsdk.ListClientsOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(3), all.Total)
	require.Len(t, all.Clients, 3)

	// Search matches name fragments case-insensitively
	byName, err := session.ListClients(ctx, adminsdk.ListClientsOptions{Search: "walker"})
	require.NoError(t, err)
	require.Equal(t, int64(1), byName.Total)
	require.Equal(t, "Alice Walker", byName.Clients[0].FullName)

	// Search matches email fragments too
	byEmail, err := session.ListClients(ctx, adminsdk.ListClientsOptions{Search: "bob@"})
	require.NoError(t, err)
	require.Equal(t, int64(1), byEmail.Total)
	require.Equal(t, "Bob Fisher", byEmail.Clients[0].FullName)

	// Nationality filter
	byNationality, err := session.ListClients(ctx, adminsdk.ListClientsOptions{Nationality: "VN"})
	require.NoError(t, err)
	require.Equal(t, int64(1), byNationality.Total)
	require.Equal(t, carol.ID, byNationality.Clients[0].ID)

	// Pagination: total counts every match, the page is capped
	page, err := session.ListClients(ctx, adminsdk.ListClientsOptions{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), page.Total)
	require.Len(t, page.Clients, 2)

	t.Logf("List filters verified over %d clients", all.Total)
}

// TestClientEmailTaken verifies email uniqueness on both create and update.
func TestClientEmailTaken(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	first := createTestClient(t, session, "First Client", "shared@example.com")
	second := createTestClient(t, session, "Second Client", "other@example.com")

	// Create with a taken email
	_, err := session.CreateClient(ctx, adminsdk.ClientPayload{
		FullName: "Impostor",
		Email:    "shared@example.com",
	})
	assertConflict(t, err, "email_taken", "Create with taken email")

	// Update onto a taken email
	_, err = session.UpdateClient(ctx, second.ID, adminsdk.ClientPayload{
		FullName: "Second Client",
		Email:    "shared@example.com",
	})
	assertConflict(t, err, "email_taken", "Update onto taken email")

	// Updating a client keeping its own email is fine
	_, err = session.UpdateClient(ctx, first.ID, adminsdk.ClientPayload{
		FullName: "First Client Renamed",
		Email:    "shared@example.com",
	})
	require.NoError(t, err, "Keeping own email should not conflict")

	t.Logf("Email uniqueness enforced")
}

// TestClientDeleteWithOpenApplication verifies a client cannot be removed
// while an application of theirs is still in flight, and can be removed once
// every application reaches a terminal state.
func TestClientDeleteWithOpenApplication(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	record := createTestClient(t, session, "Applicant", "applicant@example.com")
	app := fileApplication(t, session, record.ID, "visa")

	// Delete is blocked while the application is open
	err := session.DeleteClient(ctx, record.ID)
	assertConflict(t, err, "client_has_open_applications", "Delete with open application")
	t.Logf("Delete correctly blocked by open application")

	// Drive the application to a terminal state
	_, err = session.TransitionApplication(ctx, app.ID, adminsdk.TransitionRequest{Status: "cancelled", Note: "client withdrew"})
	require.NoError(t, err)

	// Now the client can go
	err = session.DeleteClient(ctx, record.ID)
	require.NoError(t, err, "Delete should succeed once applications are terminal")

	t.Logf("Client removed after application reached a terminal state")
}
