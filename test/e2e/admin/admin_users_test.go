package admin_test

import (
	"testing"

	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/stretchr/testify/require"
)

// TestStaffAccountManagement verifies the staff account CRUD run by the
// bootstrap super_admin:
// 1. Usernames and emails are unique across accounts
// 2. Emails are normalized to lower case
// 3. Updates rewrite profile and role without touching the password
func TestStaffAccountManagement(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	ops, err := session.CreateUser(ctx, adminsdk.CreateUserRequest{
		Username: "nguyen.ops",
		Email:    "Nguyen.Ops@MeridianTours.test",
		FullName: "Nguyen Van Ops",
		Password: "OpsDesk123!",
		Role:     "admin",
	})
	require.NoError(t, err)
	require.Equal(t, "nguyen.ops@meridiantours.test", ops.Email, "Emails should be stored lower case")
	require.Equal(t, "admin", ops.Role)
	require.True(t, ops.Active)
	t.Logf("Created staff account %s", ops.Username)

	_, err = session.CreateUser(ctx, adminsdk.CreateUserRequest{
		Username: "nguyen.ops",
		Email:    "other@meridiantours.test",
		Password: "OpsDesk123!",
		Role:     "viewer",
	})
	assertConflict(t, err, "username_taken", "Create with a taken username")

	_, err = session.CreateUser(ctx, adminsdk.CreateUserRequest{
		Username: "nguyen.two",
		Email:    "nguyen.ops@meridiantours.test",
		Password: "OpsDesk123!",
		Role:     "viewer",
	})
	assertConflict(t, err, "username_taken", "Create with a taken email")

	_, err = session.CreateUser(ctx, adminsdk.CreateUserRequest{
		Username: "bad.role",
		Email:    "bad.role@meridiantours.test",
		Password: "BadRole123!",
		Role:     "manager",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "validation", "Unknown roles should fail validation")

	_, err = session.CreateUser(ctx, adminsdk.CreateUserRequest{
		Username: "short.pass",
		Email:    "short.pass@meridiantours.test",
		Password: "short",
		Role:     "viewer",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "validation", "Short passwords should fail validation")

	t.Logf("Create conflicts and validation verified")

	fetched, err := session.GetUser(ctx, ops.ID)
	require.NoError(t, err)
	require.Equal(t, ops.Username, fetched.Username)
	require.False(t, fetched.MFAEnabled)

	updated, err := session.UpdateUser(ctx, ops.ID, adminsdk.UpdateUserRequest{
		FullName: "Nguyen Van Ops (Hanoi)",
		Role:     "editor",
	})
	require.NoError(t, err)
	require.Equal(t, "editor", updated.Role)
	require.Equal(t, "Nguyen Van Ops (Hanoi)", updated.FullName)
	require.Equal(t, ops.Email, updated.Email, "Omitted email should keep the current one")

	second, err := session.CreateUser(ctx, adminsdk.CreateUserRequest{
		Username: "le.support",
		Email:    "le.support@meridiantours.test",
		Password: "Support123!",
		Role:     "viewer",
	})
	require.NoError(t, err)

	_, err = session.UpdateUser(ctx, second.ID, adminsdk.UpdateUserRequest{Email: ops.Email})
	assertConflict(t, err, "email_taken", "Update onto a taken email")

	_, err = session.GetUser(ctx, "01JUNKJUNKJUNKJUNKJUNKJUNK")
	assertNotFound(t, err, "Get unknown staff account")

	_, err = session.UpdateUser(ctx, "01JUNKJUNKJUNKJUNKJUNKJUNK", adminsdk.UpdateUserRequest{Role: "viewer"})
	assertNotFound(t, err, "Update unknown staff account")

	list, err := session.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list.Users, 3, "Bootstrap admin plus two staff accounts")
	require.Equal(t, "le.support", list.Users[0].Username, "Listing should be newest first")

	t.Logf("Staff account management verified")
}

// TestStaffDeactivation verifies the account disable path:
// 1. Disabling kills fresh logins and revokes live refresh tokens
// 2. Accounts are soft-disabled and can be re-enabled
// 3. Nobody can disable their own account
func TestStaffDeactivation(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	adminID := bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	staff, staffSession := createStaffUser(t, client, session, "temp.staff", "viewer")

	_, err := staffSession.ListClients(ctx, adminsdk.ListClientsOptions{})
	require.NoError(t, err, "Staff session should work before deactivation")
	staffRefresh := staffSession.RefreshToken()

	require.NoError(t, session.DeactivateUser(ctx, staff.ID))
	t.Logf("Deactivated %s", staff.Username)

	_, err = client.AuthenticateWithPassword(ctx, "temp.staff", "Staff123!")
	assertUnauthorized(t, err, "Login on a disabled account")

	_, err = client.Refresh(ctx, staffRefresh)
	assertUnauthorized(t, err, "Refresh with a revoked token")

	fetched, err := session.GetUser(ctx, staff.ID)
	require.NoError(t, err)
	require.False(t, fetched.Active, "Disabled accounts should stay listed")

	t.Logf("Disabled account locked out, re-enabling")

	active := true
	reenabled, err := session.UpdateUser(ctx, staff.ID, adminsdk.UpdateUserRequest{Active: &active})
	require.NoError(t, err)
	require.True(t, reenabled.Active)

	_, err = client.AuthenticateWithPassword(ctx, "temp.staff", "Staff123!")
	require.NoError(t, err, "Re-enabled account should log in again")

	err = session.DeactivateUser(ctx, adminID)
	assertConflict(t, err, "cannot_disable_self", "Disabling your own account")

	err = session.DeactivateUser(ctx, "01JUNKJUNKJUNKJUNKJUNKJUNK")
	assertNotFound(t, err, "Deactivate unknown staff account")

	t.Logf("Deactivation lifecycle verified")
}

// TestStaffPasswordReset verifies that an admin-driven password reset swaps
// the credential and revokes every live session at once.
func TestStaffPasswordReset(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	_, staffSession := createStaffUser(t, client, session, "reset.me", "viewer")
	oldRefresh := staffSession.RefreshToken()

	staff, err := session.ListUsers(ctx)
	require.NoError(t, err)
	var staffID string
	for _, u := range staff.Users {
		if u.Username == "reset.me" {
			staffID = u.ID
		}
	}
	require.NotEmpty(t, staffID)

	_, err = session.UpdateUser(ctx, staffID, adminsdk.UpdateUserRequest{Password: "Rotated456!"})
	require.NoError(t, err)
	t.Logf("Password reset issued")

	_, err = client.AuthenticateWithPassword(ctx, "reset.me", "Staff123!")
	assertUnauthorized(t, err, "Login with the old password")

	_, err = client.Refresh(ctx, oldRefresh)
	assertUnauthorized(t, err, "Refresh issued before the reset")

	_, err = client.AuthenticateWithPassword(ctx, "reset.me", "Rotated456!")
	require.NoError(t, err, "Login with the new password")

	t.Logf("Password reset lifecycle verified")
}
