package admin_test

import (
	"context"
	"testing"

	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/stretchr/testify/require"
)

// TestBootstrap verifies the one-time first-run setup:
// 1. Bootstrap creates the initial super_admin account
// 2. The new account can log in immediately
// 3. The account carries the super_admin role
func TestBootstrap(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)

	adminUserID := bootstrapService(t, client)
	t.Logf("Bootstrap successful, admin user ID: %s", adminUserID)

	session := loginAdmin(t, client)
	t.Logf("Admin login successful")

	me, err := session.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, adminUserID, me.UserID)
	require.Equal(t, adminUsername, me.Username)
	require.Equal(t, "super_admin", me.Role)
	require.NotEmpty(t, me.Capabilities, "super_admin should carry capabilities")

	t.Logf("Bootstrap account verified: %s (%s)", me.Username, me.Role)
}

// TestBootstrapIdempotency verifies that bootstrap can only run once.
// A second attempt must fail even with the correct token.
func TestBootstrapIdempotency(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	bootstrapService(t, client)
	t.Logf("First bootstrap successful")

	_, err := client.Bootstrap(ctx, bootstrapToken, adminsdk.BootstrapRequest{
		AdminUsername: "admin2",
		AdminEmail:    "admin2@meridiantours.test",
		AdminFullName: "Second Administrator",
		AdminPassword: "Admin123!",
	})
	assertUnauthorized(t, err, "Second bootstrap attempt")

	t.Logf("Second bootstrap correctly rejected")
}

// TestBootstrapInvalidToken verifies the bootstrap token is checked before
// any account is created.
func TestBootstrapInvalidToken(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	_, err := client.Bootstrap(ctx, "wrong-token", adminsdk.BootstrapRequest{
		AdminUsername: adminUsername,
		AdminEmail:    adminEmail,
		AdminFullName: adminFullName,
		AdminPassword: adminPassword,
	})
	assertUnauthorized(t, err, "Bootstrap with wrong token")

	// The failed attempt must not have consumed the token
	bootstrapService(t, client)
	t.Logf("Bootstrap with correct token still succeeds after a failed attempt")
}

// TestBootstrapValidation verifies field validation on the bootstrap payload.
func TestBootstrapValidation(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	tests := []struct {
		name string
		req  adminsdk.BootstrapRequest
	}{
		{
			name: "short username",
			req: adminsdk.BootstrapRequest{
				AdminUsername: "ab",
				AdminEmail:    adminEmail,
				AdminFullName: adminFullName,
				AdminPassword: adminPassword,
			},
		},
		{
			name: "invalid email",
			req: adminsdk.BootstrapRequest{
				AdminUsername: adminUsername,
				AdminEmail:    "not-an-email",
				AdminFullName: adminFullName,
				AdminPassword: adminPassword,
			},
		},
		{
			name: "short password",
			req: adminsdk.BootstrapRequest{
				AdminUsername: adminUsername,
				AdminEmail:    adminEmail,
				AdminFullName: adminFullName,
				AdminPassword: "short",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Bootstrap(ctx, bootstrapToken, tt.req)
			require.Error(t, err, "Invalid payload should be rejected")
			require.Contains(t, err.Error(), "validation", "Error should indicate validation failure")
		})
	}

	// None of the rejected payloads should have consumed the bootstrap
	bootstrapService(t, client)
	t.Logf("Validation failures did not consume the bootstrap token")
}
