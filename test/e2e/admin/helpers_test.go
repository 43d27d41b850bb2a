package admin_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for admin service end-to-end tests.
 * This includes container setup, service operations, and assertions.
 */

const (
	testImageName = "meridian-admin-test:latest"

	bootstrapToken = "test-bootstrap-token-12345"
	adminUsername  = "admin"
	adminEmail     = "admin@meridiantours.test"
	adminFullName  = "Administrator"
	adminPassword  = "Admin123!"
)

// TestMain manages the test lifecycle, builds the Docker image once before
// all tests and cleans it up after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Admin Service Docker image...")

	// Build the Docker image once before all tests
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	// Run all tests
	exitCode := m.Run()

	// Clean up the Docker image after all tests complete
	fmt.Fprintf(os.Stdout, "Cleaning up Admin Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image if it doesn't exist.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/admin/Dockerfile",
		"../../../")
	cmd.Dir = "." // Ensure we're in the test directory
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// setupAdminContainer starts the admin service in a container and returns the base URL.
func setupAdminContainer(t *testing.T) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env: map[string]string{
			"BOOTSTRAP_TOKEN":   bootstrapToken,
			"DB_DRIVER":         "sqlite",
			"DATABASE_FILE":     "/admin.db",
			"ADMIN_PEPPER_FILE": "/pepper",
			"ADMIN_ISSUER":      "meridian-admin",
			"ADMIN_ALGORITHM":   "EdDSA",
			"ADMIN_NUM_KEYS":    "1", // Start with 1 key for simpler testing
			"ENV":               "test",
			"LOG_LEVEL":         "info",
			"LOG_FORMAT":        "json",
			// Increase rate limits for E2E tests to prevent test failures.
			// Tests often make many rapid requests which would otherwise hit the strict production limits
			"RATELIMIT_STRICT_REQUESTS":   "1000",
			"RATELIMIT_STRICT_WINDOW_SEC": "60",
			"RATELIMIT_STRICT_BURST":      "1000",
			"RATELIMIT_MODERATE_REQUESTS": "1000",
			"RATELIMIT_MODERATE_BURST":    "1000",
		},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	// Get the mapped port
	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// setupAdminContainerWithDefaultRateLimits starts the admin service with DEFAULT rate limits.
// This is specifically for testing that rate limiting actually works.
// Most tests should use setupAdminContainer() which has relaxed limits to prevent test failures.
func setupAdminContainerWithDefaultRateLimits(t *testing.T) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env: map[string]string{
			"BOOTSTRAP_TOKEN":   bootstrapToken,
			"DB_DRIVER":         "sqlite",
			"DATABASE_FILE":     "/admin.db",
			"ADMIN_PEPPER_FILE": "/pepper",
			"ADMIN_ISSUER":      "meridian-admin",
			"ADMIN_ALGORITHM":   "EdDSA",
			"ADMIN_NUM_KEYS":    "1",
			"ENV":               "test",
			"LOG_LEVEL":         "info",
			"LOG_FORMAT":        "json",
			// NOTE: No rate limit overrides - using production defaults for rate limit testing
		},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// bootstrapService bootstraps the admin service with the initial super_admin
// account and returns its user ID.
func bootstrapService(t *testing.T, client *adminsdk.SDKClient) string {
	t.Helper()
	ctx := context.Background()

	resp, err := client.Bootstrap(ctx, bootstrapToken, adminsdk.BootstrapRequest{
		AdminUsername: adminUsername,
		AdminEmail:    adminEmail,
		AdminFullName: adminFullName,
		AdminPassword: adminPassword,
	})
	require.NoError(t, err, "Bootstrap should succeed")
	require.NotEmpty(t, resp.AdminUserID, "Admin user ID should not be empty")

	return resp.AdminUserID
}

// loginAdmin authenticates the bootstrap super_admin and returns a session.
func loginAdmin(t *testing.T, client *adminsdk.SDKClient) *adminsdk.Session {
	t.Helper()

	session, err := client.AuthenticateWithPassword(t.Context(), adminUsername, adminPassword)
	require.NoError(t, err, "Admin login should succeed")
	require.NotNil(t, session, "Session should not be nil")

	return session
}

// createStaffUser creates a staff account with the given role and returns a
// session logged in as that account.
func createStaffUser(t *testing.T, client *adminsdk.SDKClient, adminSession *adminsdk.Session, username, role string) (*adminsdk.UserInfo, *adminsdk.Session) {
	t.Helper()

	password := "Staff123!"
	info, err := adminSession.CreateUser(t.Context(), adminsdk.CreateUserRequest{
		Username: username,
		Email:    username + "@meridiantours.test",
		FullName: "Staff " + username,
		Password: password,
		Role:     role,
	})
	require.NoError(t, err, "CreateUser should succeed")
	require.Equal(t, role, info.Role)

	session, err := client.AuthenticateWithPassword(t.Context(), username, password)
	require.NoError(t, err, "Staff login should succeed")

	return info, session
}

// createTestClient registers a CRM client with sensible defaults. The email
// must be unique per test.
func createTestClient(t *testing.T, session *adminsdk.Session, fullName, email string) *adminsdk.ClientInfo {
	t.Helper()

	info, err := session.CreateClient(t.Context(), adminsdk.ClientPayload{
		FullName:    fullName,
		Email:       email,
		Phone:       "+84 90 123 4567",
		Nationality: "AU",
	})
	require.NoError(t, err, "CreateClient should succeed")
	require.NotEmpty(t, info.ID)
	require.True(t, info.Active, "New clients should be active")

	return info
}

// fileApplication files an application of the given type for a client.
func fileApplication(t *testing.T, session *adminsdk.Session, clientID, appType string) *adminsdk.ApplicationInfo {
	t.Helper()

	info, err := session.CreateApplication(t.Context(), clientID, adminsdk.CreateApplicationRequest{
		Type: appType,
	})
	require.NoError(t, err, "CreateApplication should succeed")
	require.NotEmpty(t, info.ID)
	require.NotEmpty(t, info.TrackingID, "Applications should get a tracking reference")
	require.Equal(t, "submitted", info.Status, "New applications start in submitted")

	return info
}

// createTestProduct adds an active catalogue item priced in the given
// currency. The SKU must be unique per test.
func createTestProduct(t *testing.T, session *adminsdk.Session, name, sku string, priceCents int64, currency string) *adminsdk.ProductInfo {
	t.Helper()

	info, err := session.CreateProduct(t.Context(), adminsdk.ProductPayload{
		Name:       name,
		SKU:        sku,
		Type:       "service",
		PriceCents: priceCents,
		Currency:   currency,
	})
	require.NoError(t, err, "CreateProduct should succeed")
	require.NotEmpty(t, info.ID)
	require.True(t, info.Active, "New products should default to active")

	return info
}

// assertTokenResponse verifies a token response has all required fields.
func assertTokenResponse(t *testing.T, resp *adminsdk.TokenResponse) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.AccessToken, "Access token should not be empty")
	require.NotEmpty(t, resp.RefreshToken, "Refresh token should not be empty")
	require.Equal(t, "Bearer", resp.TokenType, "Token type should be Bearer")
	require.Positive(t, resp.ExpiresIn, "Expiry should be positive")
}

// assertUnauthorized checks that an error indicates unauthorized access.
// This can be a 401 HTTP status or any of the credential error codes.
func assertUnauthorized(t *testing.T, err error, context string) {
	t.Helper()
	require.Error(t, err, context)
	errMsg := err.Error()
	hasUnauthorized := strings.Contains(errMsg, "401") ||
		strings.Contains(errMsg, "unauthorized") ||
		strings.Contains(errMsg, "invalid_grant") ||
		strings.Contains(errMsg, "invalid_token") ||
		strings.Contains(errMsg, "invalid_credentials")
	require.True(t, hasUnauthorized, "%s - error should indicate unauthorized access, got: %s", context, errMsg)
}

// assertForbidden checks that an error indicates a capability the caller's
// role does not grant.
func assertForbidden(t *testing.T, err error, context string) {
	t.Helper()
	require.Error(t, err, context)
	errMsg := err.Error()
	hasForbidden := strings.Contains(errMsg, "403") || strings.Contains(errMsg, "forbidden")
	require.True(t, hasForbidden, "%s - error should indicate forbidden access, got: %s", context, errMsg)
}

// assertNotFound checks that an error indicates a missing resource.
func assertNotFound(t *testing.T, err error, context string) {
	t.Helper()
	require.Error(t, err, context)
	require.Contains(t, err.Error(), "not_found", "%s - error should indicate not found", context)
}

// assertConflict checks that an error carries the given conflict code.
func assertConflict(t *testing.T, err error, code, context string) {
	t.Helper()
	require.Error(t, err, context)
	require.Contains(t, err.Error(), code, "%s - error should carry conflict code %s", context, code)
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *adminsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
