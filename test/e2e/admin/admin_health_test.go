package admin_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/stretchr/testify/require"
)

// TestHealthEndpoints verifies the liveness and readiness probes.
func TestHealthEndpoints(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)

	// Liveness reports the process is up
	health, err := client.GetLiveness(t.Context())
	assertHealthy(t, health, err)
	require.NotEmpty(t, health.Uptime, "Liveness should report uptime")
	require.NotEmpty(t, health.Version, "Liveness should report version")
	require.Nil(t, health.Checks, "Liveness should not run dependency checks")
	t.Logf("Liveness: status=%s uptime=%s version=%s", health.Status, health.Uptime, health.Version)

	// Readiness additionally checks the database and the signer
	health, err = client.GetReadiness(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks, "Readiness should include dependency checks")
	require.Equal(t, "ok", health.Checks.Database, "Database check should pass")
	require.Equal(t, "ok", health.Checks.Signer, "Signer check should pass")
	t.Logf("Readiness: database=%s signer=%s", health.Checks.Database, health.Checks.Signer)
}

// TestJWKSEndpoint verifies the published key set:
// 1. At least one key is served
// 2. Every key carries kid, kty and alg
// 3. Access tokens verify against the published keys (implicitly, via login)
func TestJWKSEndpoint(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)

	jwks, err := client.GetJWKS(t.Context())
	require.NoError(t, err)
	require.NotNil(t, jwks)
	require.NotEmpty(t, jwks.Keys, "JWKS should contain at least one key")

	for i, key := range jwks.Keys {
		require.NotEmpty(t, key.Kid, "Key %d should have a kid", i)
		require.NotEmpty(t, key.Kty, "Key %d should have a kty", i)
		require.Equal(t, "EdDSA", key.Alg, "Key %d should use the configured algorithm", i)
		require.Equal(t, "sig", key.Use, "Key %d should be a signing key", i)
	}

	t.Logf("JWKS served %d key(s), first kid: %s", len(jwks.Keys), jwks.Keys[0].Kid)
}

// TestMetricsEndpoint verifies the Prometheus scrape endpoint is up and
// serves counters in the text exposition format.
func TestMetricsEndpoint(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	// Generate some traffic so the request counters are non-zero
	client := adminsdk.NewSDKClient(baseURL)
	_, err := client.GetLiveness(t.Context())
	require.NoError(t, err)

	resp, err := http.Get(baseURL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	metrics := string(body)
	require.True(t, strings.Contains(metrics, "# HELP"), "Metrics should use the text exposition format")
	require.Contains(t, metrics, "go_goroutines", "Go runtime collectors should be registered")

	t.Logf("Metrics endpoint serves %d bytes of exposition data", len(body))
}
