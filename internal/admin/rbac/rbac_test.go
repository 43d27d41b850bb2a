package rbac_test

import (
	"testing"

	"github.com/meridiantours/meridian/internal/admin/rbac"
	"github.com/stretchr/testify/require"
)

func TestRoles(t *testing.T) {
	roles := rbac.Roles()
	require.Equal(t, []string{"admin", "editor", "super_admin", "viewer"}, roles)

	for _, role := range roles {
		require.True(t, rbac.IsValidRole(role))
	}
	require.False(t, rbac.IsValidRole("owner"))
	require.False(t, rbac.IsValidRole(""))
}

func TestRoleHas_MatchesMatrixExactly(t *testing.T) {
	// RoleHas must agree with CapabilitiesFor for every role and
	// capability, and repeated lookups must be deterministic.
	allCaps := make(map[string]bool)
	for _, role := range rbac.Roles() {
		for _, c := range rbac.CapabilitiesFor(role) {
			allCaps[c] = true
		}
	}
	require.NotEmpty(t, allCaps)

	for _, role := range rbac.Roles() {
		granted := make(map[string]bool)
		for _, c := range rbac.CapabilitiesFor(role) {
			granted[c] = true
		}

		for cap := range allCaps {
			for i := 0; i < 3; i++ {
				require.Equal(t, granted[cap], rbac.RoleHas(role, cap),
					"role %s capability %s", role, cap)
			}
		}
	}
}

func TestSuperAdminHasEverything(t *testing.T) {
	for _, role := range rbac.Roles() {
		for _, c := range rbac.CapabilitiesFor(role) {
			require.True(t, rbac.RoleHas(rbac.RoleSuperAdmin, c),
				"super_admin missing %s granted to %s", c, role)
		}
	}
}

func TestRoleBoundaries(t *testing.T) {
	t.Run("viewer is read-only", func(t *testing.T) {
		require.True(t, rbac.RoleHas(rbac.RoleViewer, rbac.CapClientsRead))
		require.True(t, rbac.RoleHas(rbac.RoleViewer, rbac.CapApplicationsRead))

		require.False(t, rbac.RoleHas(rbac.RoleViewer, rbac.CapClientsWrite))
		require.False(t, rbac.RoleHas(rbac.RoleViewer, rbac.CapApplicationsWrite))
		require.False(t, rbac.RoleHas(rbac.RoleViewer, rbac.CapContentWrite))
		require.False(t, rbac.RoleHas(rbac.RoleViewer, rbac.CapAuditRead))
	})

	t.Run("editor writes content only", func(t *testing.T) {
		require.True(t, rbac.RoleHas(rbac.RoleEditor, rbac.CapContentWrite))

		require.False(t, rbac.RoleHas(rbac.RoleEditor, rbac.CapContentDelete))
		require.False(t, rbac.RoleHas(rbac.RoleEditor, rbac.CapClientsWrite))
		require.False(t, rbac.RoleHas(rbac.RoleEditor, rbac.CapApplicationsWrite))
	})

	t.Run("admin cannot manage users or keys", func(t *testing.T) {
		require.True(t, rbac.RoleHas(rbac.RoleAdmin, rbac.CapAdminRead))
		require.True(t, rbac.RoleHas(rbac.RoleAdmin, rbac.CapApplicationsWrite))

		require.False(t, rbac.RoleHas(rbac.RoleAdmin, rbac.CapAdminWrite))
		require.False(t, rbac.RoleHas(rbac.RoleAdmin, rbac.CapKeysRead))
		require.False(t, rbac.RoleHas(rbac.RoleAdmin, rbac.CapKeysWrite))
	})
}

func TestUnknownRoleDeniesEverything(t *testing.T) {
	require.Empty(t, rbac.CapabilitiesFor("owner"))
	require.False(t, rbac.RoleHas("owner", rbac.CapClientsRead))
	require.False(t, rbac.RoleHas("", rbac.CapClientsRead))
}

func TestCapabilitiesFor_ReturnsCopy(t *testing.T) {
	caps := rbac.CapabilitiesFor(rbac.RoleViewer)
	require.NotEmpty(t, caps)

	caps[0] = "tampered:tampered"

	fresh := rbac.CapabilitiesFor(rbac.RoleViewer)
	require.NotContains(t, fresh, "tampered:tampered")
}
