// Package rbac defines the static role and capability matrix. The matrix is
// code, loaded once at process start; roles are not editable at runtime and
// a principal's effective capabilities derive solely from its role.
package rbac

import (
	"slices"
	"sort"
)

// Roles, in decreasing order of privilege.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleEditor     = "editor"
	RoleViewer     = "viewer"
)

// Capabilities are "module:action" strings. Handlers reference these
// constants, never string literals, so the compiler catches typos.
const (
	CapClientsRead   = "clients:read"
	CapClientsWrite  = "clients:write"
	CapClientsDelete = "clients:delete"

	CapApplicationsRead  = "applications:read"
	CapApplicationsWrite = "applications:write"

	CapContentRead   = "content:read"
	CapContentWrite  = "content:write"
	CapContentDelete = "content:delete"

	CapProductsRead   = "products:read"
	CapProductsWrite  = "products:write"
	CapProductsDelete = "products:delete"

	CapOrdersRead  = "orders:read"
	CapOrdersWrite = "orders:write"

	CapAdminRead  = "admin:read"
	CapAdminWrite = "admin:write"

	CapAuditRead = "audit:read"

	CapKeysRead  = "keys:read"
	CapKeysWrite = "keys:write"
)

// matrix maps each role to its capability set. Editors author content and
// can look at the records that content references; viewers are read-only
// over the business modules; audit and user management stay with admins.
var matrix = map[string][]string{
	RoleSuperAdmin: {
		CapClientsRead, CapClientsWrite, CapClientsDelete,
		CapApplicationsRead, CapApplicationsWrite,
		CapContentRead, CapContentWrite, CapContentDelete,
		CapProductsRead, CapProductsWrite, CapProductsDelete,
		CapOrdersRead, CapOrdersWrite,
		CapAdminRead, CapAdminWrite,
		CapAuditRead,
		CapKeysRead, CapKeysWrite,
	},
	RoleAdmin: {
		CapClientsRead, CapClientsWrite, CapClientsDelete,
		CapApplicationsRead, CapApplicationsWrite,
		CapContentRead, CapContentWrite, CapContentDelete,
		CapProductsRead, CapProductsWrite, CapProductsDelete,
		CapOrdersRead, CapOrdersWrite,
		CapAdminRead,
		CapAuditRead,
	},
	RoleEditor: {
		CapClientsRead,
		CapApplicationsRead,
		CapContentRead, CapContentWrite,
		CapProductsRead,
		CapOrdersRead,
	},
	RoleViewer: {
		CapClientsRead,
		CapApplicationsRead,
		CapContentRead,
		CapProductsRead,
		CapOrdersRead,
	},
}

// capSets is the lookup form of matrix, built once at init.
var capSets = func() map[string]map[string]struct{} {
	sets := make(map[string]map[string]struct{}, len(matrix))
	for role, caps := range matrix {
		set := make(map[string]struct{}, len(caps))
		for _, c := range caps {
			set[c] = struct{}{}
		}
		sets[role] = set
	}
	return sets
}()

// Roles returns every known role name, sorted.
func Roles() []string {
	roles := make([]string, 0, len(matrix))
	for role := range matrix {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// IsValidRole reports whether the role exists in the matrix.
func IsValidRole(role string) bool {
	_, ok := matrix[role]
	return ok
}

// CapabilitiesFor returns a sorted copy of the role's capability set.
// Unknown roles get an empty set, which denies everything.
func CapabilitiesFor(role string) []string {
	caps, ok := matrix[role]
	if !ok {
		return nil
	}

	out := slices.Clone(caps)
	sort.Strings(out)
	return out
}

// RoleHas reports whether the role grants the capability. Pure lookup, deny
// by default for unknown roles and unknown capabilities.
func RoleHas(role, capability string) bool {
	set, ok := capSets[role]
	if !ok {
		return false
	}
	_, ok = set[capability]
	return ok
}
