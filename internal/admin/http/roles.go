package http

import (
	"net/http"

	"github.com/meridiantours/meridian/internal/admin/rbac"
	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/meridiantours/meridian/pkg/httpx"
)

// RolesHandler handles GET /v1/admin/roles
//
// The matrix is compiled in, so this endpoint needs no services.
//
//	@Summary		List roles
//	@Description	Returns the static role matrix with the capabilities each role grants. Roles are fixed at build time.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	adminsdk.ListRolesResponse	"Roles and capabilities"
//	@Failure		401	{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		403	{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/admin/roles [get].
func RolesHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		names := rbac.Roles()
		roles := make([]adminsdk.RoleInfo, len(names))
		for i, name := range names {
			roles[i] = adminsdk.RoleInfo{
				Name:         name,
				Capabilities: rbac.CapabilitiesFor(name),
			}
		}

		httpx.WriteJSON(w, http.StatusOK, adminsdk.ListRolesResponse{Roles: roles})
	})
}
