package httpx

import "net/http"

// RequireCapability gates a route on the caller's role granting a
// capability. The allowed func is the role matrix lookup, passed in so this
// package stays free of policy imports.
func RequireCapability(capability string, allowed func(role, capability string) bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" || !allowed(role, capability) {
				writeCapabilityError(w, capability)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RFC 6750-style error response for a missing capability.
func writeCapabilityError(w http.ResponseWriter, capability string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+capability+`"`)
	WriteJSON(w, http.StatusForbidden, map[string]string{
		"error":             "forbidden",
		"error_description": "role does not grant " + capability,
	})
}
