package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/meridiantours/meridian/pkg/jwtx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

// RevocationChecker reports whether a token ID has been revoked. Backed by
// the revoked-token store so revocation takes effect immediately rather than
// at access-token expiry.
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthnMiddleware authenticates requests via a Bearer token. Every request
// verifies the signature, the expiry, and the revocation list; a revoked
// token fails here even if it has not yet expired.
func AuthnMiddleware(v jwtx.Verifier, revoked RevocationChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", "err", err)
				return
			}

			if err := claims.ValidateExpiry(); err != nil {
				writeBearerError(w, "token expired")
				return
			}

			if claims.ID != "" {
				isRevoked, err := revoked.IsTokenRevoked(ctx, claims.ID)
				if err != nil {
					log.Error("revocation check failed", "err", err)
					WriteJSON(w, http.StatusInternalServerError, map[string]string{
						"error": "internal_error",
					})
					return
				}
				if isRevoked {
					writeBearerError(w, "token revoked")
					return
				}
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
