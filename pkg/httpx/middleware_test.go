package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meridiantours/meridian/pkg/httpx"
	"github.com/meridiantours/meridian/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	})

	chained := httpx.Chain(handler, mw("outer"), mw("middle"), mw("inner"))
	chained.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "middle", "inner", "handler"}, order)
}

// fakeRevocations is a RevocationChecker over a set of revoked jtis.
type fakeRevocations struct {
	revoked map[string]bool
}

func (f *fakeRevocations) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], nil
}

func authnFixture(t *testing.T) (*jwtx.KeyManager, *fakeRevocations, httpx.Middleware) {
	t.Helper()

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    "test-issuer",
		NumKeys:   1,
	})
	require.NoError(t, err)

	revocations := &fakeRevocations{revoked: make(map[string]bool)}
	return km, revocations, httpx.AuthnMiddleware(km.Verifier, revocations)
}

func signToken(t *testing.T, km *jwtx.KeyManager, role string) (string, jwtx.Claims) {
	t.Helper()

	claims := jwtx.NewAccessClaims(
		"user-1", "sid-1", role, []string{jwtx.AMRPassword},
		5*time.Minute, "test-issuer", nil, "jdoe", "Jane Doe", time.Now().UTC(),
	)
	token, err := km.GetSigner().Sign(claims)
	require.NoError(t, err)
	return token, claims
}

func TestAuthnMiddleware(t *testing.T) {
	km, revocations, authn := authnFixture(t)

	var gotUserID, gotRole string
	handler := authn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = httpx.UserIDFromContext(r.Context())
		gotRole = httpx.RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token passes", func(t *testing.T) {
		token, _ := signToken(t, km, "admin")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "user-1", gotUserID)
		require.Equal(t, "admin", gotRole)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("revoked token rejected before expiry", func(t *testing.T) {
		token, claims := signToken(t, km, "admin")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "sanity: token valid before revocation")

		revocations.revoked[claims.ID] = true

		rec = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "token revoked")
	})
}

func TestRequireCapability(t *testing.T) {
	km, _, authn := authnFixture(t)

	allowed := func(role, capability string) bool {
		return role == "admin" && capability == "applications:write"
	}

	handler := httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
		authn,
		httpx.RequireCapability("applications:write", allowed),
	)

	t.Run("role with capability passes", func(t *testing.T) {
		token, _ := signToken(t, km, "admin")

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("role without capability gets 403", func(t *testing.T) {
		token, _ := signToken(t, km, "viewer")

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "insufficient_scope")
	})

	t.Run("anonymous request gets 403", func(t *testing.T) {
		mw := httpx.RequireCapability("applications:write", allowed)
		bare := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		rec := httptest.NewRecorder()
		bare.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}
