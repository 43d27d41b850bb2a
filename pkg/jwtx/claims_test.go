package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/meridiantours/meridian/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "meridian-admin"

func TestNewAccessClaims(t *testing.T) {
	now := time.Now().UTC()

	claims := jwtx.NewAccessClaims(
		"user-123",
		"session-abc",
		"editor",
		[]string{jwtx.AMRPassword},
		15*time.Minute,
		exampleIssuer,
		[]string{"admin-api"},
		"jdoe",
		"Jane Doe",
		now,
	)

	require.Equal(t, "user-123", claims.Subject)
	require.Equal(t, "session-abc", claims.SID)
	require.Equal(t, "editor", claims.Role)
	require.Equal(t, []string{"pwd"}, claims.AMR)
	require.Equal(t, "jdoe", claims.Username)
	require.Equal(t, "Jane Doe", claims.FullName)
	require.Equal(t, exampleIssuer, claims.Issuer)
	require.NotEmpty(t, claims.ID, "jti must be set")
	require.Equal(t, now.Add(15*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestNewJTI_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		jti := jwtx.NewJTI()
		require.NotEmpty(t, jti)
		require.False(t, seen[jti], "jti collision")
		seen[jti] = true
	}
}

func TestHasAMR(t *testing.T) {
	c := &jwtx.Claims{AMR: []string{jwtx.AMRPassword, jwtx.AMRMFA}}

	require.True(t, c.HasAMR(jwtx.AMRPassword))
	require.True(t, c.HasAMR(jwtx.AMRMFA))
	require.False(t, c.HasAMR(jwtx.AMRRefresh))
}

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: exampleIssuer,
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(exampleIssuer))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		err := c.ValidateIssuer("other-service")
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})
}

func TestValidateAudience(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience: []string{"admin-api", "reporting"},
		},
	}

	t.Run("contains match", func(t *testing.T) {
		require.NoError(t, c.ValidateAudience([]string{"admin-api"}))
	})

	t.Run("no match", func(t *testing.T) {
		err := c.ValidateAudience([]string{"billing"})
		require.ErrorIs(t, err, jwtx.ErrAudience)
	})

	t.Run("empty expected list", func(t *testing.T) {
		require.NoError(t, c.ValidateAudience(nil))
	})
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid token", func(t *testing.T) {
		c := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			},
		}
		require.NoError(t, c.ValidateExpiry())
	})

	t.Run("expired token", func(t *testing.T) {
		c := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
			},
		}
		require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				NotBefore: jwt.NewNumericDate(now.Add(time.Minute)),
			},
		}
		require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrNotYetValid)
	})

	t.Run("leeway tolerates small skew", func(t *testing.T) {
		c := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second)),
			},
		}
		require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrExpired)
		require.NoError(t, c.ValidateExpiryWithLeeway(30*time.Second))
	})
}
