package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes. Access tokens stay short so a revoked account
// loses access quickly even without the revocation list.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Authentication Methods Reference values for the "amr" claim.
//
//	"pwd":     password-based authentication
//	"mfa":     a second factor (TOTP or backup code) was presented
//	"refresh": minted through a refresh grant
//
// Handlers that guard sensitive operations check for "mfa".
const (
	AMRPassword = "pwd"
	AMRMFA      = "mfa"
	AMRRefresh  = "refresh"
)

// Claims are the access-token claims shared by the API and its clients.
// Changes must stay additive so older tokens keep parsing.
type Claims struct {
	jwt.RegisteredClaims

	// Session ID, ties the token to a refresh-token chain
	SID string `json:"sid,omitempty"`

	// Role the principal holds, e.g. "admin" or "editor". Capabilities
	// derive from the role matrix, never from the token itself.
	Role string `json:"role,omitempty"`

	// Authentication Methods Reference, see the AMR constants
	AMR []string `json:"amr,omitempty"`

	// Username for the authenticated principal
	Username string `json:"username,omitempty"`

	// FullName is the display name
	FullName string `json:"full_name,omitempty"`
}

// NewAccessClaims builds minimally-correct claims with a fresh jti.
func NewAccessClaims(
	subject, sid, role string,
	amr []string,
	ttl time.Duration,
	issuer string,
	audience []string,
	username, fullName string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:      sid,
		Role:     role,
		AMR:      amr,
		Username: username,
		FullName: fullName,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. The jti
// is what the revocation list keys on, so it must be unguessable.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// HasAMR reports whether the token carries the given authentication method.
func (c *Claims) HasAMR(method string) bool {
	return slices.Contains(c.AMR, method)
}

// ValidateIssuer checks the issuer against an expected value. Empty
// expected means nothing to enforce.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks that at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't being
// used before it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}

// ValidateExpiryWithLeeway is ValidateExpiry with a grace period for clock
// skew between hosts.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
