package domain

import "time"

// TokenPair is what the token endpoint returns: the short-lived access
// token (JWT) and the opaque refresh token.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // seconds until expiry
}

// RefreshToken models the stored refresh token record in the DB. Only the
// fingerprint of the opaque token is stored, never the token itself.
type RefreshToken struct {
	ID          string
	PrincipalID string
	TokenHash   string // deterministic fingerprint (base64url SHA-256)
	SessionID   string // Session ID (SID) that persists across token refreshes
	Role        string // role snapshot at issue time
	AMR         []string
	ExpiresAt   time.Time
	Revoked     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RevokedToken is a denylist entry for an access token JTI. Entries expire
// together with the token they revoke so the table stays small.
type RevokedToken struct {
	JTI       string
	ExpiresAt time.Time
	RevokedAt time.Time
}
