package domain

import "time"

// MFAChallengeResponse is returned when MFA is required during authentication
type MFAChallengeResponse struct {
	MFARequired bool     `json:"mfa_required"` // always true
	MFAToken    string   `json:"mfa_token"`    // ULID reference token
	Methods     []string `json:"methods"`      // available MFA methods (e.g., ["totp", "backup_codes"])
}

// MFASession represents a pending MFA challenge session
type MFASession struct {
	ID          string // ULID (the mfa_token)
	PrincipalID string
	Role        string
	AMR         []string // Authentication Method References
	SessionID   string   // Session ID for the eventual refresh token
	Attempts    int      // Number of failed MFA attempts (max 5 to prevent brute force)
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

type MFAEnrollResponse struct {
	Secret  string // Base32 encoded secret for TOTP
	QRCode  string // otpauth:// URL for QR code generation
	Issuer  string // Issuer name (e.g., service name)
	Account string // Account name (e.g., username)
}
