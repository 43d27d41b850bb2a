package domain

import "time"

// Principal is a staff account that can sign in to the admin backend.
// Role is a name from the static capability matrix, not a foreign key.
type Principal struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string     // argon2 encoded
	Role         string     // super_admin, admin, editor, viewer
	MFAEnabled   *time.Time // Timestamp when MFA was enabled (nullable)
	MFASecret    *string    // TOTP secret (nullable, base32 encoded)
	Active       bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanAuthenticate reports whether the account may go through the password
// flow at all. Disabled accounts fail before the hash is even checked.
func (p *Principal) CanAuthenticate() bool {
	return p.Active
}

// MFARequired reports whether this principal must complete a second factor.
func (p *Principal) MFARequired() bool {
	return p.MFAEnabled != nil && p.MFASecret != nil
}
