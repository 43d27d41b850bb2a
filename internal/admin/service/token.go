package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/cryptox"
	"github.com/meridiantours/meridian/pkg/idx"
	"github.com/meridiantours/meridian/pkg/jwtx"
	"github.com/meridiantours/meridian/pkg/slogx"
	"github.com/pquerna/otp/totp"
)

const (
	// MaxMFAAttempts is the maximum number of failed MFA attempts allowed per challenge
	MaxMFAAttempts = 5

	// mfaChallengeTTL bounds how long a pending second factor stays redeemable.
	mfaChallengeTTL = 5 * time.Minute
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrInvalidGrant       = errors.New("invalid_grant")
	ErrTooManyAttempts    = errors.New("too_many_attempts")
)

// mfaMethods lists the second-factor methods the login challenge accepts.
var mfaMethods = []string{"totp", "backup_codes"}

// TokenService issues, refreshes and revokes the admin session tokens.
type TokenService struct {
	KeyManager *jwtx.KeyManager
	Store      store.Store
	Issuer     string
	Audience   []string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Login authenticates a principal by username and password.
//
// Accounts without MFA get a token pair straight away. Accounts with MFA
// enabled get a short-lived challenge instead, which CompleteMFA exchanges
// for the pair. Unknown usernames, disabled accounts and wrong passwords all
// return ErrInvalidCredentials so the response never reveals which it was.
func (s *TokenService) Login(ctx context.Context, username, password string) (*domain.TokenPair, *domain.MFAChallengeResponse, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	p, err := s.Store.Principals().GetPrincipalByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !p.CanAuthenticate() {
		l.Warn("login attempt on disabled account", slog.String("principal_id", p.ID))
		return nil, nil, ErrInvalidCredentials
	}

	if cryptox.VerifyPassword(password, p.PasswordHash) != nil {
		l.Info("login password mismatch", slog.String("principal_id", p.ID))
		return nil, nil, ErrInvalidCredentials
	}

	sessionID := idx.New().String()
	amr := []string{jwtx.AMRPassword}

	// Step up to a second factor before any tokens are issued.
	if p.MFARequired() {
		mfaToken := idx.New().String()
		challenge := domain.MFASession{
			ID:          mfaToken,
			PrincipalID: p.ID,
			Role:        p.Role,
			AMR:         amr,
			SessionID:   sessionID,
			CreatedAt:   now,
			ExpiresAt:   now.Add(mfaChallengeTTL),
		}
		if err := s.Store.MFAChallenges().CreateMFAChallenge(ctx, challenge); err != nil {
			return nil, nil, err
		}

		l.Info("login requires MFA", slog.String("principal_id", p.ID))
		return nil, &domain.MFAChallengeResponse{
			MFARequired: true,
			MFAToken:    mfaToken,
			Methods:     mfaMethods,
		}, nil
	}

	pair, err := s.issuePair(ctx, p, sessionID, p.Role, amr, now)
	if err != nil {
		return nil, nil, err
	}

	l.Info("login succeeded", slog.String("principal_id", p.ID))
	return pair, nil, nil
}

// CompleteMFA exchanges a pending login challenge plus a second-factor code
// for a token pair. A challenge expires five minutes after login and is
// destroyed after MaxMFAAttempts failed codes.
func (s *TokenService) CompleteMFA(ctx context.Context, mfaToken, method, code string) (*domain.TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	// 1. Retrieve the pending challenge. Expired challenges are invisible.
	challenge, err := s.Store.MFAChallenges().GetMFAChallenge(ctx, mfaToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidGrant
		}
		return nil, err
	}

	// 2. Check if max attempts exceeded
	if challenge.Attempts >= MaxMFAAttempts {
		// Delete the challenge to prevent further attempts
		_ = s.Store.MFAChallenges().DeleteMFAChallenge(ctx, mfaToken)
		l.Warn("MFA challenge exceeded max attempts", "mfa_token", mfaToken, "attempts", challenge.Attempts)
		return nil, ErrTooManyAttempts
	}

	// 3. Load the principal to get the MFA secret
	p, err := s.Store.Principals().GetPrincipalByID(ctx, challenge.PrincipalID)
	if err != nil {
		l.Error("failed to get principal",
			slog.Any("error", err),
			slog.String("principal_id", challenge.PrincipalID),
		)
		return nil, err
	}

	// 4. Verify the code based on method
	var verified bool
	switch method {
	case "totp":
		verified = p.MFASecret != nil && *p.MFASecret != "" && totp.Validate(code, *p.MFASecret)

	case "backup_codes":
		codeHash := cryptox.FingerprintToken(code)
		valid, err := s.Store.BackupCodes().VerifyBackupCode(ctx, p.ID, codeHash)
		if err != nil {
			l.Error("failed to verify backup code", "error", err)
			return nil, err
		}
		if valid {
			// Burn the used backup code
			if err := s.Store.BackupCodes().DeleteBackupCode(ctx, p.ID, codeHash); err != nil {
				l.Error("failed to delete backup code", "error", err)
				return nil, err
			}
			verified = true
		}

	default:
		return nil, ErrInvalidGrant
	}

	// 5. On failure, count the attempt and reject.
	if !verified {
		updated, err := s.Store.MFAChallenges().IncrementMFAChallengeAttempts(ctx, mfaToken)
		if err != nil {
			l.Error("failed to increment MFA attempts", "error", err)
			return nil, ErrInvalidGrant
		}
		l.Warn("MFA verification failed", "mfa_token", mfaToken, "attempts", updated.Attempts, "method", method)
		return nil, ErrInvalidGrant
	}

	// 6. Mark the session as MFA-backed.
	amr := append(challenge.AMR, jwtx.AMRMFA)

	// 7. Sign the access token
	accessToken, err := s.signAccess(p, challenge.SessionID, challenge.Role, amr, now)
	if err != nil {
		return nil, err
	}

	// 8. Mint the refresh token
	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:          idx.New().String(),
		PrincipalID: p.ID,
		TokenHash:   cryptox.FingerprintToken(refreshOpaque),
		SessionID:   challenge.SessionID,
		Role:        challenge.Role,
		AMR:         amr,
		ExpiresAt:   now.Add(s.RefreshTTL),
		Revoked:     false,
	}

	// 9. Store the refresh token, stamp the login and burn the challenge atomically
	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
			return err
		}
		if err := tx.Principals().TouchLastLogin(ctx, p.ID); err != nil {
			return err
		}
		return tx.MFAChallenges().DeleteMFAChallenge(ctx, mfaToken)
	}); err != nil {
		return nil, err
	}

	l.Info("MFA login succeeded", slog.String("principal_id", p.ID))
	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a
// replacement is created in the same transaction, preserving the session ID.
// Reuse of a rotated, revoked or expired token fails with ErrInvalidRefresh.
func (s *TokenService) Refresh(ctx context.Context, refreshOpaque string) (*domain.TokenPair, error) {
	now := time.Now()

	// 1. Look up the persisted row by token fingerprint
	fp := cryptox.FingerprintToken(refreshOpaque)
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	// 2. Validate the token is not expired or revoked. The SQL query should
	// ideally filter these out, but we double-check here for defense in depth.
	if rt.Revoked {
		return nil, ErrInvalidRefresh
	}
	if now.After(rt.ExpiresAt) {
		return nil, ErrInvalidRefresh
	}

	// 3. The principal must still exist and be enabled.
	p, err := s.Store.Principals().GetPrincipalByID(ctx, rt.PrincipalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	if !p.CanAuthenticate() {
		return nil, ErrInvalidRefresh
	}

	// 4. Preserve AMR history: append "refresh" to existing authentication methods
	rt.AMR = append(rt.AMR, jwtx.AMRRefresh)
	amr := dedupe(rt.AMR)

	// 5. Issue the new access token with the current role and reused session ID.
	// Role changes between refreshes take effect here.
	accessToken, err := s.signAccess(p, rt.SessionID, p.Role, amr, now)
	if err != nil {
		return nil, err
	}

	// 6. Rotate: generate the replacement, revoke the old row and create the
	// new one in a single transaction
	newOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	newRT := domain.RefreshToken{
		ID:          idx.New().String(),
		PrincipalID: p.ID,
		TokenHash:   cryptox.FingerprintToken(newOpaque),
		SessionID:   rt.SessionID, // Preserve session ID across refresh
		Role:        p.Role,
		AMR:         amr,
		ExpiresAt:   now.Add(s.RefreshTTL),
		Revoked:     false,
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRT)
	}); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Logout revokes a session. Every refresh token in the session family is
// revoked and the presented access token's jti joins the denylist until the
// token's natural expiry. Calling it again for the same session is a no-op.
func (s *TokenService) Logout(ctx context.Context, refreshOpaque, accessJTI string, accessExpiresAt time.Time) error {
	l := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if refreshOpaque != "" {
			fp := cryptox.FingerprintToken(refreshOpaque)
			rt, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
			switch {
			case errors.Is(err, store.ErrNotFound):
				// Already rotated away or never existed. Logout stays idempotent.
			case err != nil:
				return err
			default:
				if err := tx.RefreshTokens().RevokeSessionRefreshTokens(ctx, rt.SessionID); err != nil {
					return err
				}
			}
		}

		if accessJTI != "" {
			return tx.RevokedTokens().InsertRevokedToken(ctx, domain.RevokedToken{
				JTI:       accessJTI,
				ExpiresAt: accessExpiresAt,
				RevokedAt: time.Now().UTC(),
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.Info("session revoked", slog.String("jti", accessJTI))
	return nil
}

// issuePair signs an access token and persists its refresh token, stamping
// the principal's last login in the same transaction.
func (s *TokenService) issuePair(
	ctx context.Context,
	p domain.Principal,
	sessionID, role string,
	amr []string,
	now time.Time,
) (*domain.TokenPair, error) {
	accessToken, err := s.signAccess(p, sessionID, role, amr, now)
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:          idx.New().String(),
		PrincipalID: p.ID,
		TokenHash:   cryptox.FingerprintToken(refreshOpaque),
		SessionID:   sessionID,
		Role:        role,
		AMR:         amr,
		ExpiresAt:   now.Add(s.RefreshTTL),
		Revoked:     false,
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
			return err
		}
		return tx.Principals().TouchLastLogin(ctx, p.ID)
	}); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

func (s *TokenService) signAccess(
	p domain.Principal,
	sessionID, role string,
	amr []string,
	now time.Time,
) (string, error) {
	claims := jwtx.NewAccessClaims(
		p.ID,        // subject
		sessionID,   // session ID
		role,        // role claim
		amr,         // authentication methods
		s.AccessTTL, // token lifetime
		s.Issuer,    // issuer
		s.Audience,  // audience
		p.Username,  // username
		p.FullName,  // display name
		now,         // current time
	)
	// Use GetSigner() to distribute signing across multiple keys
	signer := s.KeyManager.GetSigner()
	return signer.Sign(claims)
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
