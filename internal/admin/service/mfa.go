package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/cryptox"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	backupCodeCount = 10                   // Number of backup codes to generate
	backupCodeBytes = cryptox.TokenSize128 // 128-bit entropy for backup codes
)

var (
	ErrInvalidTOTPCode   = errors.New("invalid TOTP code")
	ErrMFANotEnabled     = errors.New("MFA not enabled for this account")
	ErrMFAAlreadyEnabled = errors.New("MFA already enabled for this account")
)

type MFAService struct {
	Store  store.Store
	Issuer string // Issuer name for TOTP (e.g., "Meridian Admin")
}

// EnrollTOTP generates a TOTP secret for the principal and returns it along
// with a provisioning URL. This does NOT enable MFA yet - the principal must
// verify a code first.
func (s *MFAService) EnrollTOTP(ctx context.Context, principalID string) (domain.MFAEnrollResponse, error) {
	p, err := s.Store.Principals().GetPrincipalByID(ctx, principalID)
	if err != nil {
		return domain.MFAEnrollResponse{}, fmt.Errorf("failed to get principal: %w", err)
	}
	if p.MFASecret != nil && *p.MFASecret != "" {
		return domain.MFAEnrollResponse{}, ErrMFAAlreadyEnabled
	}

	// Generate TOTP key
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: p.Username,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.MFAEnrollResponse{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	// Store the secret (but don't enable MFA yet)
	if err := s.Store.Principals().UpdateMFASecret(ctx, principalID, key.Secret()); err != nil {
		return domain.MFAEnrollResponse{}, fmt.Errorf("failed to store MFA secret: %w", err)
	}

	return domain.MFAEnrollResponse{
		Secret:  key.Secret(),
		QRCode:  key.URL(),
		Issuer:  s.Issuer,
		Account: p.Username,
	}, nil
}

// VerifyTOTP verifies a TOTP code and enables MFA for the principal if valid.
// It also generates backup codes and stores them fingerprinted; the plaintext
// codes are returned exactly once.
func (s *MFAService) VerifyTOTP(ctx context.Context, principalID string, code string) ([]string, error) {
	p, err := s.Store.Principals().GetPrincipalByID(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get principal: %w", err)
	}

	// Check if MFA secret exists
	if p.MFASecret == nil || *p.MFASecret == "" {
		return nil, errors.New("MFA not enrolled - call EnrollTOTP first")
	}

	// Check if MFA is already enabled
	if p.MFAEnabled != nil {
		return nil, ErrMFAAlreadyEnabled
	}

	// Verify the TOTP code
	if !totp.Validate(code, *p.MFASecret) {
		return nil, ErrInvalidTOTPCode
	}

	// Generate backup codes
	backupCodes := make([]string, backupCodeCount)
	for i := range backupCodeCount {
		code, err := cryptox.GenerateToken(backupCodeBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		backupCodes[i] = code
	}

	// Store backup codes and enable MFA in a transaction
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Store backup codes as hashes
		for _, code := range backupCodes {
			hash := cryptox.FingerprintToken(code)
			if err := tx.BackupCodes().CreateBackupCode(ctx, principalID, hash); err != nil {
				return fmt.Errorf("failed to store backup code: %w", err)
			}
		}

		// Enable MFA
		if err := tx.Principals().EnableMFA(ctx, principalID); err != nil {
			return fmt.Errorf("failed to enable MFA: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return backupCodes, nil
}

// RegenerateBackupCodes generates new backup codes after verifying a TOTP code.
func (s *MFAService) RegenerateBackupCodes(ctx context.Context, principalID string, totpCode string) ([]string, error) {
	// Verify TOTP code first
	if err := s.verifyTOTPCode(ctx, principalID, totpCode); err != nil {
		return nil, err
	}

	// Generate new backup codes
	backupCodes := make([]string, backupCodeCount)
	for i := range backupCodeCount {
		code, err := cryptox.GenerateToken(backupCodeBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		backupCodes[i] = code
	}

	// Replace old backup codes with new ones in a transaction
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Delete all old backup codes
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, principalID); err != nil {
			return fmt.Errorf("failed to delete old backup codes: %w", err)
		}

		// Store new backup codes as hashes
		for _, code := range backupCodes {
			hash := cryptox.FingerprintToken(code)
			if err := tx.BackupCodes().CreateBackupCode(ctx, principalID, hash); err != nil {
				return fmt.Errorf("failed to store backup code: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return backupCodes, nil
}

// RemoveMFA removes MFA for a principal after verifying a TOTP code.
func (s *MFAService) RemoveMFA(ctx context.Context, principalID string, totpCode string) error {
	// Verify TOTP code first
	if err := s.verifyTOTPCode(ctx, principalID, totpCode); err != nil {
		return err
	}

	// Remove MFA and backup codes in a transaction
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Delete all backup codes
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, principalID); err != nil {
			return fmt.Errorf("failed to delete backup codes: %w", err)
		}

		// Disable MFA
		if err := tx.Principals().DisableMFA(ctx, principalID); err != nil {
			return fmt.Errorf("failed to disable MFA: %w", err)
		}

		return nil
	})
}

// verifyTOTPCode is a helper that verifies a TOTP code for a principal with
// MFA fully enabled.
func (s *MFAService) verifyTOTPCode(ctx context.Context, principalID string, code string) error {
	p, err := s.Store.Principals().GetPrincipalByID(ctx, principalID)
	if err != nil {
		return fmt.Errorf("failed to get principal: %w", err)
	}

	if !p.MFARequired() {
		return ErrMFANotEnabled
	}

	if !totp.Validate(code, *p.MFASecret) {
		return ErrInvalidTOTPCode
	}
	return nil
}
