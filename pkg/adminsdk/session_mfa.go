package adminsdk

import (
	"context"
	"net/http"
)

// ============================================================================
// MFA Self-Service Operations
// ============================================================================

// EnrollTOTP generates a TOTP secret for the session's principal and
// returns it with a provisioning URL for QR display. MFA is not enabled
// until a code is verified with VerifyTOTP.
func (s *Session) EnrollTOTP(ctx context.Context) (*TOTPEnrollResponse, error) {
	var enroll TOTPEnrollResponse
	err := s.doAuthJSON(ctx, http.MethodPost, "/v1/mfa/totp/enroll", nil, &enroll, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &enroll, nil
}

// VerifyTOTP confirms the enrolled secret with a live code and enables MFA.
// The returned backup codes are shown exactly once.
func (s *Session) VerifyTOTP(ctx context.Context, code string) (*BackupCodesResponse, error) {
	var codes BackupCodesResponse
	err := s.doAuthJSON(ctx, http.MethodPost, "/v1/mfa/totp/verify", TOTPVerifyRequest{
		Code: code,
	}, &codes, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &codes, nil
}

// RegenerateBackupCodes replaces the backup code set. Requires a live TOTP
// code; old codes stop working immediately.
func (s *Session) RegenerateBackupCodes(ctx context.Context, code string) (*BackupCodesResponse, error) {
	var codes BackupCodesResponse
	err := s.doAuthJSON(ctx, http.MethodPost, "/v1/mfa/backup-codes", BackupCodesRegenerateRequest{
		Code: code,
	}, &codes, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &codes, nil
}

// RemoveTOTP disables MFA for the session's principal. Requires a live TOTP
// code.
func (s *Session) RemoveTOTP(ctx context.Context, code string) error {
	return s.doAuthJSON(ctx, http.MethodDelete, "/v1/mfa/totp", TOTPRemoveRequest{
		Code: code,
	}, nil, http.StatusNoContent)
}
