package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/meridiantours/meridian/internal/admin/service"
	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/meridiantours/meridian/pkg/httpx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

// MFAHandler handles TOTP enrollment and backup code management for the
// authenticated principal.
type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleEnroll handles POST /v1/mfa/totp/enroll
//
//	@Summary		Start TOTP enrollment
//	@Description	Generates a TOTP secret and provisioning URL for the caller. MFA stays disabled until the first code is verified.
//	@Tags			MFA
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	adminsdk.TOTPEnrollResponse	"Secret and otpauth URL (shown once)"
//	@Failure		401	{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		409	{object}	adminsdk.ErrorResponse		"MFA already enabled"
//	@Failure		500	{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/mfa/totp/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principalID := httpx.UserIDFromContext(ctx)
	if principalID == "" {
		adminsdk.ErrInvalidToken.WriteError(w)
		return
	}

	enrollData, err := h.MFAService.EnrollTOTP(ctx, principalID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMFAAlreadyEnabled):
			adminsdk.ConflictError("mfa_already_enabled",
				"MFA is already enabled for this account").WriteError(w)
		case errors.Is(err, service.ErrPrincipalNotFound):
			adminsdk.ErrInvalidToken.WriteError(w)
		default:
			log.Error("failed to enroll TOTP", "principal_id", principalID, "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, adminsdk.TOTPEnrollResponse{
		Secret:  enrollData.Secret,
		QRCode:  enrollData.QRCode,
		Issuer:  enrollData.Issuer,
		Account: enrollData.Account,
	})
}

// HandleVerify handles POST /v1/mfa/totp/verify
//
//	@Summary		Verify TOTP and enable MFA
//	@Description	Confirms the first TOTP code from the enrolled authenticator, enables MFA and returns single-use backup codes.
//	@Tags			MFA
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		adminsdk.TOTPVerifyRequest	true	"TOTP code"
//	@Success		200		{object}	adminsdk.BackupCodesResponse	"Backup codes (shown once)"
//	@Failure		400		{object}	adminsdk.ErrorResponse			"Invalid TOTP code or request"
//	@Failure		401		{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Failure		409		{object}	adminsdk.ErrorResponse			"MFA already enabled"
//	@Failure		500		{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Router			/v1/mfa/totp/verify [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principalID := httpx.UserIDFromContext(ctx)
	if principalID == "" {
		adminsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req adminsdk.TOTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	backupCodes, err := h.MFAService.VerifyTOTP(ctx, principalID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTOTPCode):
			adminsdk.NewAPIError(http.StatusBadRequest, "invalid_code",
				"Invalid TOTP code").WriteError(w)
		case errors.Is(err, service.ErrMFAAlreadyEnabled):
			adminsdk.ConflictError("mfa_already_enabled",
				"MFA is already enabled for this account").WriteError(w)
		default:
			log.Error("failed to verify TOTP", "principal_id", principalID, "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, adminsdk.BackupCodesResponse{
		Codes: backupCodes,
	})
}

// HandleRegenerateBackupCodes handles POST /v1/mfa/backup-codes
//
//	@Summary		Regenerate backup codes
//	@Description	Replaces all unused backup codes with a fresh set. Requires a current TOTP code.
//	@Tags			MFA
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		adminsdk.BackupCodesRegenerateRequest	true	"Current TOTP code"
//	@Success		200		{object}	adminsdk.BackupCodesResponse			"Backup codes (shown once)"
//	@Failure		400		{object}	adminsdk.ErrorResponse					"Invalid TOTP code, or MFA not enabled"
//	@Failure		401		{object}	adminsdk.ErrorResponse					"error, error_description"
//	@Failure		500		{object}	adminsdk.ErrorResponse					"error, error_description"
//	@Router			/v1/mfa/backup-codes [post].
func (h *MFAHandler) HandleRegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principalID := httpx.UserIDFromContext(ctx)
	if principalID == "" {
		adminsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req adminsdk.BackupCodesRegenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	codes, err := h.MFAService.RegenerateBackupCodes(ctx, principalID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTOTPCode):
			adminsdk.NewAPIError(http.StatusBadRequest, "invalid_code",
				"Invalid TOTP code").WriteError(w)
		case errors.Is(err, service.ErrMFANotEnabled):
			adminsdk.NewAPIError(http.StatusBadRequest, "mfa_not_enabled",
				"MFA is not enabled for this account").WriteError(w)
		default:
			log.Error("failed to regenerate backup codes", "principal_id", principalID, "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, adminsdk.BackupCodesResponse{
		Codes: codes,
	})
}

// HandleRemove handles DELETE /v1/mfa/totp
//
//	@Summary		Disable MFA
//	@Description	Removes TOTP and deletes all backup codes. Requires a current TOTP code.
//	@Tags			MFA
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body	adminsdk.TOTPRemoveRequest	true	"Current TOTP code"
//	@Success		204		"MFA disabled"
//	@Failure		400		{object}	adminsdk.ErrorResponse	"Invalid TOTP code, or MFA not enabled"
//	@Failure		401		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/mfa/totp [delete].
func (h *MFAHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principalID := httpx.UserIDFromContext(ctx)
	if principalID == "" {
		adminsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req adminsdk.TOTPRemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.MFAService.RemoveMFA(ctx, principalID, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTOTPCode):
			adminsdk.NewAPIError(http.StatusBadRequest, "invalid_code",
				"Invalid TOTP code").WriteError(w)
		case errors.Is(err, service.ErrMFANotEnabled):
			adminsdk.NewAPIError(http.StatusBadRequest, "mfa_not_enabled",
				"MFA is not enabled for this account").WriteError(w)
		default:
			log.Error("failed to remove MFA", "principal_id", principalID, "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
