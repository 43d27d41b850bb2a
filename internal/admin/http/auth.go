package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/meridiantours/meridian/internal/admin/rbac"
	"github.com/meridiantours/meridian/internal/admin/service"
	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/meridiantours/meridian/pkg/httpx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

// AuthHandler handles the login, MFA completion, refresh, logout and
// identity endpoints.
type AuthHandler struct {
	TokenService *service.TokenService
	AdminService *service.AdminService
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Authenticate with username and password
//	@Description	Verifies staff credentials and returns a token pair. Accounts with MFA enrolled receive a challenge (HTTP 409) instead; complete it via /v1/auth/mfa.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	adminsdk.TokenResponse	"access_token, refresh_token, token_type, expires_in"
//	@Failure		400		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	adminsdk.MFARequiredError	"mfa_token and available methods"
//	@Failure		500		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Username == "" || req.Password == "" {
		adminsdk.NewAPIError(http.StatusBadRequest, adminsdk.ErrorCodeInvalidRequest,
			"username and password are required").WriteError(w)
		return
	}

	pair, challenge, err := h.TokenService.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			adminsdk.ErrInvalidCredentials.WriteError(w)
		default:
			log.Error("login failed", "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	if challenge != nil {
		mfaErr := &adminsdk.MFARequiredError{
			MFAToken: challenge.MFAToken,
			Methods:  challenge.Methods,
		}
		mfaErr.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// HandleMFA handles POST /v1/auth/mfa
//
//	@Summary		Complete an MFA login challenge
//	@Description	Exchanges the single-use mfa_token from a login challenge plus a TOTP or backup code for a token pair. Challenges expire after a few minutes and lock after repeated failures.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.MFACompleteRequest	true	"Challenge token, method and code"
//	@Success		200		{object}	adminsdk.TokenResponse		"access_token, refresh_token, token_type, expires_in"
//	@Failure		400		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		500		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/auth/mfa [post].
func (h *AuthHandler) HandleMFA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.MFACompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.MFAToken == "" || req.Code == "" {
		adminsdk.NewAPIError(http.StatusBadRequest, adminsdk.ErrorCodeInvalidRequest,
			"mfa_token and code are required").WriteError(w)
		return
	}

	pair, err := h.TokenService.CompleteMFA(ctx, req.MFAToken, req.Method, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTooManyAttempts):
			adminsdk.NewAPIError(http.StatusUnauthorized, adminsdk.ErrorCodeInvalidGrant,
				"Too many failed attempts, please log in again").WriteError(w)
		case errors.Is(err, service.ErrInvalidGrant):
			adminsdk.ErrInvalidGrant.WriteError(w)
		default:
			log.Error("mfa completion failed", "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// HandleRefresh handles POST /v1/auth/refresh
//
//	@Summary		Rotate a refresh token
//	@Description	Exchanges a valid refresh token for a fresh pair. The presented token is consumed; reuse of a rotated token revokes the whole session chain.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	adminsdk.TokenResponse	"access_token, refresh_token, token_type, expires_in"
//	@Failure		400		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.RefreshToken == "" {
		adminsdk.NewAPIError(http.StatusBadRequest, adminsdk.ErrorCodeInvalidRequest,
			"refresh_token is required").WriteError(w)
		return
	}

	pair, err := h.TokenService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRefresh):
			adminsdk.NewAPIError(http.StatusUnauthorized, adminsdk.ErrorCodeInvalidGrant,
				"Refresh token is invalid, expired or revoked").WriteError(w)
		default:
			log.Error("refresh failed", "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// HandleLogout handles POST /v1/auth/logout
//
//	@Summary		End the current session
//	@Description	Revokes the presented refresh token and denylists the access token used to call this endpoint until it expires.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body	adminsdk.LogoutRequest	true	"Refresh token to revoke"
//	@Success		204		"Session ended"
//	@Failure		400		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	var accessJTI string
	var accessExpiresAt time.Time
	if claims, ok := httpx.ClaimsFromContext(ctx); ok {
		accessJTI = claims.ID
		if claims.ExpiresAt != nil {
			accessExpiresAt = claims.ExpiresAt.Time
		}
	}

	if err := h.TokenService.Logout(ctx, req.RefreshToken, accessJTI, accessExpiresAt); err != nil {
		log.Error("logout failed", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleMe handles GET /v1/auth/me
//
//	@Summary		Describe the authenticated principal
//	@Description	Returns the caller's profile, role and the capabilities that role grants.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	adminsdk.MeResponse		"Profile and capabilities"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principalID := httpx.UserIDFromContext(ctx)
	if principalID == "" {
		adminsdk.ErrInvalidToken.WriteError(w)
		return
	}

	p, err := h.AdminService.GetPrincipal(ctx, principalID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPrincipalNotFound):
			adminsdk.ErrInvalidToken.WriteError(w)
		default:
			log.Error("failed to load principal", "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	resp := adminsdk.MeResponse{
		UserID:       p.ID,
		Username:     p.Username,
		Email:        p.Email,
		FullName:     p.FullName,
		Role:         p.Role,
		Capabilities: rbac.CapabilitiesFor(p.Role),
		MFAEnabled:   p.MFAEnabled != nil,
	}
	if p.LastLoginAt != nil {
		resp.LastLoginAt = p.LastLoginAt.Format(time.RFC3339)
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
