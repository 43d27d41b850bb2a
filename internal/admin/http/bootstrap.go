package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/service"
	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/meridiantours/meridian/pkg/httpx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the bootstrap endpoint for first-run setup.
//
//	@Summary		Bootstrap the admin service
//	@Description	Creates the initial super_admin account. Only available while a bootstrap token is configured and no active account exists; afterwards the endpoint goes dark.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string							true	"Bootstrap token for authorization"
//	@Param			request				body		adminsdk.BootstrapRequest		true	"Initial account details"
//	@Success		201					{object}	adminsdk.BootstrapResponse		"ID of the created super_admin"
//	@Failure		400					{object}	adminsdk.ValidationErrorResponse	"Invalid request body or validation failed"
//	@Failure		401					{object}	adminsdk.ErrorResponse			"Missing or invalid bootstrap token, or already bootstrapped"
//	@Failure		404					{object}	adminsdk.ErrorResponse			"Bootstrap not enabled (no token configured)"
//	@Failure		500					{object}	adminsdk.ErrorResponse			"Failed to create the account"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())
	l.Info("Starting to bootstrap")

	// 1. Check if enabled
	if h.BootstrapService.Token == "" {
		httpx.WriteJSON(w, http.StatusNotFound, adminsdk.ErrorResponse{
			Error:            "not_found",
			ErrorDescription: "Bootstrap endpoint is not enabled",
		})
		return
	}

	// 2. Require bootstrap token header
	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, adminsdk.ErrorResponse{
			Error:            "unauthorized",
			ErrorDescription: "Bootstrap token is required in X-Bootstrap-Token header",
		})
		return
	}

	// 3. Parse request body and validate
	var req adminsdk.BootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, adminsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Request body must be valid JSON",
		})
		return
	}
	if errs := req.Validate(); errs != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, adminsdk.ValidationErrorResponse{
			Code:    "validation_error",
			Message: "validation failed for some fields",
			Details: errs,
		})
		return
	}

	// 4. Perform bootstrap
	adminUserID, err := h.BootstrapService.Bootstrap(
		r.Context(),
		token,
		domain.BootstrapData{
			AdminUsername: strings.TrimSpace(req.AdminUsername),
			AdminEmail:    strings.TrimSpace(req.AdminEmail),
			AdminFullName: strings.TrimSpace(req.AdminFullName),
			AdminPassword: req.AdminPassword,
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapAlready):
			httpx.WriteJSON(
				w,
				http.StatusUnauthorized,
				adminsdk.ErrorResponse{
					Error:            "unauthorized",
					ErrorDescription: "System has already been bootstrapped",
				},
			)
		case errors.Is(err, service.ErrBootstrapUnauthorized):
			httpx.WriteJSON(
				w,
				http.StatusUnauthorized,
				adminsdk.ErrorResponse{
					Error:            "unauthorized",
					ErrorDescription: "Invalid bootstrap token",
				},
			)
		case errors.Is(err, service.ErrBootstrapFailedToCreateAdmin):
			httpx.WriteJSON(
				w,
				http.StatusInternalServerError,
				adminsdk.ErrorResponse{
					Error:            "server_error",
					ErrorDescription: "Failed to create admin account",
				},
			)
		default:
			httpx.WriteJSON(
				w,
				http.StatusInternalServerError,
				adminsdk.ErrorResponse{
					Error:            "server_error",
					ErrorDescription: "An internal error occurred",
				},
			)
		}
		return
	}

	// 5. Respond with the created account ID
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, adminsdk.BootstrapResponse{
		AdminUserID: adminUserID,
	})
}
