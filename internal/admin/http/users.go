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

// UsersHandler handles staff account management.
type UsersHandler struct {
	AdminService *service.AdminService
}

// HandleCreate handles POST /v1/admin/users
//
//	@Summary		Create a staff account
//	@Description	Registers a new staff account with a role from the static matrix. Passwords are hashed with Argon2id before they hit the store.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		adminsdk.CreateUserRequest	true	"Account details"
//	@Success		201		{object}	adminsdk.UserInfo			"Created account"
//	@Failure		400		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		403		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		409		{object}	adminsdk.ErrorResponse		"Username or email already taken"
//	@Failure		500		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/admin/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	p, err := h.AdminService.CreatePrincipal(ctx, requestMeta(r), service.CreatePrincipalRequest{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		case errors.Is(err, service.ErrUsernameTaken):
			adminsdk.ConflictError("username_taken",
				"Username or email is already taken").WriteError(w)
		default:
			log.Error("failed to create staff account", "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserInfo(p))
}

// HandleList handles GET /v1/admin/users
//
//	@Summary		List staff accounts
//	@Description	Returns every staff account, active and disabled. Password material never appears.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	adminsdk.ListUsersResponse	"Accounts"
//	@Failure		401	{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		403	{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		500	{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/admin/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principals, err := h.AdminService.ListPrincipals(ctx)
	if err != nil {
		log.Error("failed to list staff accounts", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}

	users := make([]adminsdk.UserInfo, len(principals))
	for i, p := range principals {
		users[i] = toUserInfo(p)
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.ListUsersResponse{Users: users})
}

// HandleGet handles GET /v1/admin/users/{id}
//
//	@Summary		Get a staff account
//	@Description	Returns one staff account by ID.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string					true	"Account ID (ULID)"
//	@Success		200	{object}	adminsdk.UserInfo		"Account"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/admin/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	p, err := h.AdminService.GetPrincipal(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPrincipalNotFound):
			adminsdk.NotFoundError("user").WriteError(w)
		default:
			log.Error("failed to load staff account", "error", err, "principal_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserInfo(p))
}

// HandleUpdate handles PUT /v1/admin/users/{id}
//
//	@Summary		Update a staff account
//	@Description	Changes profile fields, role, active state and/or password. Omitted fields keep their current values. Setting a password revokes the account's sessions; disabling does too. Nobody can disable their own account.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"Account ID (ULID)"
//	@Param			request	body		adminsdk.UpdateUserRequest	true	"Fields to change"
//	@Success		200		{object}	adminsdk.UserInfo			"Account after the change"
//	@Failure		400		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		403		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		404		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		409		{object}	adminsdk.ErrorResponse		"Email taken, or self-disable attempt"
//	@Failure		500		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/admin/users/{id} [put].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	var req adminsdk.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	current, err := h.AdminService.GetPrincipal(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPrincipalNotFound):
			adminsdk.NotFoundError("user").WriteError(w)
		default:
			log.Error("failed to load staff account", "error", err, "principal_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	// Omitted fields fall back to the stored values so a partial body
	// does not blank the profile.
	email := req.Email
	if email == "" {
		email = current.Email
	}
	fullName := req.FullName
	if fullName == "" {
		fullName = current.FullName
	}
	role := req.Role
	if role == "" {
		role = current.Role
	}

	meta := requestMeta(r)

	p, err := h.AdminService.UpdatePrincipal(ctx, meta, id, email, fullName, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		case errors.Is(err, service.ErrPrincipalNotFound):
			adminsdk.NotFoundError("user").WriteError(w)
		case errors.Is(err, service.ErrUsernameTaken):
			adminsdk.ConflictError("email_taken", "Email is already taken").WriteError(w)
		default:
			log.Error("failed to update staff account", "error", err, "principal_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	if req.Active != nil && *req.Active != current.Active {
		if err := h.AdminService.SetActive(ctx, meta, id, *req.Active); err != nil {
			switch {
			case errors.Is(err, service.ErrCannotDisableSelf):
				adminsdk.ConflictError("cannot_disable_self",
					"You cannot disable your own account").WriteError(w)
			default:
				log.Error("failed to change account state", "error", err, "principal_id", id)
				adminsdk.ErrServerError.WriteError(w)
			}
			return
		}
		p.Active = *req.Active
	}

	if req.Password != "" {
		if err := h.AdminService.ResetPassword(ctx, meta, id, req.Password); err != nil {
			switch {
			case errors.Is(err, service.ErrValidation):
				adminsdk.ValidationError(validationDetail(err)).WriteError(w)
			default:
				log.Error("failed to reset password", "error", err, "principal_id", id)
				adminsdk.ErrServerError.WriteError(w)
			}
			return
		}
	}

	httpx.WriteJSON(w, http.StatusOK, toUserInfo(p))
}

// HandleDeactivate handles DELETE /v1/admin/users/{id}
//
//	@Summary		Deactivate a staff account
//	@Description	Disables the account and revokes its sessions. Accounts are never hard-deleted; the audit trail keeps referring to them. Nobody can disable their own account.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Account ID (ULID)"
//	@Success		204	"Account deactivated"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		409	{object}	adminsdk.ErrorResponse	"Self-disable attempt"
//	@Failure		500	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/admin/users/{id} [delete].
func (h *UsersHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	if err := h.AdminService.SetActive(ctx, requestMeta(r), id, false); err != nil {
		switch {
		case errors.Is(err, service.ErrPrincipalNotFound):
			adminsdk.NotFoundError("user").WriteError(w)
		case errors.Is(err, service.ErrCannotDisableSelf):
			adminsdk.ConflictError("cannot_disable_self",
				"You cannot disable your own account").WriteError(w)
		default:
			log.Error("failed to deactivate staff account", "error", err, "principal_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
