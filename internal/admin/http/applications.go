package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/service"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/meridiantours/meridian/pkg/httpx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

// ApplicationsHandler handles the application lifecycle endpoints: intake,
// lookup, listing and status transitions.
type ApplicationsHandler struct {
	ApplicationsService *service.ApplicationsService
}

// HandleCreate handles POST /v1/clients/{id}/applications
//
//	@Summary		File an application
//	@Description	Files a visa, business license or company incorporation application for a client. The application starts in "submitted" with a fresh public tracking reference.
//	@Tags			Applications
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string								true	"Client ID (ULID)"
//	@Param			request	body		adminsdk.CreateApplicationRequest	true	"Application type, priority and form data"
//	@Success		201		{object}	adminsdk.ApplicationInfo			"Created application with tracking_id"
//	@Failure		400		{object}	adminsdk.ErrorResponse				"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse				"error, error_description"
//	@Failure		403		{object}	adminsdk.ErrorResponse				"error, error_description"
//	@Failure		404		{object}	adminsdk.ErrorResponse				"Client not found"
//	@Failure		500		{object}	adminsdk.ErrorResponse				"error, error_description"
//	@Router			/v1/clients/{id}/applications [post].
func (h *ApplicationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clientID := r.PathValue("id")

	var req adminsdk.CreateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	app, err := h.ApplicationsService.Create(ctx, requestMeta(r), service.CreateApplicationRequest{
		ClientID: clientID,
		Type:     domain.ApplicationType(req.Type),
		Priority: req.Priority,
		Data:     req.Data,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		case errors.Is(err, service.ErrClientNotFound):
			adminsdk.NotFoundError("client").WriteError(w)
		default:
			log.Error("failed to create application", "error", err, "client_id", clientID)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toApplicationInfo(app))
}

// HandleList handles GET /v1/applications
//
//	@Summary		List applications
//	@Description	Returns a filtered page of applications across all clients with the total match count.
//	@Tags			Applications
//	@Produce		json
//	@Security		BearerAuth
//	@Param			client_id	query		string	false	"Filter by client"
//	@Param			type		query		string	false	"visa, business_license or company_incorporation"
//	@Param			status		query		string	false	"Filter by lifecycle status"
//	@Param			priority	query		string	false	"standard or urgent"
//	@Param			limit		query		int		false	"Page size (default 50, max 200)"
//	@Param			offset		query		int		false	"Page offset"
//	@Success		200			{object}	adminsdk.ListApplicationsResponse	"Applications and total"
//	@Failure		401			{object}	adminsdk.ErrorResponse				"error, error_description"
//	@Failure		403			{object}	adminsdk.ErrorResponse				"error, error_description"
//	@Failure		500			{object}	adminsdk.ErrorResponse				"error, error_description"
//	@Router			/v1/applications [get].
func (h *ApplicationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	q := r.URL.Query()
	filter := store.ApplicationFilter{
		ClientID: q.Get("client_id"),
		Type:     domain.ApplicationType(q.Get("type")),
		Status:   domain.ApplicationStatus(q.Get("status")),
		Priority: q.Get("priority"),
		Limit:    queryInt(r, "limit"),
		Offset:   queryInt(r, "offset"),
	}

	apps, total, err := h.ApplicationsService.List(ctx, filter)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		default:
			log.Error("failed to list applications", "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.ListApplicationsResponse{
		Applications: toApplicationInfos(apps),
		Total:        total,
	})
}

// HandleGet handles GET /v1/applications/{id}
//
//	@Summary		Get an application
//	@Description	Returns one application with its full status history, oldest change first.
//	@Tags			Applications
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string								true	"Application ID (ULID)"
//	@Success		200	{object}	adminsdk.ApplicationDetailResponse	"Application and history"
//	@Failure		401	{object}	adminsdk.ErrorResponse				"error, error_description"
//	@Failure		403	{object}	adminsdk.ErrorResponse				"error, error_description"
//	@Failure		404	{object}	adminsdk.ErrorResponse				"error, error_description"
//	@Failure		500	{object}	adminsdk.ErrorResponse				"error, error_description"
//	@Router			/v1/applications/{id} [get].
func (h *ApplicationsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	app, history, err := h.ApplicationsService.Get(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrApplicationNotFound):
			adminsdk.NotFoundError("application").WriteError(w)
		default:
			log.Error("failed to load application", "error", err, "application_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.ApplicationDetailResponse{
		Application: toApplicationInfo(app),
		History:     toStatusChangeInfos(history),
	})
}

// HandleTransition handles POST /v1/applications/{id}/transition
//
//	@Summary		Move an application to a new status
//	@Description	Applies one lifecycle transition. Only legal edges are accepted; terminal applications reject every move. The change lands in the status history and the audit trail atomically.
//	@Tags			Applications
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"Application ID (ULID)"
//	@Param			request	body		adminsdk.TransitionRequest	true	"Target status and optional note"
//	@Success		200		{object}	adminsdk.ApplicationInfo	"Application after the move"
//	@Failure		400		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		403		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		404		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		422		{object}	adminsdk.ErrorResponse		"Illegal lifecycle transition"
//	@Failure		500		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/applications/{id}/transition [post].
func (h *ApplicationsHandler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	var req adminsdk.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	app, err := h.ApplicationsService.Transition(ctx, requestMeta(r), id,
		domain.ApplicationStatus(req.Status), req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		case errors.Is(err, service.ErrApplicationNotFound):
			adminsdk.NotFoundError("application").WriteError(w)
		case errors.Is(err, service.ErrInvalidTransition):
			detail := strings.TrimPrefix(err.Error(), service.ErrInvalidTransition.Error()+": ")
			adminsdk.NewAPIError(http.StatusUnprocessableEntity, adminsdk.ErrorCodeInvalidTransition,
				"Illegal status transition: "+detail).WriteError(w)
		default:
			log.Error("failed to transition application", "error", err, "application_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toApplicationInfo(app))
}
