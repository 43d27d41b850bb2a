package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/meridiantours/meridian/internal/admin/service"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/meridiantours/meridian/pkg/httpx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

// ClientsHandler handles the CRM client book endpoints.
type ClientsHandler struct {
	ClientsService *service.ClientsService
}

func clientInputFromPayload(p adminsdk.ClientPayload) service.ClientInput {
	return service.ClientInput{
		FullName:       p.FullName,
		Email:          p.Email,
		Phone:          p.Phone,
		Nationality:    p.Nationality,
		PassportNumber: p.PassportNumber,
		Company:        p.Company,
		Address:        p.Address,
		Notes:          p.Notes,
		Active:         p.Active,
	}
}

// HandleCreate handles POST /v1/clients
//
//	@Summary		Register a client
//	@Description	Adds a new client to the book. Email must be unique across active records.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		adminsdk.ClientPayload	true	"Client details"
//	@Success		201		{object}	adminsdk.ClientInfo		"Created client"
//	@Failure		400		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	adminsdk.ErrorResponse	"Email already registered"
//	@Failure		500		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/clients [post].
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.ClientPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	client, err := h.ClientsService.Create(ctx, requestMeta(r), clientInputFromPayload(req))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		case errors.Is(err, service.ErrClientEmailTaken):
			adminsdk.ConflictError("email_taken",
				"A client with this email is already registered").WriteError(w)
		default:
			log.Error("failed to create client", "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toClientInfo(client))
}

// HandleList handles GET /v1/clients
//
//	@Summary		List clients
//	@Description	Returns a filtered page of the client book with the total match count.
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Param			search		query		string	false	"Match against name, email or passport number"
//	@Param			nationality	query		string	false	"Filter by nationality"
//	@Param			limit		query		int		false	"Page size (default 50, max 200)"
//	@Param			offset		query		int		false	"Page offset"
//	@Success		200			{object}	adminsdk.ListClientsResponse	"Clients and total"
//	@Failure		401			{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Failure		403			{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Failure		500			{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Router			/v1/clients [get].
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	filter := store.ClientFilter{
		Search:      r.URL.Query().Get("search"),
		Nationality: r.URL.Query().Get("nationality"),
		Limit:       queryInt(r, "limit"),
		Offset:      queryInt(r, "offset"),
	}

	clients, total, err := h.ClientsService.List(ctx, filter)
	if err != nil {
		log.Error("failed to list clients", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.ListClientsResponse{
		Clients: toClientInfos(clients),
		Total:   total,
	})
}

// HandleGet handles GET /v1/clients/{id}
//
//	@Summary		Get a client
//	@Description	Returns one client with every application filed for them.
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string							true	"Client ID (ULID)"
//	@Success		200	{object}	adminsdk.ClientDetailResponse	"Client and applications"
//	@Failure		401	{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Failure		403	{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Failure		404	{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Failure		500	{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Router			/v1/clients/{id} [get].
func (h *ClientsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	client, applications, err := h.ClientsService.Get(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			adminsdk.NotFoundError("client").WriteError(w)
		default:
			log.Error("failed to load client", "error", err, "client_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.ClientDetailResponse{
		Client:       toClientInfo(client),
		Applications: toApplicationInfos(applications),
	})
}

// HandleUpdate handles PUT /v1/clients/{id}
//
//	@Summary		Update a client
//	@Description	Replaces the client's mutable fields. Email stays unique across active records.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Client ID (ULID)"
//	@Param			request	body		adminsdk.ClientPayload	true	"Client details"
//	@Success		200		{object}	adminsdk.ClientInfo		"Updated client"
//	@Failure		400		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	adminsdk.ErrorResponse	"Email already registered"
//	@Failure		500		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/clients/{id} [put].
func (h *ClientsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	var req adminsdk.ClientPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	client, err := h.ClientsService.Update(ctx, requestMeta(r), id, clientInputFromPayload(req))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		case errors.Is(err, service.ErrClientNotFound):
			adminsdk.NotFoundError("client").WriteError(w)
		case errors.Is(err, service.ErrClientEmailTaken):
			adminsdk.ConflictError("email_taken",
				"A client with this email is already registered").WriteError(w)
		default:
			log.Error("failed to update client", "error", err, "client_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toClientInfo(client))
}

// HandleDelete handles DELETE /v1/clients/{id}
//
//	@Summary		Delete a client
//	@Description	Removes a client and their application history. Refused while the client has applications still in flight.
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Client ID (ULID)"
//	@Success		204	"Client deleted"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		409	{object}	adminsdk.ErrorResponse	"Open applications block deletion"
//	@Failure		500	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/clients/{id} [delete].
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	if err := h.ClientsService.Delete(ctx, requestMeta(r), id); err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			adminsdk.NotFoundError("client").WriteError(w)
		case errors.Is(err, service.ErrClientHasOpenApplications):
			adminsdk.ConflictError("client_has_open_applications",
				"Client has applications still in flight").WriteError(w)
		default:
			log.Error("failed to delete client", "error", err, "client_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
