package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/service"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/meridiantours/meridian/pkg/httpx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

// OrdersHandler handles the public order intake and the authenticated order
// management endpoints.
type OrdersHandler struct {
	OrdersService *service.OrdersService
}

// HandleCreate handles POST /v1/orders
//
//	@Summary		Place an order
//	@Description	Places an order for a registered client, identified by email. Prices are snapshotted from the catalogue at order time; the request never sets them. The order starts pending and unpaid.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.CreateOrderRequest	true	"Client email and order lines"
//	@Success		201		{object}	adminsdk.OrderInfo			"Created order with its number"
//	@Failure		400		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		404		{object}	adminsdk.ErrorResponse		"Unknown client email or product"
//	@Failure		500		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/orders [post].
func (h *OrdersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	items := make([]service.OrderItemInput, len(req.Items))
	for i, line := range req.Items {
		items[i] = service.OrderItemInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
	}

	order, err := h.OrdersService.Create(ctx, requestMeta(r), service.CreateOrderRequest{
		ClientEmail:   req.ClientEmail,
		DiscountCents: req.DiscountCents,
		TaxCents:      req.TaxCents,
		Items:         items,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		case errors.Is(err, service.ErrClientNotFound):
			adminsdk.NotFoundError("client").WriteError(w)
		case errors.Is(err, service.ErrProductNotFound):
			adminsdk.NotFoundError("product").WriteError(w)
		default:
			log.Error("failed to create order", "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toOrderInfo(order))
}

// HandleList handles GET /v1/admin/orders
//
//	@Summary		List orders
//	@Description	Returns a filtered page of orders, newest first, with the total match count.
//	@Tags			Orders
//	@Produce		json
//	@Security		BearerAuth
//	@Param			client_id		query		string	false	"Filter by client"
//	@Param			status			query		string	false	"pending, paid, processing, completed or cancelled"
//	@Param			payment_status	query		string	false	"unpaid, paid or refunded"
//	@Param			limit			query		int		false	"Page size (default 50, max 200)"
//	@Param			offset			query		int		false	"Page offset"
//	@Success		200				{object}	adminsdk.ListOrdersResponse	"Orders and total"
//	@Failure		401				{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		403				{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		500				{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/admin/orders [get].
func (h *OrdersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	q := r.URL.Query()
	filter := store.OrderFilter{
		ClientID:      q.Get("client_id"),
		Status:        domain.OrderStatus(q.Get("status")),
		PaymentStatus: domain.PaymentStatus(q.Get("payment_status")),
		Limit:         queryInt(r, "limit"),
		Offset:        queryInt(r, "offset"),
	}

	orders, total, err := h.OrdersService.List(ctx, filter)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		default:
			log.Error("failed to list orders", "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.ListOrdersResponse{
		Orders: toOrderInfos(orders),
		Total:  total,
	})
}

// HandleGet handles GET /v1/admin/orders/{id}
//
//	@Summary		Get an order
//	@Description	Returns one order with its lines and the pricing snapshot taken at order time.
//	@Tags			Orders
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string					true	"Order ID (ULID)"
//	@Success		200	{object}	adminsdk.OrderInfo		"Order"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/admin/orders/{id} [get].
func (h *OrdersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	order, err := h.OrdersService.Get(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			adminsdk.NotFoundError("order").WriteError(w)
		default:
			log.Error("failed to load order", "error", err, "order_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toOrderInfo(order))
}

// HandleUpdateStatus handles POST /v1/admin/orders/{id}/status
//
//	@Summary		Update an order's status
//	@Description	Sets fulfilment and/or payment status. An omitted field keeps its current value. Changes land in the audit trail.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"Order ID (ULID)"
//	@Param			request	body		adminsdk.OrderStatusRequest	true	"New fulfilment and/or payment status"
//	@Success		200		{object}	adminsdk.OrderInfo			"Order after the change"
//	@Failure		400		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		403		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		404		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		500		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/admin/orders/{id}/status [post].
func (h *OrdersHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	var req adminsdk.OrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Status == "" && req.PaymentStatus == "" {
		adminsdk.NewAPIError(http.StatusBadRequest, adminsdk.ErrorCodeInvalidRequest,
			"status or payment_status is required").WriteError(w)
		return
	}

	order, err := h.OrdersService.UpdateStatus(ctx, requestMeta(r), id,
		domain.OrderStatus(req.Status), domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		case errors.Is(err, service.ErrOrderNotFound):
			adminsdk.NotFoundError("order").WriteError(w)
		default:
			log.Error("failed to update order status", "error", err, "order_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toOrderInfo(order))
}
