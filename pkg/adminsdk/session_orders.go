package adminsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ============================================================================
// Order Operations
// ============================================================================

// ListOrdersOptions filters the order listing. Zero values are omitted from
// the query.
type ListOrdersOptions struct {
	ClientID      string
	Status        string // pending, paid, processing, completed, cancelled
	PaymentStatus string // unpaid, paid, refunded
	Limit         int
	Offset        int
}

func (o ListOrdersOptions) query() string {
	q := url.Values{}
	if o.ClientID != "" {
		q.Set("client_id", o.ClientID)
	}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if o.PaymentStatus != "" {
		q.Set("payment_status", o.PaymentStatus)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// GetOrder returns an order with its line items.
// Requires: orders:read capability.
func (s *Session) GetOrder(ctx context.Context, id string) (*OrderInfo, error) {
	var info OrderInfo
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/admin/orders/"+id, nil, &info, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ListOrders returns a filtered page of orders.
// Requires: orders:read capability.
func (s *Session) ListOrders(ctx context.Context, opts ListOrdersOptions) (*ListOrdersResponse, error) {
	var list ListOrdersResponse
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/admin/orders"+opts.query(), nil, &list, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateOrderStatus moves an order's fulfilment and/or payment state. Empty
// fields keep their current value.
// Requires: orders:write capability.
func (s *Session) UpdateOrderStatus(
	ctx context.Context,
	id string,
	req OrderStatusRequest,
) (*OrderInfo, error) {
	var info OrderInfo
	err := s.doAuthJSON(ctx, http.MethodPost, "/v1/admin/orders/"+id+"/status", req, &info, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
