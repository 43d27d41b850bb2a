package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/meridiantours/meridian/internal/admin/audit"
	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/idx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

var ErrOrderNotFound = errors.New("order_not_found")

// orderNumberAttempts bounds the retries after an order number collision,
// mirroring the tracking reference handling.
const orderNumberAttempts = 3

// OrdersService takes orders against the product catalogue and manages their
// fulfilment state.
type OrdersService struct {
	Store store.Store
	Audit *audit.Recorder
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

// CreateOrderRequest is the public order intake payload. The client is
// identified by registered email; prices always come from the catalogue,
// never from the request.
type CreateOrderRequest struct {
	ClientEmail   string
	DiscountCents int64
	TaxCents      int64
	Items         []OrderItemInput
}

// Create places an order. Each line snapshots the product's name, SKU and
// unit price at order time, so later catalogue edits do not rewrite history.
// Totals follow subtotal minus discount plus tax.
func (s *OrdersService) Create(ctx context.Context, meta audit.Meta, req CreateOrderRequest) (domain.Order, error) {
	l := slogx.FromContext(ctx)

	if len(req.Items) == 0 {
		return domain.Order{}, validationf("an order needs at least one item")
	}
	if req.DiscountCents < 0 || req.TaxCents < 0 {
		return domain.Order{}, validationf("discount_cents and tax_cents must not be negative")
	}

	client, err := s.Store.Clients().GetClientByEmail(ctx, strings.ToLower(strings.TrimSpace(req.ClientEmail)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Order{}, ErrClientNotFound
		}
		return domain.Order{}, err
	}

	// Resolve every line against the catalogue and snapshot the pricing.
	var (
		items    = make([]domain.OrderItem, 0, len(req.Items))
		subtotal int64
		currency string
	)
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return domain.Order{}, validationf("quantity for product %q must be positive", line.ProductID)
		}

		product, err := s.Store.Products().GetProductByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Order{}, ErrProductNotFound
			}
			return domain.Order{}, err
		}
		if !product.Active {
			return domain.Order{}, validationf("product %q is not available", product.SKU)
		}
		if currency == "" {
			currency = product.Currency
		} else if currency != product.Currency {
			return domain.Order{}, validationf("items mix currencies %s and %s", currency, product.Currency)
		}

		lineTotal := int64(line.Quantity) * product.PriceCents
		items = append(items, domain.OrderItem{
			ID:             idx.New().String(),
			ProductID:      product.ID,
			ProductName:    product.Name,
			ProductSKU:     product.SKU,
			Quantity:       line.Quantity,
			UnitPriceCents: product.PriceCents,
			TotalCents:     lineTotal,
		})
		subtotal += lineTotal
	}

	if req.DiscountCents > subtotal {
		return domain.Order{}, validationf("discount_cents exceeds the subtotal")
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:            idx.New().String(),
		ClientID:      client.ID,
		SubtotalCents: subtotal,
		DiscountCents: req.DiscountCents,
		TaxCents:      req.TaxCents,
		TotalCents:    subtotal - req.DiscountCents + req.TaxCents,
		Currency:      currency,
		Status:        domain.OrderPending,
		PaymentStatus: domain.PaymentUnpaid,
		Items:         items,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	// Same coin-toss handling as tracking references: reroll the random
	// suffix if the order number is somehow taken.
	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		order.Number = domain.NewOrderNumber(now)

		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Orders().CreateOrder(ctx, order); err != nil {
				return err
			}
			return s.Audit.Record(ctx, tx, audit.Event{
				Meta:         meta,
				Action:       "order.create",
				ResourceType: "order",
				ResourceID:   order.ID,
				Detail: map[string]any{
					"number":      order.Number,
					"client_id":   order.ClientID,
					"total_cents": order.TotalCents,
				},
			})
		})
		if !errors.Is(err, store.ErrAlreadyExists) {
			break
		}
	}
	if err != nil {
		return domain.Order{}, err
	}

	l.Info("order placed",
		slog.String("order_id", order.ID),
		slog.String("number", order.Number),
		slog.Int64("total_cents", order.TotalCents),
	)
	return order, nil
}

// Get returns an order with its items.
func (s *OrdersService) Get(ctx context.Context, id string) (domain.Order, error) {
	o, err := s.Store.Orders().GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Order{}, ErrOrderNotFound
		}
		return domain.Order{}, err
	}
	return o, nil
}

// List returns a filtered page of orders, without items, plus the total
// match count.
func (s *OrdersService) List(ctx context.Context, f store.OrderFilter) ([]domain.Order, int64, error) {
	orders, err := s.Store.Orders().ListOrders(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.Orders().CountOrders(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus moves an order's fulfilment and payment state. Empty values
// keep the current one; named values must come from the known sets.
func (s *OrdersService) UpdateStatus(
	ctx context.Context,
	meta audit.Meta,
	id string,
	status domain.OrderStatus,
	payment domain.PaymentStatus,
) (domain.Order, error) {
	l := slogx.FromContext(ctx)

	if status != "" && !status.IsValid() {
		return domain.Order{}, validationf("unknown order status %q", status)
	}
	if payment != "" && !payment.IsValid() {
		return domain.Order{}, validationf("unknown payment status %q", payment)
	}

	o, err := s.Store.Orders().GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Order{}, ErrOrderNotFound
		}
		return domain.Order{}, err
	}

	from, fromPayment := o.Status, o.PaymentStatus
	if status != "" {
		o.Status = status
	}
	if payment != "" {
		o.PaymentStatus = payment
	}
	o.UpdatedAt = time.Now().UTC()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Orders().UpdateOrderStatus(ctx, id, o.Status, o.PaymentStatus); err != nil {
			return err
		}
		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       "order.status",
			ResourceType: "order",
			ResourceID:   id,
			Detail: map[string]any{
				"number":       o.Number,
				"from":         from,
				"to":           o.Status,
				"from_payment": fromPayment,
				"to_payment":   o.PaymentStatus,
			},
		})
	})
	if err != nil {
		return domain.Order{}, err
	}

	l.Info("order status updated",
		slog.String("order_id", id),
		slog.String("status", string(o.Status)),
		slog.String("payment_status", string(o.PaymentStatus)),
	)
	return o, nil
}
