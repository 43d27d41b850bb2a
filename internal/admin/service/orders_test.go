package service

import (
	"context"
	"strings"
	"testing"

	"github.com/meridiantours/meridian/internal/admin/audit"
	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/stretchr/testify/require"
)

func newOrdersService(s store.Store) *OrdersService {
	return &OrdersService{Store: s, Audit: newRecorder(s)}
}

func TestCreateOrderComputesTotals(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newOrdersService(st)

	client := seedClient(t, st, "buyer@example.com")
	tour := seedProduct(t, st, "TOUR-PETRA-3D", "USD", 150000)
	esim := seedProduct(t, st, "ESIM-ME-10GB", "USD", 2500)

	order, err := svc.Create(ctx, audit.Meta{}, CreateOrderRequest{
		ClientEmail:   "Buyer@Example.com",
		DiscountCents: 5000,
		TaxCents:      1000,
		Items: []OrderItemInput{
			{ProductID: tour.ID, Quantity: 1},
			{ProductID: esim.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(order.Number, "ORD"))
	require.Equal(t, client.ID, order.ClientID)
	require.EqualValues(t, 155000, order.SubtotalCents)
	require.EqualValues(t, 151000, order.TotalCents)
	require.Equal(t, "USD", order.Currency)
	require.Equal(t, domain.OrderPending, order.Status)
	require.Equal(t, domain.PaymentUnpaid, order.PaymentStatus)

	// Lines carry a snapshot of the catalogue at order time.
	require.Len(t, order.Items, 2)
	require.Equal(t, "TOUR-PETRA-3D", order.Items[0].ProductSKU)
	require.EqualValues(t, 150000, order.Items[0].UnitPriceCents)
	require.EqualValues(t, 5000, order.Items[1].TotalCents)

	got, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	require.Equal(t, order.Number, got.Number)

	// Public order intake is recorded against the system actor.
	entries, err := st.AuditEntries().ListAuditEntries(ctx, store.AuditFilter{
		Action:     "order.create",
		ResourceID: order.ID,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, domain.SystemActor, entries[0].ActorID)
}

func TestCreateOrderValidation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newOrdersService(st)

	seedClient(t, st, "shopper@example.com")
	usd := seedProduct(t, st, "SIM-GLOBAL", "USD", 3000)
	aud := seedProduct(t, st, "TOUR-ULURU", "AUD", 80000)

	retired := seedProduct(t, st, "TOUR-RETIRED", "USD", 10000)
	retired.Active = false
	require.NoError(t, st.Products().UpdateProduct(ctx, retired))

	tests := []struct {
		name    string
		req     CreateOrderRequest
		wantErr error
	}{
		{
			"no items",
			CreateOrderRequest{ClientEmail: "shopper@example.com"},
			ErrValidation,
		},
		{
			"unknown client",
			CreateOrderRequest{
				ClientEmail: "stranger@example.com",
				Items:       []OrderItemInput{{ProductID: usd.ID, Quantity: 1}},
			},
			ErrClientNotFound,
		},
		{
			"unknown product",
			CreateOrderRequest{
				ClientEmail: "shopper@example.com",
				Items:       []OrderItemInput{{ProductID: "missing", Quantity: 1}},
			},
			ErrProductNotFound,
		},
		{
			"zero quantity",
			CreateOrderRequest{
				ClientEmail: "shopper@example.com",
				Items:       []OrderItemInput{{ProductID: usd.ID, Quantity: 0}},
			},
			ErrValidation,
		},
		{
			"inactive product",
			CreateOrderRequest{
				ClientEmail: "shopper@example.com",
				Items:       []OrderItemInput{{ProductID: retired.ID, Quantity: 1}},
			},
			ErrValidation,
		},
		{
			"mixed currencies",
			CreateOrderRequest{
				ClientEmail: "shopper@example.com",
				Items: []OrderItemInput{
					{ProductID: usd.ID, Quantity: 1},
					{ProductID: aud.ID, Quantity: 1},
				},
			},
			ErrValidation,
		},
		{
			"discount exceeds subtotal",
			CreateOrderRequest{
				ClientEmail:   "shopper@example.com",
				DiscountCents: 99999,
				Items:         []OrderItemInput{{ProductID: usd.ID, Quantity: 1}},
			},
			ErrValidation,
		},
		{
			"negative tax",
			CreateOrderRequest{
				ClientEmail: "shopper@example.com",
				TaxCents:    -1,
				Items:       []OrderItemInput{{ProductID: usd.ID, Quantity: 1}},
			},
			ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, audit.Meta{}, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newOrdersService(st)

	actor := seedPrincipal(t, st, "fulfiller", "pick-pack-ship", "admin")
	meta := testMeta(actor.ID)

	seedClient(t, st, "payer@example.com")
	p := seedProduct(t, st, "TOUR-KYOTO", "USD", 200000)

	order, err := svc.Create(ctx, audit.Meta{}, CreateOrderRequest{
		ClientEmail: "payer@example.com",
		Items:       []OrderItemInput{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, meta, order.ID, domain.OrderPaid, domain.PaymentPaid)
	require.NoError(t, err)
	require.Equal(t, domain.OrderPaid, updated.Status)
	require.Equal(t, domain.PaymentPaid, updated.PaymentStatus)

	// An empty value leaves that dimension alone.
	updated, err = svc.UpdateStatus(ctx, meta, order.ID, domain.OrderCompleted, "")
	require.NoError(t, err)
	require.Equal(t, domain.OrderCompleted, updated.Status)
	require.Equal(t, domain.PaymentPaid, updated.PaymentStatus)

	_, err = svc.UpdateStatus(ctx, meta, order.ID, "shipped", "")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateStatus(ctx, meta, "missing", domain.OrderPaid, "")
	require.ErrorIs(t, err, ErrOrderNotFound)
}
