package admin_test

import (
	"strings"
	"testing"

	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/stretchr/testify/require"
)

// TestOrderPlacement verifies the public order intake:
// 1. Orders are placed unauthenticated against a registered client email
// 2. Each line snapshots the catalogue name, SKU and unit price
// 3. Totals follow subtotal minus discount plus tax
// 4. New orders start pending and unpaid with an ORD-prefixed number
func TestOrderPlacement(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	buyer := createTestClient(t, session, "Linh Tran", "linh.tran@example.com")
	esim := createTestProduct(t, session, "Vietnam eSIM 5GB", "SIM-VN-5GB", 1500, "")
	fasttrack := createTestProduct(t, session, "Airport Fast Track", "FASTTRACK-HAN", 4500, "")

	order, err := client.PlaceOrder(ctx, adminsdk.CreateOrderRequest{
		ClientEmail:   buyer.Email,
		DiscountCents: 500,
		TaxCents:      700,
		Items: []adminsdk.OrderItemPayload{
			{ProductID: esim.ID, Quantity: 2},
			{ProductID: fasttrack.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(order.Number, "ORD"), "Order number should be ORD-prefixed, got %s", order.Number)
	require.Len(t, order.Number, 19)
	require.Equal(t, buyer.ID, order.ClientID)
	require.Equal(t, "pending", order.Status)
	require.Equal(t, "unpaid", order.PaymentStatus)
	require.Equal(t, "USD", order.Currency)
	t.Logf("Placed order %s for %s", order.Number, buyer.Email)

	require.EqualValues(t, 7500, order.SubtotalCents, "Subtotal should come from catalogue prices")
	require.EqualValues(t, 500, order.DiscountCents)
	require.EqualValues(t, 700, order.TaxCents)
	require.EqualValues(t, 7700, order.TotalCents, "Total should be subtotal minus discount plus tax")

	require.Len(t, order.Items, 2)
	byProduct := make(map[string]adminsdk.OrderItemInfo, len(order.Items))
	for _, item := range order.Items {
		byProduct[item.ProductID] = item
	}
	esimLine := byProduct[esim.ID]
	require.Equal(t, "Vietnam eSIM 5GB", esimLine.ProductName)
	require.Equal(t, "SIM-VN-5GB", esimLine.ProductSKU)
	require.Equal(t, 2, esimLine.Quantity)
	require.EqualValues(t, 1500, esimLine.UnitPriceCents)
	require.EqualValues(t, 3000, esimLine.TotalCents)
	require.EqualValues(t, 4500, byProduct[fasttrack.ID].TotalCents)

	t.Logf("Line items carry the catalogue snapshot")

	fetched, err := session.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, order.Number, fetched.Number)
	require.EqualValues(t, 7700, fetched.TotalCents)
	require.Len(t, fetched.Items, 2)

	t.Logf("Order visible to staff with full detail")
}

// TestOrderPriceSnapshot verifies that repricing a product does not rewrite
// orders already placed against the old price.
func TestOrderPriceSnapshot(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	buyer := createTestClient(t, session, "Repeat Buyer", "repeat@example.com")
	trek := createTestProduct(t, session, "Sapa Trekking Day", "TREK-SAPA", 2000, "")

	first, err := client.PlaceOrder(ctx, adminsdk.CreateOrderRequest{
		ClientEmail: buyer.Email,
		Items:       []adminsdk.OrderItemPayload{{ProductID: trek.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 2000, first.TotalCents)
	t.Logf("Placed order %s at the original price", first.Number)

	_, err = session.UpdateProduct(ctx, trek.ID, adminsdk.ProductPayload{
		Name:       "Sapa Trekking Day",
		SKU:        "TREK-SAPA",
		Type:       "service",
		PriceCents: 9900,
	})
	require.NoError(t, err)
	t.Logf("Repriced the trek to 9900")

	second, err := client.PlaceOrder(ctx, adminsdk.CreateOrderRequest{
		ClientEmail: buyer.Email,
		Items:       []adminsdk.OrderItemPayload{{ProductID: trek.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 9900, second.TotalCents, "New orders should see the new price")

	unchanged, err := session.GetOrder(ctx, first.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2000, unchanged.TotalCents, "Existing orders should keep the snapshot price")
	require.EqualValues(t, 2000, unchanged.Items[0].UnitPriceCents)

	t.Logf("Price snapshot preserved across repricing")
}

// TestOrderValidation exercises the order intake edge cases.
func TestOrderValidation(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	buyer := createTestClient(t, session, "Careful Buyer", "careful@example.com")
	usd := createTestProduct(t, session, "City Walking Tour", "WALK-HCM", 3000, "")
	eur := createTestProduct(t, session, "Paris Stopover Guide", "GUIDE-PARIS", 2500, "EUR")

	inactive := false
	retired, err := session.CreateProduct(ctx, adminsdk.ProductPayload{
		Name:       "Retired Tour",
		SKU:        "RETIRED-1",
		Type:       "service",
		PriceCents: 1000,
		Active:     &inactive,
	})
	require.NoError(t, err)

	oneItem := []adminsdk.OrderItemPayload{{ProductID: usd.ID, Quantity: 1}}

	_, err = client.PlaceOrder(ctx, adminsdk.CreateOrderRequest{
		ClientEmail: "nobody@example.com",
		Items:       oneItem,
	})
	assertNotFound(t, err, "Order for an unregistered email")

	_, err = client.PlaceOrder(ctx, adminsdk.CreateOrderRequest{ClientEmail: buyer.Email})
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least one item")

	_, err = client.PlaceOrder(ctx, adminsdk.CreateOrderRequest{
		ClientEmail: buyer.Email,
		Items:       []adminsdk.OrderItemPayload{{ProductID: usd.ID, Quantity: 0}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "must be positive")

	_, err = client.PlaceOrder(ctx, adminsdk.CreateOrderRequest{
		ClientEmail: buyer.Email,
		Items:       []adminsdk.OrderItemPayload{{ProductID: "01JUNKJUNKJUNKJUNKJUNKJUNK", Quantity: 1}},
	})
	assertNotFound(t, err, "Order for an unknown product")

	_, err = client.PlaceOrder(ctx, adminsdk.CreateOrderRequest{
		ClientEmail: buyer.Email,
		Items:       []adminsdk.OrderItemPayload{{ProductID: retired.ID, Quantity: 1}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "is not available", "Inactive products should not be orderable")

	_, err = client.PlaceOrder(ctx, adminsdk.CreateOrderRequest{
		ClientEmail: buyer.Email,
		Items: []adminsdk.OrderItemPayload{
			{ProductID: usd.ID, Quantity: 1},
			{ProductID: eur.ID, Quantity: 1},
		},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "currencies", "Mixed-currency orders should be rejected")

	_, err = client.PlaceOrder(ctx, adminsdk.CreateOrderRequest{
		ClientEmail:   buyer.Email,
		DiscountCents: 10000,
		Items:         oneItem,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds", "Discount above the subtotal should be rejected")

	_, err = client.PlaceOrder(ctx, adminsdk.CreateOrderRequest{
		ClientEmail: buyer.Email,
		TaxCents:    -100,
		Items:       oneItem,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be negative")

	t.Logf("All malformed orders rejected")
}

// TestOrderAdminFlow verifies the staff side of order management: filtered
// listings and the fulfilment and payment state updates.
func TestOrderAdminFlow(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	alice := createTestClient(t, session, "Alice Nguyen", "alice@example.com")
	bob := createTestClient(t, session, "Bob Pham", "bob@example.com")
	tour := createTestProduct(t, session, "Mekong Delta Tour", "TOUR-MEKONG", 6500, "")

	aliceOrder, err := client.PlaceOrder(ctx, adminsdk.CreateOrderRequest{
		ClientEmail: alice.Email,
		Items:       []adminsdk.OrderItemPayload{{ProductID: tour.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	bobOrder, err := client.PlaceOrder(ctx, adminsdk.CreateOrderRequest{
		ClientEmail: bob.Email,
		Items:       []adminsdk.OrderItemPayload{{ProductID: tour.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	t.Logf("Placed orders %s and %s", aliceOrder.Number, bobOrder.Number)

	list, err := session.ListOrders(ctx, adminsdk.ListOrdersOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 2, list.Total)
	require.Equal(t, bobOrder.ID, list.Orders[0].ID, "Listing should be newest first")
	require.Empty(t, list.Orders[0].Items, "Listings are summaries without line items")

	forAlice, err := session.ListOrders(ctx, adminsdk.ListOrdersOptions{ClientID: alice.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, forAlice.Total)
	require.Equal(t, aliceOrder.ID, forAlice.Orders[0].ID)

	t.Logf("Moving %s through payment and fulfilment", aliceOrder.Number)

	paid, err := session.UpdateOrderStatus(ctx, aliceOrder.ID, adminsdk.OrderStatusRequest{
		Status:        "paid",
		PaymentStatus: "paid",
	})
	require.NoError(t, err)
	require.Equal(t, "paid", paid.Status)
	require.Equal(t, "paid", paid.PaymentStatus)

	processing, err := session.UpdateOrderStatus(ctx, aliceOrder.ID, adminsdk.OrderStatusRequest{
		Status: "processing",
	})
	require.NoError(t, err)
	require.Equal(t, "processing", processing.Status)
	require.Equal(t, "paid", processing.PaymentStatus, "Empty payment status should keep the current value")

	inProgress, err := session.ListOrders(ctx, adminsdk.ListOrdersOptions{Status: "processing"})
	require.NoError(t, err)
	require.EqualValues(t, 1, inProgress.Total)
	require.Equal(t, aliceOrder.ID, inProgress.Orders[0].ID)

	unpaid, err := session.ListOrders(ctx, adminsdk.ListOrdersOptions{PaymentStatus: "unpaid"})
	require.NoError(t, err)
	require.EqualValues(t, 1, unpaid.Total)
	require.Equal(t, bobOrder.ID, unpaid.Orders[0].ID)

	_, err = session.UpdateOrderStatus(ctx, aliceOrder.ID, adminsdk.OrderStatusRequest{Status: "shipped"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "validation", "Unknown order status should fail validation")

	_, err = session.UpdateOrderStatus(ctx, "01JUNKJUNKJUNKJUNKJUNKJUNK", adminsdk.OrderStatusRequest{Status: "paid"})
	assertNotFound(t, err, "Status update for an unknown order")

	_, err = session.GetOrder(ctx, "01JUNKJUNKJUNKJUNKJUNKJUNK")
	assertNotFound(t, err, "Get for an unknown order")

	t.Logf("Order management flow verified")
}
