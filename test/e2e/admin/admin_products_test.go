package admin_test

import (
	"testing"

	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/stretchr/testify/require"
)

// TestProductLifecycle walks a catalogue item through create, update,
// deactivation and deletion, checking the public storefront along the way:
// 1. SKUs are normalized to upper case and currency defaults to USD
// 2. The public listing shows active products only
// 3. Updates rewrite the mutable fields
// 4. Deleting an unsold product removes it for good
func TestProductLifecycle(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	esim, err := session.CreateProduct(ctx, adminsdk.ProductPayload{
		Name:       "Vietnam eSIM 5GB",
		SKU:        "sim-vn-5gb",
		Type:       "esim",
		PriceCents: 1500,
	})
	require.NoError(t, err)
	require.Equal(t, "SIM-VN-5GB", esim.SKU, "SKUs should be stored upper case")
	require.Equal(t, "USD", esim.Currency, "Currency should default to USD")
	require.True(t, esim.Active)
	t.Logf("Created eSIM product %s", esim.ID)

	guidebook, err := session.CreateProduct(ctx, adminsdk.ProductPayload{
		Name:          "Printed Mekong Guidebook",
		SKU:           "BOOK-MEKONG",
		Type:          "physical",
		PriceCents:    2900,
		Currency:      "aud",
		StockQuantity: 25,
	})
	require.NoError(t, err)
	require.Equal(t, "AUD", guidebook.Currency, "Currency should be upper cased")
	require.Equal(t, 25, guidebook.StockQuantity)

	inactive := false
	retired, err := session.CreateProduct(ctx, adminsdk.ProductPayload{
		Name:       "Legacy Airport Pickup",
		SKU:        "PICKUP-LEGACY",
		Type:       "service",
		PriceCents: 3000,
		Active:     &inactive,
	})
	require.NoError(t, err)
	require.False(t, retired.Active)

	t.Logf("Catalogue seeded, checking the public storefront")

	public, err := client.ListPublicProducts(ctx, adminsdk.PublicListOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 2, public.Total, "Storefront should show active products only")
	for _, p := range public.Products {
		require.NotEqual(t, retired.SKU, p.SKU, "Inactive products should not be listed publicly")
	}

	all, err := session.ListProducts(ctx, adminsdk.ListProductsOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 3, all.Total, "Admin listing should include inactive products")

	physical, err := session.ListProducts(ctx, adminsdk.ListProductsOptions{Type: "physical"})
	require.NoError(t, err)
	require.EqualValues(t, 1, physical.Total)
	require.Equal(t, guidebook.ID, physical.Products[0].ID)

	t.Logf("Updating the eSIM price and description")

	updated, err := session.UpdateProduct(ctx, esim.ID, adminsdk.ProductPayload{
		Name:        "Vietnam eSIM 5GB",
		SKU:         "SIM-VN-5GB",
		Type:        "esim",
		Description: "30-day data plan, activates on arrival",
		PriceCents:  1800,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1800, updated.PriceCents)
	require.Equal(t, "30-day data plan, activates on arrival", updated.Description)
	require.Equal(t, "USD", updated.Currency, "Empty currency should keep the current one")

	fetched, err := session.GetProduct(ctx, retired.ID)
	require.NoError(t, err)
	require.False(t, fetched.Active, "Admin reads should include inactive products")

	t.Logf("Deleting the unsold legacy product")

	require.NoError(t, session.DeleteProduct(ctx, retired.ID))
	_, err = session.GetProduct(ctx, retired.ID)
	assertNotFound(t, err, "Get after delete")

	err = session.DeleteProduct(ctx, "01JUNKJUNKJUNKJUNKJUNKJUNK")
	assertNotFound(t, err, "Delete unknown product")

	t.Logf("Product lifecycle verified")
}

// TestProductSKUConflicts verifies SKU uniqueness on both create and update.
func TestProductSKUConflicts(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	createTestProduct(t, session, "Saigon City Tour", "TOUR-HCM-CITY", 5500, "")
	hanoi := createTestProduct(t, session, "Hanoi City Tour", "TOUR-HANOI-CITY", 5200, "")

	_, err := session.CreateProduct(ctx, adminsdk.ProductPayload{
		Name:       "Duplicate City Tour",
		SKU:        "tour-hcm-city",
		Type:       "service",
		PriceCents: 6000,
	})
	assertConflict(t, err, "sku_taken", "Create with a taken SKU")
	t.Logf("Duplicate SKU rejected on create despite case difference")

	_, err = session.UpdateProduct(ctx, hanoi.ID, adminsdk.ProductPayload{
		Name:       "Hanoi City Tour",
		SKU:        "TOUR-HCM-CITY",
		Type:       "service",
		PriceCents: 5200,
	})
	assertConflict(t, err, "sku_taken", "Update onto a taken SKU")

	_, err = session.UpdateProduct(ctx, hanoi.ID, adminsdk.ProductPayload{
		Name:       "Hanoi Old Quarter Tour",
		SKU:        "TOUR-HANOI-CITY",
		Type:       "service",
		PriceCents: 5400,
	})
	require.NoError(t, err, "Keeping the product's own SKU should not conflict")

	t.Logf("SKU uniqueness verified")
}

// TestProductValidation verifies field validation on product create.
func TestProductValidation(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	cases := []struct {
		name    string
		payload adminsdk.ProductPayload
	}{
		{
			name:    "missing name",
			payload: adminsdk.ProductPayload{SKU: "NO-NAME", Type: "service", PriceCents: 100},
		},
		{
			name:    "missing sku",
			payload: adminsdk.ProductPayload{Name: "No SKU", Type: "service", PriceCents: 100},
		},
		{
			name:    "unknown type",
			payload: adminsdk.ProductPayload{Name: "Voucher", SKU: "VOUCHER-1", Type: "voucher", PriceCents: 100},
		},
		{
			name:    "negative price",
			payload: adminsdk.ProductPayload{Name: "Refund", SKU: "REFUND-1", Type: "service", PriceCents: -100},
		},
		{
			name:    "bad currency",
			payload: adminsdk.ProductPayload{Name: "Dong Priced", SKU: "DONG-1", Type: "service", PriceCents: 100, Currency: "DONG"},
		},
		{
			name:    "negative stock",
			payload: adminsdk.ProductPayload{Name: "Backorder", SKU: "BACK-1", Type: "physical", PriceCents: 100, StockQuantity: -5},
		},
	}

	for _, tc := range cases {
		_, err := session.CreateProduct(ctx, tc.payload)
		require.Error(t, err, "Create with %s should fail", tc.name)
		require.Contains(t, err.Error(), "validation", "Create with %s should fail validation, got: %s", tc.name, err.Error())
	}

	t.Logf("All %d invalid payloads rejected", len(cases))
}

// TestProductDeleteInUse verifies that a product referenced by an order line
// cannot be deleted, only deactivated.
func TestProductDeleteInUse(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	buyer := createTestClient(t, session, "Order Buyer", "buyer@example.com")
	product := createTestProduct(t, session, "Halong Bay Day Cruise", "CRUISE-HALONG", 8900, "")

	order, err := client.PlaceOrder(ctx, adminsdk.CreateOrderRequest{
		ClientEmail: buyer.Email,
		Items:       []adminsdk.OrderItemPayload{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	t.Logf("Placed order %s against the cruise product", order.Number)

	err = session.DeleteProduct(ctx, product.ID)
	assertConflict(t, err, "product_in_use", "Delete a sold product")

	inactive := false
	updated, err := session.UpdateProduct(ctx, product.ID, adminsdk.ProductPayload{
		Name:       "Halong Bay Day Cruise",
		SKU:        "CRUISE-HALONG",
		Type:       "service",
		PriceCents: 8900,
		Active:     &inactive,
	})
	require.NoError(t, err, "Deactivating a sold product should work")
	require.False(t, updated.Active)

	public, err := client.ListPublicProducts(ctx, adminsdk.PublicListOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 0, public.Total, "Deactivated product should leave the storefront")

	fetched, err := session.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Items, 1, "Order history should keep the product snapshot")
	require.Equal(t, "CRUISE-HALONG", fetched.Items[0].ProductSKU)

	t.Logf("Sold product deactivated without rewriting order history")
}
