package domain

import "time"

// ProductType identifies how a product is delivered.
type ProductType string

const (
	ProductESIM     ProductType = "esim"
	ProductService  ProductType = "service"
	ProductPhysical ProductType = "physical"
)

// IsValid reports whether t is one of the known product types.
func (t ProductType) IsValid() bool {
	switch t {
	case ProductESIM, ProductService, ProductPhysical:
		return true
	}
	return false
}

// Product is a sellable catalogue item. SKU is unique across the catalogue;
// only active products can be ordered. StockQuantity is tracked for physical
// goods only.
type Product struct {
	ID            string
	Name          string
	SKU           string
	Type          ProductType
	Description   string
	PriceCents    int64  // minor units of Currency
	Currency      string // ISO 4217, e.g. "USD"
	StockQuantity int    // physical type only
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
