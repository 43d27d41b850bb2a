package domain

import "time"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderPaid       OrderStatus = "paid"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// IsValid reports whether s is one of the known order statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderProcessing, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// PaymentStatus tracks payment separately from fulfilment.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// IsValid reports whether s is one of the known payment statuses.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// Order is a purchase placed against the product catalogue. Items carry a
// snapshot of name and unit price so later catalogue edits do not rewrite
// history. Total is always subtotal minus discount plus tax.
type Order struct {
	ID            string
	Number        string // public reference, e.g. "ORD20250817A3F29B1C"
	ClientID      string
	SubtotalCents int64
	DiscountCents int64
	TaxCents      int64
	TotalCents    int64
	Currency      string // ISO 4217, e.g. "USD"
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Items         []OrderItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID             string
	OrderID        string
	ProductID      string
	ProductName    string // snapshot at order time
	ProductSKU     string // snapshot at order time
	Quantity       int
	UnitPriceCents int64
	TotalCents     int64 // quantity * unit price
}

// NewOrderNumber builds a fresh public order reference for an order placed
// at the given time.
func NewOrderNumber(now time.Time) string {
	return newReference("ORD", now)
}
