package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Order status constants. Checkout creates orders as pending; subsequent
// transitions are driven by the payment webhook pipeline, which is outside
// this service.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Payment status constants.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Inventory movement types for the append-only stock ledger.
const (
	MovementSale = "sale"
)

// Order is the persisted order header. Address snapshots are embedded value
// copies, and the total invariant total == subtotal + shipping + tax - discount
// holds at creation time and is never recomputed.
type Order struct {
	ID               string      `json:"id"`
	OrderNumber      string      `json:"order_number"`
	CustomerID       string      `json:"customer_id"`
	Status           string      `json:"status"`
	SubtotalPence    int64       `json:"subtotal_pence"`
	ShippingPence    int64       `json:"shipping_pence"`
	TaxPence         int64       `json:"tax_pence"`
	DiscountPence    int64       `json:"discount_pence"`
	TotalPence       int64       `json:"total_pence"`
	ShippingAddress  Address     `json:"shipping_address"`
	BillingAddress   Address     `json:"billing_address"`
	PaymentStatus    string      `json:"payment_status"`
	PaymentMethod    string      `json:"payment_method"`
	PaymentSessionID string      `json:"payment_session_id"`
	CustomerNotes    string      `json:"customer_notes,omitempty"`
	Items            []OrderItem `json:"items"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// OrderItem is one purchased line with the product snapshot frozen at
// purchase time, so later catalog edits never rewrite order history.
type OrderItem struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	ProductVariantID string `json:"product_variant_id"`
	Name             string `json:"name"`
	SKU              string `json:"sku"`
	Size             string `json:"size,omitempty"`
	Color            string `json:"color,omitempty"`
	ImageURL         string `json:"image_url,omitempty"`
	Quantity         int    `json:"quantity"`
	UnitPricePence   int64  `json:"unit_price_pence"`
	TotalPricePence  int64  `json:"total_price_pence"`
}

// InventoryMovement is an append-only stock ledger row. Rows are never
// updated or deleted.
type InventoryMovement struct {
	ID               string    `json:"id"`
	ProductVariantID string    `json:"product_variant_id"`
	MovementType     string    `json:"movement_type"`
	QuantityChange   int       `json:"quantity_change"`
	ReferenceID      string    `json:"reference_id"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// TotalInvariantHolds verifies total == subtotal + shipping + tax - discount.
func (o *Order) TotalInvariantHolds() bool {
	return o.TotalPence == o.SubtotalPence+o.ShippingPence+o.TaxPence-o.DiscountPence
}

const orderNumberAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// NewOrderNumber generates a human-readable order number of the form
// ALB-YYYYMMDD-XXXXXX. The suffix alphabet omits ambiguous characters so the
// number survives being read over the phone.
func NewOrderNumber(now time.Time) string {
	suffix := make([]byte, 6)
	max := big.NewInt(int64(len(orderNumberAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken;
			// fall back to a time-derived index rather than aborting checkout.
			n = big.NewInt(now.UnixNano() >> uint(i) % int64(len(orderNumberAlphabet)))
		}
		suffix[i] = orderNumberAlphabet[n.Int64()]
	}
	return fmt.Sprintf("ALB-%s-%s", now.UTC().Format("20060102"), string(suffix))
}
