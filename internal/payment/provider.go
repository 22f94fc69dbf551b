package payment

import (
	"context"
	"time"
)

// SessionExpiry is how long a hosted payment session stays redeemable.
const SessionExpiry = 30 * time.Minute

// LineItem is one priced line shown on the gateway's hosted page. Shipping is
// passed as a synthetic line because the hosted page only renders line items.
type LineItem struct {
	Name            string
	Description     string
	ImageURL        string
	UnitAmountPence int64
	Quantity        int
}

// SessionInput holds the parameters for creating a hosted payment session.
// The metadata fields let back-office reconciliation tie the gateway session
// back to the order without a database join.
type SessionInput struct {
	OrderNumber   string
	CustomerID    string
	UserID        string // "guest" for guest checkouts
	CustomerEmail string
	Lines         []LineItem
	SubtotalPence int64
	ShippingPence int64
	TaxPence      int64
	TotalPence    int64
	Notes         string
}

// Session is the created gateway session the shopper is redirected to.
type Session struct {
	ID               string
	RedirectURL      string
	PaymentReference string
	ExpiresAt        time.Time
}

// Provider defines the interface for payment gateway integrations.
type Provider interface {
	// Name returns the provider name (e.g., "mock", "stripe").
	Name() string

	// CreateSession creates a hosted payment session for the given input.
	CreateSession(ctx context.Context, input *SessionInput) (*Session, error)
}
