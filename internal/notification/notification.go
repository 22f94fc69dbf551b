package notification

import (
	"context"

	"github.com/albionthreads/checkout-service/internal/domain"
)

// Kind distinguishes the two checkout notifications.
type Kind string

const (
	// KindCustomerConfirmation is the order confirmation sent to the shopper.
	KindCustomerConfirmation Kind = "customer_confirmation"

	// KindAdminAlert is the new-order alert sent to the store team.
	KindAdminAlert Kind = "admin_alert"
)

// Notification is one outbound message about a placed order.
type Notification struct {
	Kind      Kind
	Recipient string
	Order     *domain.Order
}

// Sender delivers notifications. Implementations must be safe for concurrent
// use; the dispatcher fans out to them from short-lived goroutines.
type Sender interface {
	// Name returns the sender name (e.g., "kafka", "log").
	Name() string

	// Send delivers a single notification.
	Send(ctx context.Context, n *Notification) error
}
