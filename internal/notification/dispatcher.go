package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/albionthreads/checkout-service/internal/domain"
)

// DefaultSendTimeout bounds each notification send once it is detached from
// the request context.
const DefaultSendTimeout = 10 * time.Second

// Dispatcher fans out post-checkout notifications. Dispatch is fire-and-forget:
// the checkout response never waits on delivery, and delivery failures are
// logged, never surfaced to the shopper.
type Dispatcher struct {
	sender      Sender
	adminEmail  string
	sendTimeout time.Duration
	logger      *slog.Logger

	// wg lets tests and graceful shutdown wait for in-flight sends.
	wg sync.WaitGroup
}

// NewDispatcher creates a dispatcher. An empty adminEmail disables the admin
// alert.
func NewDispatcher(sender Sender, adminEmail string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:      sender,
		adminEmail:  adminEmail,
		sendTimeout: DefaultSendTimeout,
		logger:      logger,
	}
}

// DispatchOrderPlaced sends the customer confirmation and the admin alert
// concurrently and returns immediately. Sends run on a context detached from
// the request, so a client disconnect after persistence cannot cancel them.
func (d *Dispatcher) DispatchOrderPlaced(ctx context.Context, order *domain.Order, customerEmail string) {
	notifications := []*Notification{
		{Kind: KindCustomerConfirmation, Recipient: customerEmail, Order: order},
	}
	if d.adminEmail != "" {
		notifications = append(notifications, &Notification{
			Kind: KindAdminAlert, Recipient: d.adminEmail, Order: order,
		})
	}

	detached := context.WithoutCancel(ctx)

	for _, n := range notifications {
		d.wg.Add(1)
		go func(n *Notification) {
			defer d.wg.Done()

			sendCtx, cancel := context.WithTimeout(detached, d.sendTimeout)
			defer cancel()

			if err := d.sender.Send(sendCtx, n); err != nil {
				d.logger.ErrorContext(sendCtx, "notification send failed",
					slog.String("kind", string(n.Kind)),
					slog.String("sender", d.sender.Name()),
					slog.String("order_number", n.Order.OrderNumber),
					slog.String("error", err.Error()),
				)
				return
			}

			d.logger.DebugContext(sendCtx, "notification sent",
				slog.String("kind", string(n.Kind)),
				slog.String("order_number", n.Order.OrderNumber),
			)
		}(n)
	}
}

// Wait blocks until all in-flight sends complete. Called during graceful
// shutdown so queued confirmations are not dropped.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
