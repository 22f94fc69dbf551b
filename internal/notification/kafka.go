package notification

import (
	"context"
	"fmt"

	pkgkafka "github.com/albionthreads/checkout-service/pkg/kafka"
)

// TopicNotificationDispatch is consumed by the email pipeline, which renders
// and delivers the actual messages.
var TopicNotificationDispatch = pkgkafka.Topic("notification", "dispatch")

const aggregateTypeNotification = "notification"

// dispatchData is the event payload for a notification.dispatch event. The
// email pipeline looks the order up by number, so the payload carries the
// identifiers and totals rather than the full snapshot.
type dispatchData struct {
	Kind          string `json:"kind"`
	Recipient     string `json:"recipient"`
	OrderNumber   string `json:"order_number"`
	CustomerID    string `json:"customer_id"`
	TotalPence    int64  `json:"total_pence"`
	PaymentStatus string `json:"payment_status"`
}

// KafkaSender publishes notifications as Kafka events.
type KafkaSender struct {
	producer *pkgkafka.Producer
	source   string
}

// NewKafkaSender creates a Kafka-backed notification sender.
func NewKafkaSender(producer *pkgkafka.Producer, source string) *KafkaSender {
	return &KafkaSender{producer: producer, source: source}
}

// Name returns the sender name.
func (s *KafkaSender) Name() string {
	return "kafka"
}

// Send publishes a notification.dispatch event keyed by order number so all
// notifications for one order land on the same partition.
func (s *KafkaSender) Send(ctx context.Context, n *Notification) error {
	data := dispatchData{
		Kind:          string(n.Kind),
		Recipient:     n.Recipient,
		OrderNumber:   n.Order.OrderNumber,
		CustomerID:    n.Order.CustomerID,
		TotalPence:    n.Order.TotalPence,
		PaymentStatus: n.Order.PaymentStatus,
	}

	event, err := pkgkafka.NewEvent(TopicNotificationDispatch, n.Order.OrderNumber, aggregateTypeNotification, s.source, data)
	if err != nil {
		return fmt.Errorf("create notification.dispatch event: %w", err)
	}

	if err := s.producer.Publish(ctx, TopicNotificationDispatch, event); err != nil {
		return fmt.Errorf("publish notification.dispatch event: %w", err)
	}

	return nil
}
