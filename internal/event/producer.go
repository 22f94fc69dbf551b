package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/albionthreads/checkout-service/internal/domain"
	pkgkafka "github.com/albionthreads/checkout-service/pkg/kafka"
)

// Kafka topics for checkout domain events.
var (
	TopicOrderPlaced    = pkgkafka.Topic("order", "placed")
	TopicCheckoutFailed = pkgkafka.Topic("checkout", "failed")
)

// Aggregate type constant.
const AggregateTypeOrder = "order"

// Source identifier for events originating from the checkout service.
const SourceCheckoutService = "checkout-service"

// OrderPlacedData is the payload for an order.placed event (full order snapshot).
type OrderPlacedData struct {
	ID               string          `json:"id"`
	OrderNumber      string          `json:"order_number"`
	CustomerID       string          `json:"customer_id"`
	Status           string          `json:"status"`
	Items            []OrderItemData `json:"items"`
	SubtotalPence    int64           `json:"subtotal_pence"`
	ShippingPence    int64           `json:"shipping_pence"`
	TaxPence         int64           `json:"tax_pence"`
	DiscountPence    int64           `json:"discount_pence"`
	TotalPence       int64           `json:"total_pence"`
	ShippingAddress  domain.Address  `json:"shipping_address"`
	PaymentSessionID string          `json:"payment_session_id"`
	CustomerNotes    string          `json:"customer_notes,omitempty"`
}

// OrderItemData is the event payload for an order item.
type OrderItemData struct {
	ID               string `json:"id"`
	ProductVariantID string `json:"product_variant_id"`
	Name             string `json:"name"`
	SKU              string `json:"sku"`
	Size             string `json:"size,omitempty"`
	Color            string `json:"color,omitempty"`
	Quantity         int    `json:"quantity"`
	UnitPricePence   int64  `json:"unit_price_pence"`
	TotalPricePence  int64  `json:"total_price_pence"`
}

// CheckoutFailedData is the payload for a checkout.failed event. Emitted for
// server-side failures only; client errors like validation misses are noise.
type CheckoutFailedData struct {
	CustomerEmail string `json:"customer_email"`
	ErrorCode     string `json:"error_code"`
	Reason        string `json:"reason"`
}

// Producer publishes checkout domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the checkout service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderPlaced publishes an order.placed event with the full order snapshot.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			ID:               item.ID,
			ProductVariantID: item.ProductVariantID,
			Name:             item.Name,
			SKU:              item.SKU,
			Size:             item.Size,
			Color:            item.Color,
			Quantity:         item.Quantity,
			UnitPricePence:   item.UnitPricePence,
			TotalPricePence:  item.TotalPricePence,
		}
	}

	data := OrderPlacedData{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		CustomerID:       order.CustomerID,
		Status:           order.Status,
		Items:            items,
		SubtotalPence:    order.SubtotalPence,
		ShippingPence:    order.ShippingPence,
		TaxPence:         order.TaxPence,
		DiscountPence:    order.DiscountPence,
		TotalPence:       order.TotalPence,
		ShippingAddress:  order.ShippingAddress,
		PaymentSessionID: order.PaymentSessionID,
		CustomerNotes:    order.CustomerNotes,
	}

	event, err := pkgkafka.NewEvent(TopicOrderPlaced, order.ID, AggregateTypeOrder, SourceCheckoutService, data)
	if err != nil {
		return fmt.Errorf("create order.placed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderPlaced, event); err != nil {
		return fmt.Errorf("publish order.placed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.placed event",
		slog.String("order_id", order.ID),
		slog.String("order_number", order.OrderNumber),
	)

	return nil
}

// PublishCheckoutFailed publishes a checkout.failed event.
func (p *Producer) PublishCheckoutFailed(ctx context.Context, customerEmail, errorCode, reason string) error {
	data := CheckoutFailedData{
		CustomerEmail: customerEmail,
		ErrorCode:     errorCode,
		Reason:        reason,
	}

	event, err := pkgkafka.NewEvent(TopicCheckoutFailed, customerEmail, AggregateTypeOrder, SourceCheckoutService, data)
	if err != nil {
		return fmt.Errorf("create checkout.failed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCheckoutFailed, event); err != nil {
		return fmt.Errorf("publish checkout.failed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published checkout.failed event",
		slog.String("error_code", errorCode),
	)

	return nil
}
