package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/albionthreads/checkout-service/internal/auth"
	"github.com/albionthreads/checkout-service/internal/domain"
	"github.com/albionthreads/checkout-service/internal/idempotency"
	"github.com/albionthreads/checkout-service/internal/payment"
	"github.com/albionthreads/checkout-service/internal/repository"
	apperrors "github.com/albionthreads/checkout-service/pkg/errors"
)

// EventPublisher publishes checkout lifecycle events. Implemented by
// event.Producer; mocked in tests.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *domain.Order) error
	PublishCheckoutFailed(ctx context.Context, customerEmail, errorCode, reason string) error
}

// Notifier dispatches post-checkout notifications. Implemented by
// notification.Dispatcher.
type Notifier interface {
	DispatchOrderPlaced(ctx context.Context, order *domain.Order, customerEmail string)
}

// SubmitGuard rejects concurrent duplicate submissions. Implemented by
// idempotency.Guard.
type SubmitGuard interface {
	Claim(ctx context.Context, fingerprint string) bool
	Release(ctx context.Context, fingerprint string)
}

// CheckoutInput holds the parameters for placing an order.
type CheckoutInput struct {
	Items            []domain.CartLine
	ShippingAddress  domain.Address
	BillingAddress   *domain.Address // nil means same as shipping
	CustomerNotes    string
	ShippingMethod   string
	PaymentMethod    string
	MarketingConsent bool
}

// CheckoutResult is the successful checkout response: where to send the
// shopper, and the order number for the confirmation page.
type CheckoutResult struct {
	SessionID   string `json:"sessionId"`
	RedirectURL string `json:"url"`
	OrderNumber string `json:"orderNumber"`
}

// CheckoutService orchestrates order placement end to end: validation,
// pricing, customer resolution, payment session creation, persistence, and
// notifications.
type CheckoutService struct {
	inventory *InventoryValidator
	customers *CustomerResolver
	orders    repository.OrderRepository
	provider  payment.Provider
	guard     SubmitGuard
	notifier  Notifier
	producer  EventPublisher
	pricing   domain.PricingConfig
	logger    *slog.Logger
}

// NewCheckoutService creates the checkout orchestrator.
func NewCheckoutService(
	inventory *InventoryValidator,
	customers *CustomerResolver,
	orders repository.OrderRepository,
	provider payment.Provider,
	guard SubmitGuard,
	notifier Notifier,
	producer EventPublisher,
	pricing domain.PricingConfig,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		inventory: inventory,
		customers: customers,
		orders:    orders,
		provider:  provider,
		guard:     guard,
		notifier:  notifier,
		producer:  producer,
		pricing:   pricing,
		logger:    logger,
	}
}

// PlaceOrder runs the checkout workflow. identity is nil for guest shoppers.
// On success the order exists with status pending and the shopper is handed
// the gateway redirect; on any failure before the transaction commits,
// nothing persists.
func (s *CheckoutService) PlaceOrder(ctx context.Context, identity *auth.Identity, input *CheckoutInput) (*CheckoutResult, error) {
	email := s.checkoutEmail(identity, input)
	if email == "" {
		return nil, apperrors.InvalidRequest("email is required")
	}

	fingerprint := idempotency.Fingerprint(email, input.Items)
	if !s.guard.Claim(ctx, fingerprint) {
		return nil, apperrors.Conflict("a checkout for this cart is already in progress")
	}

	placed := false
	defer func() {
		// Failed checkouts release the claim immediately so the shopper can
		// fix the problem and resubmit; successful ones hold it until TTL.
		if !placed {
			s.guard.Release(ctx, fingerprint)
		}
	}()

	items, err := s.inventory.Validate(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	totals := domain.ComputeTotals(s.pricing, items)

	// Billing defaults to a value copy of shipping, never a reference to it.
	billing := input.ShippingAddress
	if input.BillingAddress != nil {
		billing = *input.BillingAddress
	}

	var userID *string
	if identity != nil {
		userID = &identity.UserID
	}

	customer, err := s.customers.Resolve(ctx, userID, email, input.ShippingAddress.FirstName, input.ShippingAddress.LastName, input.MarketingConsent)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := s.buildOrder(customer, input, items, totals, billing, now)

	session, err := s.provider.CreateSession(ctx, s.sessionInput(order, customer, identity, items, email))
	if err != nil {
		s.reportFailure(ctx, email, "PAYMENT_GATEWAY_ERROR", err)
		return nil, apperrors.PaymentGateway(err)
	}
	order.PaymentSessionID = session.ID

	if err := s.orders.PlaceOrder(ctx, order); err != nil {
		if errors.Is(err, apperrors.ErrOutOfStock) {
			return nil, err
		}
		s.reportFailure(ctx, email, "ORDER_CREATION_FAILED", err)
		return nil, apperrors.OrderCreationFailed(err)
	}
	placed = true

	if err := s.producer.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.notifier.DispatchOrderPlaced(ctx, order, email)

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("order_number", order.OrderNumber),
		slog.String("customer_id", customer.ID),
		slog.Bool("guest", customer.IsGuest()),
		slog.Int64("total_pence", order.TotalPence),
	)

	return &CheckoutResult{
		SessionID:   session.ID,
		RedirectURL: session.RedirectURL,
		OrderNumber: order.OrderNumber,
	}, nil
}

// GetOrder retrieves an order by its order number.
func (s *CheckoutService) GetOrder(ctx context.Context, orderNumber string) (*domain.Order, error) {
	order, err := s.orders.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("get order by number: %w", err)
	}
	return order, nil
}

// checkoutEmail prefers the verified identity email over the one typed into
// the shipping form.
func (s *CheckoutService) checkoutEmail(identity *auth.Identity, input *CheckoutInput) string {
	if identity != nil && identity.Email != "" {
		return identity.Email
	}
	return input.ShippingAddress.Email
}

func (s *CheckoutService) buildOrder(
	customer *domain.Customer,
	input *CheckoutInput,
	items []domain.ResolvedLineItem,
	totals domain.Totals,
	billing domain.Address,
	now time.Time,
) *domain.Order {
	orderID := uuid.New().String()

	orderItems := make([]domain.OrderItem, len(items))
	for i, item := range items {
		orderItems[i] = domain.OrderItem{
			ID:               uuid.New().String(),
			OrderID:          orderID,
			ProductVariantID: item.VariantID,
			Name:             item.Name,
			SKU:              item.SKU,
			Size:             item.Size,
			Color:            item.Color,
			ImageURL:         item.ImageURL,
			Quantity:         item.Quantity,
			UnitPricePence:   item.UnitPricePence,
			TotalPricePence:  item.TotalPricePence,
		}
	}

	return &domain.Order{
		ID:              orderID,
		OrderNumber:     domain.NewOrderNumber(now),
		CustomerID:      customer.ID,
		Status:          domain.OrderStatusPending,
		SubtotalPence:   totals.SubtotalPence,
		ShippingPence:   totals.ShippingPence,
		TaxPence:        totals.TaxPence,
		DiscountPence:   totals.DiscountPence,
		TotalPence:      totals.TotalPence,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  billing,
		PaymentStatus:   domain.PaymentStatusPending,
		PaymentMethod:   input.PaymentMethod,
		CustomerNotes:   input.CustomerNotes,
		Items:           orderItems,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (s *CheckoutService) sessionInput(
	order *domain.Order,
	customer *domain.Customer,
	identity *auth.Identity,
	items []domain.ResolvedLineItem,
	email string,
) *payment.SessionInput {
	lines := make([]payment.LineItem, len(items))
	for i, item := range items {
		lines[i] = payment.LineItem{
			Name:            item.Name,
			Description:     item.Description(),
			ImageURL:        item.ImageURL,
			UnitAmountPence: item.UnitPricePence,
			Quantity:        item.Quantity,
		}
	}

	sessionUserID := "guest"
	if identity != nil {
		sessionUserID = identity.UserID
	}

	return &payment.SessionInput{
		OrderNumber:   order.OrderNumber,
		CustomerID:    customer.ID,
		UserID:        sessionUserID,
		CustomerEmail: email,
		Lines:         lines,
		SubtotalPence: order.SubtotalPence,
		ShippingPence: order.ShippingPence,
		TaxPence:      order.TaxPence,
		TotalPence:    order.TotalPence,
		Notes:         order.CustomerNotes,
	}
}

// reportFailure emits a checkout.failed event for server-side failures.
// Client errors (validation, stock) are routine and not reported.
func (s *CheckoutService) reportFailure(ctx context.Context, email, code string, cause error) {
	if err := s.producer.PublishCheckoutFailed(ctx, email, code, cause.Error()); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish checkout.failed event",
			slog.String("error_code", code),
			slog.String("error", err.Error()),
		)
	}
}
