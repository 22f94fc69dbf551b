package repository

import (
	"context"

	"github.com/albionthreads/checkout-service/internal/domain"
)

// CatalogRepository defines the read-only catalog lookups checkout needs.
type CatalogRepository interface {
	// GetVariantWithProduct returns an active variant joined to its active
	// parent product. A missing, inactive, or orphaned variant yields
	// apperrors.ErrNotFound.
	GetVariantWithProduct(ctx context.Context, variantID string) (*domain.VariantWithProduct, error)
}

// CustomerRepository defines the interface for customer persistence operations.
type CustomerRepository interface {
	// FindByUserID retrieves the customer linked to an authenticated user.
	FindByUserID(ctx context.Context, userID string) (*domain.Customer, error)

	// FindGuestByEmail retrieves a guest customer (no linked user) by email,
	// matched case-insensitively.
	FindGuestByEmail(ctx context.Context, email string) (*domain.Customer, error)

	// Create inserts a new customer.
	Create(ctx context.Context, customer *domain.Customer) error
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// PlaceOrder atomically inserts the order with its items, decrements
	// variant stock, and appends the corresponding inventory movements. Any
	// stock shortfall rolls back the whole transaction and surfaces
	// apperrors.ErrOutOfStock.
	PlaceOrder(ctx context.Context, order *domain.Order) error

	// GetByOrderNumber retrieves an order and its items by order number.
	GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
}
