package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/albionthreads/checkout-service/internal/domain"
	"github.com/albionthreads/checkout-service/internal/repository"
	apperrors "github.com/albionthreads/checkout-service/pkg/errors"
)

// CustomerResolver finds or creates the customer record for a checkout.
// Resolution is idempotent: the same identity always lands on the same row.
type CustomerResolver struct {
	customers repository.CustomerRepository
	logger    *slog.Logger
}

// NewCustomerResolver creates a customer resolver.
func NewCustomerResolver(customers repository.CustomerRepository, logger *slog.Logger) *CustomerResolver {
	return &CustomerResolver{customers: customers, logger: logger}
}

// Resolve returns the customer for the given identity. Authenticated shoppers
// resolve by user id; guests resolve by email among rows with no linked user.
// A miss on either path inserts a new customer.
func (r *CustomerResolver) Resolve(ctx context.Context, userID *string, email, firstName, lastName string, marketingConsent bool) (*domain.Customer, error) {
	if userID != nil {
		customer, err := r.customers.FindByUserID(ctx, *userID)
		if err == nil {
			return customer, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.PersistenceFailure(err)
		}
	} else {
		customer, err := r.customers.FindGuestByEmail(ctx, email)
		if err == nil {
			return customer, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.PersistenceFailure(err)
		}
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:               uuid.New().String(),
		UserID:           userID,
		Email:            email,
		FirstName:        firstName,
		LastName:         lastName,
		MarketingConsent: marketingConsent,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := r.customers.Create(ctx, customer); err != nil {
		// A concurrent checkout may have created the guest row first; the
		// partial unique index on lower(email) rejects the second insert.
		// Re-reading recovers the winner's row.
		if userID == nil {
			if existing, findErr := r.customers.FindGuestByEmail(ctx, email); findErr == nil {
				return existing, nil
			}
		}
		return nil, apperrors.PersistenceFailure(err)
	}

	r.logger.InfoContext(ctx, "customer created",
		slog.String("customer_id", customer.ID),
		slog.Bool("guest", customer.IsGuest()),
	)

	return customer, nil
}
