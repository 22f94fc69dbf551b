package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/albionthreads/checkout-service/internal/domain"
	"github.com/albionthreads/checkout-service/pkg/database"
	apperrors "github.com/albionthreads/checkout-service/pkg/errors"
)

// CustomerRepository implements repository.CustomerRepository using PostgreSQL.
type CustomerRepository struct {
	pool database.DBTX
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool database.DBTX) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

const customerColumns = `id, user_id, email, first_name, last_name, marketing_consent, created_at, updated_at`

// FindByUserID retrieves the customer linked to an authenticated user.
func (r *CustomerRepository) FindByUserID(ctx context.Context, userID string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE user_id = $1`

	ctx, end := database.TraceQuery(ctx, "FindCustomerByUserID", query)
	c, err := r.scanCustomer(r.pool.QueryRow(ctx, query, userID))
	end(err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find customer by user id: %w", err)
	}

	return c, nil
}

// FindGuestByEmail retrieves a guest customer by email. The lookup is
// case-insensitive and matches the partial unique index on lower(email)
// WHERE user_id IS NULL.
func (r *CustomerRepository) FindGuestByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE lower(email) = lower($1) AND user_id IS NULL`

	ctx, end := database.TraceQuery(ctx, "FindGuestCustomerByEmail", query)
	c, err := r.scanCustomer(r.pool.QueryRow(ctx, query, email))
	end(err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find guest customer by email: %w", err)
	}

	return c, nil
}

// Create inserts a new customer.
func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, user_id, email, first_name, last_name, marketing_consent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	ctx, end := database.TraceQuery(ctx, "CreateCustomer", query)
	_, err := r.pool.Exec(ctx, query,
		customer.ID,
		customer.UserID,
		customer.Email,
		customer.FirstName,
		customer.LastName,
		customer.MarketingConsent,
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	end(err)

	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}

	return nil
}

func (r *CustomerRepository) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Email,
		&c.FirstName,
		&c.LastName,
		&c.MarketingConsent,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
