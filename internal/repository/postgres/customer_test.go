package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albionthreads/checkout-service/internal/domain"
	"github.com/albionthreads/checkout-service/pkg/database"
	apperrors "github.com/albionthreads/checkout-service/pkg/errors"
)

func newCustomerTestRepo(t *testing.T) (*CustomerRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewCustomerRepository(mock)
	return repo, mock
}

func customerRowColumns() []string {
	return []string{
		"id", "user_id", "email", "first_name", "last_name",
		"marketing_consent", "created_at", "updated_at",
	}
}

func TestCustomerRepository_FindByUserID_Success(t *testing.T) {
	repo, mock := newCustomerTestRepo(t)

	now := time.Now().UTC().Truncate(time.Microsecond)
	userID := "user-001"

	rows := pgxmock.NewRows(customerRowColumns()).AddRow(
		"cust-001", &userID, "amelia@example.com", "Amelia", "Hart",
		true, now, now,
	)

	mock.ExpectQuery("SELECT .+ FROM customers").
		WithArgs("user-001").
		WillReturnRows(rows)

	c, err := repo.FindByUserID(context.Background(), "user-001")
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, "cust-001", c.ID)
	require.NotNil(t, c.UserID)
	assert.Equal(t, "user-001", *c.UserID)
	assert.False(t, c.IsGuest())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_FindByUserID_NotFound(t *testing.T) {
	repo, mock := newCustomerTestRepo(t)

	mock.ExpectQuery("SELECT .+ FROM customers").
		WithArgs("user-missing").
		WillReturnError(pgx.ErrNoRows)

	c, err := repo.FindByUserID(context.Background(), "user-missing")
	assert.Nil(t, c)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_FindGuestByEmail_Success(t *testing.T) {
	repo, mock := newCustomerTestRepo(t)

	now := time.Now().UTC().Truncate(time.Microsecond)

	rows := pgxmock.NewRows(customerRowColumns()).AddRow(
		"cust-002", (*string)(nil), "guest@example.com", "Sam", "Okafor",
		false, now, now,
	)

	mock.ExpectQuery("SELECT .+ FROM customers").
		WithArgs("Guest@Example.com").
		WillReturnRows(rows)

	c, err := repo.FindGuestByEmail(context.Background(), "Guest@Example.com")
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, "cust-002", c.ID)
	assert.Nil(t, c.UserID)
	assert.True(t, c.IsGuest())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_FindGuestByEmail_NotFound(t *testing.T) {
	repo, mock := newCustomerTestRepo(t)

	mock.ExpectQuery("SELECT .+ FROM customers").
		WithArgs("new@example.com").
		WillReturnError(pgx.ErrNoRows)

	c, err := repo.FindGuestByEmail(context.Background(), "new@example.com")
	assert.Nil(t, c)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_Create_Success(t *testing.T) {
	repo, mock := newCustomerTestRepo(t)

	now := time.Now().UTC().Truncate(time.Microsecond)
	customer := &domain.Customer{
		ID:               "cust-003",
		Email:            "new@example.com",
		FirstName:        "Priya",
		LastName:         "Shah",
		MarketingConsent: true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	mock.ExpectExec("INSERT INTO customers").
		WithArgs(
			customer.ID, customer.UserID, customer.Email,
			customer.FirstName, customer.LastName, customer.MarketingConsent,
			customer.CreatedAt, customer.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), customer)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_Create_Error(t *testing.T) {
	repo, mock := newCustomerTestRepo(t)

	customer := &domain.Customer{ID: "cust-004", Email: "dup@example.com"}

	mock.ExpectExec("INSERT INTO customers").
		WithArgs(
			customer.ID, customer.UserID, customer.Email,
			customer.FirstName, customer.LastName, customer.MarketingConsent,
			customer.CreatedAt, customer.UpdatedAt,
		).
		WillReturnError(errors.New("duplicate key value violates unique constraint"))

	err := repo.Create(context.Background(), customer)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert customer")

	assert.NoError(t, mock.ExpectationsWereMet())
}
