package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/albionthreads/checkout-service/internal/domain"
	"github.com/albionthreads/checkout-service/pkg/database"
	apperrors "github.com/albionthreads/checkout-service/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// PlaceOrder inserts the order and its items, decrements variant stock, and
// appends inventory movements in a single transaction. The decrement is
// conditional on sufficient stock; a shortfall on any line rolls back
// everything, so an order row never exists without its stock having been
// taken, and stock is never taken twice for the same unit.
func (r *OrderRepository) PlaceOrder(ctx context.Context, o *domain.Order) error {
	ctx, end := database.TraceQuery(ctx, "PlaceOrder", "INSERT INTO orders ...")
	err := r.placeOrder(ctx, o)
	end(err)
	return err
}

func (r *OrderRepository) placeOrder(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	shippingJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}

	billingJSON, err := json.Marshal(o.BillingAddress)
	if err != nil {
		return fmt.Errorf("marshal billing address: %w", err)
	}

	orderQuery := `
		INSERT INTO orders (
			id, order_number, customer_id, status,
			subtotal_pence, shipping_pence, tax_pence, discount_pence, total_pence,
			shipping_address, billing_address,
			payment_status, payment_method, payment_session_id, customer_notes,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11,
			$12, $13, $14, $15,
			$16, $17
		)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.OrderNumber,
		o.CustomerID,
		o.Status,
		o.SubtotalPence,
		o.ShippingPence,
		o.TaxPence,
		o.DiscountPence,
		o.TotalPence,
		shippingJSON,
		billingJSON,
		o.PaymentStatus,
		o.PaymentMethod,
		o.PaymentSessionID,
		o.CustomerNotes,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_variant_id, name, sku, size, color, image_url, quantity, unit_price_pence, total_price_pence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	decrementQuery := `
		UPDATE product_variants
		SET stock_quantity = stock_quantity - $1, updated_at = $2
		WHERE id = $3 AND stock_quantity >= $1`

	movementQuery := `
		INSERT INTO inventory_movements (id, product_variant_id, movement_type, quantity_change, reference_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductVariantID,
			item.Name,
			item.SKU,
			item.Size,
			item.Color,
			item.ImageURL,
			item.Quantity,
			item.UnitPricePence,
			item.TotalPricePence,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		ct, err := tx.Exec(ctx, decrementQuery, item.Quantity, o.UpdatedAt, item.ProductVariantID)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if ct.RowsAffected() == 0 {
			// Another checkout took the stock between validation and here.
			// The deferred rollback unwinds the order and any prior
			// decrements; report what is left so the shopper can adjust.
			available := r.currentStock(ctx, tx, item.ProductVariantID)
			return apperrors.OutOfStock(item.SKU, item.Name, available, item.Quantity)
		}

		_, err = tx.Exec(ctx, movementQuery,
			uuid.NewString(),
			item.ProductVariantID,
			domain.MovementSale,
			-item.Quantity,
			o.ID,
			"order "+o.OrderNumber,
			o.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert inventory movement: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// currentStock reads the remaining stock for the out-of-stock error payload.
// Best effort: the transaction is about to roll back, so a read failure just
// degrades the payload to zero.
func (r *OrderRepository) currentStock(ctx context.Context, tx pgx.Tx, variantID string) int {
	var available int
	query := `SELECT stock_quantity FROM product_variants WHERE id = $1`
	if err := tx.QueryRow(ctx, query, variantID).Scan(&available); err != nil {
		return 0
	}
	return available
}

// GetByOrderNumber retrieves an order and its items by order number.
func (r *OrderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	// Order and items in one round trip via JSONB_AGG.
	query := `
		SELECT
			o.id, o.order_number, o.customer_id, o.status,
			o.subtotal_pence, o.shipping_pence, o.tax_pence, o.discount_pence, o.total_pence,
			o.shipping_address, o.billing_address,
			o.payment_status, o.payment_method, o.payment_session_id, o.customer_notes,
			o.created_at, o.updated_at,
			COALESCE(
				JSONB_AGG(
					JSONB_BUILD_OBJECT(
						'id', oi.id,
						'order_id', oi.order_id,
						'product_variant_id', oi.product_variant_id,
						'name', oi.name,
						'sku', oi.sku,
						'size', oi.size,
						'color', oi.color,
						'image_url', oi.image_url,
						'quantity', oi.quantity,
						'unit_price_pence', oi.unit_price_pence,
						'total_price_pence', oi.total_price_pence
					) ORDER BY oi.id
				) FILTER (WHERE oi.id IS NOT NULL),
				'[]'::jsonb
			) AS items
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		WHERE o.order_number = $1
		GROUP BY o.id`

	ctx, end := database.TraceQuery(ctx, "GetOrderByNumber", query)

	var (
		o            domain.Order
		shippingJSON []byte
		billingJSON  []byte
		itemsJSON    []byte
	)

	err := r.pool.QueryRow(ctx, query, orderNumber).Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerID,
		&o.Status,
		&o.SubtotalPence,
		&o.ShippingPence,
		&o.TaxPence,
		&o.DiscountPence,
		&o.TotalPence,
		&shippingJSON,
		&billingJSON,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&o.PaymentSessionID,
		&o.CustomerNotes,
		&o.CreatedAt,
		&o.UpdatedAt,
		&itemsJSON,
	)
	end(err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", orderNumber)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := json.Unmarshal(shippingJSON, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}
	if err := json.Unmarshal(billingJSON, &o.BillingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal billing address: %w", err)
	}

	o.Items = []domain.OrderItem{}
	if len(itemsJSON) > 0 && string(itemsJSON) != "null" {
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
	}

	return &o, nil
}
