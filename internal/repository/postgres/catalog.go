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

// CatalogRepository implements repository.CatalogRepository using PostgreSQL.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

const variantWithProductQuery = `
	SELECT
		v.id, v.product_id, v.sku, v.size, v.color,
		v.price_adjustment_pence, v.stock_quantity, v.active,
		p.id, p.name, p.base_price_pence, p.image_url, p.active
	FROM product_variants v
	JOIN products p ON p.id = v.product_id
	WHERE v.id = $1 AND v.active AND p.active`

// GetVariantWithProduct returns an active variant joined to its active parent
// product. An inactive variant or product is treated the same as a missing
// one: the row simply does not match.
func (r *CatalogRepository) GetVariantWithProduct(ctx context.Context, variantID string) (*domain.VariantWithProduct, error) {
	ctx, end := database.TraceQuery(ctx, "GetVariantWithProduct", variantWithProductQuery)

	var vp domain.VariantWithProduct
	err := r.pool.QueryRow(ctx, variantWithProductQuery, variantID).Scan(
		&vp.Variant.ID,
		&vp.Variant.ProductID,
		&vp.Variant.SKU,
		&vp.Variant.Size,
		&vp.Variant.Color,
		&vp.Variant.PriceAdjustmentPence,
		&vp.Variant.StockQuantity,
		&vp.Variant.Active,
		&vp.Product.ID,
		&vp.Product.Name,
		&vp.Product.BasePricePence,
		&vp.Product.ImageURL,
		&vp.Product.Active,
	)
	end(err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get variant with product: %w", err)
	}

	return &vp, nil
}
