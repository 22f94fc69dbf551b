package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/albionthreads/checkout-service/internal/domain"
	"github.com/albionthreads/checkout-service/internal/repository"
	apperrors "github.com/albionthreads/checkout-service/pkg/errors"
)

// InventoryValidator resolves cart lines against the catalog. The stock check
// here is advisory, for an early, friendly rejection; the authoritative check
// is the conditional decrement inside the order transaction.
type InventoryValidator struct {
	catalog repository.CatalogRepository
	logger  *slog.Logger
}

// NewInventoryValidator creates an inventory validator.
func NewInventoryValidator(catalog repository.CatalogRepository, logger *slog.Logger) *InventoryValidator {
	return &InventoryValidator{catalog: catalog, logger: logger}
}

// Validate resolves each cart line in input order and fails fast on the first
// problem. The returned items carry product snapshots and derived prices;
// client-supplied prices are never consulted.
func (v *InventoryValidator) Validate(ctx context.Context, lines []domain.CartLine) ([]domain.ResolvedLineItem, error) {
	if len(lines) == 0 {
		return nil, apperrors.InvalidRequest("cart must contain at least one item")
	}

	resolved := make([]domain.ResolvedLineItem, 0, len(lines))

	for _, line := range lines {
		if line.VariantID == "" {
			return nil, apperrors.InvalidRequest("cart item is missing a variant id")
		}
		if line.Quantity <= 0 {
			return nil, apperrors.InvalidRequest(fmt.Sprintf("quantity for variant %s must be positive", line.VariantID))
		}

		vp, err := v.catalog.GetVariantWithProduct(ctx, line.VariantID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.VariantNotFound(line.VariantID)
			}
			return nil, apperrors.PersistenceFailure(err)
		}

		if vp.Variant.StockQuantity < line.Quantity {
			v.logger.InfoContext(ctx, "cart line exceeds available stock",
				slog.String("sku", vp.Variant.SKU),
				slog.Int("available", vp.Variant.StockQuantity),
				slog.Int("requested", line.Quantity),
			)
			return nil, apperrors.OutOfStock(vp.Variant.SKU, vp.Product.Name, vp.Variant.StockQuantity, line.Quantity)
		}

		unitPrice := vp.UnitPricePence()
		resolved = append(resolved, domain.ResolvedLineItem{
			VariantID:       vp.Variant.ID,
			ProductID:       vp.Product.ID,
			Name:            vp.Product.Name,
			SKU:             vp.Variant.SKU,
			Size:            vp.Variant.Size,
			Color:           vp.Variant.Color,
			Quantity:        line.Quantity,
			UnitPricePence:  unitPrice,
			TotalPricePence: unitPrice * int64(line.Quantity),
			AvailableStock:  vp.Variant.StockQuantity,
			ImageURL:        vp.Product.ImageURL,
		})
	}

	return resolved, nil
}
