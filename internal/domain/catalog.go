package domain

// Product is the catalog-side parent of one or more purchasable variants.
// The checkout service only reads products; catalog management lives
// elsewhere.
type Product struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	BasePricePence int64  `json:"base_price_pence"`
	ImageURL       string `json:"image_url,omitempty"`
	Active         bool   `json:"active"`
}

// ProductVariant is a purchasable SKU: a size and colour combination with its
// own stock count and price adjustment relative to the product base price.
type ProductVariant struct {
	ID                   string `json:"id"`
	ProductID            string `json:"product_id"`
	SKU                  string `json:"sku"`
	Size                 string `json:"size,omitempty"`
	Color                string `json:"color,omitempty"`
	PriceAdjustmentPence int64  `json:"price_adjustment_pence"`
	StockQuantity        int    `json:"stock_quantity"`
	Active               bool   `json:"active"`
}

// VariantWithProduct bundles a variant with its parent product as returned by
// the catalog repository's joined lookup.
type VariantWithProduct struct {
	Variant ProductVariant
	Product Product
}

// UnitPricePence is the effective price of one unit of the variant: the
// product base price plus the variant adjustment (which may be zero or
// negative for this catalog).
func (vp *VariantWithProduct) UnitPricePence() int64 {
	return vp.Product.BasePricePence + vp.Variant.PriceAdjustmentPence
}

// CartLine is a client-supplied cart entry. The unit price is never trusted
// from the client; it is re-derived from the catalog during validation.
type CartLine struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// ResolvedLineItem is a cart line enriched from the catalog: snapshot display
// fields, the derived unit price, and the pre-decrement stock level.
// Immutable once built; consumed by pricing, the payment session, and the
// order persister.
type ResolvedLineItem struct {
	VariantID       string `json:"variant_id"`
	ProductID       string `json:"product_id"`
	Name            string `json:"name"`
	SKU             string `json:"sku"`
	Size            string `json:"size,omitempty"`
	Color           string `json:"color,omitempty"`
	Quantity        int    `json:"quantity"`
	UnitPricePence  int64  `json:"unit_price_pence"`
	TotalPricePence int64  `json:"total_price_pence"`
	AvailableStock  int    `json:"available_stock"`
	ImageURL        string `json:"image_url,omitempty"`
}

// Description renders the human-readable variant description shown on payment
// gateway line items, e.g. "Size: M, Colour: Black".
func (li *ResolvedLineItem) Description() string {
	switch {
	case li.Size != "" && li.Color != "":
		return "Size: " + li.Size + ", Colour: " + li.Color
	case li.Size != "":
		return "Size: " + li.Size
	case li.Color != "":
		return "Colour: " + li.Color
	default:
		return ""
	}
}
