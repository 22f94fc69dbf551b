package domain

// PricingConfig holds the shipping and tax policy for a storefront. All money
// values are integer pence; the tax rate is expressed in basis points so tax
// computation stays decimal-exact.
type PricingConfig struct {
	FreeShippingThresholdPence int64
	FlatShippingRatePence      int64
	TaxRateBasisPoints         int64
}

// DefaultPricingConfig returns the UK storefront policy: free shipping from
// £50.00, a £4.99 flat rate below that, and 20% VAT.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		FreeShippingThresholdPence: 5000,
		FlatShippingRatePence:      499,
		TaxRateBasisPoints:         2000,
	}
}

// ShippingCost returns the shipping charge for the given subtotal.
func (c PricingConfig) ShippingCost(subtotalPence int64) int64 {
	if subtotalPence >= c.FreeShippingThresholdPence {
		return 0
	}
	return c.FlatShippingRatePence
}

// Tax returns VAT on the shipping-inclusive amount, rounded half up to the
// nearest penny. Charging VAT on shipping is storefront policy, not an
// accident of the computation.
func (c PricingConfig) Tax(subtotalPence, shippingPence int64) int64 {
	taxable := subtotalPence + shippingPence
	return (taxable*c.TaxRateBasisPoints + 5000) / 10000
}

// Total is the exact integer sum of subtotal, shipping, and tax.
func (c PricingConfig) Total(subtotalPence, shippingPence, taxPence int64) int64 {
	return subtotalPence + shippingPence + taxPence
}

// Subtotal sums the line totals of the resolved items.
func Subtotal(items []ResolvedLineItem) int64 {
	var sum int64
	for _, li := range items {
		sum += li.TotalPricePence
	}
	return sum
}

// Totals is the full pricing breakdown for an order, computed once at
// checkout and never recomputed from mutable state.
type Totals struct {
	SubtotalPence int64 `json:"subtotal_pence"`
	ShippingPence int64 `json:"shipping_pence"`
	TaxPence      int64 `json:"tax_pence"`
	DiscountPence int64 `json:"discount_pence"`
	TotalPence    int64 `json:"total_pence"`
}

// ComputeTotals derives the order totals from the resolved items under the
// given pricing policy.
func ComputeTotals(cfg PricingConfig, items []ResolvedLineItem) Totals {
	subtotal := Subtotal(items)
	shipping := cfg.ShippingCost(subtotal)
	tax := cfg.Tax(subtotal, shipping)
	return Totals{
		SubtotalPence: subtotal,
		ShippingPence: shipping,
		TaxPence:      tax,
		DiscountPence: 0,
		TotalPence:    cfg.Total(subtotal, shipping, tax),
	}
}
