package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShippingCost_Threshold(t *testing.T) {
	cfg := DefaultPricingConfig()

	tests := []struct {
		name     string
		subtotal int64
		want     int64
	}{
		{"zero subtotal pays flat rate", 0, 499},
		{"one penny below threshold", 4999, 499},
		{"exactly at threshold is free", 5000, 0},
		{"above threshold is free", 125000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.ShippingCost(tt.subtotal))
		})
	}
}

func TestTax_TwentyPercentOnShippingInclusiveAmount(t *testing.T) {
	cfg := DefaultPricingConfig()

	// 41.98 subtotal + 4.99 shipping = 46.97 taxable, 20% = 9.394 -> 939p.
	assert.Equal(t, int64(939), cfg.Tax(4198, 499))

	// Free-shipping order: tax on subtotal alone.
	assert.Equal(t, int64(1200), cfg.Tax(6000, 0))

	// Round half up at exactly .5 of a penny: 20% of 4697+... pick 1 subtotal
	// values: 20% of 3 = 0.6 -> 1.
	assert.Equal(t, int64(1), cfg.Tax(3, 0))
}

func TestTotals_ExactAcrossRandomInputs(t *testing.T) {
	cfg := DefaultPricingConfig()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		subtotal := rng.Int63n(500_00)
		shipping := cfg.ShippingCost(subtotal)
		tax := cfg.Tax(subtotal, shipping)
		total := cfg.Total(subtotal, shipping, tax)

		// Integer pence arithmetic is exact: the identity holds with plain
		// equality, no tolerance.
		assert.Equal(t, subtotal+shipping+tax, total)

		if subtotal >= cfg.FreeShippingThresholdPence {
			assert.Zero(t, shipping)
		} else {
			assert.Equal(t, cfg.FlatShippingRatePence, shipping)
		}
	}
}

func TestComputeTotals(t *testing.T) {
	cfg := DefaultPricingConfig()

	items := []ResolvedLineItem{
		{VariantID: "v1", Quantity: 2, UnitPricePence: 2099, TotalPricePence: 4198},
	}

	got := ComputeTotals(cfg, items)

	assert.Equal(t, int64(4198), got.SubtotalPence)
	assert.Equal(t, int64(499), got.ShippingPence)
	assert.Equal(t, int64(939), got.TaxPence)
	assert.Zero(t, got.DiscountPence)
	assert.Equal(t, int64(5636), got.TotalPence)
}

func TestSubtotal(t *testing.T) {
	items := []ResolvedLineItem{
		{TotalPricePence: 1000},
		{TotalPricePence: 2500},
	}
	assert.Equal(t, int64(3500), Subtotal(items))
	assert.Zero(t, Subtotal(nil))
}
