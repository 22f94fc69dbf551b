package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrder_TotalInvariantHolds(t *testing.T) {
	order := &Order{
		SubtotalPence: 4198,
		ShippingPence: 499,
		TaxPence:      939,
		DiscountPence: 0,
		TotalPence:    5636,
	}
	assert.True(t, order.TotalInvariantHolds())

	order.TotalPence++
	assert.False(t, order.TotalInvariantHolds())

	order.DiscountPence = 500
	order.TotalPence = 5136
	assert.True(t, order.TotalInvariantHolds())
}

func TestNewOrderNumber_Format(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	num := NewOrderNumber(now)

	parts := strings.Split(num, "-")
	assert.Len(t, parts, 3)
	assert.Equal(t, "ALB", parts[0])
	assert.Equal(t, "20260314", parts[1])
	assert.Len(t, parts[2], 6)

	for _, r := range parts[2] {
		assert.Contains(t, orderNumberAlphabet, string(r))
	}
}

func TestNewOrderNumber_AlphabetOmitsAmbiguousCharacters(t *testing.T) {
	for _, c := range "01IO" {
		assert.NotContains(t, orderNumberAlphabet, string(c))
	}
}

func TestNewOrderNumber_Distinct(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		seen[NewOrderNumber(now)] = struct{}{}
	}
	// 32^6 combinations make collisions across 100 draws vanishingly unlikely.
	assert.Greater(t, len(seen), 95)
}
