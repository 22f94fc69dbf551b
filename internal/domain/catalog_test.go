package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariantWithProduct_UnitPricePence(t *testing.T) {
	vp := &VariantWithProduct{
		Product: Product{BasePricePence: 2499},
		Variant: ProductVariant{PriceAdjustmentPence: 200},
	}
	assert.Equal(t, int64(2699), vp.UnitPricePence())

	vp.Variant.PriceAdjustmentPence = -500
	assert.Equal(t, int64(1999), vp.UnitPricePence())
}

func TestResolvedLineItem_Description(t *testing.T) {
	tests := []struct {
		name string
		item ResolvedLineItem
		want string
	}{
		{"size and colour", ResolvedLineItem{Size: "M", Color: "Black"}, "Size: M, Colour: Black"},
		{"size only", ResolvedLineItem{Size: "L"}, "Size: L"},
		{"colour only", ResolvedLineItem{Color: "Navy"}, "Colour: Navy"},
		{"neither", ResolvedLineItem{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.Description())
		})
	}
}

func TestCustomer_IsGuest(t *testing.T) {
	guest := &Customer{Email: "jo@example.com"}
	assert.True(t, guest.IsGuest())

	uid := "user-1"
	registered := &Customer{Email: "jo@example.com", UserID: &uid}
	assert.False(t, registered.IsGuest())
}
