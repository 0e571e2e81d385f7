package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePricing(t *testing.T) {
	tests := []struct {
		name         string
		basePrice    float64
		discount     float64
		tax          float64
		wantDiscount float64
		wantTax      float64
		wantFinal    float64
	}{
		{
			name:      "no discount no tax",
			basePrice: 100,
			wantFinal: 100,
		},
		{
			name:         "discount and tax",
			basePrice:    100,
			discount:     10,
			tax:          5,
			wantDiscount: 10,
			wantTax:      4.5,
			wantFinal:    94.5,
		},
		{
			name:         "rounding to two decimals",
			basePrice:    33.33,
			discount:     7.5,
			tax:          18,
			wantDiscount: 2.5,
			wantTax:      5.55,
			wantFinal:    36.38,
		},
		{
			name:         "full discount",
			basePrice:    49.99,
			discount:     100,
			tax:          18,
			wantDiscount: 49.99,
			wantTax:      0,
			wantFinal:    0,
		},
		{
			name:      "zero price",
			basePrice: 0,
			discount:  50,
			tax:       12,
			wantFinal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{
				BasePrice:          tt.basePrice,
				DiscountPercentage: tt.discount,
				TaxPercentage:      tt.tax,
			}
			p.ComputePricing()
			assert.Equal(t, tt.wantDiscount, p.DiscountAmount, "discount amount")
			assert.Equal(t, tt.wantTax, p.TaxAmount, "tax amount")
			assert.Equal(t, tt.wantFinal, p.FinalPrice, "final price")
		})
	}
}

func TestComputePricingFormula(t *testing.T) {
	// finalPrice == round2(base × (1 − disc/100) × (1 + tax/100)) across a
	// grid of representative tuples.
	bases := []float64{0.01, 1, 9.99, 100, 1234.56}
	discounts := []float64{0, 5, 12.5, 50, 100}
	taxes := []float64{0, 5, 18, 28}

	for _, base := range bases {
		for _, discount := range discounts {
			for _, tax := range taxes {
				p := Product{BasePrice: base, DiscountPercentage: discount, TaxPercentage: tax}
				p.ComputePricing()

				discounted := base * (1 - discount/100)
				expected := discounted * (1 + tax/100)
				assert.InDelta(t, expected, p.FinalPrice, 0.005,
					"base=%v discount=%v tax=%v", base, discount, tax)
			}
		}
	}
}
