package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIngredient_DeductStock(t *testing.T) {
	tests := []struct {
		name        string
		stock       decimal.Decimal
		qty         decimal.Decimal
		wantApplied decimal.Decimal
		wantFull    bool
		wantStock   decimal.Decimal
	}{
		{
			name:        "full deduction",
			stock:       decimal.NewFromFloat(10.000),
			qty:         decimal.NewFromFloat(2.500),
			wantApplied: decimal.NewFromFloat(2.500),
			wantFull:    true,
			wantStock:   decimal.NewFromFloat(7.500),
		},
		{
			name:        "clamped at zero",
			stock:       decimal.NewFromFloat(1.200),
			qty:         decimal.NewFromFloat(3.000),
			wantApplied: decimal.NewFromFloat(1.200),
			wantFull:    false,
			wantStock:   decimal.Zero,
		},
		{
			name:        "exact depletion is still full",
			stock:       decimal.NewFromFloat(3.000),
			qty:         decimal.NewFromFloat(3.000),
			wantApplied: decimal.NewFromFloat(3.000),
			wantFull:    true,
			wantStock:   decimal.Zero,
		},
		{
			name:        "already empty",
			stock:       decimal.Zero,
			qty:         decimal.NewFromFloat(0.500),
			wantApplied: decimal.Zero,
			wantFull:    false,
			wantStock:   decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingredient := Ingredient{Stock: tt.stock}

			applied, full := ingredient.DeductStock(tt.qty)

			assert.True(t, applied.Equal(tt.wantApplied))
			assert.Equal(t, tt.wantFull, full)
			assert.True(t, ingredient.Stock.Equal(tt.wantStock))
		})
	}
}

func TestIngredient_IncreaseStock(t *testing.T) {
	ingredient := Ingredient{Stock: decimal.NewFromFloat(5.000)}

	ingredient.IncreaseStock(decimal.NewFromFloat(2.500))
	assert.True(t, ingredient.Stock.Equal(decimal.NewFromFloat(7.500)))

	// Non-positive quantities are ignored.
	ingredient.IncreaseStock(decimal.NewFromFloat(-1.000))
	assert.True(t, ingredient.Stock.Equal(decimal.NewFromFloat(7.500)))
}

func TestIngredient_IsLow(t *testing.T) {
	ingredient := Ingredient{
		Stock:    decimal.NewFromFloat(2.000),
		MinStock: decimal.NewFromFloat(2.000),
	}

	assert.True(t, ingredient.IsLow())

	ingredient.Stock = decimal.NewFromFloat(2.001)
	assert.False(t, ingredient.IsLow())
}

func TestIngredient_IsDepleted(t *testing.T) {
	ingredient := Ingredient{Stock: decimal.Zero}
	assert.True(t, ingredient.IsDepleted())

	ingredient.Stock = decimal.NewFromFloat(0.001)
	assert.False(t, ingredient.IsDepleted())
}

func TestDeductionResult_Shortfall(t *testing.T) {
	result := DeductionResult{
		Requested: decimal.NewFromFloat(3.000),
		Applied:   decimal.NewFromFloat(1.200),
	}

	assert.True(t, result.Shortfall().Equal(decimal.NewFromFloat(1.800)))
}
