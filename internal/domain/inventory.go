package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient (insumo) is a raw inventory item. Stock carries three decimals
// and is never negative.
type Ingredient struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	Unit      string          `json:"unit"`
	Stock     decimal.Decimal `json:"stock"`
	MinStock  decimal.Decimal `json:"min_stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (i *Ingredient) IncreaseStock(qty decimal.Decimal) {
	if qty.IsPositive() {
		i.Stock = i.Stock.Add(qty)
	}
}

// DeductStock subtracts qty from the stock, clamping at zero. It returns the
// quantity actually removed and whether the full request was satisfied. The
// unmet remainder is discarded, not backordered; callers must inspect the
// boolean instead of expecting an error.
func (i *Ingredient) DeductStock(qty decimal.Decimal) (applied decimal.Decimal, full bool) {
	if !qty.IsPositive() {
		return decimal.Zero, false
	}

	if i.Stock.GreaterThanOrEqual(qty) {
		i.Stock = i.Stock.Sub(qty)
		return qty, true
	}

	applied = i.Stock
	i.Stock = decimal.Zero

	return applied, false
}

func (i *Ingredient) IsLow() bool {
	return i.Stock.LessThanOrEqual(i.MinStock)
}

func (i *Ingredient) IsDepleted() bool {
	return !i.Stock.IsPositive()
}

type InventoryStats struct {
	TotalIngredients int64    `json:"total_ingredients"`
	LowStock         int64    `json:"low_stock"`
	Depleted         int64    `json:"depleted"`
	Categories       []string `json:"categories"`
}
