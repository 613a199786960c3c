package domain

import "github.com/shopspring/decimal"

// RecipeLine says how much of one ingredient goes into one unit of a product.
type RecipeLine struct {
	ID              uint            `json:"id"`
	ProductID       uint            `json:"product_id"`
	IngredientID    uint            `json:"ingredient_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// DeductionResult reports what happened to one ingredient during a sale
// deduction. Full is false when the stock was clamped at zero.
type DeductionResult struct {
	IngredientID   uint            `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Requested      decimal.Decimal `json:"requested"`
	Applied        decimal.Decimal `json:"applied"`
	Remaining      decimal.Decimal `json:"remaining"`
	Full           bool            `json:"full"`
}

// Shortfall is the unmet part of the request.
func (r DeductionResult) Shortfall() decimal.Decimal {
	return r.Requested.Sub(r.Applied)
}

// DeductionSummary aggregates the per-ingredient results for a whole order,
// listing the names of ingredients that hit zero stock.
type DeductionSummary struct {
	Results        []DeductionResult `json:"results"`
	DepletedAlerts []string          `json:"depleted_alerts"`
}

type AvailabilityShortfall struct {
	IngredientID   uint            `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Required       decimal.Decimal `json:"required"`
	Available      decimal.Decimal `json:"available"`
}

type AvailabilityCheck struct {
	Available  bool                    `json:"available"`
	Shortfalls []AvailabilityShortfall `json:"shortfalls,omitempty"`
}
