package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is a goods arrival that feeds the inventory. Each detail
// increments its ingredient's stock when the purchase is registered.
type Purchase struct {
	ID        uint             `json:"id"`
	Code      string           `json:"code"`
	Supplier  string           `json:"supplier"`
	Notes     string           `json:"notes,omitempty"`
	Total     decimal.Decimal  `json:"total"`
	Details   []PurchaseDetail `json:"details"`
	CreatedAt time.Time        `json:"created_at"`
}

type PurchaseDetail struct {
	ID           uint            `json:"id"`
	PurchaseID   uint            `json:"purchase_id"`
	IngredientID uint            `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}
