package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable menu item. Orders snapshot its name and price at
// creation time; the catalog is never consulted again for past orders.
type Product struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
