package request

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

type IngredientRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Unit     string          `json:"unit"`
	Stock    decimal.Decimal `json:"stock"`
	MinStock decimal.Decimal `json:"min_stock"`
}

func (req *IngredientRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Unit, validation.Required, validation.Length(1, 20)),
	)
	if err != nil {
		return err
	}

	if req.Stock.IsNegative() {
		return validation.NewError("validation_stock", "stock cannot be negative")
	}
	if req.MinStock.IsNegative() {
		return validation.NewError("validation_min_stock", "min stock cannot be negative")
	}

	return nil
}

type StockAdjustmentRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

func (req *StockAdjustmentRequest) Validate() error {
	if !req.Quantity.IsPositive() {
		return validation.NewError("validation_quantity", "quantity must be positive")
	}

	return nil
}

type SetStockRequest struct {
	Stock decimal.Decimal `json:"stock"`
}

func (req *SetStockRequest) Validate() error {
	if req.Stock.IsNegative() {
		return validation.NewError("validation_stock", "stock cannot be negative")
	}

	return nil
}
