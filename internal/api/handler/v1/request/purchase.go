package request

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

type PurchaseDetailRequest struct {
	IngredientID uint            `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
}

func (req PurchaseDetailRequest) Validate() error {
	err := validation.ValidateStruct(
		&req,
		validation.Field(&req.IngredientID, validation.Required),
	)
	if err != nil {
		return err
	}

	if !req.Quantity.IsPositive() {
		return validation.NewError("validation_quantity", "quantity must be positive")
	}
	if req.UnitCost.IsNegative() {
		return validation.NewError("validation_unit_cost", "unit cost cannot be negative")
	}

	return nil
}

type RegisterPurchaseRequest struct {
	Supplier string                  `json:"supplier"`
	Notes    string                  `json:"notes"`
	Details  []PurchaseDetailRequest `json:"details"`
}

func (req *RegisterPurchaseRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Supplier, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Details, validation.Required, validation.Length(1, 0)),
	)
}
