package request

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

type RecipeLineRequest struct {
	IngredientID    uint            `json:"ingredient_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

func (req RecipeLineRequest) Validate() error {
	err := validation.ValidateStruct(
		&req,
		validation.Field(&req.IngredientID, validation.Required),
	)
	if err != nil {
		return err
	}

	if !req.QuantityPerUnit.IsPositive() {
		return validation.NewError("validation_quantity_per_unit", "quantity per unit must be positive")
	}

	return nil
}

type DefineRecipeRequest struct {
	Lines []RecipeLineRequest `json:"lines"`
}

func (req *DefineRecipeRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Lines, validation.Required, validation.Length(1, 0)),
	)
}
