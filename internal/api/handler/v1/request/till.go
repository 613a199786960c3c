package request

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

type OpenSessionRequest struct {
	OpeningFloat decimal.Decimal `json:"opening_float"`
}

func (req *OpenSessionRequest) Validate() error {
	if req.OpeningFloat.IsNegative() {
		return validation.NewError("validation_opening_float", "opening float cannot be negative")
	}

	return nil
}

type ExpenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

func (req *ExpenseRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Description, validation.Required, validation.Length(3, 200)),
	)
	if err != nil {
		return err
	}

	if !req.Amount.IsPositive() {
		return validation.NewError("validation_amount", "amount must be positive")
	}

	return nil
}

type CloseSessionRequest struct {
	CountedCash decimal.Decimal `json:"counted_cash"`
}

func (req *CloseSessionRequest) Validate() error {
	if req.CountedCash.IsNegative() {
		return validation.NewError("validation_counted_cash", "counted cash cannot be negative")
	}

	return nil
}
