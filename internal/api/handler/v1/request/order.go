package request

import (
	"github.com/shopspring/decimal"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type OrderLineRequest struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note"`
}

func (req OrderLineRequest) Validate() error {
	return validation.ValidateStruct(
		&req,
		validation.Field(&req.ProductID, validation.Required),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1)),
	)
}

type CreateOrderRequest struct {
	TableNumber int                `json:"table_number"`
	Note        string             `json:"note"`
	Lines       []OrderLineRequest `json:"lines"`
}

func (req *CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TableNumber, validation.Required, validation.Min(1)),
		validation.Field(&req.Lines, validation.Required, validation.Length(1, 0)),
	)
}

type ChangeOrderStateRequest struct {
	State string `json:"state"`
}

func (req *ChangeOrderStateRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.State, validation.Required, validation.In("preparing", "ready", "served")),
	)
}

type VoidOrderRequest struct {
	Reason string `json:"reason"`
}

func (req *VoidOrderRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Reason, validation.Required, validation.Length(3, 200)),
	)
}

type DiscountRequest struct {
	Discount decimal.Decimal `json:"discount"`
}

func (req *DiscountRequest) Validate() error {
	if req.Discount.IsNegative() {
		return validation.NewError("validation_discount", "discount cannot be negative")
	}

	return nil
}

type PaymentRequest struct {
	Method   string           `json:"method"`
	Amount   decimal.Decimal  `json:"amount"`
	Tendered *decimal.Decimal `json:"tendered,omitempty"`
}

func (req PaymentRequest) Validate() error {
	err := validation.ValidateStruct(
		&req,
		validation.Field(&req.Method, validation.Required, validation.In("cash", "yape", "plin", "card")),
	)
	if err != nil {
		return err
	}

	if !req.Amount.IsPositive() {
		return validation.NewError("validation_amount", "amount must be positive")
	}

	return nil
}

type CollectTableRequest struct {
	Method string `json:"method"`
}

func (req *CollectTableRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Method, validation.Required, validation.In("cash", "yape", "plin", "card")),
	)
}

type CollectPaymentRequest struct {
	Payments []PaymentRequest `json:"payments"`
}

func (req *CollectPaymentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Payments, validation.Required, validation.Length(1, 0)),
	)
}
