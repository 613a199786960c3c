package request

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

type CreateTableRequest struct {
	Number   int `json:"number"`
	Capacity int `json:"capacity"`
}

func (req *CreateTableRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Number, validation.Required, validation.Min(1)),
		validation.Field(&req.Capacity, validation.Required, validation.Min(1)),
	)
}

type OccupyTableRequest struct {
	PartySize int    `json:"party_size"`
	Server    string `json:"server"`
	Override  bool   `json:"override"`
}

func (req *OccupyTableRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.PartySize, validation.Required, validation.Min(1)),
		validation.Field(&req.Server, validation.Required),
	)
}

type TableTotalRequest struct {
	Total decimal.Decimal `json:"total"`
}

func (req *TableTotalRequest) Validate() error {
	if req.Total.IsNegative() {
		return validation.NewError("validation_total", "total cannot be negative")
	}

	return nil
}

type ReleaseTableRequest struct {
	Reason string `json:"reason"`
	Force  bool   `json:"force"`
}

func (req *ReleaseTableRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Reason, validation.Length(0, 200)),
	)
}
