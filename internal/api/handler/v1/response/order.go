package response

import "github.com/apocighol/cevicheria-api/internal/domain"

// OrderCreatedResponse bundles the new order with what its sale did to the
// inventory, so the client can flash depletion alerts right away.
type OrderCreatedResponse struct {
	Order     domain.Order            `json:"order"`
	Deduction domain.DeductionSummary `json:"deduction"`
}
