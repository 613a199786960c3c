package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderState string

const (
	OrderPending   OrderState = "pending"
	OrderPreparing OrderState = "preparing"
	OrderReady     OrderState = "ready"
	OrderServed    OrderState = "served"
	OrderPaid      OrderState = "paid"
	OrderVoided    OrderState = "voided"
)

// forwardChain is the only allowed kitchen progression. Paying and voiding
// are separate terminal actions, never reachable through ChangeState.
var forwardChain = map[OrderState]OrderState{
	OrderPending:   OrderPreparing,
	OrderPreparing: OrderReady,
	OrderReady:     OrderServed,
}

func (s OrderState) IsValid() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderReady, OrderServed, OrderPaid, OrderVoided:
		return true
	}
	return false
}

func (s OrderState) IsTerminal() bool {
	return s == OrderPaid || s == OrderVoided
}

// CanAdvanceTo reports whether target is the next step of the forward chain.
func (s OrderState) CanAdvanceTo(target OrderState) bool {
	next, ok := forwardChain[s]
	return ok && next == target
}

// OrderLine snapshots the product name and price at order time, so later
// catalog changes never alter past orders. It references its owning order
// by id only.
type OrderLine struct {
	ID          uint            `json:"id"`
	OrderID     uint            `json:"order_id"`
	ProductID   *uint           `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Note        string          `json:"note,omitempty"`
}

type Order struct {
	ID          uint            `json:"id"`
	Code        string          `json:"code"`
	TableNumber int             `json:"table_number"`
	Server      string          `json:"server"`
	State       OrderState      `json:"state"`
	Note        string          `json:"note,omitempty"`
	Lines       []OrderLine     `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	VoidReason  string          `json:"void_reason,omitempty"`
	VoidedBy    string          `json:"voided_by,omitempty"`
	VoidedAt    *time.Time      `json:"voided_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (o *Order) IsActive() bool {
	return !o.State.IsTerminal()
}

// Recalculate restores the order totals invariant:
// subtotal = sum of line subtotals, total = subtotal - discount.
func (o *Order) Recalculate() {
	subtotal := decimal.Zero
	for i := range o.Lines {
		o.Lines[i].Subtotal = o.Lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(o.Lines[i].Quantity)))
		subtotal = subtotal.Add(o.Lines[i].Subtotal)
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Sub(o.Discount)
}

func (o *Order) Void(reason, actor string, at time.Time) {
	o.State = OrderVoided
	o.VoidReason = reason
	o.VoidedBy = actor
	o.VoidedAt = &at
}

type OrderStats struct {
	TodayTotal    int64           `json:"today_total"`
	Pending       int64           `json:"pending"`
	Preparing     int64           `json:"preparing"`
	Ready         int64           `json:"ready"`
	Served        int64           `json:"served"`
	Paid          int64           `json:"paid"`
	TodaySalesSum decimal.Decimal `json:"today_sales_sum"`
}
