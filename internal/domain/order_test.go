package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderState_CanAdvanceTo(t *testing.T) {
	tests := []struct {
		name   string
		from   OrderState
		to     OrderState
		expect bool
	}{
		{"pending to preparing", OrderPending, OrderPreparing, true},
		{"preparing to ready", OrderPreparing, OrderReady, true},
		{"ready to served", OrderReady, OrderServed, true},
		{"no skipping ahead", OrderPending, OrderReady, false},
		{"no going back", OrderReady, OrderPreparing, false},
		{"served is the end of the chain", OrderServed, OrderPaid, false},
		{"paid advances nowhere", OrderPaid, OrderServed, false},
		{"voided advances nowhere", OrderVoided, OrderPreparing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.from.CanAdvanceTo(tt.to))
		})
	}
}

func TestOrderState_IsTerminal(t *testing.T) {
	assert.True(t, OrderPaid.IsTerminal())
	assert.True(t, OrderVoided.IsTerminal())
	assert.False(t, OrderPending.IsTerminal())
	assert.False(t, OrderServed.IsTerminal())
}

func TestOrder_Recalculate(t *testing.T) {
	order := Order{
		Discount: decimal.NewFromInt(5),
		Lines: []OrderLine{
			{Quantity: 2, UnitPrice: decimal.NewFromFloat(25.50)},
			{Quantity: 1, UnitPrice: decimal.NewFromFloat(12.00)},
		},
	}

	order.Recalculate()

	assert.True(t, order.Lines[0].Subtotal.Equal(decimal.NewFromFloat(51.00)))
	assert.True(t, order.Lines[1].Subtotal.Equal(decimal.NewFromFloat(12.00)))
	assert.True(t, order.Subtotal.Equal(decimal.NewFromFloat(63.00)))
	assert.True(t, order.Total.Equal(decimal.NewFromFloat(58.00)))
}

func TestOrder_Recalculate_EmptyLines(t *testing.T) {
	order := Order{}

	order.Recalculate()

	assert.True(t, order.Subtotal.IsZero())
	assert.True(t, order.Total.IsZero())
}

func TestOrder_Void(t *testing.T) {
	now := time.Now()
	order := Order{State: OrderPreparing}

	order.Void("cliente se retiro", "Maria", now)

	assert.Equal(t, OrderVoided, order.State)
	assert.Equal(t, "cliente se retiro", order.VoidReason)
	assert.Equal(t, "Maria", order.VoidedBy)
	assert.Equal(t, now, *order.VoidedAt)
	assert.False(t, order.IsActive())
}
