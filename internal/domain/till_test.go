package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCashSession_ApplySale(t *testing.T) {
	session := CashSession{State: SessionOpen}

	session.ApplySale(PayCash, decimal.NewFromFloat(50.00))
	session.ApplySale(PayYape, decimal.NewFromFloat(30.00))
	session.ApplySale(PayCash, decimal.NewFromFloat(20.00))
	session.ApplySale(PayCard, decimal.NewFromFloat(15.00))

	assert.True(t, session.SalesTotal.Equal(decimal.NewFromFloat(115.00)))
	assert.True(t, session.CashTotal.Equal(decimal.NewFromFloat(70.00)))
	assert.True(t, session.YapeTotal.Equal(decimal.NewFromFloat(30.00)))
	assert.True(t, session.CardTotal.Equal(decimal.NewFromFloat(15.00)))
	assert.True(t, session.PlinTotal.IsZero())
}

func TestCashSession_ExpectedCash(t *testing.T) {
	session := CashSession{
		State:        SessionOpen,
		OpeningFloat: decimal.NewFromFloat(100.00),
	}

	session.ApplySale(PayCash, decimal.NewFromFloat(250.00))
	session.ApplySale(PayYape, decimal.NewFromFloat(80.00))
	session.ApplyExpense(decimal.NewFromFloat(40.00))

	// Digital sales never touch the drawer.
	assert.True(t, session.ExpectedCash().Equal(decimal.NewFromFloat(310.00)))
}

func TestCashSession_Close(t *testing.T) {
	now := time.Now()
	session := CashSession{
		State:        SessionOpen,
		OpeningFloat: decimal.NewFromFloat(100.00),
	}
	session.ApplySale(PayCash, decimal.NewFromFloat(200.00))
	session.ApplyExpense(decimal.NewFromFloat(50.00))

	session.Close(decimal.NewFromFloat(245.00), "Rosa", now)

	assert.Equal(t, SessionClosed, session.State)
	assert.False(t, session.IsOpen())
	assert.Equal(t, "Rosa", session.ClosedBy)
	assert.Equal(t, now, *session.ClosedAt)
	assert.True(t, session.ClosingCount.Equal(decimal.NewFromFloat(245.00)))
	// Expected 250, counted 245: five soles short.
	assert.True(t, session.Difference.Equal(decimal.NewFromFloat(-5.00)))
}

func TestPaymentMethod_IsValid(t *testing.T) {
	assert.True(t, PayCash.IsValid())
	assert.True(t, PayYape.IsValid())
	assert.True(t, PayPlin.IsValid())
	assert.True(t, PayCard.IsValid())
	assert.False(t, PaymentMethod("bitcoin").IsValid())
}
