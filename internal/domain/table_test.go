package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTable_Occupy(t *testing.T) {
	now := time.Now()
	table := Table{
		Number:        5,
		Capacity:      4,
		State:         TableAvailable,
		ReleaseReason: "pago completo",
	}

	table.Occupy(3, "Carlos", now)

	assert.Equal(t, TableOccupied, table.State)
	assert.Equal(t, 3, table.PartySize)
	assert.Equal(t, "Carlos", table.Server)
	assert.Equal(t, now, *table.OccupiedSince)
	assert.Empty(t, table.ReleaseReason)
	assert.True(t, table.ConsumptionTotal.IsZero())
}

func TestTable_Release(t *testing.T) {
	now := time.Now()
	table := Table{Number: 5, Capacity: 4}
	table.Occupy(2, "Carlos", now)
	table.ConsumptionTotal = decimal.NewFromFloat(85.50)

	table.Release("pago completo")

	assert.Equal(t, TableAvailable, table.State)
	assert.Zero(t, table.PartySize)
	assert.Empty(t, table.Server)
	assert.Nil(t, table.OccupiedSince)
	assert.Equal(t, "pago completo", table.ReleaseReason)
	assert.True(t, table.ConsumptionTotal.IsZero())
}

func TestTable_Reserve(t *testing.T) {
	table := Table{State: TableAvailable}

	table.Reserve()

	assert.Equal(t, TableReserved, table.State)
	assert.False(t, table.IsAvailable())
	assert.False(t, table.IsOccupied())
}
