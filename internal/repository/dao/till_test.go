package dao_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apocighol/cevicheria-api/internal/repository/dao"
	"github.com/apocighol/cevicheria-api/internal/testutil"
)

func TestTillDAO(t *testing.T) {
	database := testutil.StartPostgres(t)
	tillDAO := dao.NewTillDAO(database)
	ctx := context.Background()

	session, err := tillDAO.InsertSession(ctx, dao.CashSession{
		Code:         "CAJA-11111111",
		State:        "open",
		OpenedBy:     "Rosa",
		OpeningFloat: decimal.NewFromFloat(100.00),
		OpenedAt:     time.Now(),
	})
	require.NoError(t, err)

	t.Run("only one session can be open", func(t *testing.T) {
		_, err := tillDAO.InsertSession(ctx, dao.CashSession{
			Code:     "CAJA-22222222",
			State:    "open",
			OpenedBy: "Maria",
			OpenedAt: time.Now(),
		})
		assert.ErrorIs(t, err, dao.ErrSessionAlreadyOpen)
	})

	t.Run("sale bumps the per-method totals", func(t *testing.T) {
		_, err := tillDAO.InsertSale(ctx, dao.Movement{
			Description: "orden PED-3F2A9C71, mesa 5",
			Amount:      decimal.NewFromFloat(80.00),
			Method:      "cash",
			RecordedBy:  "Rosa",
		})
		require.NoError(t, err)

		open, err := tillDAO.FindOpen(ctx)
		require.NoError(t, err)
		assert.True(t, open.SalesTotal.Equal(decimal.NewFromFloat(80.00)))
		assert.True(t, open.CashTotal.Equal(decimal.NewFromFloat(80.00)))
	})

	t.Run("close reconciles against the counted cash", func(t *testing.T) {
		_, err := tillDAO.InsertExpense(ctx, dao.Movement{
			Description: "hielo",
			Amount:      decimal.NewFromFloat(30.00),
			RecordedBy:  "Rosa",
		})
		require.NoError(t, err)

		// Drawer should hold 100 + 80 - 30 = 150.
		closed, err := tillDAO.CloseSession(ctx, decimal.NewFromFloat(150.00), "Rosa", time.Now())
		require.NoError(t, err)
		assert.Equal(t, "closed", closed.State)
		require.NotNil(t, closed.Difference)
		assert.True(t, closed.Difference.IsZero())

		_, err = tillDAO.FindOpen(ctx)
		assert.ErrorIs(t, err, dao.ErrNoOpenSession)
	})

	t.Run("movements stay queryable after close", func(t *testing.T) {
		count, err := tillDAO.CountMovementsBySession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
