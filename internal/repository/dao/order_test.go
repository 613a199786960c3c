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

func TestOrderDAO_TableTotal(t *testing.T) {
	database := testutil.StartPostgres(t)
	orderDAO := dao.NewOrderDAO(database)
	tableDAO := dao.NewTableDAO(database)
	ctx := context.Background()

	_, err := tableDAO.Insert(ctx, dao.Table{Number: 7, Capacity: 4, State: "occupied", Server: "Carlos"})
	require.NoError(t, err)

	order, err := orderDAO.InsertWithTableTotal(ctx, dao.Order{
		Code:        "PED-DEAD0007",
		TableNumber: 7,
		Server:      "Carlos",
		State:       "pending",
		Subtotal:    decimal.NewFromFloat(58.00),
		Total:       decimal.NewFromFloat(58.00),
		Lines: []dao.OrderLine{
			{ProductName: "Ceviche clasico", Quantity: 2, UnitPrice: decimal.NewFromFloat(25.50), Subtotal: decimal.NewFromFloat(51.00)},
			{ProductName: "Chicha morada", Quantity: 1, UnitPrice: decimal.NewFromFloat(7.00), Subtotal: decimal.NewFromFloat(7.00)},
		},
	})
	require.NoError(t, err)
	require.Len(t, order.Lines, 2)

	t.Run("creation adds the order total to the table", func(t *testing.T) {
		table, err := tableDAO.FindByNumber(ctx, 7)
		require.NoError(t, err)
		assert.True(t, table.ConsumptionTotal.Equal(decimal.NewFromFloat(58.00)))
	})

	t.Run("insert refuses a table that is not occupied", func(t *testing.T) {
		_, err := tableDAO.Insert(ctx, dao.Table{Number: 8, Capacity: 2, State: "available"})
		require.NoError(t, err)

		_, err = orderDAO.InsertWithTableTotal(ctx, dao.Order{
			Code:        "PED-DEAD0008",
			TableNumber: 8,
			Server:      "Carlos",
			State:       "pending",
			Total:       decimal.NewFromFloat(10.00),
		})
		assert.ErrorIs(t, err, dao.ErrTableStateChanged)
	})

	t.Run("void pulls the total back out, clamped at zero", func(t *testing.T) {
		voided, err := orderDAO.VoidWithTableTotal(ctx, order.ID, "cliente se retiro", "Maria", time.Now())
		require.NoError(t, err)
		assert.Equal(t, "voided", voided.State)

		table, err := tableDAO.FindByNumber(ctx, 7)
		require.NoError(t, err)
		assert.True(t, table.ConsumptionTotal.IsZero())

		_, err = orderDAO.VoidWithTableTotal(ctx, order.ID, "otra vez", "Maria", time.Now())
		assert.ErrorIs(t, err, dao.ErrOrderTerminal)
	})

	t.Run("day and server query keeps terminal orders", func(t *testing.T) {
		second, err := orderDAO.InsertWithTableTotal(ctx, dao.Order{
			Code:        "PED-DEAD0009",
			TableNumber: 7,
			Server:      "Carlos",
			State:       "served",
			Subtotal:    decimal.NewFromFloat(12.00),
			Total:       decimal.NewFromFloat(12.00),
		})
		require.NoError(t, err)
		require.NoError(t, orderDAO.MarkPaid(ctx, second.ID))

		orders, err := orderDAO.FindByDayAndServer(ctx, time.Now(), "carlos")
		require.NoError(t, err)

		states := make(map[string]string, len(orders))
		for _, o := range orders {
			states[o.Code] = o.State
		}
		assert.Equal(t, "voided", states["PED-DEAD0007"])
		assert.Equal(t, "paid", states["PED-DEAD0009"])
	})
}
