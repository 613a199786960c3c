package dao_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apocighol/cevicheria-api/internal/repository/dao"
	"github.com/apocighol/cevicheria-api/internal/testutil"
)

func TestTableDAO(t *testing.T) {
	database := testutil.StartPostgres(t)
	tableDAO := dao.NewTableDAO(database)
	ctx := context.Background()

	created, err := tableDAO.Insert(ctx, dao.Table{Number: 1, Capacity: 4, State: "available"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	t.Run("duplicate number maps to ErrTableNumberExists", func(t *testing.T) {
		_, err := tableDAO.Insert(ctx, dao.Table{Number: 1, Capacity: 2, State: "available"})
		assert.ErrorIs(t, err, dao.ErrTableNumberExists)
	})

	t.Run("state guard rejects a stale update", func(t *testing.T) {
		stale := created
		stale.State = "occupied"

		_, err := tableDAO.UpdateWithStateGuard(ctx, stale, "reserved")
		assert.ErrorIs(t, err, dao.ErrTableStateChanged)
	})

	t.Run("state guard applies a fresh update", func(t *testing.T) {
		occupied := created
		occupied.State = "occupied"
		occupied.Server = "Carlos"
		occupied.PartySize = 3

		updated, err := tableDAO.UpdateWithStateGuard(ctx, occupied, "available")
		require.NoError(t, err)
		assert.Equal(t, "occupied", updated.State)
		assert.Equal(t, "Carlos", updated.Server)
	})

	t.Run("delete refuses an occupied table", func(t *testing.T) {
		err := tableDAO.Delete(ctx, created.ID)
		assert.ErrorIs(t, err, dao.ErrTableOccupied)
	})
}
