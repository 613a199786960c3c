package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apocighol/cevicheria-api/internal/domain"
)

type fakeTableRepo struct {
	tables map[int]domain.Table
}

func newFakeTableRepo(tables ...domain.Table) *fakeTableRepo {
	repo := &fakeTableRepo{tables: make(map[int]domain.Table)}
	for _, table := range tables {
		repo.tables[table.Number] = table
	}
	return repo
}

func (r *fakeTableRepo) Create(_ context.Context, table domain.Table) (domain.Table, error) {
	if _, ok := r.tables[table.Number]; ok {
		return domain.Table{}, ErrTableNumberExists
	}
	table.ID = uint(len(r.tables) + 1)
	r.tables[table.Number] = table
	return table, nil
}

func (r *fakeTableRepo) FindByNumber(_ context.Context, number int) (domain.Table, error) {
	table, ok := r.tables[number]
	if !ok {
		return domain.Table{}, ErrTableNotFound
	}
	return table, nil
}

func (r *fakeTableRepo) FindAll(_ context.Context) ([]domain.Table, error) {
	out := make([]domain.Table, 0, len(r.tables))
	for _, table := range r.tables {
		out = append(out, table)
	}
	return out, nil
}

func (r *fakeTableRepo) FindByState(_ context.Context, state domain.TableState) ([]domain.Table, error) {
	var out []domain.Table
	for _, table := range r.tables {
		if table.State == state {
			out = append(out, table)
		}
	}
	return out, nil
}

func (r *fakeTableRepo) FindByServer(_ context.Context, server string) ([]domain.Table, error) {
	var out []domain.Table
	for _, table := range r.tables {
		if table.Server == server {
			out = append(out, table)
		}
	}
	return out, nil
}

func (r *fakeTableRepo) UpdateWithStateGuard(_ context.Context, table domain.Table, expected domain.TableState) (domain.Table, error) {
	current, ok := r.tables[table.Number]
	if !ok {
		return domain.Table{}, ErrTableNotFound
	}
	if current.State != expected {
		return domain.Table{}, ErrTableStateChanged
	}
	r.tables[table.Number] = table
	return table, nil
}

func (r *fakeTableRepo) UpdateConsumptionTotal(_ context.Context, number int, total decimal.Decimal) (domain.Table, error) {
	table, ok := r.tables[number]
	if !ok {
		return domain.Table{}, ErrTableNotFound
	}
	table.ConsumptionTotal = total
	r.tables[number] = table
	return table, nil
}

func (r *fakeTableRepo) Delete(_ context.Context, id uint) error {
	for number, table := range r.tables {
		if table.ID == id {
			delete(r.tables, number)
			return nil
		}
	}
	return ErrTableNotFound
}

func (r *fakeTableRepo) Stats(_ context.Context) (domain.TableStats, error) {
	stats := domain.TableStats{Total: int64(len(r.tables))}
	for _, table := range r.tables {
		switch table.State {
		case domain.TableAvailable:
			stats.Available++
		case domain.TableOccupied:
			stats.Occupied++
		case domain.TableReserved:
			stats.Reserved++
		}
	}
	return stats, nil
}

type fakeTableOrderRepo struct {
	active map[int][]domain.Order
}

func (r *fakeTableOrderRepo) FindActiveByTable(_ context.Context, tableNumber int) ([]domain.Order, error) {
	return r.active[tableNumber], nil
}

func TestTableService_Occupy(t *testing.T) {
	tests := []struct {
		name      string
		table     domain.Table
		partySize int
		override  bool
		wantErr   error
	}{
		{
			name:      "seats a party on an available table",
			table:     domain.Table{ID: 1, Number: 5, Capacity: 4, State: domain.TableAvailable},
			partySize: 3,
		},
		{
			name:      "seats a reserved table directly",
			table:     domain.Table{ID: 1, Number: 5, Capacity: 4, State: domain.TableReserved},
			partySize: 4,
		},
		{
			name:      "refuses an occupied table",
			table:     domain.Table{ID: 1, Number: 5, Capacity: 4, State: domain.TableOccupied},
			partySize: 2,
			wantErr:   ErrTableOccupied,
		},
		{
			name:      "refuses a party over capacity",
			table:     domain.Table{ID: 1, Number: 5, Capacity: 4, State: domain.TableAvailable},
			partySize: 6,
			wantErr:   ErrCapacityExceeded,
		},
		{
			name:      "override seats a party over capacity",
			table:     domain.Table{ID: 1, Number: 5, Capacity: 4, State: domain.TableAvailable},
			partySize: 6,
			override:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewTableService(newFakeTableRepo(tt.table), &fakeTableOrderRepo{})

			got, err := svc.Occupy(context.Background(), tt.table.Number, tt.partySize, "Carlos", tt.override)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, domain.TableOccupied, got.State)
			assert.Equal(t, tt.partySize, got.PartySize)
			assert.Equal(t, "Carlos", got.Server)
			assert.NotNil(t, got.OccupiedSince)
		})
	}
}

func TestTableService_Occupy_NotFound(t *testing.T) {
	svc := NewTableService(newFakeTableRepo(), &fakeTableOrderRepo{})

	_, err := svc.Occupy(context.Background(), 99, 2, "Carlos", false)

	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestTableService_Release(t *testing.T) {
	occupied := domain.Table{
		ID:               1,
		Number:           5,
		Capacity:         4,
		State:            domain.TableOccupied,
		Server:           "Carlos",
		PartySize:        3,
		ConsumptionTotal: decimal.NewFromFloat(120.50),
	}

	t.Run("releases and resets the consumption total", func(t *testing.T) {
		svc := NewTableService(newFakeTableRepo(occupied), &fakeTableOrderRepo{})

		got, err := svc.Release(context.Background(), 5, "pago completo", false)

		require.NoError(t, err)
		assert.Equal(t, domain.TableAvailable, got.State)
		assert.Equal(t, "pago completo", got.ReleaseReason)
		assert.True(t, got.ConsumptionTotal.IsZero())
		assert.Empty(t, got.Server)
	})

	t.Run("refuses with active orders", func(t *testing.T) {
		orderRepo := &fakeTableOrderRepo{active: map[int][]domain.Order{
			5: {{ID: 1, State: domain.OrderPending}},
		}}
		svc := NewTableService(newFakeTableRepo(occupied), orderRepo)

		_, err := svc.Release(context.Background(), 5, "cliente se retiro", false)

		assert.ErrorIs(t, err, ErrTableHasActiveOrders)
	})

	t.Run("force skips the active order check", func(t *testing.T) {
		orderRepo := &fakeTableOrderRepo{active: map[int][]domain.Order{
			5: {{ID: 1, State: domain.OrderPending}},
		}}
		svc := NewTableService(newFakeTableRepo(occupied), orderRepo)

		got, err := svc.Release(context.Background(), 5, "cliente se retiro", true)

		require.NoError(t, err)
		assert.Equal(t, domain.TableAvailable, got.State)
	})

	t.Run("refuses an available table", func(t *testing.T) {
		available := domain.Table{ID: 1, Number: 5, Capacity: 4, State: domain.TableAvailable}
		svc := NewTableService(newFakeTableRepo(available), &fakeTableOrderRepo{})

		_, err := svc.Release(context.Background(), 5, "x", false)

		assert.ErrorIs(t, err, ErrTableNotOccupied)
	})

	t.Run("releases a reserved table", func(t *testing.T) {
		reserved := domain.Table{ID: 1, Number: 5, Capacity: 4, State: domain.TableReserved}
		svc := NewTableService(newFakeTableRepo(reserved), &fakeTableOrderRepo{})

		got, err := svc.Release(context.Background(), 5, "no show", false)

		require.NoError(t, err)
		assert.Equal(t, domain.TableAvailable, got.State)
	})
}

func TestTableService_Reserve(t *testing.T) {
	t.Run("reserves an available table", func(t *testing.T) {
		table := domain.Table{ID: 1, Number: 3, Capacity: 2, State: domain.TableAvailable}
		svc := NewTableService(newFakeTableRepo(table), &fakeTableOrderRepo{})

		got, err := svc.Reserve(context.Background(), 3)

		require.NoError(t, err)
		assert.Equal(t, domain.TableReserved, got.State)
	})

	t.Run("refuses an occupied table", func(t *testing.T) {
		table := domain.Table{ID: 1, Number: 3, Capacity: 2, State: domain.TableOccupied}
		svc := NewTableService(newFakeTableRepo(table), &fakeTableOrderRepo{})

		_, err := svc.Reserve(context.Background(), 3)

		assert.ErrorIs(t, err, ErrTableNotAvailable)
	})
}

func TestTableService_Create(t *testing.T) {
	svc := NewTableService(newFakeTableRepo(), &fakeTableOrderRepo{})

	got, err := svc.Create(context.Background(), 7, 6)

	require.NoError(t, err)
	assert.Equal(t, 7, got.Number)
	assert.Equal(t, 6, got.Capacity)
	assert.Equal(t, domain.TableAvailable, got.State)
	assert.True(t, got.ConsumptionTotal.IsZero())

	_, err = svc.Create(context.Background(), 7, 4)
	assert.ErrorIs(t, err, ErrTableNumberExists)
}

func TestTableService_SetConsumptionTotal(t *testing.T) {
	table := domain.Table{ID: 1, Number: 5, Capacity: 4, State: domain.TableOccupied}
	svc := NewTableService(newFakeTableRepo(table), &fakeTableOrderRepo{})

	got, err := svc.SetConsumptionTotal(context.Background(), 5, decimal.NewFromFloat(42.50))

	require.NoError(t, err)
	assert.True(t, got.ConsumptionTotal.Equal(decimal.NewFromFloat(42.50)))

	t.Run("refuses a negative total", func(t *testing.T) {
		_, err := svc.SetConsumptionTotal(context.Background(), 5, decimal.NewFromFloat(-1))

		assert.ErrorIs(t, err, ErrNegativeTotal)
	})

	t.Run("unknown table", func(t *testing.T) {
		_, err := svc.SetConsumptionTotal(context.Background(), 99, decimal.Zero)

		assert.ErrorIs(t, err, ErrTableNotFound)
	})
}

func TestTableService_Stats(t *testing.T) {
	svc := NewTableService(newFakeTableRepo(
		domain.Table{ID: 1, Number: 1, State: domain.TableAvailable},
		domain.Table{ID: 2, Number: 2, State: domain.TableOccupied},
		domain.Table{ID: 3, Number: 3, State: domain.TableOccupied},
		domain.Table{ID: 4, Number: 4, State: domain.TableReserved},
	), &fakeTableOrderRepo{})

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(1), stats.Available)
	assert.Equal(t, int64(2), stats.Occupied)
	assert.Equal(t, int64(1), stats.Reserved)
}
