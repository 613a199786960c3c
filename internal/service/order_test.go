package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apocighol/cevicheria-api/internal/domain"
)

type fakeOrderRepo struct {
	orders map[uint]domain.Order
	nextID uint
}

func newFakeOrderRepo(orders ...domain.Order) *fakeOrderRepo {
	repo := &fakeOrderRepo{orders: make(map[uint]domain.Order), nextID: 1}
	for _, order := range orders {
		repo.orders[order.ID] = order
		if order.ID >= repo.nextID {
			repo.nextID = order.ID + 1
		}
	}
	return repo
}

func (r *fakeOrderRepo) Create(_ context.Context, order domain.Order) (domain.Order, error) {
	order.ID = r.nextID
	r.nextID++
	order.CreatedAt = time.Now()
	r.orders[order.ID] = order
	return order, nil
}

func (r *fakeOrderRepo) Void(_ context.Context, id uint, reason, actor string, at time.Time) (domain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return domain.Order{}, ErrOrderNotFound
	}
	if order.State.IsTerminal() {
		return domain.Order{}, ErrOrderTerminal
	}
	order.Void(reason, actor, at)
	r.orders[id] = order
	return order, nil
}

func (r *fakeOrderRepo) UpdateStateFrom(_ context.Context, id uint, from, to domain.OrderState) (domain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return domain.Order{}, ErrOrderNotFound
	}
	if order.State != from {
		return domain.Order{}, ErrOrderStateChanged
	}
	order.State = to
	r.orders[id] = order
	return order, nil
}

func (r *fakeOrderRepo) UpdateDiscount(_ context.Context, id uint, discount decimal.Decimal) (domain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return domain.Order{}, ErrOrderNotFound
	}
	order.Discount = discount
	order.Recalculate()
	r.orders[id] = order
	return order, nil
}

func (r *fakeOrderRepo) MarkPaid(_ context.Context, id uint) error {
	order, ok := r.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	order.State = domain.OrderPaid
	r.orders[id] = order
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uint) (domain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return domain.Order{}, ErrOrderNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) FindByCode(_ context.Context, code string) (domain.Order, error) {
	for _, order := range r.orders {
		if order.Code == code {
			return order, nil
		}
	}
	return domain.Order{}, ErrOrderNotFound
}

func (r *fakeOrderRepo) FindByTable(_ context.Context, tableNumber int) ([]domain.Order, error) {
	var out []domain.Order
	for _, order := range r.orders {
		if order.TableNumber == tableNumber {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindActiveByTable(_ context.Context, tableNumber int) ([]domain.Order, error) {
	var out []domain.Order
	for _, order := range r.orders {
		if order.TableNumber == tableNumber && order.IsActive() {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindByState(_ context.Context, state domain.OrderState) ([]domain.Order, error) {
	var out []domain.Order
	for _, order := range r.orders {
		if order.State == state {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindByDay(_ context.Context, _ time.Time) ([]domain.Order, error) {
	var out []domain.Order
	for _, order := range r.orders {
		out = append(out, order)
	}
	return out, nil
}

func (r *fakeOrderRepo) FindByDayAndServer(_ context.Context, _ time.Time, server string) ([]domain.Order, error) {
	var out []domain.Order
	for _, order := range r.orders {
		if order.Server == server {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindVoided(_ context.Context, _, _ *time.Time, actor string) ([]domain.Order, error) {
	var out []domain.Order
	for _, order := range r.orders {
		if order.State != domain.OrderVoided {
			continue
		}
		if actor != "" && order.VoidedBy != actor {
			continue
		}
		out = append(out, order)
	}
	return out, nil
}

func (r *fakeOrderRepo) FindPaidByDay(_ context.Context, _ time.Time) ([]domain.Order, error) {
	return r.FindByState(context.Background(), domain.OrderPaid)
}

func (r *fakeOrderRepo) Stats(_ context.Context, _ time.Time) (domain.OrderStats, error) {
	return domain.OrderStats{}, nil
}

type fakeOrderTableRepo struct {
	table domain.Table
	err   error
}

func (r *fakeOrderTableRepo) FindByNumber(_ context.Context, _ int) (domain.Table, error) {
	if r.err != nil {
		return domain.Table{}, r.err
	}
	return r.table, nil
}

type fakeProductRepo struct {
	products map[uint]domain.Product
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uint) (domain.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return product, nil
}

type fakeDeducter struct {
	summary domain.DeductionSummary
	calls   int
}

func (d *fakeDeducter) DeductForSale(_ context.Context, _ []domain.OrderLine) (domain.DeductionSummary, error) {
	d.calls++
	return d.summary, nil
}

type fakeSalePoster struct {
	movements []domain.Movement
	err       error
}

func (p *fakeSalePoster) RecordSale(_ context.Context, movement domain.Movement) (domain.Movement, error) {
	if p.err != nil {
		return domain.Movement{}, p.err
	}
	p.movements = append(p.movements, movement)
	return movement, nil
}

func occupiedTable(number int) domain.Table {
	now := time.Now()
	return domain.Table{
		ID:            1,
		Number:        number,
		Capacity:      4,
		State:         domain.TableOccupied,
		Server:        "Carlos",
		PartySize:     2,
		OccupiedSince: &now,
	}
}

func ceviche() domain.Product {
	return domain.Product{ID: 1, Name: "Ceviche clasico", Price: decimal.NewFromFloat(28.00), Available: true}
}

func chicha() domain.Product {
	return domain.Product{ID: 2, Name: "Chicha morada", Price: decimal.NewFromFloat(8.00), Available: true}
}

func newOrderServiceForTest(repo *fakeOrderRepo, table domain.Table, products ...domain.Product) (*OrderService, *fakeDeducter, *fakeSalePoster) {
	productRepo := &fakeProductRepo{products: make(map[uint]domain.Product)}
	for _, product := range products {
		productRepo.products[product.ID] = product
	}
	deducter := &fakeDeducter{}
	till := &fakeSalePoster{}
	svc := NewOrderService(repo, &fakeOrderTableRepo{table: table}, productRepo, deducter, till)
	return svc, deducter, till
}

func TestOrderService_Create(t *testing.T) {
	repo := newFakeOrderRepo()
	svc, deducter, _ := newOrderServiceForTest(repo, occupiedTable(5), ceviche(), chicha())

	order, _, err := svc.Create(context.Background(), 5, "Carlos", "sin aji", []OrderLineInput{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 3, Note: "helada"},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, order.State)
	assert.Regexp(t, `^PED-[0-9A-F]{8}$`, order.Code)
	assert.Equal(t, "Carlos", order.Server)
	require.Len(t, order.Lines, 2)

	// Name and price are snapshots taken at order time.
	assert.Equal(t, "Ceviche clasico", order.Lines[0].ProductName)
	assert.True(t, order.Lines[0].UnitPrice.Equal(decimal.NewFromFloat(28.00)))
	assert.True(t, order.Lines[0].Subtotal.Equal(decimal.NewFromFloat(56.00)))
	assert.Equal(t, "helada", order.Lines[1].Note)

	assert.True(t, order.Subtotal.Equal(decimal.NewFromFloat(80.00)))
	assert.True(t, order.Total.Equal(decimal.NewFromFloat(80.00)))
	assert.Equal(t, 1, deducter.calls)
}

func TestOrderService_Create_Refusals(t *testing.T) {
	t.Run("empty order", func(t *testing.T) {
		svc, _, _ := newOrderServiceForTest(newFakeOrderRepo(), occupiedTable(5))

		_, _, err := svc.Create(context.Background(), 5, "Carlos", "", nil)

		assert.ErrorIs(t, err, ErrEmptyOrder)
	})

	t.Run("table not occupied", func(t *testing.T) {
		available := domain.Table{ID: 1, Number: 5, State: domain.TableAvailable}
		svc, _, _ := newOrderServiceForTest(newFakeOrderRepo(), available, ceviche())

		_, _, err := svc.Create(context.Background(), 5, "Carlos", "", []OrderLineInput{{ProductID: 1, Quantity: 1}})

		assert.ErrorIs(t, err, ErrTableNotOccupied)
	})

	t.Run("zero quantity", func(t *testing.T) {
		svc, _, _ := newOrderServiceForTest(newFakeOrderRepo(), occupiedTable(5), ceviche())

		_, _, err := svc.Create(context.Background(), 5, "Carlos", "", []OrderLineInput{{ProductID: 1, Quantity: 0}})

		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("unavailable product", func(t *testing.T) {
		offMenu := ceviche()
		offMenu.Available = false
		svc, _, _ := newOrderServiceForTest(newFakeOrderRepo(), occupiedTable(5), offMenu)

		_, _, err := svc.Create(context.Background(), 5, "Carlos", "", []OrderLineInput{{ProductID: 1, Quantity: 1}})

		assert.ErrorIs(t, err, ErrProductUnavailable)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, _, _ := newOrderServiceForTest(newFakeOrderRepo(), occupiedTable(5))

		_, _, err := svc.Create(context.Background(), 5, "Carlos", "", []OrderLineInput{{ProductID: 99, Quantity: 1}})

		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestOrderService_AdvanceState(t *testing.T) {
	repo := newFakeOrderRepo(domain.Order{ID: 1, State: domain.OrderPending})
	svc, _, _ := newOrderServiceForTest(repo, occupiedTable(5))

	for _, target := range []domain.OrderState{domain.OrderPreparing, domain.OrderReady, domain.OrderServed} {
		got, err := svc.AdvanceState(context.Background(), 1, target)
		require.NoError(t, err)
		assert.Equal(t, target, got.State)
	}

	// Served is the end of the kitchen chain.
	_, err := svc.AdvanceState(context.Background(), 1, domain.OrderPaid)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_AdvanceState_Refusals(t *testing.T) {
	t.Run("no skipping", func(t *testing.T) {
		repo := newFakeOrderRepo(domain.Order{ID: 1, State: domain.OrderPending})
		svc, _, _ := newOrderServiceForTest(repo, occupiedTable(5))

		_, err := svc.AdvanceState(context.Background(), 1, domain.OrderReady)

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("terminal order", func(t *testing.T) {
		repo := newFakeOrderRepo(domain.Order{ID: 1, State: domain.OrderVoided})
		svc, _, _ := newOrderServiceForTest(repo, occupiedTable(5))

		_, err := svc.AdvanceState(context.Background(), 1, domain.OrderPreparing)

		assert.ErrorIs(t, err, ErrOrderTerminal)
	})
}

func TestOrderService_Void(t *testing.T) {
	repo := newFakeOrderRepo(domain.Order{ID: 1, State: domain.OrderPreparing})
	svc, _, _ := newOrderServiceForTest(repo, occupiedTable(5))

	got, err := svc.Void(context.Background(), 1, "cliente se retiro", "Maria")

	require.NoError(t, err)
	assert.Equal(t, domain.OrderVoided, got.State)
	assert.Equal(t, "cliente se retiro", got.VoidReason)
	assert.Equal(t, "Maria", got.VoidedBy)

	// Voiding twice is refused.
	_, err = svc.Void(context.Background(), 1, "otra vez", "Maria")
	assert.ErrorIs(t, err, ErrOrderTerminal)
}

func TestOrderService_ApplyDiscount(t *testing.T) {
	order := domain.Order{
		ID:    1,
		State: domain.OrderServed,
		Lines: []domain.OrderLine{{Quantity: 2, UnitPrice: decimal.NewFromFloat(30.00)}},
	}
	order.Recalculate()

	t.Run("applies within bounds", func(t *testing.T) {
		repo := newFakeOrderRepo(order)
		svc, _, _ := newOrderServiceForTest(repo, occupiedTable(5))

		got, err := svc.ApplyDiscount(context.Background(), 1, decimal.NewFromFloat(10.00))

		require.NoError(t, err)
		assert.True(t, got.Total.Equal(decimal.NewFromFloat(50.00)))
	})

	t.Run("refuses a discount above the subtotal", func(t *testing.T) {
		repo := newFakeOrderRepo(order)
		svc, _, _ := newOrderServiceForTest(repo, occupiedTable(5))

		_, err := svc.ApplyDiscount(context.Background(), 1, decimal.NewFromFloat(60.01))

		assert.ErrorIs(t, err, ErrInvalidDiscount)
	})

	t.Run("refuses a negative discount", func(t *testing.T) {
		repo := newFakeOrderRepo(order)
		svc, _, _ := newOrderServiceForTest(repo, occupiedTable(5))

		_, err := svc.ApplyDiscount(context.Background(), 1, decimal.NewFromFloat(-1.00))

		assert.ErrorIs(t, err, ErrInvalidDiscount)
	})
}

func TestOrderService_CollectTable(t *testing.T) {
	activeOrder := func(id uint, code string, total float64) domain.Order {
		order := domain.Order{
			ID:          id,
			Code:        code,
			TableNumber: 5,
			State:       domain.OrderServed,
			Lines:       []domain.OrderLine{{Quantity: 1, UnitPrice: decimal.NewFromFloat(total)}},
		}
		order.Recalculate()
		return order
	}

	t.Run("settles every active order on the table", func(t *testing.T) {
		repo := newFakeOrderRepo(
			activeOrder(1, "PED-AAAA1111", 45.00),
			activeOrder(2, "PED-BBBB2222", 30.00),
		)
		svc, _, till := newOrderServiceForTest(repo, occupiedTable(5))

		paid, err := svc.CollectTable(context.Background(), 5, domain.PayCash, "Rosa")

		require.NoError(t, err)
		require.Len(t, paid, 2)
		for _, order := range paid {
			assert.Equal(t, domain.OrderPaid, order.State)
		}

		// One sale movement per order, each for that order's total.
		require.Len(t, till.movements, 2)
		sum := decimal.Zero
		for _, movement := range till.movements {
			assert.Equal(t, domain.MovementSale, movement.Kind)
			assert.Equal(t, domain.PayCash, movement.Method)
			assert.Equal(t, "Rosa", movement.RecordedBy)
			sum = sum.Add(movement.Amount)
		}
		assert.True(t, sum.Equal(decimal.NewFromFloat(75.00)))

		for _, id := range []uint{1, 2} {
			stored, findErr := repo.FindByID(context.Background(), id)
			require.NoError(t, findErr)
			assert.Equal(t, domain.OrderPaid, stored.State)
		}
	})

	t.Run("skips already-paid and voided orders", func(t *testing.T) {
		settled := activeOrder(1, "PED-AAAA1111", 45.00)
		settled.State = domain.OrderPaid
		cancelled := activeOrder(2, "PED-BBBB2222", 30.00)
		cancelled.State = domain.OrderVoided
		repo := newFakeOrderRepo(settled, cancelled, activeOrder(3, "PED-CCCC3333", 12.00))
		svc, _, till := newOrderServiceForTest(repo, occupiedTable(5))

		paid, err := svc.CollectTable(context.Background(), 5, domain.PayYape, "Rosa")

		require.NoError(t, err)
		require.Len(t, paid, 1)
		assert.Equal(t, "PED-CCCC3333", paid[0].Code)
		require.Len(t, till.movements, 1)
		assert.True(t, till.movements[0].Amount.Equal(decimal.NewFromFloat(12.00)))
	})

	t.Run("refuses an empty table", func(t *testing.T) {
		svc, _, _ := newOrderServiceForTest(newFakeOrderRepo(), occupiedTable(5))

		_, err := svc.CollectTable(context.Background(), 5, domain.PayCash, "Rosa")

		assert.ErrorIs(t, err, ErrNoActiveOrders)
	})

	t.Run("refuses an unknown method", func(t *testing.T) {
		repo := newFakeOrderRepo(activeOrder(1, "PED-AAAA1111", 45.00))
		svc, _, till := newOrderServiceForTest(repo, occupiedTable(5))

		_, err := svc.CollectTable(context.Background(), 5, "bitcoin", "Rosa")

		assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
		assert.Empty(t, till.movements)
	})

	t.Run("no open session leaves the orders collectable", func(t *testing.T) {
		repo := newFakeOrderRepo(activeOrder(1, "PED-AAAA1111", 45.00))
		productRepo := &fakeProductRepo{products: map[uint]domain.Product{}}
		till := &fakeSalePoster{err: ErrNoOpenSession}
		svc := NewOrderService(repo, &fakeOrderTableRepo{table: occupiedTable(5)}, productRepo, &fakeDeducter{}, till)

		_, err := svc.CollectTable(context.Background(), 5, domain.PayCash, "Rosa")

		assert.ErrorIs(t, err, ErrNoOpenSession)

		stored, findErr := repo.FindByID(context.Background(), 1)
		require.NoError(t, findErr)
		assert.Equal(t, domain.OrderServed, stored.State)
	})
}

func TestOrderService_CollectPayment(t *testing.T) {
	baseOrder := func() domain.Order {
		order := domain.Order{
			ID:          1,
			Code:        "PED-3F2A9C71",
			TableNumber: 5,
			State:       domain.OrderServed,
			Lines:       []domain.OrderLine{{Quantity: 2, UnitPrice: decimal.NewFromFloat(50.00)}},
		}
		order.Recalculate()
		return order
	}

	t.Run("split payment settles the order", func(t *testing.T) {
		repo := newFakeOrderRepo(baseOrder())
		svc, _, till := newOrderServiceForTest(repo, occupiedTable(5))

		tendered := decimal.NewFromFloat(80.00)
		got, err := svc.CollectPayment(context.Background(), 1, []PaymentInput{
			{Method: domain.PayCash, Amount: decimal.NewFromFloat(60.00), Tendered: &tendered},
			{Method: domain.PayYape, Amount: decimal.NewFromFloat(40.00)},
		}, "Rosa")

		require.NoError(t, err)
		assert.Equal(t, domain.OrderPaid, got.State)
		require.Len(t, till.movements, 2)

		cash := till.movements[0]
		assert.Equal(t, domain.MovementSale, cash.Kind)
		assert.Equal(t, "orden PED-3F2A9C71, mesa 5", cash.Description)
		assert.Equal(t, "Rosa", cash.RecordedBy)
		require.NotNil(t, cash.Change)
		assert.True(t, cash.Change.Equal(decimal.NewFromFloat(20.00)))

		yape := till.movements[1]
		assert.Equal(t, domain.PayYape, yape.Method)
		assert.Nil(t, yape.Change)
	})

	t.Run("refuses a mismatched sum", func(t *testing.T) {
		repo := newFakeOrderRepo(baseOrder())
		svc, _, till := newOrderServiceForTest(repo, occupiedTable(5))

		_, err := svc.CollectPayment(context.Background(), 1, []PaymentInput{
			{Method: domain.PayCash, Amount: decimal.NewFromFloat(99.00)},
		}, "Rosa")

		assert.ErrorIs(t, err, ErrPaymentMismatch)
		assert.Empty(t, till.movements)
	})

	t.Run("refuses an unknown method", func(t *testing.T) {
		repo := newFakeOrderRepo(baseOrder())
		svc, _, _ := newOrderServiceForTest(repo, occupiedTable(5))

		_, err := svc.CollectPayment(context.Background(), 1, []PaymentInput{
			{Method: "bitcoin", Amount: decimal.NewFromFloat(100.00)},
		}, "Rosa")

		assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	})

	t.Run("refuses tendered below the amount", func(t *testing.T) {
		repo := newFakeOrderRepo(baseOrder())
		svc, _, _ := newOrderServiceForTest(repo, occupiedTable(5))

		tendered := decimal.NewFromFloat(90.00)
		_, err := svc.CollectPayment(context.Background(), 1, []PaymentInput{
			{Method: domain.PayCash, Amount: decimal.NewFromFloat(100.00), Tendered: &tendered},
		}, "Rosa")

		assert.ErrorIs(t, err, ErrInsufficientTendered)
	})

	t.Run("refuses a terminal order", func(t *testing.T) {
		paid := baseOrder()
		paid.State = domain.OrderPaid
		repo := newFakeOrderRepo(paid)
		svc, _, _ := newOrderServiceForTest(repo, occupiedTable(5))

		_, err := svc.CollectPayment(context.Background(), 1, []PaymentInput{
			{Method: domain.PayCash, Amount: decimal.NewFromFloat(100.00)},
		}, "Rosa")

		assert.ErrorIs(t, err, ErrOrderTerminal)
	})

	t.Run("no open session aborts the payment", func(t *testing.T) {
		repo := newFakeOrderRepo(baseOrder())
		productRepo := &fakeProductRepo{products: map[uint]domain.Product{}}
		till := &fakeSalePoster{err: ErrNoOpenSession}
		svc := NewOrderService(repo, &fakeOrderTableRepo{table: occupiedTable(5)}, productRepo, &fakeDeducter{}, till)

		_, err := svc.CollectPayment(context.Background(), 1, []PaymentInput{
			{Method: domain.PayCard, Amount: decimal.NewFromFloat(100.00)},
		}, "Rosa")

		assert.ErrorIs(t, err, ErrNoOpenSession)

		// The order stays collectible.
		order, findErr := repo.FindByID(context.Background(), 1)
		require.NoError(t, findErr)
		assert.Equal(t, domain.OrderServed, order.State)
	})
}
