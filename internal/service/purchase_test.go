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

type fakePurchaseRepo struct {
	purchases map[uint]domain.Purchase
	nextID    uint
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{purchases: make(map[uint]domain.Purchase), nextID: 1}
}

func (r *fakePurchaseRepo) Create(_ context.Context, purchase domain.Purchase) (domain.Purchase, error) {
	purchase.ID = r.nextID
	r.nextID++
	purchase.CreatedAt = time.Now()
	r.purchases[purchase.ID] = purchase
	return purchase, nil
}

func (r *fakePurchaseRepo) FindByID(_ context.Context, id uint) (domain.Purchase, error) {
	purchase, ok := r.purchases[id]
	if !ok {
		return domain.Purchase{}, ErrPurchaseNotFound
	}
	return purchase, nil
}

func (r *fakePurchaseRepo) FindByCode(_ context.Context, code string) (domain.Purchase, error) {
	for _, purchase := range r.purchases {
		if purchase.Code == code {
			return purchase, nil
		}
	}
	return domain.Purchase{}, ErrPurchaseNotFound
}

func (r *fakePurchaseRepo) FindAll(_ context.Context) ([]domain.Purchase, error) {
	out := make([]domain.Purchase, 0, len(r.purchases))
	for _, purchase := range r.purchases {
		out = append(out, purchase)
	}
	return out, nil
}

func (r *fakePurchaseRepo) FindByDay(_ context.Context, _ time.Time) ([]domain.Purchase, error) {
	return r.FindAll(context.Background())
}

func (r *fakePurchaseRepo) SumByDay(_ context.Context, _ time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, purchase := range r.purchases {
		sum = sum.Add(purchase.Total)
	}
	return sum, nil
}

func TestPurchaseService_Register(t *testing.T) {
	svc := NewPurchaseService(newFakePurchaseRepo())

	purchase, err := svc.Register(context.Background(), "Terminal Pesquero", "entrega temprano", []PurchaseDetailInput{
		{IngredientID: 1, Quantity: decimal.NewFromFloat(5.000), UnitCost: decimal.NewFromFloat(18.00)},
		{IngredientID: 2, Quantity: decimal.NewFromFloat(3.000), UnitCost: decimal.NewFromFloat(4.50)},
	})

	require.NoError(t, err)
	assert.Regexp(t, `^COM-[0-9A-F]{8}$`, purchase.Code)
	assert.Equal(t, "Terminal Pesquero", purchase.Supplier)
	require.Len(t, purchase.Details, 2)

	// Subtotals and the total are server-side arithmetic, never caller input.
	assert.True(t, purchase.Details[0].Subtotal.Equal(decimal.NewFromFloat(90.00)))
	assert.True(t, purchase.Details[1].Subtotal.Equal(decimal.NewFromFloat(13.50)))
	assert.True(t, purchase.Total.Equal(decimal.NewFromFloat(103.50)))
}

func TestPurchaseService_Register_Refusals(t *testing.T) {
	svc := NewPurchaseService(newFakePurchaseRepo())

	t.Run("empty purchase", func(t *testing.T) {
		_, err := svc.Register(context.Background(), "x", "", nil)
		assert.ErrorIs(t, err, ErrEmptyPurchase)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := svc.Register(context.Background(), "x", "", []PurchaseDetailInput{
			{IngredientID: 1, Quantity: decimal.Zero, UnitCost: decimal.NewFromFloat(10.00)},
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("negative unit cost", func(t *testing.T) {
		_, err := svc.Register(context.Background(), "x", "", []PurchaseDetailInput{
			{IngredientID: 1, Quantity: decimal.NewFromFloat(1.000), UnitCost: decimal.NewFromFloat(-0.01)},
		})
		assert.ErrorIs(t, err, ErrInvalidUnitCost)
	})

	t.Run("free goods are fine", func(t *testing.T) {
		purchase, err := svc.Register(context.Background(), "x", "muestra gratis", []PurchaseDetailInput{
			{IngredientID: 1, Quantity: decimal.NewFromFloat(1.000), UnitCost: decimal.Zero},
		})
		require.NoError(t, err)
		assert.True(t, purchase.Total.IsZero())
	})
}

func TestPurchaseService_GetByCode(t *testing.T) {
	repo := newFakePurchaseRepo()
	svc := NewPurchaseService(repo)

	created, err := svc.Register(context.Background(), "Terminal Pesquero", "", []PurchaseDetailInput{
		{IngredientID: 1, Quantity: decimal.NewFromFloat(2.000), UnitCost: decimal.NewFromFloat(18.00)},
	})
	require.NoError(t, err)

	found, err := svc.GetByCode(context.Background(), created.Code)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetByCode(context.Background(), "COM-00000000")
	assert.ErrorIs(t, err, ErrPurchaseNotFound)
}
