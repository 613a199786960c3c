package service

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apocighol/cevicheria-api/internal/domain"
)

type fakeInventoryRepo struct {
	ingredients map[uint]domain.Ingredient
	nextID      uint
}

func newFakeInventoryRepo(ingredients ...domain.Ingredient) *fakeInventoryRepo {
	repo := &fakeInventoryRepo{ingredients: make(map[uint]domain.Ingredient), nextID: 1}
	for _, ingredient := range ingredients {
		repo.ingredients[ingredient.ID] = ingredient
		if ingredient.ID >= repo.nextID {
			repo.nextID = ingredient.ID + 1
		}
	}
	return repo
}

func (r *fakeInventoryRepo) Create(_ context.Context, ingredient domain.Ingredient) (domain.Ingredient, error) {
	for _, existing := range r.ingredients {
		if strings.EqualFold(existing.Name, ingredient.Name) {
			return domain.Ingredient{}, ErrIngredientNameExists
		}
	}
	ingredient.ID = r.nextID
	r.nextID++
	r.ingredients[ingredient.ID] = ingredient
	return ingredient, nil
}

func (r *fakeInventoryRepo) FindByID(_ context.Context, id uint) (domain.Ingredient, error) {
	ingredient, ok := r.ingredients[id]
	if !ok {
		return domain.Ingredient{}, ErrIngredientNotFound
	}
	return ingredient, nil
}

func (r *fakeInventoryRepo) FindByName(_ context.Context, name string) (domain.Ingredient, error) {
	for _, ingredient := range r.ingredients {
		if strings.EqualFold(ingredient.Name, name) {
			return ingredient, nil
		}
	}
	return domain.Ingredient{}, ErrIngredientNotFound
}

func (r *fakeInventoryRepo) FindAll(_ context.Context) ([]domain.Ingredient, error) {
	out := make([]domain.Ingredient, 0, len(r.ingredients))
	for _, ingredient := range r.ingredients {
		out = append(out, ingredient)
	}
	return out, nil
}

func (r *fakeInventoryRepo) Search(_ context.Context, term string) ([]domain.Ingredient, error) {
	var out []domain.Ingredient
	for _, ingredient := range r.ingredients {
		if strings.Contains(strings.ToLower(ingredient.Name), strings.ToLower(term)) {
			out = append(out, ingredient)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) FindByCategory(_ context.Context, category string) ([]domain.Ingredient, error) {
	var out []domain.Ingredient
	for _, ingredient := range r.ingredients {
		if ingredient.Category == category {
			out = append(out, ingredient)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) FindLowStock(_ context.Context) ([]domain.Ingredient, error) {
	var out []domain.Ingredient
	for _, ingredient := range r.ingredients {
		if ingredient.IsLow() {
			out = append(out, ingredient)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) FindDepleted(_ context.Context) ([]domain.Ingredient, error) {
	var out []domain.Ingredient
	for _, ingredient := range r.ingredients {
		if ingredient.IsDepleted() {
			out = append(out, ingredient)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) Update(_ context.Context, ingredient domain.Ingredient) (domain.Ingredient, error) {
	if _, ok := r.ingredients[ingredient.ID]; !ok {
		return domain.Ingredient{}, ErrIngredientNotFound
	}
	r.ingredients[ingredient.ID] = ingredient
	return ingredient, nil
}

func (r *fakeInventoryRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.ingredients[id]; !ok {
		return ErrIngredientNotFound
	}
	delete(r.ingredients, id)
	return nil
}

func (r *fakeInventoryRepo) IncreaseStock(_ context.Context, id uint, qty decimal.Decimal) (domain.Ingredient, error) {
	ingredient, ok := r.ingredients[id]
	if !ok {
		return domain.Ingredient{}, ErrIngredientNotFound
	}
	ingredient.IncreaseStock(qty)
	r.ingredients[id] = ingredient
	return ingredient, nil
}

func (r *fakeInventoryRepo) DeductStock(_ context.Context, id uint, qty decimal.Decimal) (domain.Ingredient, decimal.Decimal, bool, error) {
	ingredient, ok := r.ingredients[id]
	if !ok {
		return domain.Ingredient{}, decimal.Zero, false, ErrIngredientNotFound
	}
	applied, full := ingredient.DeductStock(qty)
	r.ingredients[id] = ingredient
	return ingredient, applied, full, nil
}

func (r *fakeInventoryRepo) SetStock(_ context.Context, id uint, stock decimal.Decimal) (domain.Ingredient, decimal.Decimal, error) {
	ingredient, ok := r.ingredients[id]
	if !ok {
		return domain.Ingredient{}, decimal.Zero, ErrIngredientNotFound
	}
	previous := ingredient.Stock
	ingredient.Stock = stock
	r.ingredients[id] = ingredient
	return ingredient, previous, nil
}

func (r *fakeInventoryRepo) Stats(_ context.Context) (domain.InventoryStats, error) {
	stats := domain.InventoryStats{TotalIngredients: int64(len(r.ingredients))}
	seen := make(map[string]bool)
	for _, ingredient := range r.ingredients {
		if ingredient.IsLow() {
			stats.LowStock++
		}
		if ingredient.IsDepleted() {
			stats.Depleted++
		}
		if ingredient.Category != "" && !seen[ingredient.Category] {
			seen[ingredient.Category] = true
			stats.Categories = append(stats.Categories, ingredient.Category)
		}
	}
	return stats, nil
}

type fakeIngredientRecipeRepo struct {
	usedBy map[uint][]uint
}

func (r *fakeIngredientRecipeRepo) FindProductsUsingIngredient(_ context.Context, ingredientID uint) ([]uint, error) {
	return r.usedBy[ingredientID], nil
}

func TestInventoryService_Create(t *testing.T) {
	svc := NewInventoryService(newFakeInventoryRepo(), &fakeIngredientRecipeRepo{})

	created, err := svc.Create(context.Background(), domain.Ingredient{
		Name:     "pescado",
		Category: "mariscos",
		Unit:     "kg",
		Stock:    decimal.NewFromFloat(10.000),
		MinStock: decimal.NewFromFloat(2.000),
	})

	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	t.Run("duplicate name", func(t *testing.T) {
		_, err := svc.Create(context.Background(), domain.Ingredient{Name: "Pescado", Unit: "kg"})
		assert.ErrorIs(t, err, ErrIngredientNameExists)
	})

	t.Run("negative stock", func(t *testing.T) {
		_, err := svc.Create(context.Background(), domain.Ingredient{
			Name:  "limon",
			Unit:  "kg",
			Stock: decimal.NewFromFloat(-1.000),
		})
		assert.ErrorIs(t, err, ErrInvalidStock)
	})
}

func TestInventoryService_Delete(t *testing.T) {
	ingredient := domain.Ingredient{ID: 1, Name: "pescado", Unit: "kg"}

	t.Run("refuses while recipes reference it", func(t *testing.T) {
		repo := newFakeInventoryRepo(ingredient)
		recipeRepo := &fakeIngredientRecipeRepo{usedBy: map[uint][]uint{1: {4, 7}}}
		svc := NewInventoryService(repo, recipeRepo)

		err := svc.Delete(context.Background(), 1)

		assert.ErrorIs(t, err, ErrIngredientInUse)
	})

	t.Run("deletes an unreferenced ingredient", func(t *testing.T) {
		repo := newFakeInventoryRepo(ingredient)
		svc := NewInventoryService(repo, &fakeIngredientRecipeRepo{})

		err := svc.Delete(context.Background(), 1)

		require.NoError(t, err)
		_, err = svc.GetByID(context.Background(), 1)
		assert.ErrorIs(t, err, ErrIngredientNotFound)
	})
}

func TestInventoryService_StockAdjustments(t *testing.T) {
	base := domain.Ingredient{ID: 1, Name: "limon", Unit: "kg", Stock: decimal.NewFromFloat(5.000)}

	t.Run("increase", func(t *testing.T) {
		svc := NewInventoryService(newFakeInventoryRepo(base), &fakeIngredientRecipeRepo{})

		updated, err := svc.IncreaseStock(context.Background(), 1, decimal.NewFromFloat(2.500))

		require.NoError(t, err)
		assert.True(t, updated.Stock.Equal(decimal.NewFromFloat(7.500)))
	})

	t.Run("increase refuses non-positive", func(t *testing.T) {
		svc := NewInventoryService(newFakeInventoryRepo(base), &fakeIngredientRecipeRepo{})

		_, err := svc.IncreaseStock(context.Background(), 1, decimal.Zero)

		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("deduct clamps at zero", func(t *testing.T) {
		svc := NewInventoryService(newFakeInventoryRepo(base), &fakeIngredientRecipeRepo{})

		updated, applied, full, err := svc.DeductStock(context.Background(), 1, decimal.NewFromFloat(8.000))

		require.NoError(t, err)
		assert.True(t, updated.Stock.IsZero())
		assert.True(t, applied.Equal(decimal.NewFromFloat(5.000)))
		assert.False(t, full)
	})

	t.Run("set returns the previous value", func(t *testing.T) {
		svc := NewInventoryService(newFakeInventoryRepo(base), &fakeIngredientRecipeRepo{})

		updated, previous, err := svc.SetStock(context.Background(), 1, decimal.NewFromFloat(12.000))

		require.NoError(t, err)
		assert.True(t, updated.Stock.Equal(decimal.NewFromFloat(12.000)))
		assert.True(t, previous.Equal(decimal.NewFromFloat(5.000)))
	})

	t.Run("set refuses negative", func(t *testing.T) {
		svc := NewInventoryService(newFakeInventoryRepo(base), &fakeIngredientRecipeRepo{})

		_, _, err := svc.SetStock(context.Background(), 1, decimal.NewFromFloat(-0.001))

		assert.ErrorIs(t, err, ErrInvalidStock)
	})
}

func TestInventoryService_Stats(t *testing.T) {
	svc := NewInventoryService(newFakeInventoryRepo(
		domain.Ingredient{ID: 1, Name: "pescado", Category: "mariscos", Stock: decimal.NewFromFloat(10.000), MinStock: decimal.NewFromFloat(2.000)},
		domain.Ingredient{ID: 2, Name: "limon", Category: "frutas", Stock: decimal.NewFromFloat(1.000), MinStock: decimal.NewFromFloat(3.000)},
		domain.Ingredient{ID: 3, Name: "aji", Category: "verduras", Stock: decimal.Zero, MinStock: decimal.NewFromFloat(1.000)},
	), &fakeIngredientRecipeRepo{})

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalIngredients)
	// Depleted ingredients count as low too.
	assert.Equal(t, int64(2), stats.LowStock)
	assert.Equal(t, int64(1), stats.Depleted)
	assert.Len(t, stats.Categories, 3)
}
