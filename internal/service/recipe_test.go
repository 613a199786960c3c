package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/apocighol/cevicheria-api/internal/domain"
)

type fakeRecipeRepo struct {
	recipes map[uint][]domain.RecipeLine
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{recipes: make(map[uint][]domain.RecipeLine)}
}

func (r *fakeRecipeRepo) FindByProduct(_ context.Context, productID uint) ([]domain.RecipeLine, error) {
	return r.recipes[productID], nil
}

func (r *fakeRecipeRepo) ExistsForProduct(_ context.Context, productID uint) (bool, error) {
	return len(r.recipes[productID]) > 0, nil
}

func (r *fakeRecipeRepo) Replace(_ context.Context, productID uint, lines []domain.RecipeLine) ([]domain.RecipeLine, error) {
	replaced := make([]domain.RecipeLine, len(lines))
	for i, line := range lines {
		line.ProductID = productID
		replaced[i] = line
	}
	r.recipes[productID] = replaced
	return replaced, nil
}

func (r *fakeRecipeRepo) UpsertLine(_ context.Context, line domain.RecipeLine) (domain.RecipeLine, error) {
	lines := r.recipes[line.ProductID]
	for i, existing := range lines {
		if existing.IngredientID == line.IngredientID {
			lines[i] = line
			return line, nil
		}
	}
	r.recipes[line.ProductID] = append(lines, line)
	return line, nil
}

func (r *fakeRecipeRepo) DeleteLine(_ context.Context, productID, ingredientID uint) error {
	lines := r.recipes[productID]
	for i, line := range lines {
		if line.IngredientID == ingredientID {
			r.recipes[productID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeRecipeRepo) DeleteForProduct(_ context.Context, productID uint) error {
	delete(r.recipes, productID)
	return nil
}

func (r *fakeRecipeRepo) FindProductsUsingIngredient(_ context.Context, ingredientID uint) ([]uint, error) {
	var out []uint
	for productID, lines := range r.recipes {
		for _, line := range lines {
			if line.IngredientID == ingredientID {
				out = append(out, productID)
				break
			}
		}
	}
	return out, nil
}

type fakeIngredientRepo struct {
	ingredients map[uint]*domain.Ingredient
}

func newFakeIngredientRepo(ingredients ...domain.Ingredient) *fakeIngredientRepo {
	repo := &fakeIngredientRepo{ingredients: make(map[uint]*domain.Ingredient)}
	for i := range ingredients {
		ing := ingredients[i]
		repo.ingredients[ing.ID] = &ing
	}
	return repo
}

func (r *fakeIngredientRepo) FindByID(_ context.Context, id uint) (domain.Ingredient, error) {
	ingredient, ok := r.ingredients[id]
	if !ok {
		return domain.Ingredient{}, ErrIngredientNotFound
	}
	return *ingredient, nil
}

func (r *fakeIngredientRepo) DeductStock(_ context.Context, id uint, qty decimal.Decimal) (domain.Ingredient, decimal.Decimal, bool, error) {
	ingredient, ok := r.ingredients[id]
	if !ok {
		return domain.Ingredient{}, decimal.Zero, false, ErrIngredientNotFound
	}
	applied, full := ingredient.DeductStock(qty)
	return *ingredient, applied, full, nil
}

type fakeRecipeProductRepo struct {
	products map[uint]domain.Product
}

func (r *fakeRecipeProductRepo) FindByID(_ context.Context, id uint) (domain.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return product, nil
}

func newRecipeServiceForTest(recipes *fakeRecipeRepo, ingredients *fakeIngredientRepo, products ...domain.Product) *RecipeService {
	productRepo := &fakeRecipeProductRepo{products: make(map[uint]domain.Product)}
	for _, product := range products {
		productRepo.products[product.ID] = product
	}
	return NewRecipeService(recipes, ingredients, productRepo)
}

func productID(id uint) *uint {
	return &id
}

func TestRecipeService_Define(t *testing.T) {
	recipes := newFakeRecipeRepo()
	recipes.recipes[1] = []domain.RecipeLine{{ProductID: 1, IngredientID: 9, QuantityPerUnit: decimal.NewFromFloat(1.000)}}
	svc := newRecipeServiceForTest(recipes, newFakeIngredientRepo(), domain.Product{ID: 1, Name: "Ceviche"})

	lines := []domain.RecipeLine{
		{IngredientID: 1, QuantityPerUnit: decimal.NewFromFloat(0.250)},
		{IngredientID: 2, QuantityPerUnit: decimal.NewFromFloat(0.100)},
	}

	replaced, err := svc.Define(context.Background(), 1, lines)

	require.NoError(t, err)
	require.Len(t, replaced, 2)
	// The old line with ingredient 9 is gone, not merged.
	for _, line := range replaced {
		assert.NotEqual(t, uint(9), line.IngredientID)
		assert.Equal(t, uint(1), line.ProductID)
	}
}

func TestRecipeService_Define_Refusals(t *testing.T) {
	svc := newRecipeServiceForTest(newFakeRecipeRepo(), newFakeIngredientRepo(), domain.Product{ID: 1})

	t.Run("empty recipe", func(t *testing.T) {
		_, err := svc.Define(context.Background(), 1, nil)
		assert.ErrorIs(t, err, ErrEmptyRecipe)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := svc.Define(context.Background(), 1, []domain.RecipeLine{
			{IngredientID: 1, QuantityPerUnit: decimal.Zero},
		})
		assert.ErrorIs(t, err, ErrInvalidRecipeQuantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.Define(context.Background(), 99, []domain.RecipeLine{
			{IngredientID: 1, QuantityPerUnit: decimal.NewFromFloat(0.100)},
		})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRecipeService_CheckAvailability(t *testing.T) {
	recipes := newFakeRecipeRepo()
	recipes.recipes[1] = []domain.RecipeLine{
		{ProductID: 1, IngredientID: 1, QuantityPerUnit: decimal.NewFromFloat(0.250)},
		{ProductID: 1, IngredientID: 2, QuantityPerUnit: decimal.NewFromFloat(0.050)},
	}
	ingredients := newFakeIngredientRepo(
		domain.Ingredient{ID: 1, Name: "pescado", Stock: decimal.NewFromFloat(1.000)},
		domain.Ingredient{ID: 2, Name: "limon", Stock: decimal.NewFromFloat(0.075)},
	)
	svc := newRecipeServiceForTest(recipes, ingredients, domain.Product{ID: 1})

	t.Run("covered quantity", func(t *testing.T) {
		check, err := svc.CheckAvailability(context.Background(), 1, 1)

		require.NoError(t, err)
		assert.True(t, check.Available)
		assert.Empty(t, check.Shortfalls)
	})

	t.Run("reports shortfalls", func(t *testing.T) {
		check, err := svc.CheckAvailability(context.Background(), 1, 4)

		require.NoError(t, err)
		assert.False(t, check.Available)
		require.Len(t, check.Shortfalls, 1)
		assert.Equal(t, "limon", check.Shortfalls[0].IngredientName)
		assert.True(t, check.Shortfalls[0].Required.Equal(decimal.NewFromFloat(0.200)))
		assert.True(t, check.Shortfalls[0].Available.Equal(decimal.NewFromFloat(0.075)))
	})

	t.Run("advisory only, stock untouched", func(t *testing.T) {
		_, err := svc.CheckAvailability(context.Background(), 1, 4)
		require.NoError(t, err)

		ingredient, err := ingredients.FindByID(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, ingredient.Stock.Equal(decimal.NewFromFloat(1.000)))
	})

	t.Run("no recipe never blocks", func(t *testing.T) {
		check, err := svc.CheckAvailability(context.Background(), 77, 100)

		require.NoError(t, err)
		assert.True(t, check.Available)
	})
}

func TestRecipeService_DeductForSale(t *testing.T) {
	recipes := newFakeRecipeRepo()
	recipes.recipes[1] = []domain.RecipeLine{
		{ProductID: 1, IngredientID: 1, QuantityPerUnit: decimal.NewFromFloat(0.250)},
		{ProductID: 1, IngredientID: 2, QuantityPerUnit: decimal.NewFromFloat(0.100)},
	}
	ingredients := newFakeIngredientRepo(
		domain.Ingredient{ID: 1, Name: "pescado", Stock: decimal.NewFromFloat(1.000)},
		domain.Ingredient{ID: 2, Name: "limon", Stock: decimal.NewFromFloat(0.150)},
	)
	svc := newRecipeServiceForTest(recipes, ingredients, domain.Product{ID: 1})

	summary, err := svc.DeductForSale(context.Background(), []domain.OrderLine{
		{ProductID: productID(1), Quantity: 2},
	})

	require.NoError(t, err)
	require.Len(t, summary.Results, 2)

	pescado := summary.Results[0]
	assert.True(t, pescado.Requested.Equal(decimal.NewFromFloat(0.500)))
	assert.True(t, pescado.Applied.Equal(decimal.NewFromFloat(0.500)))
	assert.True(t, pescado.Full)
	assert.True(t, pescado.Remaining.Equal(decimal.NewFromFloat(0.500)))

	// Limon needed 0.200 but only 0.150 was left: clamped, never negative.
	limon := summary.Results[1]
	assert.True(t, limon.Requested.Equal(decimal.NewFromFloat(0.200)))
	assert.True(t, limon.Applied.Equal(decimal.NewFromFloat(0.150)))
	assert.False(t, limon.Full)
	assert.True(t, limon.Remaining.IsZero())
	assert.True(t, limon.Shortfall().Equal(decimal.NewFromFloat(0.050)))

	assert.Equal(t, []string{"limon"}, summary.DepletedAlerts)
}

func TestRecipeService_DeductForSale_DedupesAlerts(t *testing.T) {
	recipes := newFakeRecipeRepo()
	recipes.recipes[1] = []domain.RecipeLine{
		{ProductID: 1, IngredientID: 1, QuantityPerUnit: decimal.NewFromFloat(0.500)},
	}
	recipes.recipes[2] = []domain.RecipeLine{
		{ProductID: 2, IngredientID: 1, QuantityPerUnit: decimal.NewFromFloat(0.500)},
	}
	ingredients := newFakeIngredientRepo(
		domain.Ingredient{ID: 1, Name: "pescado", Stock: decimal.NewFromFloat(0.400)},
	)
	svc := newRecipeServiceForTest(recipes, ingredients, domain.Product{ID: 1}, domain.Product{ID: 2})

	summary, err := svc.DeductForSale(context.Background(), []domain.OrderLine{
		{ProductID: productID(1), Quantity: 1},
		{ProductID: productID(2), Quantity: 1},
	})

	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, []string{"pescado"}, summary.DepletedAlerts)
}

func TestRecipeService_DeductForSale_SkipsDetachedLines(t *testing.T) {
	svc := newRecipeServiceForTest(newFakeRecipeRepo(), newFakeIngredientRepo())

	// A line whose product was deleted keeps its snapshot but has no
	// product reference left to resolve a recipe from.
	summary, err := svc.DeductForSale(context.Background(), []domain.OrderLine{
		{ProductID: nil, ProductName: "plato retirado", Quantity: 1},
	})

	require.NoError(t, err)
	assert.Empty(t, summary.Results)
}

func TestRecipeService_DeductForSale_NoRecipeIsALoggedNoop(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	svc := newRecipeServiceForTest(newFakeRecipeRepo(), newFakeIngredientRepo(), domain.Product{ID: 42})

	// Drinks and other recipe-less products sell without touching stock.
	summary, err := svc.DeductForSale(context.Background(), []domain.OrderLine{
		{ProductID: productID(42), ProductName: "chicha morada", Quantity: 3},
	})

	require.NoError(t, err)
	assert.Empty(t, summary.Results)
	assert.Empty(t, summary.DepletedAlerts)

	entries := logs.FilterMessage("product has no recipe, nothing to deduct").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "chicha morada", entries[0].ContextMap()["product"])
}

func TestRecipeService_UpsertLine(t *testing.T) {
	recipes := newFakeRecipeRepo()
	ingredients := newFakeIngredientRepo(domain.Ingredient{ID: 1, Name: "pescado"})
	svc := newRecipeServiceForTest(recipes, ingredients, domain.Product{ID: 1})

	line, err := svc.UpsertLine(context.Background(), domain.RecipeLine{
		ProductID:       1,
		IngredientID:    1,
		QuantityPerUnit: decimal.NewFromFloat(0.300),
	})

	require.NoError(t, err)
	assert.Equal(t, uint(1), line.IngredientID)

	t.Run("unknown ingredient", func(t *testing.T) {
		_, err := svc.UpsertLine(context.Background(), domain.RecipeLine{
			ProductID:       1,
			IngredientID:    99,
			QuantityPerUnit: decimal.NewFromFloat(0.300),
		})
		assert.ErrorIs(t, err, ErrIngredientNotFound)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := svc.UpsertLine(context.Background(), domain.RecipeLine{
			ProductID:       1,
			IngredientID:    1,
			QuantityPerUnit: decimal.Zero,
		})
		assert.ErrorIs(t, err, ErrInvalidRecipeQuantity)
	})
}
