package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/apocighol/cevicheria-api/internal/domain"
	"github.com/apocighol/cevicheria-api/internal/repository"
)

var (
	ErrIngredientNameExists = repository.ErrIngredientNameExists
	ErrIngredientNotFound   = repository.ErrIngredientNotFound

	ErrIngredientInUse = errors.New("ingredient is referenced by recipes")
	ErrInvalidStock    = errors.New("stock cannot be negative")
)

type IngredientRepository interface {
	Create(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error)
	FindByID(ctx context.Context, id uint) (domain.Ingredient, error)
	FindByName(ctx context.Context, name string) (domain.Ingredient, error)
	FindAll(ctx context.Context) ([]domain.Ingredient, error)
	Search(ctx context.Context, term string) ([]domain.Ingredient, error)
	FindByCategory(ctx context.Context, category string) ([]domain.Ingredient, error)
	FindLowStock(ctx context.Context) ([]domain.Ingredient, error)
	FindDepleted(ctx context.Context) ([]domain.Ingredient, error)
	Update(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error)
	Delete(ctx context.Context, id uint) error
	IncreaseStock(ctx context.Context, id uint, qty decimal.Decimal) (domain.Ingredient, error)
	DeductStock(ctx context.Context, id uint, qty decimal.Decimal) (domain.Ingredient, decimal.Decimal, bool, error)
	SetStock(ctx context.Context, id uint, stock decimal.Decimal) (domain.Ingredient, decimal.Decimal, error)
	Stats(ctx context.Context) (domain.InventoryStats, error)
}

type IngredientRecipeRepository interface {
	FindProductsUsingIngredient(ctx context.Context, ingredientID uint) ([]uint, error)
}

type InventoryService struct {
	repo       IngredientRepository
	recipeRepo IngredientRecipeRepository
}

func NewInventoryService(repo IngredientRepository, recipeRepo IngredientRecipeRepository) *InventoryService {
	return &InventoryService{
		repo:       repo,
		recipeRepo: recipeRepo,
	}
}

func (s *InventoryService) Create(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error) {
	if ingredient.Stock.IsNegative() || ingredient.MinStock.IsNegative() {
		return domain.Ingredient{}, ErrInvalidStock
	}

	created, err := s.repo.Create(ctx, ingredient)
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *InventoryService) GetByID(ctx context.Context, id uint) (domain.Ingredient, error) {
	ingredient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return ingredient, nil
}

func (s *InventoryService) List(ctx context.Context) ([]domain.Ingredient, error) {
	ingredients, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return ingredients, nil
}

func (s *InventoryService) Search(ctx context.Context, term string) ([]domain.Ingredient, error) {
	ingredients, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Search -> %w", err)
	}

	return ingredients, nil
}

func (s *InventoryService) ListByCategory(ctx context.Context, category string) ([]domain.Ingredient, error) {
	ingredients, err := s.repo.FindByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByCategory -> %w", err)
	}

	return ingredients, nil
}

func (s *InventoryService) ListLowStock(ctx context.Context) ([]domain.Ingredient, error) {
	ingredients, err := s.repo.FindLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindLowStock -> %w", err)
	}

	return ingredients, nil
}

func (s *InventoryService) ListDepleted(ctx context.Context) ([]domain.Ingredient, error) {
	ingredients, err := s.repo.FindDepleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindDepleted -> %w", err)
	}

	return ingredients, nil
}

func (s *InventoryService) Update(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error) {
	if ingredient.Stock.IsNegative() || ingredient.MinStock.IsNegative() {
		return domain.Ingredient{}, ErrInvalidStock
	}

	updated, err := s.repo.Update(ctx, ingredient)
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// Delete refuses while any recipe still references the ingredient, so
// recipes never point at ghosts.
func (s *InventoryService) Delete(ctx context.Context, id uint) error {
	products, err := s.recipeRepo.FindProductsUsingIngredient(ctx, id)
	if err != nil {
		return fmt.Errorf("s.recipeRepo.FindProductsUsingIngredient -> %w", err)
	}
	if len(products) > 0 {
		return ErrIngredientInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func (s *InventoryService) IncreaseStock(ctx context.Context, id uint, qty decimal.Decimal) (domain.Ingredient, error) {
	if !qty.IsPositive() {
		return domain.Ingredient{}, ErrInvalidAmount
	}

	updated, err := s.repo.IncreaseStock(ctx, id, qty)
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("s.repo.IncreaseStock -> %w", err)
	}

	return updated, nil
}

// DeductStock is the manual adjustment entry point (spoilage, waste). It
// clamps at zero like the sale deduction does.
func (s *InventoryService) DeductStock(ctx context.Context, id uint, qty decimal.Decimal) (domain.Ingredient, decimal.Decimal, bool, error) {
	if !qty.IsPositive() {
		return domain.Ingredient{}, decimal.Zero, false, ErrInvalidAmount
	}

	updated, applied, full, err := s.repo.DeductStock(ctx, id, qty)
	if err != nil {
		return domain.Ingredient{}, decimal.Zero, false, fmt.Errorf("s.repo.DeductStock -> %w", err)
	}

	return updated, applied, full, nil
}

// SetStock overwrites the stock after a physical recount and returns the
// previous value for the audit trail.
func (s *InventoryService) SetStock(ctx context.Context, id uint, stock decimal.Decimal) (domain.Ingredient, decimal.Decimal, error) {
	if stock.IsNegative() {
		return domain.Ingredient{}, decimal.Zero, ErrInvalidStock
	}

	updated, previous, err := s.repo.SetStock(ctx, id, stock)
	if err != nil {
		return domain.Ingredient{}, decimal.Zero, fmt.Errorf("s.repo.SetStock -> %w", err)
	}

	return updated, previous, nil
}

func (s *InventoryService) Stats(ctx context.Context) (domain.InventoryStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return domain.InventoryStats{}, fmt.Errorf("s.repo.Stats -> %w", err)
	}

	return stats, nil
}
