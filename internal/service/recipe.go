package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/apocighol/cevicheria-api/internal/domain"
	"github.com/apocighol/cevicheria-api/internal/repository"
)

var (
	ErrRecipeIngredientUnknown = repository.ErrRecipeIngredientUnknown

	ErrEmptyRecipe           = errors.New("recipe needs at least one line")
	ErrInvalidRecipeQuantity = errors.New("recipe quantity must be positive")
)

type RecipeRepository interface {
	FindByProduct(ctx context.Context, productID uint) ([]domain.RecipeLine, error)
	ExistsForProduct(ctx context.Context, productID uint) (bool, error)
	Replace(ctx context.Context, productID uint, lines []domain.RecipeLine) ([]domain.RecipeLine, error)
	UpsertLine(ctx context.Context, line domain.RecipeLine) (domain.RecipeLine, error)
	DeleteLine(ctx context.Context, productID, ingredientID uint) error
	DeleteForProduct(ctx context.Context, productID uint) error
	FindProductsUsingIngredient(ctx context.Context, ingredientID uint) ([]uint, error)
}

type RecipeIngredientRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Ingredient, error)
	DeductStock(ctx context.Context, id uint, qty decimal.Decimal) (domain.Ingredient, decimal.Decimal, bool, error)
}

type RecipeProductRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Product, error)
}

type RecipeService struct {
	repo           RecipeRepository
	ingredientRepo RecipeIngredientRepository
	productRepo    RecipeProductRepository
}

func NewRecipeService(repo RecipeRepository, ingredientRepo RecipeIngredientRepository, productRepo RecipeProductRepository) *RecipeService {
	return &RecipeService{
		repo:           repo,
		ingredientRepo: ingredientRepo,
		productRepo:    productRepo,
	}
}

// Define replaces the whole recipe of a product in one shot. The previous
// lines are gone once this returns, so callers send the complete new set.
func (s *RecipeService) Define(ctx context.Context, productID uint, lines []domain.RecipeLine) ([]domain.RecipeLine, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyRecipe
	}
	for _, line := range lines {
		if !line.QuantityPerUnit.IsPositive() {
			return nil, ErrInvalidRecipeQuantity
		}
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("s.productRepo.FindByID -> %w", err)
	}

	replaced, err := s.repo.Replace(ctx, productID, lines)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Replace -> %w", err)
	}

	return replaced, nil
}

func (s *RecipeService) Get(ctx context.Context, productID uint) ([]domain.RecipeLine, error) {
	lines, err := s.repo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByProduct -> %w", err)
	}

	return lines, nil
}

func (s *RecipeService) UpsertLine(ctx context.Context, line domain.RecipeLine) (domain.RecipeLine, error) {
	if !line.QuantityPerUnit.IsPositive() {
		return domain.RecipeLine{}, ErrInvalidRecipeQuantity
	}

	if _, err := s.productRepo.FindByID(ctx, line.ProductID); err != nil {
		return domain.RecipeLine{}, fmt.Errorf("s.productRepo.FindByID -> %w", err)
	}
	if _, err := s.ingredientRepo.FindByID(ctx, line.IngredientID); err != nil {
		return domain.RecipeLine{}, fmt.Errorf("s.ingredientRepo.FindByID -> %w", err)
	}

	saved, err := s.repo.UpsertLine(ctx, line)
	if err != nil {
		return domain.RecipeLine{}, fmt.Errorf("s.repo.UpsertLine -> %w", err)
	}

	return saved, nil
}

func (s *RecipeService) RemoveLine(ctx context.Context, productID, ingredientID uint) error {
	if err := s.repo.DeleteLine(ctx, productID, ingredientID); err != nil {
		return fmt.Errorf("s.repo.DeleteLine -> %w", err)
	}

	return nil
}

func (s *RecipeService) Remove(ctx context.Context, productID uint) error {
	if err := s.repo.DeleteForProduct(ctx, productID); err != nil {
		return fmt.Errorf("s.repo.DeleteForProduct -> %w", err)
	}

	return nil
}

// CheckAvailability is advisory only. It compares current stock against the
// recipe scaled by quantity without reserving anything, so two concurrent
// checks can both pass and the later sale still clamps at zero.
func (s *RecipeService) CheckAvailability(ctx context.Context, productID uint, quantity int) (domain.AvailabilityCheck, error) {
	lines, err := s.repo.FindByProduct(ctx, productID)
	if err != nil {
		return domain.AvailabilityCheck{}, fmt.Errorf("s.repo.FindByProduct -> %w", err)
	}

	// Products without a recipe never block a sale.
	check := domain.AvailabilityCheck{Available: true}
	qty := decimal.NewFromInt(int64(quantity))

	for _, line := range lines {
		ingredient, err := s.ingredientRepo.FindByID(ctx, line.IngredientID)
		if err != nil {
			return domain.AvailabilityCheck{}, fmt.Errorf("s.ingredientRepo.FindByID -> %w", err)
		}

		required := line.QuantityPerUnit.Mul(qty)
		if ingredient.Stock.LessThan(required) {
			check.Available = false
			check.Shortfalls = append(check.Shortfalls, domain.AvailabilityShortfall{
				IngredientID:   ingredient.ID,
				IngredientName: ingredient.Name,
				Required:       required,
				Available:      ingredient.Stock,
			})
		}
	}

	return check, nil
}

// DeductForSale walks the order lines and deducts each ingredient by recipe
// quantity times line quantity. Stocks clamp at zero instead of failing, so
// the kitchen is never blocked by bookkeeping; depleted ingredients come
// back as alerts for the floor staff.
func (s *RecipeService) DeductForSale(ctx context.Context, lines []domain.OrderLine) (domain.DeductionSummary, error) {
	summary := domain.DeductionSummary{}
	alerted := make(map[uint]bool)

	for _, line := range lines {
		if line.ProductID == nil {
			continue
		}

		recipe, err := s.repo.FindByProduct(ctx, *line.ProductID)
		if err != nil {
			return domain.DeductionSummary{}, fmt.Errorf("s.repo.FindByProduct -> %w", err)
		}
		if len(recipe) == 0 {
			zap.L().Debug("product has no recipe, nothing to deduct",
				zap.Uint("product_id", *line.ProductID),
				zap.String("product", line.ProductName),
			)
			continue
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		for _, rl := range recipe {
			requested := rl.QuantityPerUnit.Mul(qty)

			ingredient, applied, full, err := s.ingredientRepo.DeductStock(ctx, rl.IngredientID, requested)
			if err != nil {
				return domain.DeductionSummary{}, fmt.Errorf("s.ingredientRepo.DeductStock -> %w", err)
			}

			summary.Results = append(summary.Results, domain.DeductionResult{
				IngredientID:   ingredient.ID,
				IngredientName: ingredient.Name,
				Requested:      requested,
				Applied:        applied,
				Remaining:      ingredient.Stock,
				Full:           full,
			})

			if ingredient.IsDepleted() && !alerted[ingredient.ID] {
				alerted[ingredient.ID] = true
				summary.DepletedAlerts = append(summary.DepletedAlerts, ingredient.Name)
				zap.L().Warn("ingredient depleted during sale",
					zap.Uint("ingredient_id", ingredient.ID),
					zap.String("ingredient", ingredient.Name),
				)
			}
		}
	}

	return summary, nil
}
