package repository

import (
	"context"
	"fmt"

	"github.com/apocighol/cevicheria-api/internal/domain"
	"github.com/apocighol/cevicheria-api/internal/repository/dao"
)

var ErrRecipeIngredientUnknown = dao.ErrRecipeIngredientUnknown

type RecipeDAO interface {
	FindByProduct(ctx context.Context, productID uint) ([]dao.RecipeLine, error)
	ExistsForProduct(ctx context.Context, productID uint) (bool, error)
	ReplaceForProduct(ctx context.Context, productID uint, lines []dao.RecipeLine) ([]dao.RecipeLine, error)
	UpsertLine(ctx context.Context, line dao.RecipeLine) (dao.RecipeLine, error)
	DeleteLine(ctx context.Context, productID, ingredientID uint) error
	DeleteForProduct(ctx context.Context, productID uint) error
	FindProductsUsingIngredient(ctx context.Context, ingredientID uint) ([]uint, error)
}

type RecipeRepository struct {
	dao RecipeDAO
}

func NewRecipeRepository(dao RecipeDAO) *RecipeRepository {
	return &RecipeRepository{
		dao: dao,
	}
}

func (r *RecipeRepository) FindByProduct(ctx context.Context, productID uint) ([]domain.RecipeLine, error) {
	found, err := r.dao.FindByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByProduct -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

func (r *RecipeRepository) ExistsForProduct(ctx context.Context, productID uint) (bool, error) {
	exists, err := r.dao.ExistsForProduct(ctx, productID)
	if err != nil {
		return false, fmt.Errorf("r.dao.ExistsForProduct -> %w", err)
	}

	return exists, nil
}

// Replace swaps the full recipe atomically.
func (r *RecipeRepository) Replace(ctx context.Context, productID uint, lines []domain.RecipeLine) ([]domain.RecipeLine, error) {
	daoLines := make([]dao.RecipeLine, 0, len(lines))
	for _, l := range lines {
		daoLines = append(daoLines, dao.RecipeLine{
			IngredientID:    l.IngredientID,
			QuantityPerUnit: l.QuantityPerUnit,
		})
	}

	replaced, err := r.dao.ReplaceForProduct(ctx, productID, daoLines)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ReplaceForProduct -> %w", err)
	}

	return r.daoToDomainSlice(replaced), nil
}

func (r *RecipeRepository) UpsertLine(ctx context.Context, line domain.RecipeLine) (domain.RecipeLine, error) {
	saved, err := r.dao.UpsertLine(ctx, dao.RecipeLine{
		ProductID:       line.ProductID,
		IngredientID:    line.IngredientID,
		QuantityPerUnit: line.QuantityPerUnit,
	})
	if err != nil {
		return domain.RecipeLine{}, fmt.Errorf("r.dao.UpsertLine -> %w", err)
	}

	return r.daoToDomain(saved), nil
}

func (r *RecipeRepository) DeleteLine(ctx context.Context, productID, ingredientID uint) error {
	if err := r.dao.DeleteLine(ctx, productID, ingredientID); err != nil {
		return fmt.Errorf("r.dao.DeleteLine -> %w", err)
	}

	return nil
}

func (r *RecipeRepository) DeleteForProduct(ctx context.Context, productID uint) error {
	if err := r.dao.DeleteForProduct(ctx, productID); err != nil {
		return fmt.Errorf("r.dao.DeleteForProduct -> %w", err)
	}

	return nil
}

func (r *RecipeRepository) FindProductsUsingIngredient(ctx context.Context, ingredientID uint) ([]uint, error) {
	ids, err := r.dao.FindProductsUsingIngredient(ctx, ingredientID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindProductsUsingIngredient -> %w", err)
	}

	return ids, nil
}

func (r *RecipeRepository) daoToDomain(l dao.RecipeLine) domain.RecipeLine {
	return domain.RecipeLine{
		ID:              l.ID,
		ProductID:       l.ProductID,
		IngredientID:    l.IngredientID,
		QuantityPerUnit: l.QuantityPerUnit,
	}
}

func (r *RecipeRepository) daoToDomainSlice(lines []dao.RecipeLine) []domain.RecipeLine {
	result := make([]domain.RecipeLine, 0, len(lines))
	for _, l := range lines {
		result = append(result, r.daoToDomain(l))
	}

	return result
}
