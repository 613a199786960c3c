package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/apocighol/cevicheria-api/internal/domain"
	"github.com/apocighol/cevicheria-api/internal/repository/dao"
)

var (
	ErrIngredientNameExists = dao.ErrIngredientNameExists
	ErrIngredientNotFound   = dao.ErrIngredientNotFound
)

type IngredientDAO interface {
	Insert(ctx context.Context, ingredient dao.Ingredient) (dao.Ingredient, error)
	FindByID(ctx context.Context, id uint) (dao.Ingredient, error)
	FindByName(ctx context.Context, name string) (dao.Ingredient, error)
	FindAll(ctx context.Context) ([]dao.Ingredient, error)
	Search(ctx context.Context, term string) ([]dao.Ingredient, error)
	FindByCategory(ctx context.Context, category string) ([]dao.Ingredient, error)
	FindLowStock(ctx context.Context) ([]dao.Ingredient, error)
	FindDepleted(ctx context.Context) ([]dao.Ingredient, error)
	CountLowStock(ctx context.Context) (int64, error)
	CountDepleted(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
	Categories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, ingredient dao.Ingredient) (dao.Ingredient, error)
	Delete(ctx context.Context, id uint) error
	IncreaseStock(ctx context.Context, id uint, qty decimal.Decimal) (dao.Ingredient, error)
	DeductStock(ctx context.Context, id uint, qty decimal.Decimal) (dao.Ingredient, decimal.Decimal, bool, error)
	SetStock(ctx context.Context, id uint, stock decimal.Decimal) (dao.Ingredient, decimal.Decimal, error)
}

type IngredientRepository struct {
	dao IngredientDAO
}

func NewIngredientRepository(dao IngredientDAO) *IngredientRepository {
	return &IngredientRepository{
		dao: dao,
	}
}

func (r *IngredientRepository) Create(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(ingredient))
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *IngredientRepository) FindByID(ctx context.Context, id uint) (domain.Ingredient, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *IngredientRepository) FindByName(ctx context.Context, name string) (domain.Ingredient, error) {
	found, err := r.dao.FindByName(ctx, name)
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("r.dao.FindByName -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *IngredientRepository) FindAll(ctx context.Context) ([]domain.Ingredient, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

func (r *IngredientRepository) Search(ctx context.Context, term string) ([]domain.Ingredient, error) {
	found, err := r.dao.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Search -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

func (r *IngredientRepository) FindByCategory(ctx context.Context, category string) ([]domain.Ingredient, error) {
	found, err := r.dao.FindByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByCategory -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

func (r *IngredientRepository) FindLowStock(ctx context.Context) ([]domain.Ingredient, error) {
	found, err := r.dao.FindLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindLowStock -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

func (r *IngredientRepository) FindDepleted(ctx context.Context) ([]domain.Ingredient, error) {
	found, err := r.dao.FindDepleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindDepleted -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

func (r *IngredientRepository) Update(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error) {
	updated, err := r.dao.Update(ctx, r.domainToDAO(ingredient))
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *IngredientRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *IngredientRepository) IncreaseStock(ctx context.Context, id uint, qty decimal.Decimal) (domain.Ingredient, error) {
	updated, err := r.dao.IncreaseStock(ctx, id, qty)
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("r.dao.IncreaseStock -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

// DeductStock clamps at zero; the returned flag says whether the full
// quantity came off the stock.
func (r *IngredientRepository) DeductStock(ctx context.Context, id uint, qty decimal.Decimal) (domain.Ingredient, decimal.Decimal, bool, error) {
	updated, applied, full, err := r.dao.DeductStock(ctx, id, qty)
	if err != nil {
		return domain.Ingredient{}, decimal.Zero, false, fmt.Errorf("r.dao.DeductStock -> %w", err)
	}

	return r.daoToDomain(updated), applied, full, nil
}

func (r *IngredientRepository) SetStock(ctx context.Context, id uint, stock decimal.Decimal) (domain.Ingredient, decimal.Decimal, error) {
	updated, previous, err := r.dao.SetStock(ctx, id, stock)
	if err != nil {
		return domain.Ingredient{}, decimal.Zero, fmt.Errorf("r.dao.SetStock -> %w", err)
	}

	return r.daoToDomain(updated), previous, nil
}

func (r *IngredientRepository) Stats(ctx context.Context) (domain.InventoryStats, error) {
	stats := domain.InventoryStats{}

	var err error
	if stats.TotalIngredients, err = r.dao.Count(ctx); err != nil {
		return domain.InventoryStats{}, fmt.Errorf("r.dao.Count -> %w", err)
	}
	if stats.LowStock, err = r.dao.CountLowStock(ctx); err != nil {
		return domain.InventoryStats{}, fmt.Errorf("r.dao.CountLowStock -> %w", err)
	}
	if stats.Depleted, err = r.dao.CountDepleted(ctx); err != nil {
		return domain.InventoryStats{}, fmt.Errorf("r.dao.CountDepleted -> %w", err)
	}
	if stats.Categories, err = r.dao.Categories(ctx); err != nil {
		return domain.InventoryStats{}, fmt.Errorf("r.dao.Categories -> %w", err)
	}

	return stats, nil
}

func (r *IngredientRepository) daoToDomain(i dao.Ingredient) domain.Ingredient {
	return domain.Ingredient{
		ID:        i.ID,
		Name:      i.Name,
		Category:  i.Category,
		Unit:      i.Unit,
		Stock:     i.Stock,
		MinStock:  i.MinStock,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func (r *IngredientRepository) domainToDAO(i domain.Ingredient) dao.Ingredient {
	return dao.Ingredient{
		ID:       i.ID,
		Name:     i.Name,
		Category: i.Category,
		Unit:     i.Unit,
		Stock:    i.Stock,
		MinStock: i.MinStock,
	}
}

func (r *IngredientRepository) daoToDomainSlice(ingredients []dao.Ingredient) []domain.Ingredient {
	result := make([]domain.Ingredient, 0, len(ingredients))
	for _, i := range ingredients {
		result = append(result, r.daoToDomain(i))
	}

	return result
}
