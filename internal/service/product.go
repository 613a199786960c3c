package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/apocighol/cevicheria-api/internal/domain"
	"github.com/apocighol/cevicheria-api/internal/repository"
)

var (
	ErrProductNameExists = repository.ErrProductNameExists
	ErrProductNotFound   = repository.ErrProductNotFound

	ErrInvalidPrice = errors.New("price cannot be negative")
)

type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id uint) (domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id uint) error
}

type ProductRecipeRepository interface {
	DeleteForProduct(ctx context.Context, productID uint) error
}

type ProductService struct {
	repo       ProductRepository
	recipeRepo ProductRecipeRepository
}

func NewProductService(repo ProductRepository, recipeRepo ProductRecipeRepository) *ProductService {
	return &ProductService{
		repo:       repo,
		recipeRepo: recipeRepo,
	}
}

func (s *ProductService) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	if product.Price.IsNegative() {
		return domain.Product{}, ErrInvalidPrice
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return domain.Product{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uint) (domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return product, nil
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return products, nil
}

// Update never touches past orders; they carry their own snapshots of the
// name and price.
func (s *ProductService) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	if product.Price.IsNegative() {
		return domain.Product{}, ErrInvalidPrice
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return domain.Product{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// Delete drops the product together with its recipe.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	if err := s.recipeRepo.DeleteForProduct(ctx, id); err != nil {
		return fmt.Errorf("s.recipeRepo.DeleteForProduct -> %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
