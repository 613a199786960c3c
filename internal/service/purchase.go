package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/apocighol/cevicheria-api/internal/domain"
	"github.com/apocighol/cevicheria-api/internal/repository"
)

var (
	ErrPurchaseNotFound = repository.ErrPurchaseNotFound

	ErrEmptyPurchase   = errors.New("purchase needs at least one detail")
	ErrInvalidUnitCost = errors.New("unit cost cannot be negative")
)

type PurchaseRepository interface {
	Create(ctx context.Context, purchase domain.Purchase) (domain.Purchase, error)
	FindByID(ctx context.Context, id uint) (domain.Purchase, error)
	FindByCode(ctx context.Context, code string) (domain.Purchase, error)
	FindAll(ctx context.Context) ([]domain.Purchase, error)
	FindByDay(ctx context.Context, day time.Time) ([]domain.Purchase, error)
	SumByDay(ctx context.Context, day time.Time) (decimal.Decimal, error)
}

type PurchaseDetailInput struct {
	IngredientID uint
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
}

type PurchaseService struct {
	repo PurchaseRepository
}

func NewPurchaseService(repo PurchaseRepository) *PurchaseService {
	return &PurchaseService{
		repo: repo,
	}
}

// Register books the arrival and bumps every ingredient's stock in the same
// transaction. Subtotals and the total are computed here, never trusted
// from the caller.
func (s *PurchaseService) Register(ctx context.Context, supplier, notes string, inputs []PurchaseDetailInput) (domain.Purchase, error) {
	if len(inputs) == 0 {
		return domain.Purchase{}, ErrEmptyPurchase
	}

	total := decimal.Zero
	details := make([]domain.PurchaseDetail, 0, len(inputs))
	for _, input := range inputs {
		if !input.Quantity.IsPositive() {
			return domain.Purchase{}, ErrInvalidAmount
		}
		if input.UnitCost.IsNegative() {
			return domain.Purchase{}, ErrInvalidUnitCost
		}

		subtotal := input.Quantity.Mul(input.UnitCost)
		total = total.Add(subtotal)
		details = append(details, domain.PurchaseDetail{
			IngredientID: input.IngredientID,
			Quantity:     input.Quantity,
			UnitCost:     input.UnitCost,
			Subtotal:     subtotal,
		})
	}

	created, err := s.repo.Create(ctx, domain.Purchase{
		Code:     newCode("COM"),
		Supplier: supplier,
		Notes:    notes,
		Total:    total,
		Details:  details,
	})
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *PurchaseService) GetByID(ctx context.Context, id uint) (domain.Purchase, error) {
	purchase, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return purchase, nil
}

func (s *PurchaseService) GetByCode(ctx context.Context, code string) (domain.Purchase, error) {
	purchase, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("s.repo.FindByCode -> %w", err)
	}

	return purchase, nil
}

func (s *PurchaseService) List(ctx context.Context) ([]domain.Purchase, error) {
	purchases, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return purchases, nil
}

func (s *PurchaseService) ListByDay(ctx context.Context, day time.Time) ([]domain.Purchase, error) {
	purchases, err := s.repo.FindByDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByDay -> %w", err)
	}

	return purchases, nil
}

func (s *PurchaseService) SumByDay(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	sum, err := s.repo.SumByDay(ctx, day)
	if err != nil {
		return decimal.Zero, fmt.Errorf("s.repo.SumByDay -> %w", err)
	}

	return sum, nil
}
