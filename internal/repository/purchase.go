package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/apocighol/cevicheria-api/internal/domain"
	"github.com/apocighol/cevicheria-api/internal/repository/dao"
)

var ErrPurchaseNotFound = dao.ErrPurchaseNotFound

type PurchaseDAO interface {
	InsertWithStock(ctx context.Context, purchase dao.Purchase) (dao.Purchase, error)
	FindByID(ctx context.Context, id uint) (dao.Purchase, error)
	FindByCode(ctx context.Context, code string) (dao.Purchase, error)
	FindAll(ctx context.Context) ([]dao.Purchase, error)
	FindByDay(ctx context.Context, day time.Time) ([]dao.Purchase, error)
	SumByDay(ctx context.Context, day time.Time) (decimal.Decimal, error)
}

type PurchaseRepository struct {
	dao PurchaseDAO
}

func NewPurchaseRepository(dao PurchaseDAO) *PurchaseRepository {
	return &PurchaseRepository{
		dao: dao,
	}
}

// Create stores the purchase and applies its stock increments atomically.
func (r *PurchaseRepository) Create(ctx context.Context, purchase domain.Purchase) (domain.Purchase, error) {
	details := make([]dao.PurchaseDetail, 0, len(purchase.Details))
	for _, d := range purchase.Details {
		details = append(details, dao.PurchaseDetail{
			IngredientID: d.IngredientID,
			Quantity:     d.Quantity,
			UnitCost:     d.UnitCost,
			Subtotal:     d.Subtotal,
		})
	}

	created, err := r.dao.InsertWithStock(ctx, dao.Purchase{
		Code:     purchase.Code,
		Supplier: purchase.Supplier,
		Notes:    purchase.Notes,
		Total:    purchase.Total,
		Details:  details,
	})
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("r.dao.InsertWithStock -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *PurchaseRepository) FindByID(ctx context.Context, id uint) (domain.Purchase, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *PurchaseRepository) FindByCode(ctx context.Context, code string) (domain.Purchase, error) {
	found, err := r.dao.FindByCode(ctx, code)
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("r.dao.FindByCode -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *PurchaseRepository) FindAll(ctx context.Context) ([]domain.Purchase, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

func (r *PurchaseRepository) FindByDay(ctx context.Context, day time.Time) ([]domain.Purchase, error) {
	found, err := r.dao.FindByDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByDay -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

func (r *PurchaseRepository) SumByDay(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	sum, err := r.dao.SumByDay(ctx, day)
	if err != nil {
		return decimal.Zero, fmt.Errorf("r.dao.SumByDay -> %w", err)
	}

	return sum, nil
}

func (r *PurchaseRepository) daoToDomain(p dao.Purchase) domain.Purchase {
	details := make([]domain.PurchaseDetail, 0, len(p.Details))
	for _, d := range p.Details {
		details = append(details, domain.PurchaseDetail{
			ID:           d.ID,
			PurchaseID:   d.PurchaseID,
			IngredientID: d.IngredientID,
			Quantity:     d.Quantity,
			UnitCost:     d.UnitCost,
			Subtotal:     d.Subtotal,
		})
	}

	return domain.Purchase{
		ID:        p.ID,
		Code:      p.Code,
		Supplier:  p.Supplier,
		Notes:     p.Notes,
		Total:     p.Total,
		Details:   details,
		CreatedAt: p.CreatedAt,
	}
}

func (r *PurchaseRepository) daoToDomainSlice(purchases []dao.Purchase) []domain.Purchase {
	result := make([]domain.Purchase, 0, len(purchases))
	for _, p := range purchases {
		result = append(result, r.daoToDomain(p))
	}

	return result
}
