package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/apocighol/cevicheria-api/internal/domain"
	"github.com/apocighol/cevicheria-api/internal/repository/dao"
)

var (
	ErrOrderNotFound     = dao.ErrOrderNotFound
	ErrOrderTerminal     = dao.ErrOrderTerminal
	ErrOrderStateChanged = dao.ErrOrderStateChanged
)

type OrderDAO interface {
	InsertWithTableTotal(ctx context.Context, order dao.Order) (dao.Order, error)
	VoidWithTableTotal(ctx context.Context, id uint, reason, actor string, at time.Time) (dao.Order, error)
	UpdateStateFrom(ctx context.Context, id uint, from, to string) (dao.Order, error)
	UpdateDiscountWithTableTotal(ctx context.Context, id uint, discount decimal.Decimal) (dao.Order, error)
	MarkPaid(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (dao.Order, error)
	FindByCode(ctx context.Context, code string) (dao.Order, error)
	FindByTable(ctx context.Context, tableNumber int) ([]dao.Order, error)
	FindActiveByTable(ctx context.Context, tableNumber int) ([]dao.Order, error)
	FindByState(ctx context.Context, state string) ([]dao.Order, error)
	FindByDay(ctx context.Context, day time.Time) ([]dao.Order, error)
	FindByDayAndServer(ctx context.Context, day time.Time, server string) ([]dao.Order, error)
	FindVoided(ctx context.Context, from, to *time.Time, actor string) ([]dao.Order, error)
	FindPaidByDay(ctx context.Context, day time.Time) ([]dao.Order, error)
	CountByStateAndDay(ctx context.Context, state string, day time.Time) (int64, error)
	CountByDay(ctx context.Context, day time.Time) (int64, error)
	SumPaidByDay(ctx context.Context, day time.Time) (decimal.Decimal, error)
}

type OrderRepository struct {
	dao OrderDAO
}

func NewOrderRepository(dao OrderDAO) *OrderRepository {
	return &OrderRepository{
		dao: dao,
	}
}

// Create persists the order together with the table total bump; both writes
// share one transaction at the dao level.
func (r *OrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	created, err := r.dao.InsertWithTableTotal(ctx, r.domainToDAO(order))
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.InsertWithTableTotal -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *OrderRepository) Void(ctx context.Context, id uint, reason, actor string, at time.Time) (domain.Order, error) {
	voided, err := r.dao.VoidWithTableTotal(ctx, id, reason, actor, at)
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.VoidWithTableTotal -> %w", err)
	}

	return r.daoToDomain(voided), nil
}

func (r *OrderRepository) UpdateStateFrom(ctx context.Context, id uint, from, to domain.OrderState) (domain.Order, error) {
	updated, err := r.dao.UpdateStateFrom(ctx, id, string(from), string(to))
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.UpdateStateFrom -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *OrderRepository) UpdateDiscount(ctx context.Context, id uint, discount decimal.Decimal) (domain.Order, error) {
	updated, err := r.dao.UpdateDiscountWithTableTotal(ctx, id, discount)
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.UpdateDiscountWithTableTotal -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *OrderRepository) MarkPaid(ctx context.Context, id uint) error {
	if err := r.dao.MarkPaid(ctx, id); err != nil {
		return fmt.Errorf("r.dao.MarkPaid -> %w", err)
	}

	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (domain.Order, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *OrderRepository) FindByCode(ctx context.Context, code string) (domain.Order, error) {
	found, err := r.dao.FindByCode(ctx, code)
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.FindByCode -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *OrderRepository) FindByTable(ctx context.Context, tableNumber int) ([]domain.Order, error) {
	found, err := r.dao.FindByTable(ctx, tableNumber)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByTable -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

func (r *OrderRepository) FindActiveByTable(ctx context.Context, tableNumber int) ([]domain.Order, error) {
	found, err := r.dao.FindActiveByTable(ctx, tableNumber)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindActiveByTable -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

func (r *OrderRepository) FindByState(ctx context.Context, state domain.OrderState) ([]domain.Order, error) {
	found, err := r.dao.FindByState(ctx, string(state))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByState -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

func (r *OrderRepository) FindByDay(ctx context.Context, day time.Time) ([]domain.Order, error) {
	found, err := r.dao.FindByDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByDay -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

func (r *OrderRepository) FindByDayAndServer(ctx context.Context, day time.Time, server string) ([]domain.Order, error) {
	found, err := r.dao.FindByDayAndServer(ctx, day, server)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByDayAndServer -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

func (r *OrderRepository) FindVoided(ctx context.Context, from, to *time.Time, actor string) ([]domain.Order, error) {
	found, err := r.dao.FindVoided(ctx, from, to, actor)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindVoided -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

func (r *OrderRepository) FindPaidByDay(ctx context.Context, day time.Time) ([]domain.Order, error) {
	found, err := r.dao.FindPaidByDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindPaidByDay -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

func (r *OrderRepository) Stats(ctx context.Context, day time.Time) (domain.OrderStats, error) {
	stats := domain.OrderStats{}

	var err error
	if stats.TodayTotal, err = r.dao.CountByDay(ctx, day); err != nil {
		return domain.OrderStats{}, fmt.Errorf("r.dao.CountByDay -> %w", err)
	}

	counts := map[domain.OrderState]*int64{
		domain.OrderPending:   &stats.Pending,
		domain.OrderPreparing: &stats.Preparing,
		domain.OrderReady:     &stats.Ready,
		domain.OrderServed:    &stats.Served,
		domain.OrderPaid:      &stats.Paid,
	}
	for state, target := range counts {
		if *target, err = r.dao.CountByStateAndDay(ctx, string(state), day); err != nil {
			return domain.OrderStats{}, fmt.Errorf("r.dao.CountByStateAndDay -> %w", err)
		}
	}

	if stats.TodaySalesSum, err = r.dao.SumPaidByDay(ctx, day); err != nil {
		return domain.OrderStats{}, fmt.Errorf("r.dao.SumPaidByDay -> %w", err)
	}

	return stats, nil
}

func (r *OrderRepository) daoToDomain(o dao.Order) domain.Order {
	lines := make([]domain.OrderLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, domain.OrderLine{
			ID:          l.ID,
			OrderID:     l.OrderID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal,
			Note:        l.Note,
		})
	}

	return domain.Order{
		ID:          o.ID,
		Code:        o.Code,
		TableNumber: o.TableNumber,
		Server:      o.Server,
		State:       domain.OrderState(o.State),
		Note:        o.Note,
		Lines:       lines,
		Subtotal:    o.Subtotal,
		Discount:    o.Discount,
		Total:       o.Total,
		VoidReason:  o.VoidReason,
		VoidedBy:    o.VoidedBy,
		VoidedAt:    o.VoidedAt,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func (r *OrderRepository) domainToDAO(o domain.Order) dao.Order {
	lines := make([]dao.OrderLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dao.OrderLine{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal,
			Note:        l.Note,
		})
	}

	return dao.Order{
		Code:        o.Code,
		TableNumber: o.TableNumber,
		Server:      o.Server,
		State:       string(o.State),
		Note:        o.Note,
		Lines:       lines,
		Subtotal:    o.Subtotal,
		Discount:    o.Discount,
		Total:       o.Total,
	}
}

func (r *OrderRepository) daoToDomainSlice(orders []dao.Order) []domain.Order {
	result := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, r.daoToDomain(o))
	}

	return result
}
