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
	ErrTableNumberExists = repository.ErrTableNumberExists
	ErrTableNotFound     = repository.ErrTableNotFound
	ErrTableOccupied     = repository.ErrTableOccupied
	ErrTableStateChanged = repository.ErrTableStateChanged

	ErrTableNotAvailable    = errors.New("table is not available")
	ErrNegativeTotal        = errors.New("consumption total cannot be negative")
	ErrTableNotOccupied     = errors.New("table is not occupied")
	ErrCapacityExceeded     = errors.New("party size exceeds table capacity")
	ErrTableHasActiveOrders = errors.New("table has active orders")
)

type TableRepository interface {
	Create(ctx context.Context, table domain.Table) (domain.Table, error)
	FindByNumber(ctx context.Context, number int) (domain.Table, error)
	FindAll(ctx context.Context) ([]domain.Table, error)
	FindByState(ctx context.Context, state domain.TableState) ([]domain.Table, error)
	FindByServer(ctx context.Context, server string) ([]domain.Table, error)
	UpdateWithStateGuard(ctx context.Context, table domain.Table, expected domain.TableState) (domain.Table, error)
	UpdateConsumptionTotal(ctx context.Context, number int, total decimal.Decimal) (domain.Table, error)
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context) (domain.TableStats, error)
}

type TableOrderRepository interface {
	FindActiveByTable(ctx context.Context, tableNumber int) ([]domain.Order, error)
}

type TableService struct {
	repo      TableRepository
	orderRepo TableOrderRepository
}

func NewTableService(repo TableRepository, orderRepo TableOrderRepository) *TableService {
	return &TableService{
		repo:      repo,
		orderRepo: orderRepo,
	}
}

func (s *TableService) Create(ctx context.Context, number, capacity int) (domain.Table, error) {
	created, err := s.repo.Create(ctx, domain.Table{
		Number:           number,
		Capacity:         capacity,
		State:            domain.TableAvailable,
		ConsumptionTotal: decimal.Zero,
	})
	if err != nil {
		return domain.Table{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *TableService) GetByNumber(ctx context.Context, number int) (domain.Table, error) {
	table, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return domain.Table{}, fmt.Errorf("s.repo.FindByNumber -> %w", err)
	}

	return table, nil
}

func (s *TableService) List(ctx context.Context) ([]domain.Table, error) {
	tables, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return tables, nil
}

func (s *TableService) ListByState(ctx context.Context, state domain.TableState) ([]domain.Table, error) {
	tables, err := s.repo.FindByState(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByState -> %w", err)
	}

	return tables, nil
}

func (s *TableService) ListByServer(ctx context.Context, server string) ([]domain.Table, error) {
	tables, err := s.repo.FindByServer(ctx, server)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByServer -> %w", err)
	}

	return tables, nil
}

// Occupy seats a party. A reserved table can be seated directly; an occupied
// one cannot. Parties larger than the capacity are refused unless override
// is set, which covers pushing two tables together on a busy night.
func (s *TableService) Occupy(ctx context.Context, number, partySize int, server string, override bool) (domain.Table, error) {
	table, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return domain.Table{}, fmt.Errorf("s.repo.FindByNumber -> %w", err)
	}

	if table.IsOccupied() {
		return domain.Table{}, ErrTableOccupied
	}

	if partySize > table.Capacity && !override {
		return domain.Table{}, ErrCapacityExceeded
	}

	previous := table.State
	table.Occupy(partySize, server, time.Now())

	updated, err := s.repo.UpdateWithStateGuard(ctx, table, previous)
	if err != nil {
		return domain.Table{}, fmt.Errorf("s.repo.UpdateWithStateGuard -> %w", err)
	}

	return updated, nil
}

// Release frees the table and resets its consumption total. With active
// orders still on the table it refuses unless force is set; forcing leaves
// the orders untouched for later voiding or payment.
func (s *TableService) Release(ctx context.Context, number int, reason string, force bool) (domain.Table, error) {
	table, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return domain.Table{}, fmt.Errorf("s.repo.FindByNumber -> %w", err)
	}

	if !table.IsOccupied() && table.State != domain.TableReserved {
		return domain.Table{}, ErrTableNotOccupied
	}

	if !force {
		active, err := s.orderRepo.FindActiveByTable(ctx, number)
		if err != nil {
			return domain.Table{}, fmt.Errorf("s.orderRepo.FindActiveByTable -> %w", err)
		}
		if len(active) > 0 {
			return domain.Table{}, ErrTableHasActiveOrders
		}
	}

	previous := table.State
	table.Release(reason)

	updated, err := s.repo.UpdateWithStateGuard(ctx, table, previous)
	if err != nil {
		return domain.Table{}, fmt.Errorf("s.repo.UpdateWithStateGuard -> %w", err)
	}

	return updated, nil
}

func (s *TableService) Reserve(ctx context.Context, number int) (domain.Table, error) {
	table, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return domain.Table{}, fmt.Errorf("s.repo.FindByNumber -> %w", err)
	}

	if !table.IsAvailable() {
		return domain.Table{}, ErrTableNotAvailable
	}

	table.Reserve()

	updated, err := s.repo.UpdateWithStateGuard(ctx, table, domain.TableAvailable)
	if err != nil {
		return domain.Table{}, fmt.Errorf("s.repo.UpdateWithStateGuard -> %w", err)
	}

	return updated, nil
}

// SetConsumptionTotal overrides the accumulated table total. Manual
// corrections only; order creation, voiding and discounts keep the total
// current on their own.
func (s *TableService) SetConsumptionTotal(ctx context.Context, number int, total decimal.Decimal) (domain.Table, error) {
	if total.IsNegative() {
		return domain.Table{}, ErrNegativeTotal
	}

	updated, err := s.repo.UpdateConsumptionTotal(ctx, number, total)
	if err != nil {
		return domain.Table{}, fmt.Errorf("s.repo.UpdateConsumptionTotal -> %w", err)
	}

	return updated, nil
}

func (s *TableService) Delete(ctx context.Context, number int) error {
	table, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return fmt.Errorf("s.repo.FindByNumber -> %w", err)
	}

	if err := s.repo.Delete(ctx, table.ID); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func (s *TableService) Stats(ctx context.Context) (domain.TableStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return domain.TableStats{}, fmt.Errorf("s.repo.Stats -> %w", err)
	}

	return stats, nil
}
