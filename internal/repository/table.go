package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/apocighol/cevicheria-api/internal/domain"
	"github.com/apocighol/cevicheria-api/internal/repository/dao"
)

var (
	ErrTableNumberExists = dao.ErrTableNumberExists
	ErrTableNotFound     = dao.ErrTableNotFound
	ErrTableOccupied     = dao.ErrTableOccupied
	ErrTableStateChanged = dao.ErrTableStateChanged
)

type TableDAO interface {
	Insert(ctx context.Context, table dao.Table) (dao.Table, error)
	FindByID(ctx context.Context, id uint) (dao.Table, error)
	FindByNumber(ctx context.Context, number int) (dao.Table, error)
	FindAll(ctx context.Context) ([]dao.Table, error)
	FindByState(ctx context.Context, state string) ([]dao.Table, error)
	FindByServer(ctx context.Context, server string) ([]dao.Table, error)
	UpdateWithStateGuard(ctx context.Context, table dao.Table, expectedState string) (dao.Table, error)
	UpdateConsumptionTotal(ctx context.Context, number int, total decimal.Decimal) (dao.Table, error)
	Delete(ctx context.Context, id uint) error
	CountByState(ctx context.Context, state string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type TableRepository struct {
	dao TableDAO
}

func NewTableRepository(dao TableDAO) *TableRepository {
	return &TableRepository{
		dao: dao,
	}
}

func (r *TableRepository) Create(ctx context.Context, table domain.Table) (domain.Table, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(table))
	if err != nil {
		return domain.Table{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *TableRepository) FindByNumber(ctx context.Context, number int) (domain.Table, error) {
	found, err := r.dao.FindByNumber(ctx, number)
	if err != nil {
		return domain.Table{}, fmt.Errorf("r.dao.FindByNumber -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *TableRepository) FindAll(ctx context.Context) ([]domain.Table, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

func (r *TableRepository) FindByState(ctx context.Context, state domain.TableState) ([]domain.Table, error) {
	found, err := r.dao.FindByState(ctx, string(state))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByState -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

func (r *TableRepository) FindByServer(ctx context.Context, server string) ([]domain.Table, error) {
	found, err := r.dao.FindByServer(ctx, server)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByServer -> %w", err)
	}

	return r.daoToDomainSlice(found), nil
}

// UpdateWithStateGuard writes the table state machine fields only if the
// stored state still matches expected.
func (r *TableRepository) UpdateWithStateGuard(ctx context.Context, table domain.Table, expected domain.TableState) (domain.Table, error) {
	updated, err := r.dao.UpdateWithStateGuard(ctx, r.domainToDAO(table), string(expected))
	if err != nil {
		return domain.Table{}, fmt.Errorf("r.dao.UpdateWithStateGuard -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *TableRepository) UpdateConsumptionTotal(ctx context.Context, number int, total decimal.Decimal) (domain.Table, error) {
	updated, err := r.dao.UpdateConsumptionTotal(ctx, number, total)
	if err != nil {
		return domain.Table{}, fmt.Errorf("r.dao.UpdateConsumptionTotal -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *TableRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *TableRepository) Stats(ctx context.Context) (domain.TableStats, error) {
	stats := domain.TableStats{}

	var err error
	if stats.Available, err = r.dao.CountByState(ctx, string(domain.TableAvailable)); err != nil {
		return domain.TableStats{}, fmt.Errorf("r.dao.CountByState -> %w", err)
	}
	if stats.Occupied, err = r.dao.CountByState(ctx, string(domain.TableOccupied)); err != nil {
		return domain.TableStats{}, fmt.Errorf("r.dao.CountByState -> %w", err)
	}
	if stats.Reserved, err = r.dao.CountByState(ctx, string(domain.TableReserved)); err != nil {
		return domain.TableStats{}, fmt.Errorf("r.dao.CountByState -> %w", err)
	}
	if stats.Total, err = r.dao.Count(ctx); err != nil {
		return domain.TableStats{}, fmt.Errorf("r.dao.Count -> %w", err)
	}

	return stats, nil
}

func (r *TableRepository) daoToDomain(t dao.Table) domain.Table {
	return domain.Table{
		ID:               t.ID,
		Number:           t.Number,
		Capacity:         t.Capacity,
		State:            domain.TableState(t.State),
		Server:           t.Server,
		PartySize:        t.PartySize,
		OccupiedSince:    t.OccupiedSince,
		ReleaseReason:    t.ReleaseReason,
		ConsumptionTotal: t.ConsumptionTotal,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func (r *TableRepository) domainToDAO(t domain.Table) dao.Table {
	return dao.Table{
		ID:               t.ID,
		Number:           t.Number,
		Capacity:         t.Capacity,
		State:            string(t.State),
		Server:           t.Server,
		PartySize:        t.PartySize,
		OccupiedSince:    t.OccupiedSince,
		ReleaseReason:    t.ReleaseReason,
		ConsumptionTotal: t.ConsumptionTotal,
	}
}

func (r *TableRepository) daoToDomainSlice(tables []dao.Table) []domain.Table {
	result := make([]domain.Table, 0, len(tables))
	for _, t := range tables {
		result = append(result, r.daoToDomain(t))
	}

	return result
}
