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
	ErrSessionAlreadyOpen = dao.ErrSessionAlreadyOpen
	ErrNoOpenSession      = dao.ErrNoOpenSession
	ErrSessionNotFound    = dao.ErrSessionNotFound
)

type TillDAO interface {
	InsertSession(ctx context.Context, session dao.CashSession) (dao.CashSession, error)
	InsertSale(ctx context.Context, movement dao.Movement) (dao.Movement, error)
	InsertExpense(ctx context.Context, movement dao.Movement) (dao.Movement, error)
	CloseSession(ctx context.Context, counted decimal.Decimal, responsible string, at time.Time) (dao.CashSession, error)
	FindOpen(ctx context.Context) (dao.CashSession, error)
	FindByID(ctx context.Context, id uint) (dao.CashSession, error)
	FindMovementsBySession(ctx context.Context, sessionID uint) ([]dao.Movement, error)
	CountMovementsBySession(ctx context.Context, sessionID uint) (int64, error)
	FindClosedSessions(ctx context.Context) ([]dao.CashSession, error)
	FindSessionsByDay(ctx context.Context, day time.Time) ([]dao.CashSession, error)
	SumSalesByDay(ctx context.Context, day time.Time) (decimal.Decimal, error)
}

type TillRepository struct {
	dao TillDAO
}

func NewTillRepository(dao TillDAO) *TillRepository {
	return &TillRepository{
		dao: dao,
	}
}

func (r *TillRepository) OpenSession(ctx context.Context, session domain.CashSession) (domain.CashSession, error) {
	created, err := r.dao.InsertSession(ctx, dao.CashSession{
		Code:         session.Code,
		State:        string(domain.SessionOpen),
		OpenedBy:     session.OpenedBy,
		OpeningFloat: session.OpeningFloat,
		OpenedAt:     session.OpenedAt,
	})
	if err != nil {
		return domain.CashSession{}, fmt.Errorf("r.dao.InsertSession -> %w", err)
	}

	return r.sessionDAOToDomain(created), nil
}

func (r *TillRepository) RecordSale(ctx context.Context, movement domain.Movement) (domain.Movement, error) {
	created, err := r.dao.InsertSale(ctx, r.movementDomainToDAO(movement))
	if err != nil {
		return domain.Movement{}, fmt.Errorf("r.dao.InsertSale -> %w", err)
	}

	return r.movementDAOToDomain(created), nil
}

func (r *TillRepository) RecordExpense(ctx context.Context, movement domain.Movement) (domain.Movement, error) {
	created, err := r.dao.InsertExpense(ctx, r.movementDomainToDAO(movement))
	if err != nil {
		return domain.Movement{}, fmt.Errorf("r.dao.InsertExpense -> %w", err)
	}

	return r.movementDAOToDomain(created), nil
}

func (r *TillRepository) CloseSession(ctx context.Context, counted decimal.Decimal, responsible string, at time.Time) (domain.CashSession, error) {
	closed, err := r.dao.CloseSession(ctx, counted, responsible, at)
	if err != nil {
		return domain.CashSession{}, fmt.Errorf("r.dao.CloseSession -> %w", err)
	}

	return r.sessionDAOToDomain(closed), nil
}

func (r *TillRepository) FindOpenSession(ctx context.Context) (domain.CashSession, error) {
	found, err := r.dao.FindOpen(ctx)
	if err != nil {
		return domain.CashSession{}, fmt.Errorf("r.dao.FindOpen -> %w", err)
	}

	return r.sessionDAOToDomain(found), nil
}

func (r *TillRepository) FindSessionByID(ctx context.Context, id uint) (domain.CashSession, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.CashSession{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.sessionDAOToDomain(found), nil
}

func (r *TillRepository) FindMovements(ctx context.Context, sessionID uint) ([]domain.Movement, error) {
	found, err := r.dao.FindMovementsBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindMovementsBySession -> %w", err)
	}

	movements := make([]domain.Movement, 0, len(found))
	for _, m := range found {
		movements = append(movements, r.movementDAOToDomain(m))
	}

	return movements, nil
}

func (r *TillRepository) CountMovements(ctx context.Context, sessionID uint) (int64, error) {
	count, err := r.dao.CountMovementsBySession(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountMovementsBySession -> %w", err)
	}

	return count, nil
}

func (r *TillRepository) FindClosedSessions(ctx context.Context) ([]domain.CashSession, error) {
	found, err := r.dao.FindClosedSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindClosedSessions -> %w", err)
	}

	return r.sessionDAOToDomainSlice(found), nil
}

func (r *TillRepository) FindSessionsByDay(ctx context.Context, day time.Time) ([]domain.CashSession, error) {
	found, err := r.dao.FindSessionsByDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindSessionsByDay -> %w", err)
	}

	return r.sessionDAOToDomainSlice(found), nil
}

func (r *TillRepository) SumSalesByDay(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	sum, err := r.dao.SumSalesByDay(ctx, day)
	if err != nil {
		return decimal.Zero, fmt.Errorf("r.dao.SumSalesByDay -> %w", err)
	}

	return sum, nil
}

func (r *TillRepository) sessionDAOToDomain(s dao.CashSession) domain.CashSession {
	return domain.CashSession{
		ID:            s.ID,
		Code:          s.Code,
		State:         domain.SessionState(s.State),
		OpenedBy:      s.OpenedBy,
		ClosedBy:      s.ClosedBy,
		OpeningFloat:  s.OpeningFloat,
		SalesTotal:    s.SalesTotal,
		CashTotal:     s.CashTotal,
		YapeTotal:     s.YapeTotal,
		PlinTotal:     s.PlinTotal,
		CardTotal:     s.CardTotal,
		ExpensesTotal: s.ExpensesTotal,
		ClosingCount:  s.ClosingCount,
		Difference:    s.Difference,
		OpenedAt:      s.OpenedAt,
		ClosedAt:      s.ClosedAt,
	}
}

func (r *TillRepository) sessionDAOToDomainSlice(sessions []dao.CashSession) []domain.CashSession {
	result := make([]domain.CashSession, 0, len(sessions))
	for _, s := range sessions {
		result = append(result, r.sessionDAOToDomain(s))
	}

	return result
}

func (r *TillRepository) movementDAOToDomain(m dao.Movement) domain.Movement {
	return domain.Movement{
		ID:          m.ID,
		SessionID:   m.SessionID,
		Kind:        domain.MovementKind(m.Kind),
		Description: m.Description,
		Amount:      m.Amount,
		Method:      domain.PaymentMethod(m.Method),
		Tendered:    m.Tendered,
		Change:      m.Change,
		RecordedBy:  m.RecordedBy,
		CreatedAt:   m.CreatedAt,
	}
}

func (r *TillRepository) movementDomainToDAO(m domain.Movement) dao.Movement {
	return dao.Movement{
		SessionID:   m.SessionID,
		Kind:        string(m.Kind),
		Description: m.Description,
		Amount:      m.Amount,
		Method:      string(m.Method),
		Tendered:    m.Tendered,
		Change:      m.Change,
		RecordedBy:  m.RecordedBy,
	}
}
