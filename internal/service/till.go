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
	ErrSessionAlreadyOpen = repository.ErrSessionAlreadyOpen
	ErrNoOpenSession      = repository.ErrNoOpenSession
	ErrSessionNotFound    = repository.ErrSessionNotFound

	ErrInvalidOpeningFloat = errors.New("opening float cannot be negative")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidCount        = errors.New("counted cash cannot be negative")
)

type TillRepository interface {
	OpenSession(ctx context.Context, session domain.CashSession) (domain.CashSession, error)
	RecordSale(ctx context.Context, movement domain.Movement) (domain.Movement, error)
	RecordExpense(ctx context.Context, movement domain.Movement) (domain.Movement, error)
	CloseSession(ctx context.Context, counted decimal.Decimal, responsible string, at time.Time) (domain.CashSession, error)
	FindOpenSession(ctx context.Context) (domain.CashSession, error)
	FindSessionByID(ctx context.Context, id uint) (domain.CashSession, error)
	FindMovements(ctx context.Context, sessionID uint) ([]domain.Movement, error)
	CountMovements(ctx context.Context, sessionID uint) (int64, error)
	FindClosedSessions(ctx context.Context) ([]domain.CashSession, error)
	FindSessionsByDay(ctx context.Context, day time.Time) ([]domain.CashSession, error)
	SumSalesByDay(ctx context.Context, day time.Time) (decimal.Decimal, error)
}

type TillService struct {
	repo TillRepository
}

func NewTillService(repo TillRepository) *TillService {
	return &TillService{
		repo: repo,
	}
}

// Open starts the single system-wide session. A second open attempt comes
// back as ErrSessionAlreadyOpen regardless of who tries.
func (s *TillService) Open(ctx context.Context, openingFloat decimal.Decimal, openedBy string) (domain.CashSession, error) {
	if openingFloat.IsNegative() {
		return domain.CashSession{}, ErrInvalidOpeningFloat
	}

	session, err := s.repo.OpenSession(ctx, domain.CashSession{
		Code:         newCode("CAJA"),
		State:        domain.SessionOpen,
		OpenedBy:     openedBy,
		OpeningFloat: openingFloat,
		OpenedAt:     time.Now(),
	})
	if err != nil {
		return domain.CashSession{}, fmt.Errorf("s.repo.OpenSession -> %w", err)
	}

	return session, nil
}

// RecordExpense books money taken out of the drawer. Amounts are stored
// positive; the movement kind keeps them apart from sales.
func (s *TillService) RecordExpense(ctx context.Context, description string, amount decimal.Decimal, recordedBy string) (domain.Movement, error) {
	if !amount.IsPositive() {
		return domain.Movement{}, ErrInvalidAmount
	}

	movement, err := s.repo.RecordExpense(ctx, domain.Movement{
		Kind:        domain.MovementExpense,
		Description: description,
		Amount:      amount,
		RecordedBy:  recordedBy,
	})
	if err != nil {
		return domain.Movement{}, fmt.Errorf("s.repo.RecordExpense -> %w", err)
	}

	return movement, nil
}

// Close reconciles the open session against the physically counted cash and
// freezes it. The difference keeps its sign: negative means missing money.
func (s *TillService) Close(ctx context.Context, counted decimal.Decimal, responsible string) (domain.CashSession, error) {
	if counted.IsNegative() {
		return domain.CashSession{}, ErrInvalidCount
	}

	session, err := s.repo.CloseSession(ctx, counted, responsible, time.Now())
	if err != nil {
		return domain.CashSession{}, fmt.Errorf("s.repo.CloseSession -> %w", err)
	}

	return session, nil
}

func (s *TillService) CurrentSession(ctx context.Context) (domain.CashSession, error) {
	session, err := s.repo.FindOpenSession(ctx)
	if err != nil {
		return domain.CashSession{}, fmt.Errorf("s.repo.FindOpenSession -> %w", err)
	}

	return session, nil
}

func (s *TillService) GetSession(ctx context.Context, id uint) (domain.CashSession, error) {
	session, err := s.repo.FindSessionByID(ctx, id)
	if err != nil {
		return domain.CashSession{}, fmt.Errorf("s.repo.FindSessionByID -> %w", err)
	}

	return session, nil
}

func (s *TillService) ListMovements(ctx context.Context, sessionID uint) ([]domain.Movement, error) {
	movements, err := s.repo.FindMovements(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindMovements -> %w", err)
	}

	return movements, nil
}

func (s *TillService) ListClosedSessions(ctx context.Context) ([]domain.CashSession, error) {
	sessions, err := s.repo.FindClosedSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindClosedSessions -> %w", err)
	}

	return sessions, nil
}

func (s *TillService) ListSessionsByDay(ctx context.Context, day time.Time) ([]domain.CashSession, error) {
	sessions, err := s.repo.FindSessionsByDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindSessionsByDay -> %w", err)
	}

	return sessions, nil
}

// Stats reports the live totals of the open session, or zeroes with
// SessionOpen false when the till is closed.
func (s *TillService) Stats(ctx context.Context) (domain.TillStats, error) {
	stats := domain.TillStats{}

	session, err := s.repo.FindOpenSession(ctx)
	switch {
	case err == nil:
		stats.SessionOpen = true
		stats.SalesTotal = session.SalesTotal
		stats.CashTotal = session.CashTotal
		stats.YapeTotal = session.YapeTotal
		stats.PlinTotal = session.PlinTotal
		stats.CardTotal = session.CardTotal
		stats.ExpensesTotal = session.ExpensesTotal

		if stats.Movements, err = s.repo.CountMovements(ctx, session.ID); err != nil {
			return domain.TillStats{}, fmt.Errorf("s.repo.CountMovements -> %w", err)
		}
	case errors.Is(err, ErrNoOpenSession):
		// Closed till still reports the day's sales below.
	default:
		return domain.TillStats{}, fmt.Errorf("s.repo.FindOpenSession -> %w", err)
	}

	if stats.TodaySales, err = s.repo.SumSalesByDay(ctx, time.Now()); err != nil {
		return domain.TillStats{}, fmt.Errorf("s.repo.SumSalesByDay -> %w", err)
	}

	return stats, nil
}
