package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSessionAlreadyOpen = errors.New("a cash session is already open")
	ErrNoOpenSession      = errors.New("no cash session is open")
	ErrSessionNotFound    = errors.New("cash session not found")
)

type CashSession struct {
	ID uint `gorm:"primaryKey"`

	Code     string `gorm:"unique;not null"`
	State    string `gorm:"type:varchar(20);not null;default:'open'"`
	OpenedBy string `gorm:"type:varchar(100);not null"`
	ClosedBy string `gorm:"type:varchar(100)"`

	OpeningFloat  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	SalesTotal    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CashTotal     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	YapeTotal     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	PlinTotal     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CardTotal     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	ExpensesTotal decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`

	ClosingCount *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Difference   *decimal.Decimal `gorm:"type:decimal(10,2)"`

	OpenedAt time.Time `gorm:"not null;index"`
	ClosedAt *time.Time
}

// Movement rows are never updated or deleted once written.
type Movement struct {
	ID uint `gorm:"primaryKey"`

	SessionID   uint   `gorm:"not null;index"`
	Kind        string `gorm:"type:varchar(20);not null"`
	Description string `gorm:"not null"`

	Amount   decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	Method   string           `gorm:"type:varchar(20)"`
	Tendered *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Change   *decimal.Decimal `gorm:"type:decimal(10,2)"`

	RecordedBy string    `gorm:"type:varchar(100);not null"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

type TillDAO struct {
	db *gorm.DB
}

func NewTillDAO(db *gorm.DB) *TillDAO {
	return &TillDAO{
		db: db,
	}
}

// methodColumns maps a payment method to the per-method total column.
var methodColumns = map[string]string{
	"cash": "cash_total",
	"yape": "yape_total",
	"plin": "plin_total",
	"card": "card_total",
}

// InsertSession opens a session. The open-session check and the insert share
// one transaction, and the partial unique index on state='open' backstops it.
func (d *TillDAO) InsertSession(ctx context.Context, session CashSession) (CashSession, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing CashSession
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&existing, "state = ?", "open").Error
		if err == nil {
			return ErrSessionAlreadyOpen
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&session).Error
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return CashSession{}, ErrSessionAlreadyOpen
		}

		return CashSession{}, err
	}

	return session, nil
}

// InsertSale appends a sale movement to the open session and bumps the sales
// and per-method totals under a session row lock.
func (d *TillDAO) InsertSale(ctx context.Context, movement Movement) (Movement, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := lockOpenSession(tx)
		if err != nil {
			return err
		}

		movement.SessionID = session.ID
		movement.Kind = "sale"
		if err = tx.Create(&movement).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"sales_total": gorm.Expr("sales_total + ?", movement.Amount),
		}
		if column, ok := methodColumns[movement.Method]; ok {
			updates[column] = gorm.Expr(column+" + ?", movement.Amount)
		}

		return tx.Model(&CashSession{}).Where("id = ?", session.ID).Updates(updates).Error
	})
	if err != nil {
		return Movement{}, err
	}

	return movement, nil
}

// InsertExpense appends an expense movement (positive amount) and bumps the
// expenses total.
func (d *TillDAO) InsertExpense(ctx context.Context, movement Movement) (Movement, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := lockOpenSession(tx)
		if err != nil {
			return err
		}

		movement.SessionID = session.ID
		movement.Kind = "expense"
		if err = tx.Create(&movement).Error; err != nil {
			return err
		}

		return tx.Model(&CashSession{}).Where("id = ?", session.ID).
			Update("expenses_total", gorm.Expr("expenses_total + ?", movement.Amount)).Error
	})
	if err != nil {
		return Movement{}, err
	}

	return movement, nil
}

// CloseSession reconciles and freezes the open session:
// difference = counted - (opening float + cash total - expenses total).
func (d *TillDAO) CloseSession(ctx context.Context, counted decimal.Decimal, responsible string, at time.Time) (CashSession, error) {
	var closed CashSession

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := lockOpenSession(tx)
		if err != nil {
			return err
		}

		expected := session.OpeningFloat.Add(session.CashTotal).Sub(session.ExpensesTotal)
		difference := counted.Sub(expected)

		updates := map[string]interface{}{
			"state":         "closed",
			"closing_count": counted,
			"difference":    difference,
			"closed_by":     responsible,
			"closed_at":     at,
		}
		if err = tx.Model(&CashSession{}).Where("id = ?", session.ID).Updates(updates).Error; err != nil {
			return err
		}

		return tx.First(&closed, session.ID).Error
	})
	if err != nil {
		return CashSession{}, err
	}

	return closed, nil
}

func lockOpenSession(tx *gorm.DB) (CashSession, error) {
	var session CashSession

	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&session, "state = ?", "open").Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CashSession{}, ErrNoOpenSession
		}

		return CashSession{}, err
	}

	return session, nil
}

func (d *TillDAO) FindOpen(ctx context.Context) (CashSession, error) {
	var session CashSession

	result := d.db.WithContext(ctx).First(&session, "state = ?", "open")
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return CashSession{}, ErrNoOpenSession
		}

		return CashSession{}, result.Error
	}

	return session, nil
}

func (d *TillDAO) FindByID(ctx context.Context, id uint) (CashSession, error) {
	var session CashSession

	result := d.db.WithContext(ctx).First(&session, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return CashSession{}, ErrSessionNotFound
		}

		return CashSession{}, result.Error
	}

	return session, nil
}

func (d *TillDAO) FindMovementsBySession(ctx context.Context, sessionID uint) ([]Movement, error) {
	var movements []Movement

	result := d.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at desc").
		Find(&movements)
	if result.Error != nil {
		return nil, result.Error
	}

	return movements, nil
}

func (d *TillDAO) CountMovementsBySession(ctx context.Context, sessionID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Movement{}).
		Where("session_id = ?", sessionID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *TillDAO) FindClosedSessions(ctx context.Context) ([]CashSession, error) {
	var sessions []CashSession

	result := d.db.WithContext(ctx).
		Where("state = ?", "closed").
		Order("opened_at desc").
		Find(&sessions)
	if result.Error != nil {
		return nil, result.Error
	}

	return sessions, nil
}

func (d *TillDAO) FindSessionsByDay(ctx context.Context, day time.Time) ([]CashSession, error) {
	start, end := dayRange(day)

	var sessions []CashSession
	result := d.db.WithContext(ctx).
		Where("opened_at >= ? AND opened_at < ?", start, end).
		Order("opened_at desc").
		Find(&sessions)
	if result.Error != nil {
		return nil, result.Error
	}

	return sessions, nil
}

// SumSalesByDay sums sale movements across all sessions for the day.
func (d *TillDAO) SumSalesByDay(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	start, end := dayRange(day)

	var sum decimal.NullDecimal
	result := d.db.WithContext(ctx).Model(&Movement{}).
		Select("SUM(amount)").
		Where("kind = ? AND created_at >= ? AND created_at < ?", "sale", start, end).
		Scan(&sum)
	if result.Error != nil {
		return decimal.Zero, result.Error
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}

	return sum.Decimal, nil
}
