package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderTerminal     = errors.New("order is already paid or voided")
	ErrOrderStateChanged = errors.New("order state changed concurrently")
)

type Order struct {
	ID uint `gorm:"primaryKey"`

	Code        string `gorm:"unique;not null"`
	TableNumber int    `gorm:"not null;index"`
	Server      string `gorm:"type:varchar(100);not null"`
	State       string `gorm:"type:varchar(20);not null;default:'pending';index"`
	Note        string

	Subtotal decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Discount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Total    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`

	VoidReason string `gorm:"type:varchar(200)"`
	VoidedBy   string `gorm:"type:varchar(100)"`
	VoidedAt   *time.Time

	Lines []OrderLine `gorm:"foreignKey:OrderID"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

type OrderLine struct {
	ID uint `gorm:"primaryKey"`

	OrderID     uint  `gorm:"not null;index"`
	ProductID   *uint `gorm:"index"`
	ProductName string `gorm:"not null"`
	Quantity    int    `gorm:"not null"`

	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Note string
}

type OrderDAO struct {
	db *gorm.DB
}

func NewOrderDAO(db *gorm.DB) *OrderDAO {
	return &OrderDAO{
		db: db,
	}
}

// activeStates are the non-terminal order states.
var activeStates = []string{"pending", "preparing", "ready", "served"}

// InsertWithTableTotal creates the order with its lines and adds its total to
// the table's running consumption total, as one transaction. The table must
// still be occupied when the row is locked, otherwise nothing is written.
func (d *OrderDAO) InsertWithTableTotal(ctx context.Context, order Order) (Order, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table Table
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&table, "number = ?", order.TableNumber).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}

			return err
		}

		if table.State != "occupied" {
			return ErrTableStateChanged
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return tx.Model(&Table{}).Where("id = ?", table.ID).
			Update("consumption_total", gorm.Expr("consumption_total + ?", order.Total)).Error
	})
	if err != nil {
		return Order{}, err
	}

	return d.FindByID(ctx, order.ID)
}

// VoidWithTableTotal marks the order voided and subtracts its total from the
// table's consumption total (clamped at zero), atomically. Terminal orders
// are rejected under the same row lock.
func (d *OrderDAO) VoidWithTableTotal(ctx context.Context, id uint, reason, actor string, at time.Time) (Order, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}

			return err
		}

		if order.State == "paid" || order.State == "voided" {
			return ErrOrderTerminal
		}

		updates := map[string]interface{}{
			"state":       "voided",
			"void_reason": reason,
			"voided_by":   actor,
			"voided_at":   at,
		}
		if err := tx.Model(&Order{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Model(&Table{}).Where("number = ?", order.TableNumber).
			Update("consumption_total", gorm.Expr("GREATEST(consumption_total - ?, 0)", order.Total)).Error
	})
	if err != nil {
		return Order{}, err
	}

	return d.FindByID(ctx, id)
}

// UpdateStateFrom moves the order from one exact state to another; a
// concurrent transition makes the guarded update match zero rows.
func (d *OrderDAO) UpdateStateFrom(ctx context.Context, id uint, from, to string) (Order, error) {
	result := d.db.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND state = ?", id, from).
		Update("state", to)
	if result.Error != nil {
		return Order{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Order{}, ErrOrderStateChanged
	}

	return d.FindByID(ctx, id)
}

// UpdateDiscountWithTableTotal changes the discount, recomputes the total and
// applies the delta to the table's consumption total in one transaction.
func (d *OrderDAO) UpdateDiscountWithTableTotal(ctx context.Context, id uint, discount decimal.Decimal) (Order, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}

			return err
		}

		if order.State == "paid" || order.State == "voided" {
			return ErrOrderTerminal
		}

		newTotal := order.Subtotal.Sub(discount)
		delta := newTotal.Sub(order.Total)

		updates := map[string]interface{}{
			"discount": discount,
			"total":    newTotal,
		}
		if err := tx.Model(&Order{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Model(&Table{}).Where("number = ?", order.TableNumber).
			Update("consumption_total", gorm.Expr("GREATEST(consumption_total + ?, 0)", delta)).Error
	})
	if err != nil {
		return Order{}, err
	}

	return d.FindByID(ctx, id)
}

// MarkPaid transitions one active order to paid; already-terminal orders
// match zero rows.
func (d *OrderDAO) MarkPaid(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND state IN ?", id, activeStates).
		Update("state", "paid")
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderTerminal
	}

	return nil
}

func (d *OrderDAO) FindByID(ctx context.Context, id uint) (Order, error) {
	var order Order

	result := d.db.WithContext(ctx).Preload("Lines").First(&order, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Order{}, ErrOrderNotFound
		}

		return Order{}, result.Error
	}

	return order, nil
}

func (d *OrderDAO) FindByCode(ctx context.Context, code string) (Order, error) {
	var order Order

	result := d.db.WithContext(ctx).Preload("Lines").First(&order, "code = ?", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Order{}, ErrOrderNotFound
		}

		return Order{}, result.Error
	}

	return order, nil
}

func (d *OrderDAO) FindByTable(ctx context.Context, tableNumber int) ([]Order, error) {
	var orders []Order

	result := d.db.WithContext(ctx).Preload("Lines").
		Where("table_number = ?", tableNumber).
		Order("created_at desc").
		Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

func (d *OrderDAO) FindActiveByTable(ctx context.Context, tableNumber int) ([]Order, error) {
	var orders []Order

	result := d.db.WithContext(ctx).Preload("Lines").
		Where("table_number = ? AND state IN ?", tableNumber, activeStates).
		Order("created_at asc").
		Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

func (d *OrderDAO) FindByState(ctx context.Context, state string) ([]Order, error) {
	var orders []Order

	result := d.db.WithContext(ctx).Preload("Lines").
		Where("state = ?", state).
		Order("created_at asc").
		Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

func (d *OrderDAO) FindByDay(ctx context.Context, day time.Time) ([]Order, error) {
	start, end := dayRange(day)

	var orders []Order
	result := d.db.WithContext(ctx).Preload("Lines").
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at desc").
		Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

func (d *OrderDAO) FindByDayAndServer(ctx context.Context, day time.Time, server string) ([]Order, error) {
	start, end := dayRange(day)

	var orders []Order
	result := d.db.WithContext(ctx).Preload("Lines").
		Where("created_at >= ? AND created_at < ? AND lower(server) = lower(?)", start, end, server).
		Order("created_at desc").
		Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

func (d *OrderDAO) FindVoided(ctx context.Context, from, to *time.Time, actor string) ([]Order, error) {
	query := d.db.WithContext(ctx).Preload("Lines").Where("state = ?", "voided")

	if from != nil {
		query = query.Where("voided_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("voided_at < ?", *to)
	}
	if actor != "" {
		query = query.Where("lower(voided_by) = lower(?)", actor)
	}

	var orders []Order
	result := query.Order("voided_at desc").Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

func (d *OrderDAO) FindPaidByDay(ctx context.Context, day time.Time) ([]Order, error) {
	start, end := dayRange(day)

	var orders []Order
	result := d.db.WithContext(ctx).Preload("Lines").
		Where("state = ? AND created_at >= ? AND created_at < ?", "paid", start, end).
		Order("created_at desc").
		Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

func (d *OrderDAO) CountByStateAndDay(ctx context.Context, state string, day time.Time) (int64, error) {
	start, end := dayRange(day)

	var count int64
	result := d.db.WithContext(ctx).Model(&Order{}).
		Where("state = ? AND created_at >= ? AND created_at < ?", state, start, end).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *OrderDAO) CountByDay(ctx context.Context, day time.Time) (int64, error) {
	start, end := dayRange(day)

	var count int64
	result := d.db.WithContext(ctx).Model(&Order{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *OrderDAO) SumPaidByDay(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	start, end := dayRange(day)

	var sum decimal.NullDecimal
	result := d.db.WithContext(ctx).Model(&Order{}).
		Select("SUM(total)").
		Where("state = ? AND created_at >= ? AND created_at < ?", "paid", start, end).
		Scan(&sum)
	if result.Error != nil {
		return decimal.Zero, result.Error
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}

	return sum.Decimal, nil
}
