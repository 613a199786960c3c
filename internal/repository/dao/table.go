package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTableNumberExists = errors.New("table number already exists")
	ErrTableNotFound     = errors.New("table not found")
	ErrTableOccupied     = errors.New("table is occupied")
	ErrTableStateChanged = errors.New("table state changed concurrently")
)

type Table struct {
	ID uint `gorm:"primaryKey"`

	Number    int    `gorm:"unique;not null"`
	Capacity  int    `gorm:"not null;default:4"`
	State     string `gorm:"type:varchar(20);not null;default:'available'"`
	Server    string `gorm:"type:varchar(100)"`
	PartySize int    `gorm:"not null;default:0"`

	OccupiedSince    *time.Time
	ReleaseReason    string          `gorm:"type:varchar(200)"`
	ConsumptionTotal decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type TableDAO struct {
	db *gorm.DB
}

func NewTableDAO(db *gorm.DB) *TableDAO {
	return &TableDAO{
		db: db,
	}
}

func (d *TableDAO) Insert(ctx context.Context, table Table) (Table, error) {
	result := d.db.WithContext(ctx).Create(&table)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, `unique constraint "uni_tables_number"`) {
			return Table{}, ErrTableNumberExists
		}

		return Table{}, result.Error
	}

	return table, nil
}

func (d *TableDAO) FindByID(ctx context.Context, id uint) (Table, error) {
	var table Table

	result := d.db.WithContext(ctx).First(&table, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Table{}, ErrTableNotFound
		}

		return Table{}, result.Error
	}

	return table, nil
}

func (d *TableDAO) FindByNumber(ctx context.Context, number int) (Table, error) {
	var table Table

	result := d.db.WithContext(ctx).First(&table, "number = ?", number)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Table{}, ErrTableNotFound
		}

		return Table{}, result.Error
	}

	return table, nil
}

func (d *TableDAO) FindAll(ctx context.Context) ([]Table, error) {
	var tables []Table

	result := d.db.WithContext(ctx).Order("number asc").Find(&tables)
	if result.Error != nil {
		return nil, result.Error
	}

	return tables, nil
}

func (d *TableDAO) FindByState(ctx context.Context, state string) ([]Table, error) {
	var tables []Table

	result := d.db.WithContext(ctx).Where("state = ?", state).Order("number asc").Find(&tables)
	if result.Error != nil {
		return nil, result.Error
	}

	return tables, nil
}

func (d *TableDAO) FindByServer(ctx context.Context, server string) ([]Table, error) {
	var tables []Table

	result := d.db.WithContext(ctx).
		Where("server = ? AND state = ?", server, "occupied").
		Order("number asc").
		Find(&tables)
	if result.Error != nil {
		return nil, result.Error
	}

	return tables, nil
}

// UpdateWithStateGuard persists the table only if its stored state still
// matches expectedState, serializing concurrent occupy/release/reserve calls
// on the same table.
func (d *TableDAO) UpdateWithStateGuard(ctx context.Context, table Table, expectedState string) (Table, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current Table
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&current, table.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}

			return err
		}

		if current.State != expectedState {
			return ErrTableStateChanged
		}

		return tx.Model(&Table{}).Where("id = ?", table.ID).
			Select("State", "Server", "PartySize", "OccupiedSince", "ReleaseReason", "ConsumptionTotal").
			Updates(table).Error
	})
	if err != nil {
		return Table{}, err
	}

	return d.FindByID(ctx, table.ID)
}

func (d *TableDAO) UpdateConsumptionTotal(ctx context.Context, number int, total decimal.Decimal) (Table, error) {
	result := d.db.WithContext(ctx).Model(&Table{}).
		Where("number = ?", number).
		Update("consumption_total", total)
	if result.Error != nil {
		return Table{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Table{}, ErrTableNotFound
	}

	return d.FindByNumber(ctx, number)
}

func (d *TableDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table Table
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&table, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}

			return err
		}

		if table.State == "occupied" {
			return ErrTableOccupied
		}

		return tx.Delete(&table).Error
	})
}

func (d *TableDAO) CountByState(ctx context.Context, state string) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Table{}).Where("state = ?", state).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *TableDAO) Count(ctx context.Context) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Table{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
