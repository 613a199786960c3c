package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrPurchaseNotFound = errors.New("purchase not found")

type Purchase struct {
	ID uint `gorm:"primaryKey"`

	Code     string `gorm:"unique;not null"`
	Supplier string `gorm:"not null"`
	Notes    string

	Total decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`

	Details []PurchaseDetail `gorm:"foreignKey:PurchaseID"`

	CreatedAt time.Time `gorm:"not null;index"`
}

type PurchaseDetail struct {
	ID uint `gorm:"primaryKey"`

	PurchaseID   uint `gorm:"not null;index"`
	IngredientID uint `gorm:"not null;index"`

	Quantity decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	UnitCost decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

type PurchaseDAO struct {
	db *gorm.DB
}

func NewPurchaseDAO(db *gorm.DB) *PurchaseDAO {
	return &PurchaseDAO{
		db: db,
	}
}

// InsertWithStock stores the purchase and increments every detail's
// ingredient stock in the same transaction. Unknown ingredient ids abort the
// whole purchase.
func (d *PurchaseDAO) InsertWithStock(ctx context.Context, purchase Purchase) (Purchase, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}

		for _, detail := range purchase.Details {
			result := tx.Model(&Ingredient{}).
				Where("id = ?", detail.IngredientID).
				Update("stock", gorm.Expr("stock + ?", detail.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrIngredientNotFound
			}
		}

		return nil
	})
	if err != nil {
		return Purchase{}, err
	}

	return d.FindByID(ctx, purchase.ID)
}

func (d *PurchaseDAO) FindByID(ctx context.Context, id uint) (Purchase, error) {
	var purchase Purchase

	result := d.db.WithContext(ctx).Preload("Details").First(&purchase, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Purchase{}, ErrPurchaseNotFound
		}

		return Purchase{}, result.Error
	}

	return purchase, nil
}

func (d *PurchaseDAO) FindByCode(ctx context.Context, code string) (Purchase, error) {
	var purchase Purchase

	result := d.db.WithContext(ctx).Preload("Details").First(&purchase, "code = ?", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Purchase{}, ErrPurchaseNotFound
		}

		return Purchase{}, result.Error
	}

	return purchase, nil
}

func (d *PurchaseDAO) FindAll(ctx context.Context) ([]Purchase, error) {
	var purchases []Purchase

	result := d.db.WithContext(ctx).Preload("Details").
		Order("created_at desc").
		Find(&purchases)
	if result.Error != nil {
		return nil, result.Error
	}

	return purchases, nil
}

func (d *PurchaseDAO) FindByDay(ctx context.Context, day time.Time) ([]Purchase, error) {
	start, end := dayRange(day)

	var purchases []Purchase
	result := d.db.WithContext(ctx).Preload("Details").
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at desc").
		Find(&purchases)
	if result.Error != nil {
		return nil, result.Error
	}

	return purchases, nil
}

func (d *PurchaseDAO) SumByDay(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	start, end := dayRange(day)

	var sum decimal.NullDecimal
	result := d.db.WithContext(ctx).Model(&Purchase{}).
		Select("SUM(total)").
		Where("created_at >= ? AND created_at < ?", start, end).
		Scan(&sum)
	if result.Error != nil {
		return decimal.Zero, result.Error
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}

	return sum.Decimal, nil
}
