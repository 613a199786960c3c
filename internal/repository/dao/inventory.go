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
	ErrIngredientNameExists = errors.New("ingredient name already exists")
	ErrIngredientNotFound   = errors.New("ingredient not found")
)

type Ingredient struct {
	ID uint `gorm:"primaryKey"`

	Name     string `gorm:"unique;not null"`
	Category string `gorm:"type:varchar(50)"`
	Unit     string `gorm:"type:varchar(20);not null;default:'unidades'"`

	Stock    decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	MinStock decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type IngredientDAO struct {
	db *gorm.DB
}

func NewIngredientDAO(db *gorm.DB) *IngredientDAO {
	return &IngredientDAO{
		db: db,
	}
}

func (d *IngredientDAO) Insert(ctx context.Context, ingredient Ingredient) (Ingredient, error) {
	result := d.db.WithContext(ctx).Create(&ingredient)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, `unique constraint "uni_ingredients_name"`) {
			return Ingredient{}, ErrIngredientNameExists
		}

		return Ingredient{}, result.Error
	}

	return ingredient, nil
}

func (d *IngredientDAO) FindByID(ctx context.Context, id uint) (Ingredient, error) {
	var ingredient Ingredient

	result := d.db.WithContext(ctx).First(&ingredient, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ingredient{}, ErrIngredientNotFound
		}

		return Ingredient{}, result.Error
	}

	return ingredient, nil
}

func (d *IngredientDAO) FindByName(ctx context.Context, name string) (Ingredient, error) {
	var ingredient Ingredient

	result := d.db.WithContext(ctx).First(&ingredient, "name = ?", name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ingredient{}, ErrIngredientNotFound
		}

		return Ingredient{}, result.Error
	}

	return ingredient, nil
}

func (d *IngredientDAO) FindAll(ctx context.Context) ([]Ingredient, error) {
	var ingredients []Ingredient

	result := d.db.WithContext(ctx).Order("name asc").Find(&ingredients)
	if result.Error != nil {
		return nil, result.Error
	}

	return ingredients, nil
}

func (d *IngredientDAO) Search(ctx context.Context, term string) ([]Ingredient, error) {
	var ingredients []Ingredient

	result := d.db.WithContext(ctx).
		Where("name ILIKE ?", "%"+term+"%").
		Order("name asc").
		Find(&ingredients)
	if result.Error != nil {
		return nil, result.Error
	}

	return ingredients, nil
}

func (d *IngredientDAO) FindByCategory(ctx context.Context, category string) ([]Ingredient, error) {
	var ingredients []Ingredient

	result := d.db.WithContext(ctx).
		Where("category = ?", category).
		Order("name asc").
		Find(&ingredients)
	if result.Error != nil {
		return nil, result.Error
	}

	return ingredients, nil
}

func (d *IngredientDAO) FindLowStock(ctx context.Context) ([]Ingredient, error) {
	var ingredients []Ingredient

	result := d.db.WithContext(ctx).
		Where("stock <= min_stock").
		Order("name asc").
		Find(&ingredients)
	if result.Error != nil {
		return nil, result.Error
	}

	return ingredients, nil
}

func (d *IngredientDAO) FindDepleted(ctx context.Context) ([]Ingredient, error) {
	var ingredients []Ingredient

	result := d.db.WithContext(ctx).
		Where("stock <= 0").
		Order("name asc").
		Find(&ingredients)
	if result.Error != nil {
		return nil, result.Error
	}

	return ingredients, nil
}

func (d *IngredientDAO) CountLowStock(ctx context.Context) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Ingredient{}).
		Where("stock <= min_stock").
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *IngredientDAO) CountDepleted(ctx context.Context) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Ingredient{}).
		Where("stock <= 0").
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *IngredientDAO) Count(ctx context.Context) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Ingredient{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *IngredientDAO) Categories(ctx context.Context) ([]string, error) {
	var categories []string

	result := d.db.WithContext(ctx).Model(&Ingredient{}).
		Distinct("category").
		Where("category <> ''").
		Order("category asc").
		Pluck("category", &categories)
	if result.Error != nil {
		return nil, result.Error
	}

	return categories, nil
}

// Update persists the editable attributes; stock changes go through the
// dedicated stock methods.
func (d *IngredientDAO) Update(ctx context.Context, ingredient Ingredient) (Ingredient, error) {
	result := d.db.WithContext(ctx).Model(&Ingredient{}).
		Where("id = ?", ingredient.ID).
		Select("Name", "Category", "Unit", "MinStock").
		Updates(ingredient)
	if result.Error != nil {
		return Ingredient{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Ingredient{}, ErrIngredientNotFound
	}

	return d.FindByID(ctx, ingredient.ID)
}

func (d *IngredientDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Ingredient{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrIngredientNotFound
	}

	return nil
}

// IncreaseStock adds qty under a row lock. Purchases call this per detail.
func (d *IngredientDAO) IncreaseStock(ctx context.Context, id uint, qty decimal.Decimal) (Ingredient, error) {
	var updated Ingredient

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&updated, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrIngredientNotFound
			}

			return err
		}

		updated.Stock = updated.Stock.Add(qty)

		return tx.Model(&Ingredient{}).Where("id = ?", id).
			Update("stock", updated.Stock).Error
	})
	if err != nil {
		return Ingredient{}, err
	}

	return updated, nil
}

// DeductStock removes up to qty from the stock under a row lock, clamping at
// zero. It reports the amount actually removed and whether the request was
// fully satisfied; shortage is not an error.
func (d *IngredientDAO) DeductStock(ctx context.Context, id uint, qty decimal.Decimal) (Ingredient, decimal.Decimal, bool, error) {
	var (
		updated Ingredient
		applied decimal.Decimal
		full    bool
	)

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&updated, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrIngredientNotFound
			}

			return err
		}

		if updated.Stock.GreaterThanOrEqual(qty) {
			applied = qty
			full = true
			updated.Stock = updated.Stock.Sub(qty)
		} else {
			applied = updated.Stock
			full = false
			updated.Stock = decimal.Zero
		}

		return tx.Model(&Ingredient{}).Where("id = ?", id).
			Update("stock", updated.Stock).Error
	})
	if err != nil {
		return Ingredient{}, decimal.Zero, false, err
	}

	return updated, applied, full, nil
}

// SetStock overwrites the stock (manual adjustment) and returns the previous
// value so the caller can log it.
func (d *IngredientDAO) SetStock(ctx context.Context, id uint, stock decimal.Decimal) (Ingredient, decimal.Decimal, error) {
	var (
		updated  Ingredient
		previous decimal.Decimal
	)

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&updated, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrIngredientNotFound
			}

			return err
		}

		previous = updated.Stock
		updated.Stock = stock

		return tx.Model(&Ingredient{}).Where("id = ?", id).
			Update("stock", stock).Error
	})
	if err != nil {
		return Ingredient{}, decimal.Zero, err
	}

	return updated, previous, nil
}
