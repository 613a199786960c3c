package dao

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrRecipeIngredientUnknown = errors.New("recipe references an unknown ingredient")

type RecipeLine struct {
	ID uint `gorm:"primaryKey"`

	ProductID    uint `gorm:"not null;uniqueIndex:uni_recipe_product_ingredient"`
	IngredientID uint `gorm:"not null;uniqueIndex:uni_recipe_product_ingredient"`

	QuantityPerUnit decimal.Decimal `gorm:"type:decimal(10,3);not null"`
}

type RecipeDAO struct {
	db *gorm.DB
}

func NewRecipeDAO(db *gorm.DB) *RecipeDAO {
	return &RecipeDAO{
		db: db,
	}
}

func (d *RecipeDAO) FindByProduct(ctx context.Context, productID uint) ([]RecipeLine, error) {
	var lines []RecipeLine

	result := d.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("ingredient_id asc").
		Find(&lines)
	if result.Error != nil {
		return nil, result.Error
	}

	return lines, nil
}

func (d *RecipeDAO) ExistsForProduct(ctx context.Context, productID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&RecipeLine{}).
		Where("product_id = ?", productID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// ReplaceForProduct swaps the whole recipe in one transaction, so no reader
// ever observes an empty recipe between delete and insert. Every ingredient
// id is validated before anything is written.
func (d *RecipeDAO) ReplaceForProduct(ctx context.Context, productID uint, lines []RecipeLine) ([]RecipeLine, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range lines {
			var count int64
			if err := tx.Model(&Ingredient{}).
				Where("id = ?", lines[i].IngredientID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrRecipeIngredientUnknown
			}

			lines[i].ProductID = productID
		}

		if err := tx.Where("product_id = ?", productID).
			Delete(&RecipeLine{}).Error; err != nil {
			return err
		}

		if len(lines) == 0 {
			return nil
		}

		return tx.Create(&lines).Error
	})
	if err != nil {
		return nil, err
	}

	return d.FindByProduct(ctx, productID)
}

// UpsertLine sets the quantity for one (product, ingredient) pair, creating
// the line when it does not exist yet.
func (d *RecipeDAO) UpsertLine(ctx context.Context, line RecipeLine) (RecipeLine, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Ingredient{}).
			Where("id = ?", line.IngredientID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrRecipeIngredientUnknown
		}

		var existing RecipeLine
		err := tx.First(&existing, "product_id = ? AND ingredient_id = ?", line.ProductID, line.IngredientID).Error
		if err == nil {
			return tx.Model(&RecipeLine{}).Where("id = ?", existing.ID).
				Update("quantity_per_unit", line.QuantityPerUnit).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&line).Error
	})
	if err != nil {
		return RecipeLine{}, err
	}

	var saved RecipeLine
	result := d.db.WithContext(ctx).
		First(&saved, "product_id = ? AND ingredient_id = ?", line.ProductID, line.IngredientID)
	if result.Error != nil {
		return RecipeLine{}, result.Error
	}

	return saved, nil
}

func (d *RecipeDAO) DeleteLine(ctx context.Context, productID, ingredientID uint) error {
	return d.db.WithContext(ctx).
		Where("product_id = ? AND ingredient_id = ?", productID, ingredientID).
		Delete(&RecipeLine{}).Error
}

func (d *RecipeDAO) DeleteForProduct(ctx context.Context, productID uint) error {
	return d.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&RecipeLine{}).Error
}

func (d *RecipeDAO) FindProductsUsingIngredient(ctx context.Context, ingredientID uint) ([]uint, error) {
	var productIDs []uint

	result := d.db.WithContext(ctx).Model(&RecipeLine{}).
		Distinct("product_id").
		Where("ingredient_id = ?", ingredientID).
		Order("product_id asc").
		Pluck("product_id", &productIDs)
	if result.Error != nil {
		return nil, result.Error
	}

	return productIDs, nil
}
