package dao

import (
	"time"

	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	err := db.AutoMigrate(
		&User{},
		&Table{},
		&Order{},
		&OrderLine{},
		&CashSession{},
		&Movement{},
		&Ingredient{},
		&RecipeLine{},
		&Product{},
		&Purchase{},
		&PurchaseDetail{},
	)
	if err != nil {
		return err
	}

	// Storage-level guard for the single-open-session invariant. The opening
	// transaction also checks under a row lock; this index wins any race that
	// slips past it.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uni_cash_sessions_open
		 ON cash_sessions (state) WHERE state = 'open'`,
	).Error
}

// dayRange returns the [start, end) bounds of the calendar day containing t.
func dayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
