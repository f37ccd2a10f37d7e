package store

import (
	"context"

	"gorm.io/gorm"
)

// DoInTx runs fn inside a database transaction, rolling back on error or panic.
func DoInTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return DoInTxContext(context.Background(), db, fn)
}

func DoInTxContext(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) (err error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err = fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
