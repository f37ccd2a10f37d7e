package transaction

import (
	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

type IStore interface {
	Create(tx *gorm.DB, transaction *model.Transaction) (*model.Transaction, error)

	// GetByUserAndTxID returns gorm.ErrRecordNotFound when the hash has not
	// been processed for the user
	GetByUserAndTxID(tx *gorm.DB, userID, txID string) (*model.Transaction, error)

	UpdateStatus(tx *gorm.DB, id uint, status model.TransactionStatus) error
}
