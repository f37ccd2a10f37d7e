package transaction

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

type store struct{}

func New() IStore {
	return &store{}
}

func (s *store) Create(tx *gorm.DB, transaction *model.Transaction) (*model.Transaction, error) {
	transaction.TxID = strings.ToLower(transaction.TxID)
	return transaction, tx.Create(transaction).Error
}

func (s *store) GetByUserAndTxID(tx *gorm.DB, userID, txID string) (*model.Transaction, error) {
	var transaction model.Transaction
	err := tx.Where("user_id = ? AND txid = ?", userID, strings.ToLower(txID)).First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (s *store) UpdateStatus(tx *gorm.DB, id uint, status model.TransactionStatus) error {
	return tx.Model(&model.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
