package journalentry

import (
	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

type IStore interface {
	Create(tx *gorm.DB, entry *model.JournalEntry) (*model.JournalEntry, error)

	// ListByTransactionID returns entries in insertion order
	ListByTransactionID(tx *gorm.DB, transactionID uint) ([]*model.JournalEntry, error)

	ListByUser(tx *gorm.DB, userID string, limit int) ([]*model.JournalEntry, error)
	CountByUser(tx *gorm.DB, userID string) (int64, error)
}
