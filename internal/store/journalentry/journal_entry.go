package journalentry

import (
	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

type store struct{}

func New() IStore {
	return &store{}
}

func (s *store) Create(tx *gorm.DB, entry *model.JournalEntry) (*model.JournalEntry, error) {
	return entry, tx.Create(entry).Error
}

func (s *store) ListByTransactionID(tx *gorm.DB, transactionID uint) ([]*model.JournalEntry, error) {
	var entries []*model.JournalEntry
	err := tx.Where("transaction_id = ?", transactionID).Order("id ASC").Find(&entries).Error
	return entries, err
}

func (s *store) ListByUser(tx *gorm.DB, userID string, limit int) ([]*model.JournalEntry, error) {
	var entries []*model.JournalEntry
	q := tx.Where("user_id = ?", userID).Order("entry_date DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}

func (s *store) CountByUser(tx *gorm.DB, userID string) (int64, error) {
	var total int64
	err := tx.Model(&model.JournalEntry{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}
