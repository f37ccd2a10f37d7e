package accountaimapping

import (
	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

type store struct{}

func New() IStore {
	return &store{}
}

func (s *store) All(tx *gorm.DB) ([]*model.AccountAIMapping, error) {
	var mappings []*model.AccountAIMapping
	err := tx.Order("id ASC").Find(&mappings).Error
	return mappings, err
}

func (s *store) Create(tx *gorm.DB, mapping *model.AccountAIMapping) (*model.AccountAIMapping, error) {
	return mapping, tx.Create(mapping).Error
}
