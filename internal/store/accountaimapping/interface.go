package accountaimapping

import (
	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

type IStore interface {
	All(tx *gorm.DB) ([]*model.AccountAIMapping, error)
	Create(tx *gorm.DB, mapping *model.AccountAIMapping) (*model.AccountAIMapping, error)
}
