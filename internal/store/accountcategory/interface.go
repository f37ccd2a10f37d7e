package accountcategory

import (
	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

type IStore interface {
	All(tx *gorm.DB) ([]*model.AccountCategory, error)
	GetByID(tx *gorm.DB, id uint) (*model.AccountCategory, error)
	GetByCode(tx *gorm.DB, code string) (*model.AccountCategory, error)
	GetByName(tx *gorm.DB, name string) (*model.AccountCategory, error)
	Create(tx *gorm.DB, category *model.AccountCategory) (*model.AccountCategory, error)
}
