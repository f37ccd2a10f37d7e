package account

import (
	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

type IStore interface {
	// All returns active accounts ordered by sort order then code
	All(tx *gorm.DB) ([]*model.Account, error)
	GetByID(tx *gorm.DB, id uint) (*model.Account, error)
	GetByCode(tx *gorm.DB, code string) (*model.Account, error)
	// GetByName matches case-insensitively
	GetByName(tx *gorm.DB, name string) (*model.Account, error)
	Create(tx *gorm.DB, account *model.Account) (*model.Account, error)
	// CodesWithPrefix lists every code, active or not, starting with prefix
	CodesWithPrefix(tx *gorm.DB, prefix string) ([]string, error)
}
