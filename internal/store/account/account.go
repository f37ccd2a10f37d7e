package account

import (
	"strings"

	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

type store struct{}

func New() IStore {
	return &store{}
}

func (s *store) All(tx *gorm.DB) ([]*model.Account, error) {
	var accounts []*model.Account
	err := tx.Where("is_active = ?", true).Order("sort_order ASC, code ASC").Find(&accounts).Error
	return accounts, err
}

func (s *store) GetByID(tx *gorm.DB, id uint) (*model.Account, error) {
	var account model.Account
	if err := tx.First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *store) GetByCode(tx *gorm.DB, code string) (*model.Account, error) {
	var account model.Account
	if err := tx.Where("code = ?", strings.TrimSpace(code)).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *store) GetByName(tx *gorm.DB, name string) (*model.Account, error) {
	var account model.Account
	err := tx.Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("is_active DESC, id ASC").
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *store) Create(tx *gorm.DB, account *model.Account) (*model.Account, error) {
	return account, tx.Create(account).Error
}

func (s *store) CodesWithPrefix(tx *gorm.DB, prefix string) ([]string, error) {
	var codes []string
	err := tx.Model(&model.Account{}).Where("code LIKE ?", prefix+"%").Pluck("code", &codes).Error
	return codes, err
}
