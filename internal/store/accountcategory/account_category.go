package accountcategory

import (
	"strings"

	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

type store struct{}

func New() IStore {
	return &store{}
}

func (s *store) All(tx *gorm.DB) ([]*model.AccountCategory, error) {
	var categories []*model.AccountCategory
	err := tx.Order("code ASC").Find(&categories).Error
	return categories, err
}

func (s *store) GetByID(tx *gorm.DB, id uint) (*model.AccountCategory, error) {
	var category model.AccountCategory
	if err := tx.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *store) GetByCode(tx *gorm.DB, code string) (*model.AccountCategory, error) {
	var category model.AccountCategory
	if err := tx.Where("code = ?", code).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *store) GetByName(tx *gorm.DB, name string) (*model.AccountCategory, error) {
	var category model.AccountCategory
	if err := tx.Where("LOWER(name) = ?", strings.ToLower(name)).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *store) Create(tx *gorm.DB, category *model.AccountCategory) (*model.AccountCategory, error) {
	return category, tx.Create(category).Error
}
