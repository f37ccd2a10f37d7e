package cryptoasset

import (
	"strings"

	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

type store struct{}

func New() IStore {
	return &store{}
}

func (s *store) GetBySymbol(tx *gorm.DB, symbol string) (*model.CryptoAsset, error) {
	var asset model.CryptoAsset
	if err := tx.Where("symbol = ?", strings.ToUpper(symbol)).First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (s *store) Create(tx *gorm.DB, asset *model.CryptoAsset) (*model.CryptoAsset, error) {
	asset.Symbol = strings.ToUpper(asset.Symbol)
	return asset, tx.Create(asset).Error
}
