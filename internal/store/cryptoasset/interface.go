package cryptoasset

import (
	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

type IStore interface {
	GetBySymbol(tx *gorm.DB, symbol string) (*model.CryptoAsset, error)
	Create(tx *gorm.DB, asset *model.CryptoAsset) (*model.CryptoAsset, error)
}
