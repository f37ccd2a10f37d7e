package model

import (
	"time"

	"github.com/lib/pq"
)

type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

type Account struct {
	ID              uint        `json:"id" gorm:"primaryKey"`
	Code            string      `json:"code" gorm:"column:code;uniqueIndex"`
	Name            string      `json:"name" gorm:"column:name"`
	Type            AccountType `json:"type" gorm:"column:type"`
	SubType         string      `json:"sub_type" gorm:"column:sub_type"`
	CategoryID      uint        `json:"category_id" gorm:"column:category_id"`
	IsActive        bool        `json:"is_active" gorm:"column:is_active"`
	IsSystemAccount bool        `json:"is_system_account" gorm:"column:is_system_account"`
	IFRSReference   string      `json:"ifrs_reference" gorm:"column:ifrs_reference"`
	SortOrder       int         `json:"sort_order" gorm:"column:sort_order"`
	CreatedAt       time.Time   `json:"created_at"`
}

func (Account) TableName() string {
	return "accounts"
}

type AccountCategory struct {
	ID   uint        `json:"id" gorm:"primaryKey"`
	Code string      `json:"code" gorm:"column:code;uniqueIndex"`
	Name string      `json:"name" gorm:"column:name"`
	Type AccountType `json:"type" gorm:"column:type"`
}

func (AccountCategory) TableName() string {
	return "account_categories"
}

type CryptoAsset struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Symbol       string `json:"symbol" gorm:"column:symbol;uniqueIndex"`
	Name         string `json:"name" gorm:"column:name"`
	AccountID    uint   `json:"account_id" gorm:"column:account_id"`
	Blockchain   string `json:"blockchain" gorm:"column:blockchain"`
	Decimals     int    `json:"decimals" gorm:"column:decimals"`
	IsStableCoin bool   `json:"is_stable_coin" gorm:"column:is_stable_coin"`
}

func (CryptoAsset) TableName() string {
	return "crypto_assets"
}

type AccountAIMapping struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	Keywords         pq.StringArray `json:"keywords" gorm:"column:keywords;type:text[]"`
	TransactionTypes pq.StringArray `json:"transaction_types" gorm:"column:transaction_types;type:text[]"`
	ContextPatterns  pq.StringArray `json:"context_patterns" gorm:"column:context_patterns;type:text[]"`
	AccountID        uint           `json:"account_id" gorm:"column:account_id"`
	ConfidenceWeight float64        `json:"confidence_weight" gorm:"column:confidence_weight"`
}

func (AccountAIMapping) TableName() string {
	return "account_ai_mappings"
}
