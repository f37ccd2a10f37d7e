// Package storetest opens an in-memory sqlite ledger with the same tables the
// postgres migrations create, for package tests.
package storetest

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

const aiMappingsDDL = `CREATE TABLE account_ai_mappings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	keywords TEXT,
	transaction_types TEXT,
	context_patterns TEXT,
	account_id INTEGER,
	confidence_weight REAL
)`

func NewDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.Transaction{},
		&model.JournalEntry{},
		&model.Account{},
		&model.AccountCategory{},
		&model.CryptoAsset{},
	); err != nil {
		return nil, err
	}
	if err := db.Exec(aiMappingsDDL).Error; err != nil {
		return nil, err
	}

	return db, nil
}

// SeedChart inserts a small chart of accounts covering the scenarios the
// pipeline tests exercise.
func SeedChart(db *gorm.DB) error {
	categories := []*model.AccountCategory{
		{Code: "10", Name: "Cash and Equivalents", Type: model.AccountTypeAsset},
		{Code: "18", Name: "Digital Assets", Type: model.AccountTypeAsset},
		{Code: "40", Name: "Revenue", Type: model.AccountTypeRevenue},
		{Code: "60", Name: "Operating Expenses", Type: model.AccountTypeExpense},
		{Code: "62", Name: "Financial Expenses", Type: model.AccountTypeExpense},
	}
	for _, c := range categories {
		if err := db.Create(c).Error; err != nil {
			return err
		}
	}

	accounts := []*model.Account{
		{Code: "1001", Name: "Cash", Type: model.AccountTypeAsset, CategoryID: categories[0].ID, IsActive: true, IFRSReference: "IAS 7", SortOrder: 1},
		{Code: "1801", Name: "Digital Assets - Ethereum", Type: model.AccountTypeAsset, SubType: "crypto", CategoryID: categories[1].ID, IsActive: true, IsSystemAccount: true, IFRSReference: "IAS 38", SortOrder: 10},
		{Code: "1802", Name: "Digital Assets - Tether", Type: model.AccountTypeAsset, SubType: "crypto", CategoryID: categories[1].ID, IsActive: true, IFRSReference: "IAS 38", SortOrder: 11},
		{Code: "4001", Name: "Service Revenue", Type: model.AccountTypeRevenue, CategoryID: categories[2].ID, IsActive: true, IFRSReference: "IFRS 15", SortOrder: 40},
		{Code: "6001", Name: "Consulting Expense", Type: model.AccountTypeExpense, CategoryID: categories[3].ID, IsActive: true, IFRSReference: "IAS 1", SortOrder: 60},
		{Code: "6201", Name: "Transaction Fees", Type: model.AccountTypeExpense, CategoryID: categories[4].ID, IsActive: true, IsSystemAccount: true, IFRSReference: "IAS 1", SortOrder: 62},
	}
	for _, a := range accounts {
		if err := db.Create(a).Error; err != nil {
			return err
		}
	}

	assets := []*model.CryptoAsset{
		{Symbol: "ETH", Name: "Ethereum", AccountID: accounts[1].ID, Blockchain: "ethereum", Decimals: 18},
		{Symbol: "USDT", Name: "Tether", AccountID: accounts[2].ID, Blockchain: "ethereum", Decimals: 6, IsStableCoin: true},
	}
	for _, a := range assets {
		if err := db.Create(a).Error; err != nil {
			return err
		}
	}

	mappings := []*model.AccountAIMapping{
		{Keywords: []string{"consulting", "advisory"}, TransactionTypes: []string{"outgoing_transfer"}, ContextPatterns: []string{"payment for"}, AccountID: accounts[4].ID, ConfidenceWeight: 1.0},
		{Keywords: []string{"gas", "fee"}, TransactionTypes: []string{"contract_interaction", "failed_transaction"}, ContextPatterns: []string{"network fee"}, AccountID: accounts[5].ID, ConfidenceWeight: 0.9},
		{Keywords: []string{"invoice", "service"}, TransactionTypes: []string{"incoming_transfer", "token_received"}, ContextPatterns: []string{"payment from"}, AccountID: accounts[3].ID, ConfidenceWeight: 0.8},
	}
	for _, m := range mappings {
		if err := db.Create(m).Error; err != nil {
			return err
		}
	}

	return nil
}
