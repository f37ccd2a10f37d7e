package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type EntryType string

const (
	EntryTypeMain EntryType = "main"
	EntryTypeFee  EntryType = "fee"
)

type EntrySource string

const (
	EntrySourceAIChat   EntrySource = "ai_chat"
	EntrySourceAISingle EntrySource = "ai_single"
	EntrySourceAIBulk   EntrySource = "ai_bulk"
	EntrySourceManual   EntrySource = "manual"
)

// ProposedEntry is a journal entry produced by the model and not yet stored.
type ProposedEntry struct {
	AccountDebit            string           `json:"accountDebit"`
	AccountCredit           string           `json:"accountCredit"`
	Amount                  decimal.Decimal  `json:"amount"`
	Currency                string           `json:"currency"`
	Narrative               string           `json:"narrative"`
	Confidence              float64          `json:"confidence"`
	EntryType               EntryType        `json:"entryType"`
	RequiresAccountCreation bool             `json:"requiresAccountCreation,omitempty"`
	TransactionHash         string           `json:"transactionHash,omitempty"`
	Category                Category         `json:"category,omitempty"`
	TransactionDate         *time.Time       `json:"transactionDate,omitempty"`
	USDValue                *decimal.Decimal `json:"usdValue,omitempty"`
	USDRate                 *decimal.Decimal `json:"usdRate,omitempty"`
	USDSource               USDSource        `json:"usdSource,omitempty"`
	USDTimestamp            *time.Time       `json:"usdTimestamp,omitempty"`
	Metadata                map[string]any   `json:"metadata,omitempty"`
}

// JournalEntry is an append-only persisted ledger line.
type JournalEntry struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	UserID          string           `json:"user_id" gorm:"column:user_id;index"`
	TransactionID   *uint            `json:"transaction_id,omitempty" gorm:"column:transaction_id;index"`
	AccountDebit    string           `json:"account_debit" gorm:"column:account_debit"`
	AccountCredit   string           `json:"account_credit" gorm:"column:account_credit"`
	Amount          decimal.Decimal  `json:"amount" gorm:"column:amount;type:numeric"`
	Currency        string           `json:"currency" gorm:"column:currency"`
	EntryType       EntryType        `json:"entry_type" gorm:"column:entry_type"`
	EntryDate       time.Time        `json:"entry_date" gorm:"column:entry_date"`
	TransactionDate time.Time        `json:"transaction_date" gorm:"column:transaction_date"`
	Narrative       string           `json:"narrative" gorm:"column:narrative"`
	AIConfidence    float64          `json:"ai_confidence" gorm:"column:ai_confidence"`
	Source          EntrySource      `json:"source" gorm:"column:source"`
	Metadata        datatypes.JSON   `json:"metadata" gorm:"column:metadata"`
	IsReviewed      bool             `json:"is_reviewed" gorm:"column:is_reviewed"`
	USDValue        *decimal.Decimal `json:"usd_value,omitempty" gorm:"column:usd_value;type:numeric"`
	USDRate         *decimal.Decimal `json:"usd_rate,omitempty" gorm:"column:usd_rate;type:numeric"`
	USDSource       USDSource        `json:"usd_source" gorm:"column:usd_source"`
	USDTimestamp    *time.Time       `json:"usd_timestamp,omitempty" gorm:"column:usd_timestamp"`
	CreatedAt       time.Time        `json:"created_at"`
}

func (JournalEntry) TableName() string {
	return "journal_entries"
}
