package model

import (
	"time"

	"gorm.io/datatypes"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusProcessed TransactionStatus = "processed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is the per-user ledger header for one on-chain hash.
type Transaction struct {
	ID             uint              `json:"id" gorm:"primaryKey"`
	UserID         string            `json:"user_id" gorm:"column:user_id;uniqueIndex:idx_transactions_user_txid"`
	TxID           string            `json:"txid" gorm:"column:txid;uniqueIndex:idx_transactions_user_txid"`
	Description    string            `json:"description" gorm:"column:description"`
	BlockchainData datatypes.JSON    `json:"blockchain_data" gorm:"column:blockchain_data"`
	Status         TransactionStatus `json:"status" gorm:"column:status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
