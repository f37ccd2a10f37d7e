package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TxStatus string

const (
	TxStatusSuccess TxStatus = "success"
	TxStatusFailed  TxStatus = "failed"
)

type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
	DirectionSelf     Direction = "self"
	DirectionInternal Direction = "internal"
)

// RecordSource names the explorer feed a record came from.
type RecordSource string

const (
	SourceRegular  RecordSource = "regular"
	SourceToken    RecordSource = "token"
	SourceInternal RecordSource = "internal"
)

// TokenTransfer is one ERC-20/721/1155 movement attached to a transaction.
type TokenTransfer struct {
	Symbol          string          `json:"symbol"`
	Name            string          `json:"name"`
	ContractAddress string          `json:"contract_address"`
	Decimals        int             `json:"decimals"`
	RawAmount       string          `json:"raw_amount"`
	Amount          decimal.Decimal `json:"amount"`
	From            string          `json:"from"`
	To              string          `json:"to"`
	TokenType       string          `json:"token_type,omitempty"`
}

// TransactionRecord is the normalised view of one explorer transaction.
// RawValue is kept verbatim next to NativeAmount.
type TransactionRecord struct {
	Hash            string          `json:"hash"`
	From            string          `json:"from"`
	To              string          `json:"to"`
	RawValue        string          `json:"raw_value"`
	NativeAmount    decimal.Decimal `json:"native_amount"`
	GasUsed         string          `json:"gas_used"`
	GasPrice        string          `json:"gas_price"`
	GasFeeNative    decimal.Decimal `json:"gas_fee_native"`
	NetworkCurrency string          `json:"network_currency"`
	BlockNumber     uint64          `json:"block_number"`
	Timestamp       time.Time       `json:"timestamp"`
	Status          TxStatus        `json:"status"`
	InputData       string          `json:"input_data"`
	Method          string          `json:"method,omitempty"`
	IsTokenTransfer bool            `json:"is_token_transfer"`
	TokenTransfer   *TokenTransfer  `json:"token_transfer,omitempty"`
	TokenAmount     decimal.Decimal `json:"token_amount"`
	Category        Category        `json:"category,omitempty"`
	Direction       Direction       `json:"direction,omitempty"`
	SourceSet       []RecordSource  `json:"source_set"`
}

func (r *TransactionRecord) HasToken() bool {
	return r.TokenTransfer != nil
}

func (r *TransactionRecord) FromSource(s RecordSource) bool {
	for _, v := range r.SourceSet {
		if v == s {
			return true
		}
	}
	return false
}

// Currency is the token symbol for token transfers, the network currency otherwise.
func (r *TransactionRecord) Currency() string {
	if r.IsTokenTransfer && r.TokenTransfer != nil && r.TokenTransfer.Symbol != "" {
		return r.TokenTransfer.Symbol
	}
	return r.NetworkCurrency
}

// Amount is the economic amount of the record in Currency().
func (r *TransactionRecord) Amount() decimal.Decimal {
	if r.IsTokenTransfer && r.TokenTransfer != nil {
		return r.TokenTransfer.Amount
	}
	return r.NativeAmount
}
