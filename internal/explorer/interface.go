package explorer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

type IExplorer interface {
	GetTransaction(ctx context.Context, hash string) (*model.TransactionRecord, error)
	GetWalletTransactions(ctx context.Context, address string, opts WalletOptions) (*WalletResult, error)
	GetTokenTransfers(ctx context.Context, addressOrHash string) ([]model.TokenTransfer, error)
	GetBalance(ctx context.Context, address string) (*Balance, error)
	NetworkCurrency() string
}

// WalletOptions controls which feeds are queried and which records survive.
type WalletOptions struct {
	Limit           int             `json:"limit"`
	MinValue        decimal.Decimal `json:"min_value"`
	IncludeTokens   bool            `json:"include_tokens"`
	IncludeInternal bool            `json:"include_internal"`
	IncludeFailed   bool            `json:"include_failed"`
	// Direction is "to", "from" or empty for both.
	Direction string `json:"direction,omitempty"`
}

// DefaultWalletOptions mirrors what the chat path uses for "analyse my wallet".
func DefaultWalletOptions() WalletOptions {
	return WalletOptions{
		Limit:           50,
		IncludeTokens:   true,
		IncludeInternal: true,
	}
}

type WalletResult struct {
	Records []*model.TransactionRecord `json:"records"`
	Summary WalletSummary              `json:"summary"`
}

type WalletSummary struct {
	Regular  int `json:"regular"`
	Token    int `json:"token"`
	Internal int `json:"internal"`
	Merged   int `json:"merged"`
	Failed   int `json:"failed"`
	// Tokens counts merged records that carry a token transfer.
	Tokens int `json:"tokens"`
}

type Balance struct {
	Wei    string          `json:"wei"`
	Native decimal.Decimal `json:"native"`
}
