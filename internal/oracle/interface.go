package oracle

import (
	"context"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

type CacheStatistics struct {
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	Entries     int       `json:"entries"`
	LastRefresh time.Time `json:"last_refresh"`
}

// JournalPrice is the USD valuation of one journal entry amount.
// USDValue and PriceData are nil when the symbol is unsupported.
type JournalPrice struct {
	USDValue          *decimal.Decimal `json:"usd_value,omitempty"`
	PriceData         *model.PriceData `json:"price_data,omitempty"`
	Supported         bool             `json:"supported"`
	EnhancedNarrative string           `json:"enhanced_narrative,omitempty"`
}

type IPriceOracle interface {
	// GetPrice returns the spot USD price of symbol. Aliases such as C2FLR
	// resolve to their mainnet symbol. Unknown symbols yield a NotFound error.
	GetPrice(ctx context.Context, symbol string) (*model.PriceData, error)

	// GetPriceForJournalEntry values amount of symbol. It never fails: an
	// unknown symbol is reported through Supported.
	GetPriceForJournalEntry(ctx context.Context, symbol string, amount decimal.Decimal) *JournalPrice

	IsSupported(ctx context.Context, symbol string) bool
	GetSupportedSymbols(ctx context.Context) []string
	ClearCache()

	// Warm refreshes the given symbols and returns how many are cached.
	Warm(ctx context.Context, symbols []string) (int, error)
	CacheStatistics() *CacheStatistics
}

// ContractReader is the on-chain price feed.
type ContractReader interface {
	GetPrice(ctx context.Context, symbol string) (price *big.Int, decimals int8, timestamp uint64, err error)
	IsSymbolSupported(ctx context.Context, symbol string) (bool, error)
	GetSupportedSymbols(ctx context.Context) ([]string, error)
}
