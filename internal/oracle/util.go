package oracle

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

// symbolAliases maps testnet and wrapped symbols to the feed they are priced by.
var symbolAliases = map[string]string{
	"C2FLR":   "FLR",
	"CFLR":    "FLR",
	"WFLR":    "FLR",
	"WETH":    "ETH",
	"TESTETH": "ETH",
	"WBTC":    "BTC",
}

// fallbackPrices is used whenever the contract cannot answer.
var fallbackPrices = map[string]string{
	"ETH":  "3402.25",
	"BTC":  "67250.00",
	"FLR":  "0.025",
	"USDT": "1",
	"USDC": "1",
	"DAI":  "1",
}

func NormaliseSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if alias, ok := symbolAliases[s]; ok {
		return alias
	}
	return s
}

// usdPrice computes price * 10^decimals. decimals is signed.
func usdPrice(price *big.Int, decimals int8) decimal.Decimal {
	if price == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(price, int32(decimals))
}

// narrativeSuffix renders the USD annotation appended to a narrative.
func narrativeSuffix(usd decimal.Decimal, source model.USDSource) string {
	return fmt.Sprintf("(≈ $%s USD via %s)", usd.StringFixed(2), source)
}

// EnhanceNarrative appends the USD annotation of jp to narrative. Unsupported
// prices leave the narrative untouched.
func EnhanceNarrative(narrative string, jp *JournalPrice) string {
	if jp == nil || jp.EnhancedNarrative == "" {
		return narrative
	}
	if narrative == "" {
		return jp.EnhancedNarrative
	}
	return narrative + " " + jp.EnhancedNarrative
}
