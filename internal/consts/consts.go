package consts

const (
	NativeDecimals = 18

	CurrencyETH   = "ETH"
	CurrencyC2FLR = "C2FLR"

	// explorer base URLs containing this marker serve the Coston2 testnet
	Coston2Marker = "coston2"

	// journal_entries.amount is NUMERIC with finite precision
	MaxEntryAmount = "1000000000000"

	DefaultConfidence = 0.8

	MaxBulkConcurrency = 5

	DigitalAssetsCategoryName = "Digital Assets"
	TransactionFeesAccount    = "Transaction Fees"
)

// Native value above which a plain transfer is considered economically
// meaningful, per network currency.
var ValueThresholds = map[string]string{
	CurrencyC2FLR: "0.1",
	CurrencyETH:   "0.01",
}

// Known native and token symbols mapped to the display name used in
// "Digital Assets - <name>" accounts.
var CryptoAssetNames = map[string]string{
	"ETH":   "Ethereum",
	"C2FLR": "Flare Testnet",
	"FLR":   "Flare",
	"BTC":   "Bitcoin",
	"WBTC":  "Wrapped Bitcoin",
	"WETH":  "Wrapped Ether",
	"USDT":  "Tether",
	"USDC":  "USD Coin",
	"DAI":   "Dai",
}
