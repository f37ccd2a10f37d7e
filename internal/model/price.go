package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type USDSource string

const (
	USDSourceOracle   USDSource = "oracle"
	USDSourceFallback USDSource = "fallback"
	USDSourceNone     USDSource = "none"
)

// PriceData is a spot USD price for a normalised symbol.
type PriceData struct {
	Symbol    string          `json:"symbol"`
	USDPrice  decimal.Decimal `json:"usd_price"`
	Decimals  int8            `json:"decimals"`
	Timestamp time.Time       `json:"timestamp"`
	Source    USDSource       `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"`
}

func (p *PriceData) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(p.FetchedAt) < ttl
}
