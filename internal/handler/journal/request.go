package journal

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwarvesf/crypto-bookkeeper/internal/explorer"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

type AnalyseRequest struct {
	Hash        string `json:"hash" validate:"required"`
	Description string `json:"description"`
	// Address is the user's wallet; the sender is assumed when empty.
	Address string `json:"address" validate:"omitempty,eth_addr"`
	// Date overrides the block date of the entries, as yyyy-mm-dd.
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (r AnalyseRequest) extractedDate() *time.Time {
	if r.Date == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return nil
	}
	return &t
}

type WalletRequest struct {
	Address         string   `json:"address" validate:"required,eth_addr"`
	Limit           int      `json:"limit" validate:"omitempty,min=1,max=500"`
	MinValue        string   `json:"min_value" validate:"omitempty,numeric"`
	IncludeTokens   *bool    `json:"include_tokens"`
	IncludeInternal *bool    `json:"include_internal"`
	IncludeFailed   bool     `json:"include_failed"`
	Direction       string   `json:"direction" validate:"omitempty,oneof=to from"`
	Categories      []string `json:"categories"`
}

func (r WalletRequest) options() explorer.WalletOptions {
	opts := explorer.DefaultWalletOptions()
	if r.Limit > 0 {
		opts.Limit = r.Limit
	}
	if r.MinValue != "" {
		if d, err := decimal.NewFromString(r.MinValue); err == nil {
			opts.MinValue = d
		}
	}
	if r.IncludeTokens != nil {
		opts.IncludeTokens = *r.IncludeTokens
	}
	if r.IncludeInternal != nil {
		opts.IncludeInternal = *r.IncludeInternal
	}
	opts.IncludeFailed = r.IncludeFailed
	opts.Direction = r.Direction
	return opts
}

func (r WalletRequest) categories() []model.Category {
	out := make([]model.Category, 0, len(r.Categories))
	for _, c := range r.Categories {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, model.Category(strings.ToLower(c)))
		}
	}
	return out
}
