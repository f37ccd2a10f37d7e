package llm

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	txHashRe    = regexp.MustCompile(`0x[0-9a-fA-F]{64}`)
	hexTokenRe  = regexp.MustCompile(`0x[0-9a-fA-F]+`)
	dollarRe    = regexp.MustCompile(`\$\s?(\d[\d,]*(?:\.\d+)?)`)
	amountRe    = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*([A-Z][A-Z0-9]{1,9})\b`)
	isoDateRe   = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	monthDateRe = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2}),?\s+(\d{4})\b`)
	dayMonthRe  = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(january|february|march|april|may|june|july|august|september|october|november|december),?\s+(\d{4})\b`)
)

var walletVerbs = []string{"analyze", "analyse", "create", "journal", "process", "transaction history", "bulk"}

// FreeForm is what could be read out of a chat message without a hash.
type FreeForm struct {
	Amount   *decimal.Decimal
	Currency string
	Date     *time.Time
}

func (f *FreeForm) Empty() bool {
	return f == nil || (f.Amount == nil && f.Currency == "" && f.Date == nil)
}

func ExtractTransactionHash(msg string) string {
	return txHashRe.FindString(msg)
}

// ExtractAddress returns the first 20-byte hex address in msg. Longer hex
// runs such as transaction hashes are skipped.
func ExtractAddress(msg string) string {
	for _, tok := range hexTokenRe.FindAllString(msg, -1) {
		if len(tok) == 42 {
			return tok
		}
	}
	return ""
}

func IsWalletAnalysisRequest(msg string) bool {
	if ExtractAddress(msg) == "" {
		return false
	}
	lower := strings.ToLower(msg)
	for _, v := range walletVerbs {
		if strings.Contains(lower, v) {
			return true
		}
	}
	return false
}

func ExtractFreeForm(msg string) *FreeForm {
	f := &FreeForm{}

	if m := amountRe.FindStringSubmatch(msg); m != nil {
		if d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "")); err == nil {
			f.Amount = &d
			f.Currency = m[2]
		}
	} else if m := dollarRe.FindStringSubmatch(msg); m != nil {
		if d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "")); err == nil {
			f.Amount = &d
			f.Currency = "USD"
		}
	}

	f.Date = extractDate(msg)
	return f
}

func extractDate(msg string) *time.Time {
	if m := isoDateRe.FindStringSubmatch(msg); m != nil {
		if t, err := time.Parse("2006-01-02", m[1]); err == nil {
			return &t
		}
	}
	if m := monthDateRe.FindStringSubmatch(msg); m != nil {
		if t, err := time.Parse("January 2 2006", m[1]+" "+m[2]+" "+m[3]); err == nil {
			return &t
		}
	}
	if m := dayMonthRe.FindStringSubmatch(msg); m != nil {
		if t, err := time.Parse("2 January 2006", m[1]+" "+m[2]+" "+m[3]); err == nil {
			return &t
		}
	}
	return nil
}
