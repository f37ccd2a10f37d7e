package categorizer

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/dwarvesf/crypto-bookkeeper/internal/consts"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

//go:embed rules.yaml
var defaultRules []byte

// selectorLength is "0x" plus four bytes of hex.
const selectorLength = 10

type Rules struct {
	Selectors map[string]model.Category `yaml:"selectors"`
	Contracts map[string]model.Category `yaml:"contracts"`
}

type categorizer struct {
	selectors  map[string]model.Category
	contracts  map[string]model.Category
	thresholds map[string]decimal.Decimal
}

// New loads the embedded rule tables.
func New() (ICategorizer, error) {
	return NewFromYAML(defaultRules)
}

func NewFromYAML(data []byte) (ICategorizer, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse categorizer rules: %w", err)
	}

	c := &categorizer{
		selectors:  make(map[string]model.Category, len(rules.Selectors)),
		contracts:  make(map[string]model.Category, len(rules.Contracts)),
		thresholds: make(map[string]decimal.Decimal, len(consts.ValueThresholds)),
	}
	for k, v := range rules.Selectors {
		c.selectors[strings.ToLower(k)] = v
	}
	for k, v := range rules.Contracts {
		c.contracts[strings.ToLower(k)] = v
	}
	for currency, v := range consts.ValueThresholds {
		c.thresholds[currency] = decimal.RequireFromString(v)
	}
	return c, nil
}

func (c *categorizer) threshold(currency string) decimal.Decimal {
	if t, ok := c.thresholds[strings.ToUpper(currency)]; ok {
		return t
	}
	return c.thresholds[consts.CurrencyETH]
}

// direction classifies the (from, to) pair relative to the user.
func direction(from, to, user string) model.Direction {
	fromUser := user != "" && from == user
	toUser := user != "" && to == user
	switch {
	case fromUser && toUser:
		return model.DirectionSelf
	case fromUser:
		return model.DirectionOutgoing
	case toUser:
		return model.DirectionIncoming
	default:
		return model.DirectionInternal
	}
}

func (c *categorizer) Categorize(record *model.TransactionRecord, userAddress string) (model.Category, model.Direction) {
	if record == nil {
		return model.CategoryUnknown, model.DirectionInternal
	}

	user := strings.ToLower(userAddress)
	from := strings.ToLower(record.From)
	to := strings.ToLower(record.To)
	dir := direction(from, to, user)

	if record.Status == model.TxStatusFailed {
		return model.CategoryFailedTransaction, dir
	}

	// 1. explicit token transfer
	if record.IsTokenTransfer && record.TokenTransfer != nil {
		tokenFrom := strings.ToLower(record.TokenTransfer.From)
		tokenTo := strings.ToLower(record.TokenTransfer.To)
		if user != "" && tokenTo == user && tokenFrom != user {
			return model.CategoryTokenReceived, dir
		}
		return model.CategoryTokenTransfer, dir
	}

	input := strings.ToLower(record.InputData)

	// 2. method selector
	if len(input) >= selectorLength {
		if cat, ok := c.selectors[input[:selectorLength]]; ok {
			return cat, dir
		}
	}

	// 3. known contract
	if cat, ok := c.contracts[to]; ok {
		return cat, dir
	}

	// 4. value threshold
	threshold := c.threshold(record.NetworkCurrency)
	if record.NativeAmount.GreaterThan(threshold) {
		switch {
		case user != "" && from == user:
			return model.CategoryOutgoingTransfer, dir
		case user != "" && to == user:
			return model.CategoryIncomingTransfer, dir
		}
	}

	// 5. contract call carrying trivial value
	if len(input) > selectorLength && !record.NativeAmount.GreaterThan(threshold) {
		return model.CategoryContractInteraction, dir
	}

	return model.CategoryUnknown, dir
}

func (c *categorizer) CategorizeAll(records []*model.TransactionRecord, userAddress string) map[model.Category]int {
	counts := map[model.Category]int{}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		rec.Category, rec.Direction = c.Categorize(rec, userAddress)
		counts[rec.Category]++
	}
	return counts
}
