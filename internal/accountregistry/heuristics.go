package accountregistry

import (
	"regexp"
	"strings"

	"github.com/dwarvesf/crypto-bookkeeper/internal/consts"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

var tickerRe = regexp.MustCompile(`^[A-Z][A-Z0-9]{2,5}$`)

type typeRule struct {
	keywords     []string
	accountType  model.AccountType
	categoryCode string
	ifrs         string
}

// typeRules are checked in order; the first keyword hit decides.
var typeRules = []typeRule{
	{[]string{"expense", "cost", "fee"}, model.AccountTypeExpense, "60", "IAS 1"},
	{[]string{"revenue", "income"}, model.AccountTypeRevenue, "40", "IFRS 15"},
	{[]string{"payable", "loan"}, model.AccountTypeLiability, "20", "IFRS 9"},
	{[]string{"receivable"}, model.AccountTypeAsset, "12", "IFRS 9"},
	{[]string{"cash", "bank"}, model.AccountTypeAsset, "10", "IAS 7"},
	{[]string{"equity", "capital"}, model.AccountTypeEquity, "30", "IAS 1"},
}

var stableCoins = map[string]bool{"USDT": true, "USDC": true, "DAI": true}

func (r *Registry) ProposeAccountSpec(name string) AccountSpec {
	name = strings.TrimSpace(name)

	if sym, ok := cryptoSymbol(name); ok {
		return AccountSpec{
			Name:          digitalAssetsPrefix + cryptoDisplayName(name, sym),
			Type:          model.AccountTypeAsset,
			CategoryCode:  digitalAssetsCategoryCode,
			SubType:       "crypto",
			IFRSReference: "IAS 38",
			Crypto:        true,
			Symbol:        sym,
		}
	}

	lower := strings.ToLower(name)
	for _, rule := range typeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return AccountSpec{
					Name:          name,
					Type:          rule.accountType,
					CategoryCode:  rule.categoryCode,
					IFRSReference: rule.ifrs,
				}
			}
		}
	}

	// unclassifiable names land in operating expenses for review
	return AccountSpec{
		Name:          name,
		Type:          model.AccountTypeExpense,
		CategoryCode:  "60",
		IFRSReference: "IAS 1",
	}
}

// cryptoSymbol detects names that denote a digital asset holding:
// "Digital Assets - <name|symbol>", "<anything> - <TICKER>" or a bare known
// symbol.
func cryptoSymbol(name string) (string, bool) {
	if strings.HasPrefix(strings.ToLower(name), strings.ToLower(digitalAssetsPrefix)) {
		rest := strings.TrimSpace(name[len(digitalAssetsPrefix):])
		if rest == "" {
			return "", false
		}
		return symbolForName(rest), true
	}

	if i := strings.LastIndex(name, " - "); i >= 0 {
		suffix := strings.TrimSpace(name[i+3:])
		if _, known := consts.CryptoAssetNames[strings.ToUpper(suffix)]; known || tickerRe.MatchString(suffix) {
			return strings.ToUpper(suffix), true
		}
		return "", false
	}

	if _, known := consts.CryptoAssetNames[name]; known {
		return name, true
	}
	return "", false
}

func symbolForName(s string) string {
	up := strings.ToUpper(s)
	if _, ok := consts.CryptoAssetNames[up]; ok {
		return up
	}
	for sym, display := range consts.CryptoAssetNames {
		if strings.EqualFold(display, s) {
			return sym
		}
	}
	return strings.Join(strings.Fields(up), "")
}

func cryptoDisplayName(name, sym string) string {
	if strings.HasPrefix(strings.ToLower(name), strings.ToLower(digitalAssetsPrefix)) {
		rest := strings.TrimSpace(name[len(digitalAssetsPrefix):])
		if rest != "" && !strings.EqualFold(rest, sym) {
			return rest
		}
	}
	return displayName(sym)
}

func displayName(sym string) string {
	if n, ok := consts.CryptoAssetNames[sym]; ok {
		return n
	}
	return sym
}

func isStableCoin(sym string) bool {
	return stableCoins[sym]
}
