package accountregistry

import (
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

// AccountSpec describes an account to be created.
type AccountSpec struct {
	Name          string            `json:"name"`
	Type          model.AccountType `json:"type"`
	CategoryCode  string            `json:"category_code"`
	SubType       string            `json:"sub_type,omitempty"`
	IFRSReference string            `json:"ifrs_reference,omitempty"`

	// Crypto is set when the name denotes a digital asset holding; Symbol
	// then carries the asset symbol.
	Crypto bool   `json:"crypto,omitempty"`
	Symbol string `json:"symbol,omitempty"`
}

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
	// Suggestions maps each unresolved name to the closest chart names.
	Suggestions map[string][]string `json:"suggestions,omitempty"`
	Debit       *model.Account      `json:"debit,omitempty"`
	Credit      *model.Account      `json:"credit,omitempty"`
}

type AISuggestion struct {
	Account    *model.Account `json:"account"`
	Confidence float64        `json:"confidence"`
}

type IRegistry interface {
	// Chart returns the active chart of accounts ordered by sort order.
	Chart() ([]*model.Account, error)
	ByCode(code string) (*model.Account, error)

	// ByName resolves name against account names and codes. With fuzzy set it
	// also accepts substring and small edit distance matches.
	ByName(name string, fuzzy bool) (*model.Account, error)

	AccountForCrypto(symbol string) (*model.Account, error)
	CreateCryptoAccount(symbol, name, blockchain string, decimals int) (*model.Account, error)
	CreateAccount(spec AccountSpec) (*model.Account, error)

	Validate(debit, credit string) (*ValidationResult, error)

	// SuggestForAI returns nil when no mapping scores above zero.
	SuggestForAI(keywords []string, txType, description string) (*AISuggestion, error)
	FormattedChartForLLM() (string, error)

	ProposeAccountSpec(name string) AccountSpec
	// ResolveOrCreate returns the account named name, creating it from
	// ProposeAccountSpec when the chart has no match.
	ResolveOrCreate(name string) (account *model.Account, created bool, err error)
}
