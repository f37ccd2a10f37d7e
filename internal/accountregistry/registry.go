package accountregistry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/consts"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
	"github.com/dwarvesf/crypto-bookkeeper/internal/store"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
)

const (
	maxEditDistance = 3
	suggestionLimit = 3

	digitalAssetsCategoryCode = "18"
	digitalAssetsPrefix       = "Digital Assets - "
)

type Registry struct {
	db     *gorm.DB
	store  *store.Store
	logger *logger.Logger

	// serialises code allocation so concurrent creations do not collide
	createMu sync.Mutex
}

func New(db *gorm.DB, store *store.Store, logger *logger.Logger) IRegistry {
	return &Registry{
		db:     db,
		store:  store,
		logger: logger,
	}
}

func (r *Registry) Chart() ([]*model.Account, error) {
	accounts, err := r.store.Account.All(r.db)
	if err != nil {
		r.logger.Error("[accountregistry][Chart] load accounts failed", map[string]string{
			"error": err.Error(),
		})
		return nil, errors.Wrap(err, "load chart of accounts")
	}
	return accounts, nil
}

func (r *Registry) ByCode(code string) (*model.Account, error) {
	acc, err := r.store.Account.GetByCode(r.db, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("accountregistry.ByCode", "account "+code+" not found")
		}
		return nil, errors.Wrap(err, "get account by code")
	}
	return acc, nil
}

func (r *Registry) ByName(name string, fuzzy bool) (*model.Account, error) {
	query := strings.TrimSpace(name)
	if query == "" {
		return nil, apperror.Validation("accountregistry.ByName", "empty account name")
	}

	chart, err := r.Chart()
	if err != nil {
		return nil, err
	}

	if acc := matchName(chart, query, fuzzy); acc != nil {
		return acc, nil
	}
	return nil, apperror.NotFound("accountregistry.ByName", fmt.Sprintf("account %q not found", query))
}

// matchName walks the resolution ladder: exact code or name, case-insensitive
// name, then (fuzzy only) substring and edit distance. Digital asset names
// never match fuzzily since near tickers are different assets.
func matchName(chart []*model.Account, query string, fuzzy bool) *model.Account {
	for _, acc := range chart {
		if acc.Code == query || acc.Name == query {
			return acc
		}
	}

	lower := strings.ToLower(query)
	for _, acc := range chart {
		if strings.ToLower(acc.Name) == lower {
			return acc
		}
	}

	if !fuzzy || isDigitalAssetName(query) {
		return nil
	}

	var best *model.Account
	bestDiff := -1
	for _, acc := range chart {
		name := strings.ToLower(acc.Name)
		if !strings.Contains(name, lower) && !strings.Contains(lower, name) {
			continue
		}
		diff := len(name) - len(lower)
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = acc, diff
		}
	}
	if best != nil {
		return best
	}

	bestDist := maxEditDistance + 1
	for _, acc := range chart {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(acc.Name))
		// short names need proportionally closer matches
		if d*4 > len(lower) {
			continue
		}
		if d < bestDist {
			best, bestDist = acc, d
		}
	}
	return best
}

func (r *Registry) AccountForCrypto(symbol string) (*model.Account, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	asset, err := r.store.CryptoAsset.GetBySymbol(r.db, sym)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("accountregistry.AccountForCrypto", "no account for "+sym)
		}
		return nil, errors.Wrap(err, "get crypto asset")
	}

	acc, err := r.store.Account.GetByID(r.db, asset.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("accountregistry.AccountForCrypto", "asset "+sym+" points at a missing account")
		}
		return nil, errors.Wrap(err, "get crypto account")
	}
	return acc, nil
}

func (r *Registry) CreateCryptoAccount(symbol, name, blockchain string, decimals int) (*model.Account, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return nil, apperror.Validation("accountregistry.CreateCryptoAccount", "empty symbol")
	}

	r.createMu.Lock()
	defer r.createMu.Unlock()

	if acc, err := r.AccountForCrypto(sym); err == nil {
		return acc, nil
	} else if !apperror.Is(err, apperror.KindNotFound) {
		return nil, err
	}

	if name == "" {
		name = displayName(sym)
	}

	var created *model.Account
	err := store.DoInTx(r.db, func(tx *gorm.DB) error {
		category, err := r.digitalAssetsCategory(tx)
		if err != nil {
			return err
		}

		code, err := r.nextUnusedCode(tx, category.Code)
		if err != nil {
			return err
		}

		sortOrder, _ := strconv.Atoi(code)
		acc, err := r.store.Account.Create(tx, &model.Account{
			Code:          code,
			Name:          digitalAssetsPrefix + name,
			Type:          model.AccountTypeAsset,
			SubType:       "crypto",
			CategoryID:    category.ID,
			IsActive:      true,
			IFRSReference: "IAS 38",
			SortOrder:     sortOrder,
		})
		if err != nil {
			return errors.Wrap(err, "create crypto account")
		}

		if _, err := r.store.CryptoAsset.Create(tx, &model.CryptoAsset{
			Symbol:       sym,
			Name:         name,
			AccountID:    acc.ID,
			Blockchain:   blockchain,
			Decimals:     decimals,
			IsStableCoin: isStableCoin(sym),
		}); err != nil {
			return errors.Wrap(err, "create crypto asset")
		}

		created = acc
		return nil
	})
	if err != nil {
		r.logger.Error("[accountregistry][CreateCryptoAccount] failed", map[string]string{
			"symbol": sym,
			"error":  err.Error(),
		})
		return nil, err
	}

	r.logger.Info("[accountregistry][CreateCryptoAccount] created", map[string]string{
		"symbol": sym,
		"code":   created.Code,
		"name":   created.Name,
	})
	return created, nil
}

func (r *Registry) digitalAssetsCategory(tx *gorm.DB) (*model.AccountCategory, error) {
	category, err := r.store.AccountCategory.GetByName(tx, consts.DigitalAssetsCategoryName)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "get digital assets category")
	}

	category, err = r.store.AccountCategory.Create(tx, &model.AccountCategory{
		Code: digitalAssetsCategoryCode,
		Name: consts.DigitalAssetsCategoryName,
		Type: model.AccountTypeAsset,
	})
	return category, errors.Wrap(err, "create digital assets category")
}

func (r *Registry) CreateAccount(spec AccountSpec) (*model.Account, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, apperror.Validation("accountregistry.CreateAccount", "empty account name")
	}
	if spec.Type == "" {
		return nil, apperror.Validation("accountregistry.CreateAccount", "account type is required")
	}

	r.createMu.Lock()
	defer r.createMu.Unlock()

	var created *model.Account
	err := store.DoInTx(r.db, func(tx *gorm.DB) error {
		if existing, err := r.store.Account.GetByName(tx, name); err == nil {
			created = existing
			return nil
		}

		category, err := r.categoryFor(tx, spec)
		if err != nil {
			return err
		}

		code, err := r.nextUnusedCode(tx, category.Code)
		if err != nil {
			return err
		}

		sortOrder, _ := strconv.Atoi(code)
		acc, err := r.store.Account.Create(tx, &model.Account{
			Code:          code,
			Name:          name,
			Type:          spec.Type,
			SubType:       spec.SubType,
			CategoryID:    category.ID,
			IsActive:      true,
			IFRSReference: spec.IFRSReference,
			SortOrder:     sortOrder,
		})
		if err != nil {
			return errors.Wrap(err, "create account")
		}
		created = acc
		return nil
	})
	if err != nil {
		r.logger.Error("[accountregistry][CreateAccount] failed", map[string]string{
			"name":  name,
			"error": err.Error(),
		})
		return nil, err
	}

	r.logger.Info("[accountregistry][CreateAccount] created", map[string]string{
		"name": created.Name,
		"code": created.Code,
		"type": string(created.Type),
	})
	return created, nil
}

// categoryFor returns the category named by spec.CategoryCode, or the first
// category of the same account type when the code is unknown.
func (r *Registry) categoryFor(tx *gorm.DB, spec AccountSpec) (*model.AccountCategory, error) {
	if spec.CategoryCode != "" {
		category, err := r.store.AccountCategory.GetByCode(tx, spec.CategoryCode)
		if err == nil {
			return category, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(err, "get category")
		}
	}

	categories, err := r.store.AccountCategory.All(tx)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	for _, c := range categories {
		if c.Type == spec.Type {
			return c, nil
		}
	}
	return nil, apperror.Validation("accountregistry.CreateAccount",
		fmt.Sprintf("no %s category for %q", spec.Type, spec.Name))
}

// nextUnusedCode returns the lowest free code above categoryCode·100.
func (r *Registry) nextUnusedCode(tx *gorm.DB, categoryCode string) (string, error) {
	prefix, err := strconv.Atoi(categoryCode)
	if err != nil {
		return "", apperror.Validation("accountregistry.nextUnusedCode", "non-numeric category code "+categoryCode)
	}

	codes, err := r.store.Account.CodesWithPrefix(tx, categoryCode)
	if err != nil {
		return "", errors.Wrap(err, "list account codes")
	}
	used := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		used[c] = struct{}{}
	}

	base := prefix * 100
	for candidate := base + 1; candidate < base+100; candidate++ {
		code := strconv.Itoa(candidate)
		if _, taken := used[code]; !taken {
			return code, nil
		}
	}
	return "", apperror.Validation("accountregistry.nextUnusedCode", "category "+categoryCode+" has no free codes")
}

func (r *Registry) Validate(debit, credit string) (*ValidationResult, error) {
	chart, err := r.Chart()
	if err != nil {
		return nil, err
	}

	res := &ValidationResult{Valid: true}
	resolve := func(side, name string) *model.Account {
		if strings.TrimSpace(name) == "" {
			res.Valid = false
			res.Errors = append(res.Errors, side+" account is required")
			return nil
		}
		acc := matchName(chart, strings.TrimSpace(name), true)
		if acc == nil {
			res.Valid = false
			res.Errors = append(res.Errors, fmt.Sprintf("%s account %q not found", side, name))
			if s := similar(chart, name, suggestionLimit); len(s) > 0 {
				if res.Suggestions == nil {
					res.Suggestions = map[string][]string{}
				}
				res.Suggestions[name] = s
			}
		}
		return acc
	}

	res.Debit = resolve("debit", debit)
	res.Credit = resolve("credit", credit)

	if res.Debit != nil && res.Credit != nil && res.Debit.ID == res.Credit.ID {
		res.Valid = false
		res.Errors = append(res.Errors, "debit and credit accounts must differ")
	}
	return res, nil
}

// similar ranks chart names by how many whitespace tokens overlap with name,
// counting a substring match in either direction.
func similar(chart []*model.Account, name string, k int) []string {
	queryTokens := tokens(name)
	if len(queryTokens) == 0 {
		return nil
	}

	type scored struct {
		name  string
		score int
		order int
	}
	var ranked []scored
	for i, acc := range chart {
		score := 0
		for _, q := range queryTokens {
			for _, a := range tokens(acc.Name) {
				if strings.Contains(a, q) || strings.Contains(q, a) {
					score++
				}
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{name: acc.Name, score: score, order: i})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].order < ranked[j].order
	})

	out := make([]string, 0, k)
	for _, s := range ranked {
		if len(out) == k {
			break
		}
		out = append(out, s.name)
	}
	return out
}

func tokens(s string) []string {
	var out []string
	for _, f := range strings.Fields(strings.ToLower(s)) {
		f = strings.Trim(f, "-_,.()/")
		if len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}

func (r *Registry) SuggestForAI(keywords []string, txType, description string) (*AISuggestion, error) {
	mappings, err := r.store.AccountAIMapping.All(r.db)
	if err != nil {
		return nil, errors.Wrap(err, "load ai mappings")
	}

	desc := strings.ToLower(description)
	input := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		input[strings.ToLower(strings.TrimSpace(k))] = struct{}{}
	}

	var (
		bestScore float64
		bestID    uint
	)
	for _, m := range mappings {
		keywordHits := 0
		for _, k := range m.Keywords {
			k = strings.ToLower(k)
			if _, ok := input[k]; ok || (k != "" && strings.Contains(desc, k)) {
				keywordHits++
			}
		}

		typeMatch := 0
		for _, t := range m.TransactionTypes {
			if strings.EqualFold(t, txType) {
				typeMatch = 1
				break
			}
		}

		contextHits := 0
		for _, p := range m.ContextPatterns {
			if p != "" && strings.Contains(desc, strings.ToLower(p)) {
				contextHits++
			}
		}

		score := (float64(keywordHits)*3 + float64(typeMatch)*2 + float64(contextHits)*1.5) * m.ConfidenceWeight
		if score > bestScore {
			bestScore, bestID = score, m.AccountID
		}
	}

	if bestScore <= 0 {
		return nil, nil
	}

	acc, err := r.store.Account.GetByID(r.db, bestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get suggested account")
	}
	return &AISuggestion{Account: acc, Confidence: min(bestScore/10, 1)}, nil
}

func (r *Registry) FormattedChartForLLM() (string, error) {
	chart, err := r.Chart()
	if err != nil {
		return "", err
	}
	categories, err := r.store.AccountCategory.All(r.db)
	if err != nil {
		return "", errors.Wrap(err, "list categories")
	}

	byCategory := map[uint][]*model.Account{}
	for _, acc := range chart {
		byCategory[acc.CategoryID] = append(byCategory[acc.CategoryID], acc)
	}

	var b strings.Builder
	b.WriteString("CHART OF ACCOUNTS (use the exact account names below)\n")
	writeAccounts := func(accounts []*model.Account) {
		for _, acc := range accounts {
			fmt.Fprintf(&b, "  %s  %s", acc.Code, acc.Name)
			if acc.IFRSReference != "" {
				fmt.Fprintf(&b, "  [%s]", acc.IFRSReference)
			}
			b.WriteString("\n")
		}
	}

	for _, c := range categories {
		accounts := byCategory[c.ID]
		if len(accounts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s %s (%s)\n", c.Code, c.Name, c.Type)
		writeAccounts(accounts)
		delete(byCategory, c.ID)
	}

	if len(byCategory) > 0 {
		var rest []*model.Account
		for _, acc := range chart {
			if _, ok := byCategory[acc.CategoryID]; ok {
				rest = append(rest, acc)
			}
		}
		b.WriteString("Other\n")
		writeAccounts(rest)
	}

	return b.String(), nil
}

// ResolveOrCreate finds the account a proposed entry names, creating it when
// the chart has none. Crypto holdings resolve by symbol first and otherwise
// only by exact name.
func (r *Registry) ResolveOrCreate(name string) (*model.Account, bool, error) {
	spec := r.ProposeAccountSpec(name)
	if spec.Crypto {
		return r.resolveOrCreateCrypto(name, spec)
	}

	acc, err := r.ByName(name, true)
	if err == nil {
		return acc, false, nil
	}
	if !apperror.Is(err, apperror.KindNotFound) {
		return nil, false, err
	}

	acc, err = r.CreateAccount(spec)
	if err != nil {
		return nil, false, err
	}
	return acc, true, nil
}

func (r *Registry) resolveOrCreateCrypto(name string, spec AccountSpec) (*model.Account, bool, error) {
	acc, err := r.AccountForCrypto(spec.Symbol)
	if err == nil {
		return acc, false, nil
	}
	if !apperror.Is(err, apperror.KindNotFound) {
		return nil, false, err
	}

	acc, err = r.ByName(name, false)
	if err == nil {
		return acc, false, nil
	}
	if !apperror.Is(err, apperror.KindNotFound) {
		return nil, false, err
	}

	acc, err = r.CreateCryptoAccount(spec.Symbol, cryptoDisplayName(name, spec.Symbol), "evm", consts.NativeDecimals)
	if err != nil {
		return nil, false, err
	}
	return acc, true, nil
}

func isDigitalAssetName(name string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(name)), strings.ToLower(digitalAssetsPrefix))
}
