package controller

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/consts"
	"github.com/dwarvesf/crypto-bookkeeper/internal/llm"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
	"github.com/dwarvesf/crypto-bookkeeper/internal/oracle"
)

const (
	metaOriginalHash     = "original_transaction_hash"
	metaOriginalCategory = "original_category"
)

// Flatten expands nested {transactionHash, category, entries[]} groups into
// their entries, tagging each with the group's hash and category. Flat
// entries pass through; any other shape is emitted verbatim with a warning.
// Output order follows input order.
func Flatten(items []map[string]any) ([]map[string]any, []string) {
	var (
		out      = make([]map[string]any, 0, len(items))
		warnings []string
	)

	for i, item := range items {
		if nested, ok := item["entries"].([]any); ok && len(nested) > 0 {
			hash := str(item["transactionHash"])
			category := str(item["category"])
			for j, n := range nested {
				entry, ok := n.(map[string]any)
				if !ok {
					warnings = append(warnings, fmt.Sprintf("item %d entry %d: unexpected %T", i, j, n))
					out = append(out, map[string]any{"value": n})
					continue
				}
				out = append(out, tagEntry(entry, hash, category))
			}
			continue
		}

		if item["accountDebit"] != nil || item["accountCredit"] != nil {
			out = append(out, item)
			continue
		}

		warnings = append(warnings, fmt.Sprintf("item %d: unrecognised shape", i))
		out = append(out, item)
	}
	return out, warnings
}

func tagEntry(entry map[string]any, hash, category string) map[string]any {
	tagged := make(map[string]any, len(entry)+1)
	for k, v := range entry {
		tagged[k] = v
	}

	meta := map[string]any{}
	if m, ok := entry["metadata"].(map[string]any); ok {
		for k, v := range m {
			meta[k] = v
		}
	}
	meta[metaOriginalHash] = hash
	meta[metaOriginalCategory] = category
	tagged["metadata"] = meta

	if str(tagged["transactionHash"]) == "" && hash != "" {
		tagged["transactionHash"] = hash
	}
	if str(tagged["category"]) == "" && category != "" {
		tagged["category"] = category
	}
	return tagged
}

// toProposedEntry converts one flattened item. Items that are not entries
// fail with a Validation error.
func toProposedEntry(item map[string]any) (*model.ProposedEntry, error) {
	const op = "controller.toProposedEntry"

	debit := strings.TrimSpace(str(item["accountDebit"]))
	credit := strings.TrimSpace(str(item["accountCredit"]))
	if debit == "" || credit == "" {
		return nil, apperror.Validation(op, "entry has no debit or credit account")
	}

	amount, ok := llm.CoerceAmount(item["amount"])
	if !ok {
		return nil, apperror.Validation(op, fmt.Sprintf("amount %v is not a number", item["amount"]))
	}
	if amount.Sign() <= 0 {
		return nil, apperror.Validation(op, "amount must be positive")
	}

	currency := strings.ToUpper(strings.TrimSpace(str(item["currency"])))
	if currency == "" {
		return nil, apperror.Validation(op, "entry has no currency")
	}

	confidence := consts.DefaultConfidence
	if c, ok := llm.CoerceAmount(item["confidence"]); ok {
		confidence, _ = c.Float64()
	}

	entryType := model.EntryTypeMain
	if strings.EqualFold(str(item["entryType"]), string(model.EntryTypeFee)) {
		entryType = model.EntryTypeFee
	}

	e := &model.ProposedEntry{
		AccountDebit:    debit,
		AccountCredit:   credit,
		Amount:          amount,
		Currency:        currency,
		Narrative:       strings.TrimSpace(str(item["narrative"])),
		Confidence:      confidence,
		EntryType:       entryType,
		TransactionHash: strings.TrimSpace(str(item["transactionHash"])),
		Category:        model.Category(str(item["category"])),
		Metadata:        map[string]any{},
	}
	if b, ok := item["requiresAccountCreation"].(bool); ok {
		e.RequiresAccountCreation = b
	}
	if m, ok := item["metadata"].(map[string]any); ok {
		for k, v := range m {
			e.Metadata[k] = v
		}
	}
	return e, nil
}

func convertItems(items []map[string]any) ([]*model.ProposedEntry, []string) {
	var (
		entries  = make([]*model.ProposedEntry, 0, len(items))
		warnings []string
	)
	for i, item := range items {
		e, err := toProposedEntry(item)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("entry %d: %s", i, err.Error()))
			continue
		}
		entries = append(entries, e)
	}
	return entries, warnings
}

func nativeAssetAccount(currency string) string {
	name := currency
	if n, ok := consts.CryptoAssetNames[currency]; ok {
		name = n
	}
	return "Digital Assets - " + name
}

func feeEntry(rec *model.TransactionRecord) *model.ProposedEntry {
	return &model.ProposedEntry{
		AccountDebit:    consts.TransactionFeesAccount,
		AccountCredit:   nativeAssetAccount(rec.NetworkCurrency),
		Amount:          rec.GasFeeNative,
		Currency:        rec.NetworkCurrency,
		Narrative:       "Network fee for transaction " + shortHash(rec.Hash),
		Confidence:      1,
		EntryType:       model.EntryTypeFee,
		TransactionHash: rec.Hash,
		Category:        rec.Category,
		Metadata:        map[string]any{"synthesised": true},
	}
}

// completeRecordEntries ties entries to rec and adds the network fee when the
// user paid it and the model left it out. Failed transactions keep only fee
// entries.
func completeRecordEntries(rec *model.TransactionRecord, entries []*model.ProposedEntry, user string) []*model.ProposedEntry {
	out := make([]*model.ProposedEntry, 0, len(entries)+1)
	hasFee := false
	for _, e := range entries {
		if rec.Status == model.TxStatusFailed && e.EntryType != model.EntryTypeFee {
			continue
		}
		e.TransactionHash = rec.Hash
		if e.Category == "" {
			e.Category = rec.Category
		}
		if e.EntryType == model.EntryTypeFee {
			hasFee = true
		}
		out = append(out, e)
	}

	paidByUser := user == "" || strings.EqualFold(rec.From, user)
	if !hasFee && paidByUser && rec.GasFeeNative.Sign() > 0 {
		out = append(out, feeEntry(rec))
	}
	return out
}

// applyDates sets TransactionDate to the extracted date, else the block time.
func applyDates(entries []*model.ProposedEntry, rec *model.TransactionRecord, extracted *time.Time) {
	var date *time.Time
	switch {
	case extracted != nil:
		d := *extracted
		date = &d
	case rec != nil && !rec.Timestamp.IsZero():
		d := rec.Timestamp
		date = &d
	}
	if date == nil {
		return
	}
	for _, e := range entries {
		if e.TransactionDate == nil {
			e.TransactionDate = date
		}
	}
}

// resolveAccounts maps debit and credit names onto the chart, creating
// accounts when needed. Entries whose accounts cannot be resolved are dropped
// with a warning.
func (c *Controller) resolveAccounts(entries []*model.ProposedEntry) ([]*model.ProposedEntry, []string) {
	var (
		out      = make([]*model.ProposedEntry, 0, len(entries))
		warnings []string
	)
	for i, e := range entries {
		debit, debitCreated, err := c.registry.ResolveOrCreate(e.AccountDebit)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("entry %d: debit account %q: %s", i, e.AccountDebit, err.Error()))
			continue
		}
		credit, creditCreated, err := c.registry.ResolveOrCreate(e.AccountCredit)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("entry %d: credit account %q: %s", i, e.AccountCredit, err.Error()))
			continue
		}
		if debit.ID == credit.ID {
			warnings = append(warnings, fmt.Sprintf("entry %d: debit and credit resolve to %q", i, debit.Name))
			continue
		}

		e.AccountDebit = debit.Name
		e.AccountCredit = credit.Name
		if e.Metadata == nil {
			e.Metadata = map[string]any{}
		}
		e.Metadata["debit_account_code"] = debit.Code
		e.Metadata["credit_account_code"] = credit.Code
		if debitCreated || creditCreated {
			e.RequiresAccountCreation = true
		}
		out = append(out, e)
	}
	return out, warnings
}

// enhance attaches USD valuations. It never fails.
func (c *Controller) enhance(ctx context.Context, entries []*model.ProposedEntry) {
	for _, e := range entries {
		if c.oracle == nil {
			e.USDSource = model.USDSourceNone
			continue
		}

		jp := c.oracle.GetPriceForJournalEntry(ctx, e.Currency, e.Amount)
		if !jp.Supported {
			e.USDSource = model.USDSourceNone
			continue
		}

		rate := jp.PriceData.USDPrice
		ts := jp.PriceData.Timestamp
		e.USDValue = jp.USDValue
		e.USDRate = &rate
		e.USDSource = jp.PriceData.Source
		e.USDTimestamp = &ts
		e.Narrative = oracle.EnhanceNarrative(e.Narrative, jp)
	}
}

func shortHash(h string) string {
	if len(h) <= 14 {
		return h
	}
	return h[:8] + "…" + h[len(h)-4:]
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func sumAmounts(entries []*model.ProposedEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

func itoa(n int) string { return strconv.Itoa(n) }
