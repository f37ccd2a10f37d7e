package explorer

import (
	"strings"

	"github.com/dwarvesf/crypto-bookkeeper/internal/consts"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

// sourceRank orders feeds by how authoritative their transaction-level
// fields are. Lower wins.
func sourceRank(r *model.TransactionRecord) int {
	rank := 3
	for _, s := range r.SourceSet {
		switch s {
		case model.SourceRegular:
			rank = min(rank, 0)
		case model.SourceToken:
			rank = min(rank, 1)
		case model.SourceInternal:
			rank = min(rank, 2)
		}
	}
	return rank
}

// MergeRecords combines two records that share a hash into a new record.
// Neither input is modified.
//
// Token fields come from whichever side carries the token transfer; when
// both do, the greater amount wins and ties go to the more complete token
// metadata. Transaction-level fields prefer the more authoritative feed
// (regular, then token, then internal) and fall back to whichever side is
// non-empty. The result does not depend on argument order.
func MergeRecords(existing, incoming *model.TransactionRecord) *model.TransactionRecord {
	if existing == nil && incoming == nil {
		return nil
	}
	if existing == nil {
		return cloneRecord(incoming)
	}
	if incoming == nil {
		return cloneRecord(existing)
	}

	primary, secondary := existing, incoming
	tie := false
	switch ra, rb := sourceRank(existing), sourceRank(incoming); {
	case rb < ra:
		primary, secondary = incoming, existing
	case ra == rb:
		tie = true
	}

	pick := func(a, b string) string {
		switch {
		case a == "":
			return b
		case b == "" || a == b:
			return a
		case tie && b > a:
			return b
		default:
			return a
		}
	}

	out := &model.TransactionRecord{
		Hash:            strings.ToLower(pick(primary.Hash, secondary.Hash)),
		From:            pick(primary.From, secondary.From),
		To:              pick(primary.To, secondary.To),
		RawValue:        pick(primary.RawValue, secondary.RawValue),
		GasUsed:         pick(primary.GasUsed, secondary.GasUsed),
		GasPrice:        pick(primary.GasPrice, secondary.GasPrice),
		NetworkCurrency: pick(primary.NetworkCurrency, secondary.NetworkCurrency),
		InputData:       pick(primary.InputData, secondary.InputData),
		Method:          pick(primary.Method, secondary.Method),
		Status:          model.TxStatus(pick(string(primary.Status), string(secondary.Status))),
		Category:        model.Category(pick(string(primary.Category), string(secondary.Category))),
		Direction:       model.Direction(pick(string(primary.Direction), string(secondary.Direction))),
		BlockNumber:     primary.BlockNumber,
		Timestamp:       primary.Timestamp,
	}

	if out.BlockNumber == 0 || (tie && secondary.BlockNumber > out.BlockNumber) {
		out.BlockNumber = secondary.BlockNumber
	}
	if out.Timestamp.IsZero() || (tie && !secondary.Timestamp.IsZero() && secondary.Timestamp.Before(out.Timestamp)) {
		out.Timestamp = secondary.Timestamp
	}
	if tie && (primary.Status == model.TxStatusFailed || secondary.Status == model.TxStatusFailed) {
		out.Status = model.TxStatusFailed
	}

	out.NativeAmount = toUnits(out.RawValue, consts.NativeDecimals)
	out.GasFeeNative = gasFeeNative(out.GasUsed, out.GasPrice)

	if tt := pickToken(existing.TokenTransfer, incoming.TokenTransfer); tt != nil {
		cp := *tt
		attachToken(out, &cp)
	}

	out.SourceSet = make([]model.RecordSource, 0, len(existing.SourceSet)+len(incoming.SourceSet))
	out.SourceSet = append(out.SourceSet, existing.SourceSet...)
	out.SourceSet = append(out.SourceSet, incoming.SourceSet...)

	return out
}

func pickToken(a, b *model.TokenTransfer) *model.TokenTransfer {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}

	if c := a.Amount.Cmp(b.Amount); c != 0 {
		if c > 0 {
			return a
		}
		return b
	}
	if ca, cb := tokenCompleteness(a), tokenCompleteness(b); ca != cb {
		if ca > cb {
			return a
		}
		return b
	}
	// identical weight, stay deterministic
	if a.ContractAddress+a.Symbol >= b.ContractAddress+b.Symbol {
		return a
	}
	return b
}

func tokenCompleteness(t *model.TokenTransfer) int {
	n := 0
	for _, s := range []string{t.Symbol, t.Name, t.ContractAddress, t.TokenType, t.From, t.To} {
		if s != "" {
			n++
		}
	}
	return n
}

func cloneRecord(r *model.TransactionRecord) *model.TransactionRecord {
	cp := *r
	cp.SourceSet = append([]model.RecordSource(nil), r.SourceSet...)
	if r.TokenTransfer != nil {
		tt := *r.TokenTransfer
		cp.TokenTransfer = &tt
	}
	return &cp
}

// mergeByHash folds records into one per hash, keeping first-seen order.
func mergeByHash(feeds ...[]*model.TransactionRecord) []*model.TransactionRecord {
	index := map[string]int{}
	var out []*model.TransactionRecord

	for _, feed := range feeds {
		for _, rec := range feed {
			if rec == nil || rec.Hash == "" {
				continue
			}
			key := strings.ToLower(rec.Hash)
			if i, ok := index[key]; ok {
				out[i] = MergeRecords(out[i], rec)
				continue
			}
			index[key] = len(out)
			out = append(out, cloneRecord(rec))
		}
	}
	return out
}
