package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/consts"
)

var (
	codeFenceRe     = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*$")
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
	leadingFloatRe  = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)
)

var requiredEntryKeys = []string{"accountDebit", "accountCredit", "amount", "currency", "narrative"}

// keyAliases maps spellings models drift into onto the canonical keys.
var keyAliases = map[string]string{
	"account_debit":    "accountDebit",
	"debit":            "accountDebit",
	"debitAccount":     "accountDebit",
	"account_credit":   "accountCredit",
	"credit":           "accountCredit",
	"creditAccount":    "accountCredit",
	"entry_type":       "entryType",
	"transaction_hash": "transactionHash",
	"hash":             "transactionHash",
}

// ParseEntries reduces a model response to its list of entry items. Flat
// entries and nested {transactionHash, category, entries[]} groups are
// validated; anything else passes through untouched for Flatten to report.
func ParseEntries(raw string) ([]map[string]any, error) {
	items, _, err := parseEntries(raw)
	return items, err
}

func parseEntries(raw string) ([]map[string]any, []string, error) {
	elems, err := decodeArray(raw)
	if err != nil {
		return nil, nil, apperror.Parse("llm.ParseEntries", "response is not a JSON array", raw, err)
	}

	var (
		items   = make([]map[string]any, 0, len(elems))
		dropped []string
	)
	for i, elem := range elems {
		obj, ok := elem.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("item %d: not an object", i))
			continue
		}
		canonicalKeys(obj)

		switch {
		case obj["entries"] != nil:
			nested, ok := obj["entries"].([]any)
			if !ok {
				dropped = append(dropped, fmt.Sprintf("item %d: entries is not an array", i))
				continue
			}
			valid := make([]any, 0, len(nested))
			for j, n := range nested {
				entry, ok := n.(map[string]any)
				if !ok {
					dropped = append(dropped, fmt.Sprintf("item %d entry %d: not an object", i, j))
					continue
				}
				canonicalKeys(entry)
				if reason := validateEntry(entry); reason != "" {
					dropped = append(dropped, fmt.Sprintf("item %d entry %d: %s", i, j, reason))
					continue
				}
				valid = append(valid, entry)
			}
			if len(valid) == 0 {
				dropped = append(dropped, fmt.Sprintf("item %d: no valid entries", i))
				continue
			}
			obj["entries"] = valid
			items = append(items, obj)

		case obj["accountDebit"] != nil || obj["accountCredit"] != nil:
			if reason := validateEntry(obj); reason != "" {
				dropped = append(dropped, fmt.Sprintf("item %d: %s", i, reason))
				continue
			}
			items = append(items, obj)

		default:
			items = append(items, obj)
		}
	}

	if len(elems) > 0 && len(items) == 0 {
		return nil, dropped, apperror.Parse("llm.ParseEntries",
			"no valid entries: "+strings.Join(dropped, "; "), raw, nil)
	}
	return items, dropped, nil
}

// decodeArray decodes the first balanced array in raw that is valid JSON,
// retrying on the repaired text.
func decodeArray(raw string) ([]any, error) {
	var out []any
	err := decodeFirst(raw, '[', ']', func(dec *json.Decoder) error {
		out = nil
		if err := dec.Decode(&out); err != nil {
			return err
		}
		// skips bracketed prose such as "[1]" ahead of the real array
		for _, elem := range out {
			if _, ok := elem.(map[string]any); ok {
				return nil
			}
		}
		if len(out) > 0 {
			return fmt.Errorf("array holds no objects")
		}
		return nil
	})
	return out, err
}

func decodeObject(raw string) (map[string]any, error) {
	var out map[string]any
	err := decodeFirst(raw, '{', '}', func(dec *json.Decoder) error {
		out = nil
		return dec.Decode(&out)
	})
	return out, err
}

func decodeFirst(raw string, openCh, closeCh byte, decode func(*json.Decoder) error) error {
	var firstErr error
	// the raw text only gets its first balanced candidate; nested arrays of a
	// broken outer array must not win over the repaired outer one
	for pass, candidate := range []string{raw, repair(raw)} {
		for offset := 0; offset < len(candidate); {
			body, at, ok := firstBalanced(candidate[offset:], openCh, closeCh)
			if !ok {
				break
			}
			dec := json.NewDecoder(bytes.NewReader([]byte(body)))
			dec.UseNumber()
			err := decode(dec)
			if err == nil {
				return nil
			}
			if firstErr == nil {
				firstErr = err
			}
			if pass == 0 {
				break
			}
			offset += at + 1
		}
	}
	if firstErr == nil {
		firstErr = fmt.Errorf("no JSON %c...%c found", openCh, closeCh)
	}
	return firstErr
}

// repair strips code fences and trailing commas.
func repair(raw string) string {
	s := codeFenceRe.ReplaceAllString(raw, "")
	s = strings.ReplaceAll(s, "```", "")
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// firstBalanced returns the first substring opening with openCh and closing
// at its matching closeCh, skipping brackets inside JSON strings, and the
// index it starts at.
func firstBalanced(s string, openCh, closeCh byte) (string, int, bool) {
	start := strings.IndexByte(s, openCh)
	if start < 0 {
		return "", 0, false
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case openCh:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return s[start : i+1], start, true
			}
		}
	}
	return "", 0, false
}

func canonicalKeys(m map[string]any) {
	for alias, key := range keyAliases {
		if v, ok := m[alias]; ok {
			if _, exists := m[key]; !exists {
				m[key] = v
			}
			delete(m, alias)
		}
	}
}

// validateEntry checks the required keys and coerces amount and confidence
// in place. It returns the reason the entry is invalid, or "".
func validateEntry(e map[string]any) string {
	for _, k := range requiredEntryKeys {
		v, ok := e[k]
		if !ok || v == nil {
			return "missing " + k
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" && k != "narrative" {
			return "empty " + k
		}
	}

	amount, ok := CoerceAmount(e["amount"])
	if !ok {
		return fmt.Sprintf("amount %v is not a number", e["amount"])
	}
	e["amount"] = amount

	conf, ok := coerceFloat(e["confidence"])
	if !ok {
		conf = consts.DefaultConfidence
	}
	e["confidence"] = min(max(conf, 0), 1)
	return ""
}

// CoerceAmount reads v the way parseFloat would: the longest numeric prefix
// of a string, after dropping thousands separators.
func CoerceAmount(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		m := leadingFloatRe.FindString(s)
		if m == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(m)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

func coerceFloat(v any) (float64, bool) {
	d, ok := CoerceAmount(v)
	if !ok {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}
