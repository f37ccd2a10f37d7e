package explorer

import (
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/dwarvesf/crypto-bookkeeper/internal/consts"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

// networkCurrencyFor derives the native currency from the explorer base URL.
func networkCurrencyFor(baseURL string) string {
	if strings.Contains(strings.ToLower(baseURL), consts.Coston2Marker) {
		return consts.CurrencyC2FLR
	}
	return consts.CurrencyETH
}

func isTxHash(s string) bool {
	if len(s) != 66 {
		return false
	}
	_, err := hexutil.Decode(s)
	return err == nil
}

func isAddress(s string) bool {
	return common.IsHexAddress(s) && strings.HasPrefix(strings.ToLower(s), "0x")
}

// decimalString turns a base-unit integer (decimal or 0x-hex) into its
// decimal string. Unparseable input yields "".
func decimalString(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		n, ok := new(big.Int).SetString(raw[2:], 16)
		if !ok {
			return ""
		}
		return n.String()
	}
	if _, ok := new(big.Int).SetString(raw, 10); !ok {
		return ""
	}
	return raw
}

// toUnits converts base units to whole units with exact precision.
func toUnits(raw string, decimals int) decimal.Decimal {
	d, err := model.NewWeb3BigInt(decimalString(raw), decimals).ToDecimal()
	if err != nil {
		return decimal.Zero
	}
	return d
}

// gasFeeNative is gas_used * gas_price expressed in native units.
func gasFeeNative(gasUsed, gasPrice string) decimal.Decimal {
	fee, err := model.NewWeb3BigInt(decimalString(gasUsed), consts.NativeDecimals).
		Mul(model.NewWeb3BigInt(decimalString(gasPrice), 0))
	if err != nil {
		return decimal.Zero
	}
	d, err := fee.ToDecimal()
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000000Z", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC()
	}
	return time.Time{}
}

func parseBlock(values ...flexString) uint64 {
	for _, v := range values {
		if v == "" {
			continue
		}
		if n, err := strconv.ParseUint(string(v), 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func parseStatus(status, result string) model.TxStatus {
	for _, s := range []string{strings.ToLower(status), strings.ToLower(result)} {
		switch s {
		case "error", "failed", "failure", "reverted", "0":
			return model.TxStatusFailed
		}
	}
	return model.TxStatusSuccess
}

// normaliseTokenTransfer returns nil when the transfer carries no positive
// amount.
func normaliseTokenTransfer(raw rawTokenTransfer) *model.TokenTransfer {
	tokenType := raw.Token.Type
	decimals := consts.NativeDecimals
	switch {
	case raw.Total.Decimals != "":
		decimals, _ = strconv.Atoi(raw.Total.Decimals.String())
	case raw.Token.Decimals != "":
		decimals, _ = strconv.Atoi(raw.Token.Decimals.String())
	case tokenType == "ERC-721" || tokenType == "ERC-1155":
		decimals = 0
	}

	rawAmount := decimalString(raw.Total.Value.String())
	if rawAmount == "" && tokenType == "ERC-721" {
		// one NFT per transfer
		rawAmount, decimals = "1", 0
	}

	amount := toUnits(rawAmount, decimals)
	if !amount.IsPositive() {
		return nil
	}

	contract := raw.Token.Address
	if contract == "" {
		contract = raw.Token.AddressHash
	}

	return &model.TokenTransfer{
		Symbol:          strings.ToUpper(raw.Token.Symbol),
		Name:            raw.Token.Name,
		ContractAddress: strings.ToLower(contract),
		Decimals:        decimals,
		RawAmount:       rawAmount,
		Amount:          amount,
		From:            strings.ToLower(raw.From.String()),
		To:              strings.ToLower(raw.To.String()),
		TokenType:       tokenType,
	}
}

func attachToken(rec *model.TransactionRecord, tt *model.TokenTransfer) {
	if tt == nil {
		return
	}
	rec.TokenTransfer = tt
	rec.TokenAmount = tt.Amount
	rec.IsTokenTransfer = true
}

// normaliseTransaction converts a record of the regular feed (or the single
// transaction endpoint).
func normaliseTransaction(raw rawTransaction, currency string) *model.TransactionRecord {
	input := raw.RawInput
	if input == "" {
		input = raw.Input
	}

	rec := &model.TransactionRecord{
		Hash:            strings.ToLower(raw.Hash),
		From:            strings.ToLower(raw.From.String()),
		To:              strings.ToLower(raw.To.String()),
		RawValue:        raw.Value.String(),
		NativeAmount:    toUnits(raw.Value.String(), consts.NativeDecimals),
		GasUsed:         raw.GasUsed.String(),
		GasPrice:        raw.GasPrice.String(),
		GasFeeNative:    gasFeeNative(raw.GasUsed.String(), raw.GasPrice.String()),
		NetworkCurrency: currency,
		BlockNumber:     parseBlock(raw.BlockNumber, raw.Block),
		Timestamp:       parseTimestamp(raw.Timestamp),
		Status:          parseStatus(raw.Status, raw.Result),
		InputData:       input,
		Method:          raw.Method.String(),
		SourceSet:       []model.RecordSource{model.SourceRegular},
	}

	if len(raw.TokenTransfers) > 0 {
		attachToken(rec, normaliseTokenTransfer(raw.TokenTransfers[0]))
	}
	return rec
}

// normaliseTokenFeedItem converts an item of the token-transfers feed. The
// native side is unknown and left empty for the merge to fill.
func normaliseTokenFeedItem(raw rawTokenTransfer, currency string) *model.TransactionRecord {
	rec := &model.TransactionRecord{
		Hash:            strings.ToLower(raw.hash()),
		From:            strings.ToLower(raw.From.String()),
		To:              strings.ToLower(raw.To.String()),
		NetworkCurrency: currency,
		BlockNumber:     parseBlock(raw.BlockNumber),
		Timestamp:       parseTimestamp(raw.Timestamp),
		Method:          raw.Method.String(),
		SourceSet:       []model.RecordSource{model.SourceToken},
	}
	attachToken(rec, normaliseTokenTransfer(raw))
	return rec
}

func normaliseInternal(raw rawInternalTransaction, currency string) *model.TransactionRecord {
	rec := &model.TransactionRecord{
		Hash:            strings.ToLower(raw.TransactionHash),
		From:            strings.ToLower(raw.From.String()),
		To:              strings.ToLower(raw.To.String()),
		RawValue:        raw.Value.String(),
		NativeAmount:    toUnits(raw.Value.String(), consts.NativeDecimals),
		NetworkCurrency: currency,
		BlockNumber:     parseBlock(raw.BlockNumber, raw.Block),
		Timestamp:       parseTimestamp(raw.Timestamp),
		SourceSet:       []model.RecordSource{model.SourceInternal},
	}
	if raw.Success != nil {
		rec.Status = model.TxStatusSuccess
		if !*raw.Success {
			rec.Status = model.TxStatusFailed
		}
	}
	return rec
}
