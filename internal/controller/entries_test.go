package controller

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

const (
	hashOne = "0x1111111111111111111111111111111111111111111111111111111111111111"
	hashTwo = "0x2222222222222222222222222222222222222222222222222222222222222222"
	payer   = "0x9999999999999999999999999999999999999999"
)

func flatEntry(narrative string) map[string]any {
	return map[string]any{
		"accountDebit":  "Consulting Expense",
		"accountCredit": "Digital Assets - Ethereum",
		"amount":        "1",
		"currency":      "ETH",
		"narrative":     narrative,
	}
}

func TestFlatten(t *testing.T) {
	items := []map[string]any{
		flatEntry("first"),
		{
			"transactionHash": hashOne,
			"category":        "outgoing_transfer",
			"entries": []any{
				flatEntry("nested a"),
				map[string]any{
					"accountDebit":  "Transaction Fees",
					"accountCredit": "Digital Assets - Ethereum",
					"amount":        "0.001",
					"currency":      "ETH",
					"metadata":      map[string]any{"note": "kept"},
				},
			},
		},
		{"summary": "no entries here"},
		flatEntry("last"),
	}

	out, warnings := Flatten(items)

	require.Len(t, out, 5)
	assert.Equal(t, "first", out[0]["narrative"])
	assert.Equal(t, "nested a", out[1]["narrative"])
	assert.Equal(t, hashOne, out[1]["transactionHash"])
	assert.Equal(t, "outgoing_transfer", out[1]["category"])

	meta := out[2]["metadata"].(map[string]any)
	assert.Equal(t, hashOne, meta["original_transaction_hash"])
	assert.Equal(t, "outgoing_transfer", meta["original_category"])
	assert.Equal(t, "kept", meta["note"])

	assert.Equal(t, "no entries here", out[3]["summary"])
	assert.Equal(t, "last", out[4]["narrative"])
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "item 2")
}

func TestFlatten_DoesNotMutateInput(t *testing.T) {
	entry := flatEntry("nested")
	items := []map[string]any{{"transactionHash": hashOne, "entries": []any{entry}}}

	out, _ := Flatten(items)

	require.Len(t, out, 1)
	assert.NotContains(t, entry, "metadata")
	assert.NotContains(t, entry, "transactionHash")
}

func TestFlatten_Empty(t *testing.T) {
	out, warnings := Flatten(nil)
	assert.Empty(t, out)
	assert.Empty(t, warnings)
}

func TestToProposedEntry(t *testing.T) {
	item := flatEntry("Consulting")
	item["currency"] = "eth"
	item["confidence"] = 0.4
	item["entryType"] = "FEE"

	e, err := toProposedEntry(item)
	require.NoError(t, err)
	assert.Equal(t, "ETH", e.Currency)
	assert.Equal(t, 0.4, e.Confidence)
	assert.Equal(t, model.EntryTypeFee, e.EntryType)
	assert.True(t, e.Amount.Equal(decimal.NewFromInt(1)))

	_, err = toProposedEntry(map[string]any{"summary": "x"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	item = flatEntry("negative")
	item["amount"] = "-3"
	_, err = toProposedEntry(item)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestConvertItems_DefaultsConfidence(t *testing.T) {
	entries, warnings := convertItems([]map[string]any{flatEntry("a"), {"summary": "skip"}})
	require.Len(t, entries, 1)
	assert.Len(t, warnings, 1)
	assert.Equal(t, 0.8, entries[0].Confidence)
	assert.Equal(t, model.EntryTypeMain, entries[0].EntryType)
}

func record(status model.TxStatus) *model.TransactionRecord {
	return &model.TransactionRecord{
		Hash:            hashOne,
		From:            payer,
		To:              "0x8888888888888888888888888888888888888888",
		GasFeeNative:    decimal.RequireFromString("0.002"),
		NetworkCurrency: "C2FLR",
		Status:          status,
		Category:        model.CategoryOutgoingTransfer,
	}
}

func TestCompleteRecordEntries(t *testing.T) {
	main := &model.ProposedEntry{AccountDebit: "Consulting Expense", AccountCredit: "Cash", Amount: decimal.NewFromInt(1), EntryType: model.EntryTypeMain}

	t.Run("adds the fee the payer owes", func(t *testing.T) {
		out := completeRecordEntries(record(model.TxStatusSuccess), []*model.ProposedEntry{main}, payer)
		require.Len(t, out, 2)
		assert.Equal(t, hashOne, out[0].TransactionHash)
		assert.Equal(t, model.CategoryOutgoingTransfer, out[0].Category)

		fee := out[1]
		assert.Equal(t, model.EntryTypeFee, fee.EntryType)
		assert.Equal(t, "Transaction Fees", fee.AccountDebit)
		assert.Equal(t, "Digital Assets - Flare Testnet", fee.AccountCredit)
		assert.Equal(t, "C2FLR", fee.Currency)
		assert.Equal(t, 1.0, fee.Confidence)
	})

	t.Run("no fee for the receiving side", func(t *testing.T) {
		out := completeRecordEntries(record(model.TxStatusSuccess), []*model.ProposedEntry{main}, "0x8888888888888888888888888888888888888888")
		assert.Len(t, out, 1)
	})

	t.Run("failed transactions keep only fees", func(t *testing.T) {
		out := completeRecordEntries(record(model.TxStatusFailed), []*model.ProposedEntry{main}, payer)
		require.Len(t, out, 1)
		assert.Equal(t, model.EntryTypeFee, out[0].EntryType)
	})

	t.Run("zero gas adds nothing", func(t *testing.T) {
		rec := record(model.TxStatusSuccess)
		rec.GasFeeNative = decimal.Zero
		out := completeRecordEntries(rec, nil, payer)
		assert.Empty(t, out)
	})
}

func TestApplyDates(t *testing.T) {
	block := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	extracted := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	rec := &model.TransactionRecord{Timestamp: block}

	a := &model.ProposedEntry{}
	applyDates([]*model.ProposedEntry{a}, rec, nil)
	assert.Equal(t, block, *a.TransactionDate)

	b := &model.ProposedEntry{}
	applyDates([]*model.ProposedEntry{b}, rec, &extracted)
	assert.Equal(t, extracted, *b.TransactionDate)

	c := &model.ProposedEntry{}
	applyDates([]*model.ProposedEntry{c}, nil, nil)
	assert.Nil(t, c.TransactionDate)
}

func TestGroupByCategory_FirstAppearanceOrder(t *testing.T) {
	recs := []*model.TransactionRecord{
		{Hash: "a", Category: model.CategoryTokenReceived},
		{Hash: "b", Category: model.CategoryOutgoingTransfer},
		{Hash: "c", Category: model.CategoryTokenReceived},
	}

	groups := groupByCategory(recs)

	require.Len(t, groups, 2)
	assert.Equal(t, model.CategoryTokenReceived, groups[0].category)
	assert.Equal(t, []string{"a", "c"}, groups[0].hashes())
	assert.Equal(t, []string{"b"}, groups[1].hashes())
}

func TestCheckOverflow(t *testing.T) {
	ok := &model.ProposedEntry{Amount: decimal.RequireFromString("999999999999.99")}
	assert.NoError(t, checkOverflow([]*model.ProposedEntry{ok}))

	tooBig := &model.ProposedEntry{Amount: decimal.RequireFromString("-1000000000000")}
	err := checkOverflow([]*model.ProposedEntry{ok, tooBig})
	assert.True(t, apperror.Is(err, apperror.KindOverflow))
}

func TestBuildRows(t *testing.T) {
	block := time.Date(2024, 5, 1, 22, 15, 0, 0, time.UTC)
	rows, err := buildRows(PersistRequest{
		UserID: "u",
		Hash:   hashTwo,
		Record: &model.TransactionRecord{Timestamp: block},
		Entries: []*model.ProposedEntry{{
			AccountDebit: "Cash", AccountCredit: "Service Revenue",
			Amount: decimal.NewFromInt(5), Currency: "USD",
			Category: model.CategoryIncomingTransfer,
		}},
	})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), rows[0].EntryDate)
	assert.Equal(t, block, rows[0].TransactionDate)
	assert.Equal(t, model.EntrySourceAISingle, rows[0].Source)
	assert.Equal(t, model.EntryTypeMain, rows[0].EntryType)
	assert.Equal(t, model.USDSourceNone, rows[0].USDSource)
	assert.JSONEq(t, `{"transaction_hash":"`+hashTwo+`","category":"incoming_transfer"}`, string(rows[0].Metadata))
}
