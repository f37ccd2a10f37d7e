package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
	"github.com/dwarvesf/crypto-bookkeeper/internal/types/environments"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
)

type MockModel struct {
	mock.Mock
}

func (m *MockModel) Generate(ctx context.Context, system, user string) (string, error) {
	args := m.Called(system, user)
	return args.String(0), args.Error(1)
}

type memoryArchive struct {
	records []ArchiveRecord
	err     error
}

func (a *memoryArchive) Save(_ context.Context, rec ArchiveRecord) error {
	a.records = append(a.records, rec)
	return a.err
}

func nativeTransfer() *model.TransactionRecord {
	return &model.TransactionRecord{
		Hash:            testHash,
		From:            "0xaaa",
		To:              "0xbbb",
		RawValue:        "2650000000000000000",
		NativeAmount:    decimal.RequireFromString("2.65"),
		GasUsed:         "21000",
		GasPrice:        "20000000000",
		GasFeeNative:    decimal.RequireFromString("0.00042"),
		NetworkCurrency: "ETH",
		Timestamp:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Status:          model.TxStatusSuccess,
		Category:        model.CategoryOutgoingTransfer,
		Direction:       model.DirectionOutgoing,
	}
}

func TestAnalyseTransaction_PromptUsesConvertedAmounts(t *testing.T) {
	m := &MockModel{}
	archive := &memoryArchive{}
	a := NewAdapter(m, archive, nil, logger.New(environments.Test))

	var prompt string
	m.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { prompt = args.String(1) }).
		Return(`[{"accountDebit":"Consulting Expense","accountCredit":"Digital Assets - Ethereum","amount":2.65,"currency":"ETH","narrative":"Payment for consulting","entryType":"main"}]`, nil)

	out, err := a.AnalyseTransaction(context.Background(), TransactionPrompt{
		Record:      nativeTransfer(),
		Description: "Payment for consulting",
		Chart:       "CHART",
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)

	assert.Contains(t, prompt, "Native value: 2.65 ETH")
	assert.Contains(t, prompt, "Network fee: 0.00042 ETH")
	assert.Contains(t, prompt, "Payment for consulting")
	assert.Contains(t, prompt, "IFRS GUIDANCE (IAS 1)")
	assert.NotContains(t, prompt, "2650000000000000000")

	require.Len(t, archive.records, 1)
	assert.Equal(t, promptSingle, archive.records[0].PromptType)
}

func TestAnalyseCategory_RendersEveryRecord(t *testing.T) {
	m := &MockModel{}
	a := NewAdapter(m, nil, nil, logger.New(environments.Test))

	usdt := nativeTransfer()
	usdt.Hash = "0xusdt"
	usdt.NativeAmount = decimal.Zero
	usdt.TokenTransfer = &model.TokenTransfer{Symbol: "USDT", Decimals: 6, RawAmount: "1000000000", Amount: decimal.NewFromInt(1000), From: "0xaaa", To: "0xccc"}

	var prompt string
	m.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { prompt = args.String(1) }).
		Return(`[{"transactionHash":"0xusdt","category":"token_transfer","entries":[{"accountDebit":"A","accountCredit":"B","amount":1000,"currency":"USDT","narrative":"n"}]}]`, nil)

	out, err := a.AnalyseCategory(context.Background(), CategoryPrompt{
		Category: model.CategoryTokenTransfer,
		Address:  "0xaaa",
		Records:  []*model.TransactionRecord{nativeTransfer(), usdt},
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)

	assert.Contains(t, prompt, "The following 2 transactions")
	assert.Contains(t, prompt, "1. "+testHash)
	assert.Contains(t, prompt, "2. 0xusdt")
	assert.Contains(t, prompt, "token 1000 USDT")
	assert.NotContains(t, prompt, "1000000000")
}

func TestAnalyseCategory_EmptyGroupSkipsModel(t *testing.T) {
	m := &MockModel{}
	a := NewAdapter(m, nil, nil, logger.New(environments.Test))

	out, err := a.AnalyseCategory(context.Background(), CategoryPrompt{Category: model.CategoryStaking})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	m.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestAnalyse_ParseErrorCarriesRaw(t *testing.T) {
	m := &MockModel{}
	archive := &memoryArchive{err: errors.New("bucket gone")}
	a := NewAdapter(m, archive, nil, logger.New(environments.Test))
	m.On("Generate", mock.Anything, mock.Anything).Return("Sorry, I cannot help.", nil)

	_, err := a.AnalyseTransaction(context.Background(), TransactionPrompt{Record: nativeTransfer()})

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindParse, appErr.Kind)
	assert.Equal(t, "Sorry, I cannot help.", appErr.Raw)
	assert.Len(t, archive.records, 1)
}

func TestAnalyse_UpstreamErrorIsTyped(t *testing.T) {
	m := &MockModel{}
	archive := &memoryArchive{}
	a := NewAdapter(m, archive, nil, logger.New(environments.Test))
	m.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("connection reset"))

	_, err := a.AnalyseTransaction(context.Background(), TransactionPrompt{Record: nativeTransfer()})

	assert.True(t, apperror.Is(err, apperror.KindUpstreamUnavailable))
	require.Len(t, archive.records, 1)
	assert.Equal(t, "connection reset", archive.records[0].Error)
}

func TestChat_StructuredReply(t *testing.T) {
	m := &MockModel{}
	a := NewAdapter(m, nil, nil, logger.New(environments.Test))

	var prompt string
	m.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { prompt = args.String(1) }).
		Return("```json\n{\"response\":\"Recorded.\",\"thinking\":\"expense\",\"suggestions\":[\"Attach the invoice\"],"+
			"\"journalEntries\":[{\"accountDebit\":\"Office Expense\",\"accountCredit\":\"Cash\",\"amount\":\"120\",\"currency\":\"USD\",\"narrative\":\"Printer\"},{\"oops\":1}]}\n```", nil)

	out, err := a.Chat(context.Background(), ChatPrompt{
		Message:  "Bought a printer for $120 on 2024-02-01",
		FreeForm: ExtractFreeForm("Bought a printer for $120 on 2024-02-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Recorded.", out.Response)
	assert.Equal(t, "expense", out.Thinking)
	assert.Equal(t, []string{"Attach the invoice"}, out.Suggestions)
	require.Len(t, out.Items, 1)
	assert.Equal(t, 0.8, out.Items[0]["confidence"])

	assert.Contains(t, prompt, "- Amount: 120 USD")
	assert.Contains(t, prompt, "- Date: 2024-02-01")
}

func TestChat_PlainTextReply(t *testing.T) {
	m := &MockModel{}
	a := NewAdapter(m, nil, nil, logger.New(environments.Test))
	m.On("Generate", mock.Anything, mock.Anything).Return("Hello! How can I help?", nil)

	out, err := a.Chat(context.Background(), ChatPrompt{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help?", out.Response)
	assert.Empty(t, out.Items)
}

func TestGuidanceFor(t *testing.T) {
	assert.Equal(t, "IFRS 9", GuidanceFor(model.CategoryLending).Standard)
	assert.Equal(t, GuidanceFor("default"), GuidanceFor(model.CategoryUnknown))
	assert.NotEmpty(t, GuidanceFor(model.CategoryFailedTransaction).Text)
}
