package controller_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/accountregistry"
	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/categorizer"
	"github.com/dwarvesf/crypto-bookkeeper/internal/controller"
	"github.com/dwarvesf/crypto-bookkeeper/internal/explorer"
	"github.com/dwarvesf/crypto-bookkeeper/internal/llm"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
	"github.com/dwarvesf/crypto-bookkeeper/internal/oracle"
	"github.com/dwarvesf/crypto-bookkeeper/internal/store"
	"github.com/dwarvesf/crypto-bookkeeper/internal/store/storetest"
	"github.com/dwarvesf/crypto-bookkeeper/internal/types/environments"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/config"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/webhook"
)

const (
	userAddr   = "0x1111111111111111111111111111111111111111"
	clientAddr = "0x2222222222222222222222222222222222222222"
	tokenAddr  = "0xdac17f958d2ee523a2206206994597c13d831ec7"
	userID     = "user-1"
)

var (
	hashA = "0x" + strings.Repeat("a", 64)
	hashB = "0x" + strings.Repeat("b", 64)
	hashC = "0x" + strings.Repeat("c", 64)
	hashF = "0x" + strings.Repeat("f", 64)

	blockTime = time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
)

// scriptedModel answers prompts through reply and records every prompt.
type scriptedModel struct {
	mu      sync.Mutex
	prompts []string
	reply   func(ctx context.Context, prompt string) (string, error)
}

func (m *scriptedModel) Generate(ctx context.Context, _ string, user string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, user)
	m.mu.Unlock()
	return m.reply(ctx, user)
}

func (m *scriptedModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

type fakeExplorer struct {
	txs    map[string]*model.TransactionRecord
	wallet []*model.TransactionRecord
}

func (f *fakeExplorer) GetTransaction(_ context.Context, hash string) (*model.TransactionRecord, error) {
	rec, ok := f.txs[strings.ToLower(hash)]
	if !ok {
		return nil, apperror.NotFound("explorer.GetTransaction", "transaction not found")
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeExplorer) GetWalletTransactions(_ context.Context, _ string, _ explorer.WalletOptions) (*explorer.WalletResult, error) {
	return &explorer.WalletResult{
		Records: f.wallet,
		Summary: explorer.WalletSummary{Regular: len(f.wallet), Merged: len(f.wallet)},
	}, nil
}

func (f *fakeExplorer) GetTokenTransfers(context.Context, string) ([]model.TokenTransfer, error) {
	return nil, nil
}

func (f *fakeExplorer) GetBalance(context.Context, string) (*explorer.Balance, error) {
	return &explorer.Balance{}, nil
}

func (f *fakeExplorer) NetworkCurrency() string { return "ETH" }

type harness struct {
	db       *gorm.DB
	model    *scriptedModel
	explorer *fakeExplorer
	config   *config.AppConfig
	ctrl     controller.IController
}

func newHarness(hooks ...func(*config.AppConfig, *controller.Deps)) *harness {
	db, err := storetest.NewDB()
	if err != nil {
		panic(err)
	}
	if err := storetest.SeedChart(db); err != nil {
		panic(err)
	}

	log := logger.New(environments.Test)
	s := store.New()
	cat, err := categorizer.New()
	if err != nil {
		panic(err)
	}

	h := &harness{
		db:       db,
		model:    &scriptedModel{reply: func(context.Context, string) (string, error) { return "[]", nil }},
		explorer: &fakeExplorer{txs: map[string]*model.TransactionRecord{}},
		config: &config.AppConfig{
			Pipeline: config.PipelineConfig{BulkTimeout: 5 * time.Second, MaxConcurrency: 5},
		},
	}

	deps := controller.Deps{
		DB:          db,
		Store:       s,
		Explorer:    h.explorer,
		Categorizer: cat,
		Oracle:      oracle.New(config.OracleConfig{PriceTTL: time.Minute}, nil, nil, log),
		Registry:    accountregistry.New(db, s, log),
		LLM:         llm.NewAdapter(h.model, nil, nil, log),
		Webhook:     webhook.New(log),
	}
	for _, hook := range hooks {
		hook(h.config, &deps)
	}
	h.ctrl = controller.New(deps, h.config, log)
	return h
}

func (h *harness) count(m any) int64 {
	var n int64
	if err := h.db.Model(m).Count(&n).Error; err != nil {
		panic(err)
	}
	return n
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// consultingPayment is 2.65 ETH sent by the user to a client.
func consultingPayment(hash string) *model.TransactionRecord {
	return &model.TransactionRecord{
		Hash:            hash,
		From:            userAddr,
		To:              clientAddr,
		RawValue:        "2650000000000000000",
		NativeAmount:    dec("2.65"),
		GasUsed:         "21000",
		GasPrice:        "20000000000",
		GasFeeNative:    dec("0.00042"),
		NetworkCurrency: "ETH",
		BlockNumber:     19800000,
		Timestamp:       blockTime,
		Status:          model.TxStatusSuccess,
		SourceSet:       []model.RecordSource{model.SourceRegular},
	}
}

func usdtReceipt(hash string) *model.TransactionRecord {
	return &model.TransactionRecord{
		Hash:            hash,
		From:            clientAddr,
		To:              tokenAddr,
		RawValue:        "0",
		NativeAmount:    decimal.Zero,
		GasFeeNative:    dec("0.0003"),
		NetworkCurrency: "ETH",
		Timestamp:       blockTime.Add(time.Hour),
		Status:          model.TxStatusSuccess,
		InputData:       "0xa9059cbb000000000000000000000000" + userAddr[2:],
		IsTokenTransfer: true,
		TokenTransfer: &model.TokenTransfer{
			Symbol:          "USDT",
			Name:            "Tether USD",
			ContractAddress: tokenAddr,
			Decimals:        6,
			RawAmount:       "500000000",
			Amount:          dec("500"),
			From:            clientAddr,
			To:              userAddr,
		},
		TokenAmount: dec("500"),
		SourceSet:   []model.RecordSource{model.SourceRegular, model.SourceToken},
	}
}

func failedCall(hash string) *model.TransactionRecord {
	return &model.TransactionRecord{
		Hash:            hash,
		From:            userAddr,
		To:              clientAddr,
		RawValue:        "0",
		GasFeeNative:    dec("0.001"),
		NetworkCurrency: "ETH",
		Timestamp:       blockTime.Add(2 * time.Hour),
		Status:          model.TxStatusFailed,
		InputData:       "0x095ea7b3",
		SourceSet:       []model.RecordSource{model.SourceRegular},
	}
}

const consultingReply = `Here are the entries:
[{"accountDebit": "Consulting Expense", "accountCredit": "Digital Assets - Ethereum",
  "amount": "2.65", "currency": "ETH", "narrative": "Payment for consulting",
  "confidence": 0.92, "entryType": "main"}]`
