package oracle_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
	"github.com/dwarvesf/crypto-bookkeeper/internal/oracle"
	"github.com/dwarvesf/crypto-bookkeeper/internal/types/environments"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/config"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
)

type MockContractReader struct {
	mock.Mock
}

func (m *MockContractReader) GetPrice(ctx context.Context, symbol string) (*big.Int, int8, uint64, error) {
	args := m.Called(symbol)
	if args.Get(0) == nil {
		return nil, 0, 0, args.Error(3)
	}
	return args.Get(0).(*big.Int), args.Get(1).(int8), args.Get(2).(uint64), args.Error(3)
}

func (m *MockContractReader) IsSymbolSupported(ctx context.Context, symbol string) (bool, error) {
	args := m.Called(symbol)
	return args.Bool(0), args.Error(1)
}

func (m *MockContractReader) GetSupportedSymbols(ctx context.Context) ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

var _ = Describe("PriceOracle", func() {
	var (
		ctx        context.Context
		reader     *MockContractReader
		testLogger *logger.Logger
		cfg        config.OracleConfig
		svc        oracle.IPriceOracle
	)

	BeforeEach(func() {
		ctx = context.Background()
		reader = &MockContractReader{}
		testLogger = logger.New(environments.Test)
		cfg = config.OracleConfig{Enabled: true, PriceTTL: time.Minute}
		svc = oracle.New(cfg, reader, nil, testLogger)
	})

	Describe("GetPrice", func() {
		It("reads the contract and applies signed decimals", func() {
			reader.On("GetPrice", "ETH").Return(big.NewInt(350012), int8(-2), uint64(1717000000), nil).Once()

			pd, err := svc.GetPrice(ctx, "eth")

			Expect(err).NotTo(HaveOccurred())
			Expect(pd.Symbol).To(Equal("ETH"))
			Expect(pd.USDPrice.String()).To(Equal("3500.12"))
			Expect(pd.Source).To(Equal(model.USDSourceOracle))
			Expect(pd.Timestamp.Unix()).To(Equal(int64(1717000000)))
		})

		It("resolves testnet aliases before the lookup", func() {
			reader.On("GetPrice", "FLR").Return(big.NewInt(21), int8(-3), uint64(1), nil).Once()

			pd, err := svc.GetPrice(ctx, "C2FLR")

			Expect(err).NotTo(HaveOccurred())
			Expect(pd.Symbol).To(Equal("FLR"))
			Expect(pd.USDPrice.String()).To(Equal("0.021"))
		})

		It("serves repeated reads from the cache keyed by the normalised symbol", func() {
			reader.On("GetPrice", "ETH").Return(big.NewInt(3000), int8(0), uint64(1), nil).Once()

			_, err := svc.GetPrice(ctx, "WETH")
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.GetPrice(ctx, "eth")
			Expect(err).NotTo(HaveOccurred())

			reader.AssertNumberOfCalls(GinkgoT(), "GetPrice", 1)
			stats := svc.CacheStatistics()
			Expect(stats.Hits).To(Equal(int64(1)))
			Expect(stats.Misses).To(Equal(int64(1)))
			Expect(stats.Entries).To(Equal(1))
		})

		It("collapses concurrent misses into one contract read", func() {
			release := make(chan struct{})
			reader.On("GetPrice", "BTC").
				Run(func(mock.Arguments) { <-release }).
				Return(big.NewInt(60000), int8(0), uint64(1), nil)

			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer GinkgoRecover()
					_, err := svc.GetPrice(ctx, "BTC")
					Expect(err).NotTo(HaveOccurred())
				}()
			}
			time.Sleep(20 * time.Millisecond)
			close(release)
			wg.Wait()

			reader.AssertNumberOfCalls(GinkgoT(), "GetPrice", 1)
		})

		It("re-reads after ClearCache", func() {
			reader.On("GetPrice", "ETH").Return(big.NewInt(3000), int8(0), uint64(1), nil).Twice()

			_, _ = svc.GetPrice(ctx, "ETH")
			svc.ClearCache()
			_, _ = svc.GetPrice(ctx, "ETH")

			reader.AssertNumberOfCalls(GinkgoT(), "GetPrice", 2)
		})

		It("expires entries after the TTL", func() {
			cfg.PriceTTL = 30 * time.Millisecond
			svc = oracle.New(cfg, reader, nil, testLogger)
			reader.On("GetPrice", "ETH").Return(big.NewInt(3000), int8(0), uint64(1), nil)

			_, _ = svc.GetPrice(ctx, "ETH")
			time.Sleep(60 * time.Millisecond)
			_, _ = svc.GetPrice(ctx, "ETH")

			reader.AssertNumberOfCalls(GinkgoT(), "GetPrice", 2)
		})
	})

	Describe("degradation", func() {
		BeforeEach(func() {
			reader.On("GetPrice", mock.Anything).Return(nil, int8(0), uint64(0), errors.New("execution reverted"))
		})

		It("falls back to the static table for known symbols", func() {
			pd, err := svc.GetPrice(ctx, "ETH")

			Expect(err).NotTo(HaveOccurred())
			Expect(pd.Source).To(Equal(model.USDSourceFallback))
			Expect(pd.USDPrice.Equal(decimal.RequireFromString("3402.25"))).To(BeTrue())
		})

		It("values journal entries with the fallback and says so", func() {
			jp := svc.GetPriceForJournalEntry(ctx, "ETH", decimal.RequireFromString("2.65"))

			Expect(jp.Supported).To(BeTrue())
			Expect(jp.PriceData.Source).To(Equal(model.USDSourceFallback))
			Expect(jp.USDValue.String()).To(Equal("9015.9625"))
			Expect(jp.EnhancedNarrative).To(ContainSubstring("via fallback"))
			Expect(oracle.EnhanceNarrative("Payment for consulting", jp)).
				To(Equal("Payment for consulting (≈ $9015.96 USD via fallback)"))
		})

		It("reports unknown symbols as unsupported without a value", func() {
			jp := svc.GetPriceForJournalEntry(ctx, "XYD", decimal.NewFromInt(100))

			Expect(jp.Supported).To(BeFalse())
			Expect(jp.USDValue).To(BeNil())
			Expect(jp.PriceData).To(BeNil())
			Expect(oracle.EnhanceNarrative("Token receipt", jp)).To(Equal("Token receipt"))

			_, err := svc.GetPrice(ctx, "XYD")
			Expect(apperror.Is(err, apperror.KindNotFound)).To(BeTrue())
		})
	})

	Describe("disabled contract", func() {
		It("never touches the reader", func() {
			cfg.Enabled = false
			svc = oracle.New(cfg, reader, nil, testLogger)

			pd, err := svc.GetPrice(ctx, "USDT")

			Expect(err).NotTo(HaveOccurred())
			Expect(pd.Source).To(Equal(model.USDSourceFallback))
			Expect(svc.IsSupported(ctx, "DOGE")).To(BeFalse())
			reader.AssertNotCalled(GinkgoT(), "GetPrice", mock.Anything)
			reader.AssertNotCalled(GinkgoT(), "IsSymbolSupported", mock.Anything)
		})
	})

	Describe("supported symbols", func() {
		It("unions the contract list with the fallback table", func() {
			reader.On("GetSupportedSymbols").Return([]string{"xrp", "ETH"}, nil)

			symbols := svc.GetSupportedSymbols(ctx)

			Expect(symbols).To(Equal([]string{"BTC", "DAI", "ETH", "FLR", "USDC", "USDT", "XRP"}))
		})

		It("asks the contract for symbols outside the fallback table", func() {
			reader.On("IsSymbolSupported", "XRP").Return(true, nil)
			reader.On("IsSymbolSupported", "NOPE").Return(false, errors.New("rpc down"))

			Expect(svc.IsSupported(ctx, "xrp")).To(BeTrue())
			Expect(svc.IsSupported(ctx, "nope")).To(BeFalse())
			Expect(svc.IsSupported(ctx, "wbtc")).To(BeTrue())
		})
	})

	Describe("Warm", func() {
		It("refreshes every requested symbol", func() {
			reader.On("GetPrice", "ETH").Return(big.NewInt(3000), int8(0), uint64(1), nil)
			reader.On("GetPrice", "FLR").Return(nil, int8(0), uint64(0), errors.New("stale feed"))
			reader.On("GetPrice", "ZZZ").Return(nil, int8(0), uint64(0), errors.New("unknown"))

			n, err := svc.Warm(ctx, []string{"ETH", "C2FLR", "ZZZ"})

			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))
			Expect(svc.CacheStatistics().LastRefresh).NotTo(BeZero())
		})
	})
})
