package oracle

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
	"github.com/dwarvesf/crypto-bookkeeper/internal/monitoring"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/config"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
)

type priceOracle struct {
	reader   ContractReader
	enabled  bool
	ttl      time.Duration
	fallback map[string]decimal.Decimal

	cache *cache.Cache
	group singleflight.Group

	hits        atomic.Int64
	misses      atomic.Int64
	mu          sync.RWMutex
	lastRefresh time.Time

	metrics *monitoring.BusinessMetricsRecorder
	logger  *logger.Logger
	now     func() time.Time
}

// New builds the oracle. reader may be nil, in which case only the fallback
// table answers.
func New(cfg config.OracleConfig, reader ContractReader, metrics *monitoring.BusinessMetricsRecorder, logger *logger.Logger) IPriceOracle {
	ttl := cfg.PriceTTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}

	fallback := make(map[string]decimal.Decimal, len(fallbackPrices))
	for sym, v := range fallbackPrices {
		fallback[sym] = decimal.RequireFromString(v)
	}

	return &priceOracle{
		reader:   reader,
		enabled:  cfg.Enabled && reader != nil,
		ttl:      ttl,
		fallback: fallback,
		cache:    cache.New(ttl, 2*ttl),
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

func (o *priceOracle) GetPrice(ctx context.Context, symbol string) (*model.PriceData, error) {
	sym := NormaliseSymbol(symbol)
	if sym == "" {
		return nil, apperror.Validation("oracle.GetPrice", "empty symbol")
	}

	if v, ok := o.cache.Get(sym); ok {
		o.hits.Add(1)
		o.metrics.RecordCacheOperation("oracle_price", "hit")
		pd := *v.(*model.PriceData)
		return &pd, nil
	}
	o.misses.Add(1)
	o.metrics.RecordCacheOperation("oracle_price", "miss")

	v, err, _ := o.group.Do(sym, func() (interface{}, error) {
		return o.resolve(ctx, sym)
	})
	if err != nil {
		return nil, err
	}

	pd := *v.(*model.PriceData)
	return &pd, nil
}

// resolve asks the contract, then the fallback table, and caches the answer.
func (o *priceOracle) resolve(ctx context.Context, sym string) (*model.PriceData, error) {
	start := time.Now()

	if o.enabled {
		price, decimals, ts, err := o.reader.GetPrice(ctx, sym)
		switch {
		case err != nil:
			o.logger.Warn("[oracle][resolve] contract read failed, using fallback", map[string]string{
				"symbol": sym,
				"error":  err.Error(),
			})
		case price == nil || price.Sign() <= 0:
			o.logger.Warn("[oracle][resolve] contract returned no price", map[string]string{
				"symbol": sym,
			})
		default:
			pd := &model.PriceData{
				Symbol:    sym,
				USDPrice:  usdPrice(price, decimals),
				Decimals:  decimals,
				Timestamp: time.Unix(int64(ts), 0).UTC(),
				Source:    model.USDSourceOracle,
				FetchedAt: o.now(),
			}
			o.store(pd)
			o.metrics.RecordOracleOperation("get_price", "oracle", time.Since(start).Seconds())
			return pd, nil
		}
	}

	if p, ok := o.fallback[sym]; ok {
		now := o.now()
		pd := &model.PriceData{
			Symbol:    sym,
			USDPrice:  p,
			Decimals:  int8(p.Exponent()),
			Timestamp: now,
			Source:    model.USDSourceFallback,
			FetchedAt: now,
		}
		o.store(pd)
		o.metrics.RecordOracleOperation("get_price", "fallback", time.Since(start).Seconds())
		return pd, nil
	}

	o.metrics.RecordOracleOperation("get_price", "unsupported", time.Since(start).Seconds())
	return nil, apperror.NotFound("oracle.GetPrice", "unsupported symbol "+sym)
}

func (o *priceOracle) store(pd *model.PriceData) {
	o.cache.Set(pd.Symbol, pd, o.ttl)
	o.mu.Lock()
	o.lastRefresh = pd.FetchedAt
	o.mu.Unlock()
}

func (o *priceOracle) GetPriceForJournalEntry(ctx context.Context, symbol string, amount decimal.Decimal) *JournalPrice {
	pd, err := o.GetPrice(ctx, symbol)
	if err != nil {
		o.logger.Debug("[oracle][GetPriceForJournalEntry] no price", map[string]string{
			"symbol": symbol,
			"error":  err.Error(),
		})
		return &JournalPrice{Supported: false}
	}

	usd := amount.Mul(pd.USDPrice).Round(8)
	return &JournalPrice{
		USDValue:          &usd,
		PriceData:         pd,
		Supported:         true,
		EnhancedNarrative: narrativeSuffix(usd, pd.Source),
	}
}

func (o *priceOracle) IsSupported(ctx context.Context, symbol string) bool {
	sym := NormaliseSymbol(symbol)
	if _, ok := o.cache.Get(sym); ok {
		return true
	}
	if _, ok := o.fallback[sym]; ok {
		return true
	}
	if !o.enabled {
		return false
	}

	ok, err := o.reader.IsSymbolSupported(ctx, sym)
	if err != nil {
		o.logger.Warn("[oracle][IsSupported] contract read failed", map[string]string{
			"symbol": sym,
			"error":  err.Error(),
		})
		return false
	}
	return ok
}

func (o *priceOracle) GetSupportedSymbols(ctx context.Context) []string {
	set := map[string]struct{}{}
	for sym := range o.fallback {
		set[sym] = struct{}{}
	}

	if o.enabled {
		symbols, err := o.reader.GetSupportedSymbols(ctx)
		if err != nil {
			o.logger.Warn("[oracle][GetSupportedSymbols] contract read failed", map[string]string{
				"error": err.Error(),
			})
		}
		for _, s := range symbols {
			set[NormaliseSymbol(s)] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (o *priceOracle) ClearCache() {
	o.cache.Flush()
}

func (o *priceOracle) Warm(ctx context.Context, symbols []string) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(5)

	for _, s := range symbols {
		sym := NormaliseSymbol(s)
		if sym == "" {
			continue
		}
		g.Go(func() error {
			o.cache.Delete(sym)
			if _, err := o.GetPrice(gctx, sym); err != nil && !apperror.Is(err, apperror.KindNotFound) {
				return err
			}
			return nil
		})
	}
	err := g.Wait()

	n := o.cache.ItemCount()
	o.logger.Info("[oracle][Warm] refreshed prices", map[string]string{
		"requested": strconv.Itoa(len(symbols)),
		"cached":    strconv.Itoa(n),
	})
	return n, err
}

func (o *priceOracle) CacheStatistics() *CacheStatistics {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return &CacheStatistics{
		Hits:        o.hits.Load(),
		Misses:      o.misses.Load(),
		Entries:     o.cache.ItemCount(),
		LastRefresh: o.lastRefresh,
	}
}
