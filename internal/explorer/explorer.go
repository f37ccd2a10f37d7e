package explorer

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/consts"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
	"github.com/dwarvesf/crypto-bookkeeper/internal/monitoring"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/config"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
)

const (
	pageSize = 50
	maxPages = 20
)

type explorer struct {
	baseURL  string
	currency string
	client   *resty.Client
	breaker  *monitoring.Breaker
	logger   *logger.Logger
}

type Option func(*resty.Client)

// WithRetryWait overrides the backoff window between retries.
func WithRetryWait(wait, maxWait time.Duration) Option {
	return func(c *resty.Client) {
		c.SetRetryWaitTime(wait).SetRetryMaxWaitTime(maxWait)
	}
}

// New builds the explorer client. breaker may be nil.
func New(cfg config.ExplorerConfig, breaker *monitoring.Breaker, logger *logger.Logger, opts ...Option) IExplorer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(8 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})
	if cfg.APIKey != "" {
		client.SetQueryParam("apikey", cfg.APIKey)
	}
	for _, opt := range opts {
		opt(client)
	}

	return &explorer{
		baseURL:  baseURL,
		currency: networkCurrencyFor(baseURL),
		client:   client,
		breaker:  breaker,
		logger:   logger,
	}
}

func (e *explorer) NetworkCurrency() string {
	return e.currency
}

// get performs one GET through the circuit breaker and maps failures onto
// the error taxonomy.
func (e *explorer) get(ctx context.Context, op, path string, query map[string]string, notFound string, out interface{}) error {
	_, err := monitoring.Call(ctx, e.breaker, op, func(ctx context.Context) (struct{}, error) {
		resp, err := e.client.R().
			SetContext(ctx).
			SetQueryParams(query).
			SetResult(out).
			SetError(&errorResponse{}).
			Get(path)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return struct{}{}, apperror.Timeout("explorer."+op, err)
			}
			return struct{}{}, apperror.UpstreamUnavailable("explorer."+op, "fetch failed", err)
		}

		if resp.StatusCode() == http.StatusNotFound {
			return struct{}{}, apperror.NotFound("explorer."+op, notFound)
		}
		if resp.IsError() {
			msg := ""
			if apiErr, ok := resp.Error().(*errorResponse); ok && apiErr != nil {
				msg = apiErr.Message
			}
			return struct{}{}, apperror.UpstreamUnavailable("explorer."+op, "fetch failed",
				fmt.Errorf("status %d %s", resp.StatusCode(), msg))
		}
		return struct{}{}, nil
	})
	if err == nil {
		return nil
	}

	if _, ok := apperror.As(err); !ok {
		err = apperror.UpstreamUnavailable("explorer."+op, "fetch failed", err)
	}
	e.logger.Error("[explorer]["+op+"] request failed", map[string]string{
		"path":  path,
		"error": err.Error(),
	})
	return err
}

func (e *explorer) GetTransaction(ctx context.Context, hash string) (*model.TransactionRecord, error) {
	hash = strings.ToLower(strings.TrimSpace(hash))
	if !isTxHash(hash) {
		return nil, apperror.Validation("explorer.GetTransaction", "invalid transaction hash")
	}

	var raw rawTransaction
	if err := e.get(ctx, "GetTransaction", "/api/v2/transactions/"+hash, nil, "transaction not found", &raw); err != nil {
		return nil, err
	}
	if raw.Hash == "" {
		return nil, apperror.NotFound("explorer.GetTransaction", "transaction not found")
	}

	return normaliseTransaction(raw, e.currency), nil
}

func (e *explorer) GetWalletTransactions(ctx context.Context, address string, opts WalletOptions) (*WalletResult, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if !isAddress(address) {
		return nil, apperror.Validation("explorer.GetWalletTransactions", "invalid wallet address")
	}
	if opts.Limit <= 0 {
		opts.Limit = pageSize
	}

	var regular, tokens, internals []*model.TransactionRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		regular, err = e.fetchRegular(gctx, address, opts)
		return err
	})
	if opts.IncludeTokens {
		g.Go(func() error {
			var err error
			tokens, err = e.fetchTokenFeed(gctx, address, opts.Limit)
			return err
		})
	}
	if opts.IncludeInternal {
		g.Go(func() error {
			var err error
			internals, err = e.fetchInternal(gctx, address, opts.Limit)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := mergeByHash(regular, tokens, internals)

	result := &WalletResult{
		Summary: WalletSummary{
			Regular:  len(regular),
			Token:    len(tokens),
			Internal: len(internals),
		},
	}
	for _, rec := range merged {
		if rec.Status == "" {
			rec.Status = model.TxStatusSuccess
		}
		if rec.Status == model.TxStatusFailed && !opts.IncludeFailed {
			continue
		}
		if opts.MinValue.IsPositive() && rec.Amount().LessThan(opts.MinValue) {
			continue
		}
		result.Records = append(result.Records, rec)
		if len(result.Records) == opts.Limit {
			break
		}
	}

	for _, rec := range result.Records {
		if rec.Status == model.TxStatusFailed {
			result.Summary.Failed++
		}
		if rec.IsTokenTransfer {
			result.Summary.Tokens++
		}
	}
	result.Summary.Merged = len(result.Records)

	e.logger.Info("[explorer][GetWalletTransactions] fetched wallet", map[string]string{
		"address":  address,
		"regular":  strconv.Itoa(result.Summary.Regular),
		"token":    strconv.Itoa(result.Summary.Token),
		"internal": strconv.Itoa(result.Summary.Internal),
		"merged":   strconv.Itoa(result.Summary.Merged),
	})

	return result, nil
}

// paginate walks page/limit pages until limit items were read or a short
// page signals the end.
func paginate[T any](ctx context.Context, e *explorer, op, path string, query map[string]string, limit int) ([]T, error) {
	var all []T
	for page := 1; page <= maxPages && len(all) < limit; page++ {
		size := min(pageSize, limit-len(all))
		q := map[string]string{
			"page":  strconv.Itoa(page),
			"limit": strconv.Itoa(size),
		}
		for k, v := range query {
			q[k] = v
		}

		var resp itemsResponse[T]
		if err := e.get(ctx, op, path, q, "address not found", &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Items...)
		if len(resp.Items) < size {
			break
		}
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (e *explorer) fetchRegular(ctx context.Context, address string, opts WalletOptions) ([]*model.TransactionRecord, error) {
	query := map[string]string{"type": "transaction"}
	if opts.Direction == "to" || opts.Direction == "from" {
		query["filter"] = opts.Direction
	}

	items, err := paginate[rawTransaction](ctx, e, "fetchRegular", "/api/v2/addresses/"+address+"/transactions", query, opts.Limit)
	if err != nil {
		return nil, err
	}

	out := make([]*model.TransactionRecord, 0, len(items))
	for _, raw := range items {
		out = append(out, normaliseTransaction(raw, e.currency))
	}
	return out, nil
}

func (e *explorer) fetchTokenFeed(ctx context.Context, address string, limit int) ([]*model.TransactionRecord, error) {
	items, err := paginate[rawTokenTransfer](ctx, e, "fetchTokenFeed", "/api/v2/addresses/"+address+"/token-transfers",
		map[string]string{"type": "ERC-20,ERC-721,ERC-1155"}, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*model.TransactionRecord, 0, len(items))
	for _, raw := range items {
		out = append(out, normaliseTokenFeedItem(raw, e.currency))
	}
	return out, nil
}

func (e *explorer) fetchInternal(ctx context.Context, address string, limit int) ([]*model.TransactionRecord, error) {
	items, err := paginate[rawInternalTransaction](ctx, e, "fetchInternal", "/api/v2/addresses/"+address+"/internal-transactions", nil, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*model.TransactionRecord, 0, len(items))
	for _, raw := range items {
		out = append(out, normaliseInternal(raw, e.currency))
	}
	return out, nil
}

func (e *explorer) GetTokenTransfers(ctx context.Context, addressOrHash string) ([]model.TokenTransfer, error) {
	key := strings.ToLower(strings.TrimSpace(addressOrHash))

	var path string
	query := map[string]string{"type": "ERC-20,ERC-721,ERC-1155"}
	switch {
	case isTxHash(key):
		path = "/api/v2/transactions/" + key + "/token-transfers"
	case isAddress(key):
		path = "/api/v2/addresses/" + key + "/token-transfers"
	default:
		return nil, apperror.Validation("explorer.GetTokenTransfers", "expected an address or transaction hash")
	}

	items, err := paginate[rawTokenTransfer](ctx, e, "GetTokenTransfers", path, query, pageSize)
	if err != nil {
		return nil, err
	}

	out := make([]model.TokenTransfer, 0, len(items))
	for _, raw := range items {
		if tt := normaliseTokenTransfer(raw); tt != nil {
			out = append(out, *tt)
		}
	}
	return out, nil
}

func (e *explorer) GetBalance(ctx context.Context, address string) (*Balance, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if !isAddress(address) {
		return nil, apperror.Validation("explorer.GetBalance", "invalid wallet address")
	}

	var raw rawAddress
	if err := e.get(ctx, "GetBalance", "/api/v2/addresses/"+address, nil, "address not found", &raw); err != nil {
		return nil, err
	}

	wei := decimalString(raw.CoinBalance.String())
	if wei == "" {
		wei = "0"
	}
	return &Balance{
		Wei:    wei,
		Native: toUnits(wei, consts.NativeDecimals),
	}, nil
}
