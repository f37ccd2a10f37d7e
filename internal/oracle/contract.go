package oracle

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/dwarvesf/crypto-bookkeeper/contracts/priceoracle"
	"github.com/dwarvesf/crypto-bookkeeper/internal/monitoring"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/config"
)

type onchainPrice struct {
	price     *big.Int
	decimals  int8
	timestamp uint64
}

// contractReader reads the price oracle contract through an RPC endpoint.
type contractReader struct {
	caller  *priceoracle.PriceOracleCaller
	breaker *monitoring.Breaker
}

// NewContractReader dials cfg.RPCURL and binds the contract at cfg.Address.
func NewContractReader(ctx context.Context, cfg config.OracleConfig, breaker *monitoring.Breaker) (ContractReader, error) {
	if !common.IsHexAddress(cfg.Address) {
		return nil, errors.Errorf("invalid oracle address %q", cfg.Address)
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, errors.Wrap(err, "dial oracle rpc")
	}

	caller, err := priceoracle.NewPriceOracleCaller(common.HexToAddress(cfg.Address), client)
	if err != nil {
		return nil, errors.Wrap(err, "bind price oracle")
	}

	return &contractReader{caller: caller, breaker: breaker}, nil
}

func (r *contractReader) GetPrice(ctx context.Context, symbol string) (*big.Int, int8, uint64, error) {
	out, err := monitoring.Call(ctx, r.breaker, "get_price", func(ctx context.Context) (onchainPrice, error) {
		res, err := r.caller.GetPrice(&bind.CallOpts{Context: ctx}, symbol)
		if err != nil {
			return onchainPrice{}, err
		}
		return onchainPrice{price: res.Price, decimals: res.Decimals, timestamp: res.Timestamp}, nil
	})
	if err != nil {
		return nil, 0, 0, errors.Wrapf(err, "getPrice(%s)", symbol)
	}
	return out.price, out.decimals, out.timestamp, nil
}

func (r *contractReader) IsSymbolSupported(ctx context.Context, symbol string) (bool, error) {
	return monitoring.Call(ctx, r.breaker, "is_symbol_supported", func(ctx context.Context) (bool, error) {
		return r.caller.IsSymbolSupported(&bind.CallOpts{Context: ctx}, symbol)
	})
}

func (r *contractReader) GetSupportedSymbols(ctx context.Context) ([]string, error) {
	return monitoring.Call(ctx, r.breaker, "get_supported_symbols", func(ctx context.Context) ([]string, error) {
		return r.caller.GetSupportedSymbols(&bind.CallOpts{Context: ctx})
	})
}
