package model

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Web3BigInt is an on-chain integer amount in base units together with the
// number of decimals needed to express it in whole units.
type Web3BigInt struct {
	Value   string `json:"value"`
	Decimal int    `json:"decimal"`
}

func NewWeb3BigInt(value string, decimals int) *Web3BigInt {
	if value == "" {
		value = "0"
	}
	return &Web3BigInt{Value: value, Decimal: decimals}
}

func (w *Web3BigInt) BigInt() (*big.Int, error) {
	if w == nil || w.Value == "" {
		return new(big.Int), nil
	}
	n, ok := new(big.Int).SetString(w.Value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid base unit amount %q", w.Value)
	}
	return n, nil
}

// ToDecimal converts base units into whole units without losing precision.
func (w *Web3BigInt) ToDecimal() (decimal.Decimal, error) {
	n, err := w.BigInt()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromBigInt(n, int32(-w.Decimal)), nil
}

// Mul multiplies two base-unit amounts, keeping the receiver's decimals.
// Used for gas_used * gas_price.
func (w *Web3BigInt) Mul(number *Web3BigInt) (*Web3BigInt, error) {
	a, err := w.BigInt()
	if err != nil {
		return nil, err
	}
	b, err := number.BigInt()
	if err != nil {
		return nil, err
	}
	return &Web3BigInt{
		Value:   new(big.Int).Mul(a, b).String(),
		Decimal: w.Decimal,
	}, nil
}

func (w *Web3BigInt) IsZero() bool {
	n, err := w.BigInt()
	return err != nil || n.Sign() == 0
}
