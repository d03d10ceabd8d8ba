package amm

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	// ErrCrossChainDex is returned when a dex is built from tokens of different chains.
	ErrCrossChainDex = errors.New("dex can only have tokens from the same chain")
	// ErrSameChainBridge is returned when a bridge is built from tokens of one chain.
	ErrSameChainBridge = errors.New("bridge must have tokens from different chains")
)

// divPrecision is the number of decimal places kept by pool divisions.
const divPrecision = 40

// DefaultFee is the fee fraction charged by pools unless configured otherwise.
var DefaultFee = decimal.RequireFromString("0.0025")

// Kind tells dexes and bridges apart.
type Kind string

const (
	KindExchange Kind = "exchange"
	KindDex      Kind = "dex"
	KindBridge   Kind = "bridge"
)

// Exchange is a constant-product pool between tokens A and B. Reserves are
// kept as whole token units; swaps truncate the new reserves.
type Exchange struct {
	Name string
	Kind Kind
	A    *Token
	B    *Token
	Fee  decimal.Decimal
}

// NewExchange returns a pool without chain constraints.
func NewExchange(name string, a, b *Token, fee decimal.Decimal) *Exchange {
	return &Exchange{Name: name, Kind: KindExchange, A: a, B: b, Fee: fee}
}

// NewDex returns a pool between two tokens of the same chain.
func NewDex(name string, a, b *Token, fee decimal.Decimal) (*Exchange, error) {
	if a.Chain != b.Chain {
		return nil, fmt.Errorf("%s: %w", name, ErrCrossChainDex)
	}
	e := NewExchange(name, a, b, fee)
	e.Kind = KindDex
	return e, nil
}

// NewBridge returns a pool between tokens of two different chains.
func NewBridge(name string, a, b *Token, fee decimal.Decimal) (*Exchange, error) {
	if a.Chain == b.Chain {
		return nil, fmt.Errorf("%s: %w", name, ErrSameChainBridge)
	}
	e := NewExchange(name, a, b, fee)
	e.Kind = KindBridge
	return e, nil
}

// AFromB returns the amount of A paid out for bIn of B, without swapping.
func (e *Exchange) AFromB(bIn decimal.Decimal) decimal.Decimal {
	return out(bIn, e.B.Reserve, e.A.Reserve, e.Fee)
}

// BFromA returns the amount of B paid out for aIn of A, without swapping.
func (e *Exchange) BFromA(aIn decimal.Decimal) decimal.Decimal {
	return out(aIn, e.A.Reserve, e.B.Reserve, e.Fee)
}

// SwapAFromB sells bIn of B to the pool and returns the A paid out.
func (e *Exchange) SwapAFromB(bIn decimal.Decimal) decimal.Decimal {
	aOut := e.AFromB(bIn)
	e.B.Reserve = e.B.Reserve.Add(bIn).Truncate(0)
	e.A.Reserve = e.A.Reserve.Sub(aOut).Truncate(0)
	return aOut
}

// SwapBFromA sells aIn of A to the pool and returns the B paid out.
func (e *Exchange) SwapBFromA(aIn decimal.Decimal) decimal.Decimal {
	bOut := e.BFromA(aIn)
	e.A.Reserve = e.A.Reserve.Add(aIn).Truncate(0)
	e.B.Reserve = e.B.Reserve.Sub(bOut).Truncate(0)
	return bOut
}

// out applies the constant-product invariant to an input net of fee.
func out(in, reserveIn, reserveOut, fee decimal.Decimal) decimal.Decimal {
	net := reserveIn.Add(in).Sub(in.Mul(fee))
	if net.IsZero() {
		return decimal.Zero
	}
	invariant := reserveIn.Mul(reserveOut)
	return reserveOut.Sub(invariant.DivRound(net, divPrecision))
}

// Quote returns the whole number of tokens a pool with reserves reserveIn and
// reserveOut pays out for amountIn:
//
//	floor(in·(1−fee)·reserveOut / (reserveIn + in·(1−fee)))
func Quote(amountIn, reserveIn, reserveOut *big.Int, fee decimal.Decimal) *big.Int {
	in := decimal.NewFromBigInt(amountIn, 0).Mul(decimal.NewFromInt(1).Sub(fee))
	denominator := decimal.NewFromBigInt(reserveIn, 0).Add(in)
	if denominator.Sign() <= 0 {
		return new(big.Int)
	}
	q := in.Mul(decimal.NewFromBigInt(reserveOut, 0)).DivRound(denominator, divPrecision)
	return q.Floor().BigInt()
}
