package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/thep2p/go-eth-bridge/internal/contracts"
	"github.com/thep2p/go-eth-bridge/internal/model"
)

// LiquidityBridge is a binding for the nonce-numbered liquidity bridge served
// by the relayer.
type LiquidityBridge struct {
	*Contract
}

// NewLiquidityBridge binds the liquidity bridge at address.
func NewLiquidityBridge(logger zerolog.Logger, address common.Address, backend Backend) *LiquidityBridge {
	return &LiquidityBridge{Contract: NewContract(logger, address, contracts.LiquidityBridgeABI, backend)}
}

// Token returns the ERC-20 token held in the pool.
func (b *LiquidityBridge) Token(ctx context.Context) (common.Address, error) {
	out, err := b.Call(ctx, model.MethodToken)
	if err != nil {
		return common.Address{}, err
	}
	return addressOutput(model.MethodToken, out)
}

// DepositNonce returns the number of deposits accepted so far. Deposits are
// numbered from zero.
func (b *LiquidityBridge) DepositNonce(ctx context.Context) (uint64, error) {
	out, err := b.Call(ctx, model.MethodDepositNonce)
	if err != nil {
		return 0, err
	}
	n, err := bigOutput(model.MethodDepositNonce, out)
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Reserve returns the pool reserve.
func (b *LiquidityBridge) Reserve(ctx context.Context) (*big.Int, error) {
	out, err := b.Call(ctx, model.MethodGetReserve)
	if err != nil {
		return nil, err
	}
	return bigOutput(model.MethodGetReserve, out)
}

// DepositAmount returns the amount of deposit nonce.
func (b *LiquidityBridge) DepositAmount(ctx context.Context, nonce uint64) (*big.Int, error) {
	out, err := b.Call(ctx, model.MethodGetDepositAmount, new(big.Int).SetUint64(nonce))
	if err != nil {
		return nil, err
	}
	return bigOutput(model.MethodGetDepositAmount, out)
}

// Depositor returns the sender of deposit nonce.
func (b *LiquidityBridge) Depositor(ctx context.Context, nonce uint64) (common.Address, error) {
	out, err := b.Call(ctx, model.MethodGetDepositor, new(big.Int).SetUint64(nonce))
	if err != nil {
		return common.Address{}, err
	}
	return addressOutput(model.MethodGetDepositor, out)
}

// Deposit adds amount to the pool on behalf of the signer.
func (b *LiquidityBridge) Deposit(ctx context.Context, signer *Signer, amount *big.Int) (*types.Transaction, error) {
	return b.Transact(ctx, signer, model.MethodDeposit, amount)
}

// Release pays amount out of the pool to to.
func (b *LiquidityBridge) Release(ctx context.Context, signer *Signer, to common.Address, amount *big.Int) (*types.Transaction, error) {
	return b.Transact(ctx, signer, model.MethodRelease, to, amount)
}

// PrepareRelease signs release(to, amount) without sending it; submit it with Send.
func (b *LiquidityBridge) PrepareRelease(ctx context.Context, signer *Signer, to common.Address, amount *big.Int) (*types.Transaction, error) {
	return b.Prepare(ctx, signer, model.MethodRelease, to, amount)
}
