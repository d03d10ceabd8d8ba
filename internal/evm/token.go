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

// Token is an ERC-20 token binding.
type Token struct {
	*Contract
}

// NewToken binds the ERC-20 token at address.
func NewToken(logger zerolog.Logger, address common.Address, backend Backend) *Token {
	return &Token{Contract: NewContract(logger, address, contracts.ERC20ABI, backend)}
}

// BalanceOf returns the token balance of holder.
func (t *Token) BalanceOf(ctx context.Context, holder common.Address) (*big.Int, error) {
	out, err := t.Call(ctx, model.MethodBalanceOf, holder)
	if err != nil {
		return nil, err
	}
	return bigOutput(model.MethodBalanceOf, out)
}

// Allowance returns how much spender may still transfer from owner.
func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	out, err := t.Call(ctx, model.MethodAllowance, owner, spender)
	if err != nil {
		return nil, err
	}
	return bigOutput(model.MethodAllowance, out)
}

// Approve sets the allowance of spender to amount.
func (t *Token) Approve(ctx context.Context, signer *Signer, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	return t.Transact(ctx, signer, model.MethodApprove, spender, amount)
}

// Mint creates amount new tokens for to. The test tokens let anyone mint.
func (t *Token) Mint(ctx context.Context, signer *Signer, to common.Address, amount *big.Int) (*types.Transaction, error) {
	return t.Transact(ctx, signer, model.MethodMint, to, amount)
}
