package page

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/thep2p/go-eth-bridge/internal/evm"
)

const (
	// ApproveAmount is the allowance granted to the bridge by Approve.
	ApproveAmount = 100
	// MintAmount is the number of tokens Mint creates for the wallet.
	MintAmount = 100
)

// Action names a state-changing page action.
type Action string

const (
	ActionApprove Action = "approve"
	ActionMint    Action = "mint"
	ActionDeposit Action = "deposit"
)

// Outcome reports how an action settled. Tx is nil when Err is set.
type Outcome struct {
	Action Action
	Tx     *types.Transaction
	Err    error
}

// SettledHook observes the outcome of every action.
type SettledHook func(Outcome)

// Approve grants the bridge an allowance of exactly ApproveAmount on the
// chain-A token. Balances are not consulted. Failures are logged only.
func (p *Page) Approve(ctx context.Context) {
	p.submit(ctx, ActionApprove, func(signer *evm.Signer) (*types.Transaction, error) {
		return p.tokens[tokenKey{p.dep.ChainA.ID, p.dep.TokenA}].Approve(ctx, signer, p.dep.Bridge, big.NewInt(ApproveAmount))
	})
}

// Mint creates MintAmount chain-A tokens for the connected wallet. Only the
// token owner may mint; for anyone else the transaction fails and the
// failure is logged.
func (p *Page) Mint(ctx context.Context) {
	p.submit(ctx, ActionMint, func(signer *evm.Signer) (*types.Transaction, error) {
		return p.tokens[tokenKey{p.dep.ChainA.ID, p.dep.TokenA}].Mint(ctx, signer, signer.Address(), big.NewInt(MintAmount))
	})
}

// SetDepositAmount stores the amount typed by the user. Input that is not a
// number, or is negative, becomes zero; fractions are truncated.
func (p *Page) SetDepositAmount(input string) {
	amount := ParseAmount(input)
	if !p.post(func(s *State) { s.DepositAmount = amount }) {
		p.logger.Warn().Str("input", input).Msg("deposit amount ignored, page not mounted")
	}
}

// maxAmountDigits is the decimal width of the largest uint256.
const maxAmountDigits = 78

// ParseAmount coerces user input into a non-negative integer amount. Input that is not a
// number, is negative, or does not fit in a uint256 becomes zero.
func ParseAmount(input string) *big.Int {
	d, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil || d.IsNegative() {
		return zero()
	}
	// integer digits are bounded before BigInt so a huge exponent is never expanded.
	intDigits := int64(d.NumDigits()) + int64(d.Exponent())
	if intDigits <= 0 || intDigits > maxAmountDigits {
		return zero()
	}
	v := d.BigInt()
	if v.BitLen() > 256 {
		return zero()
	}
	return v
}

// Deposit submits deposit(amount) to the bridge on chain A with the stored
// amount. The deposit phase moves to submitting and then to one of the
// settled phases; balances are left untouched.
func (p *Page) Deposit(ctx context.Context) {
	var amount *big.Int
	if !p.post(func(s *State) {
		amount = new(big.Int).Set(s.DepositAmount)
		s.Deposit = DepositSubmitting
	}) {
		p.logger.Warn().Msg("deposit ignored, page not mounted")
		return
	}

	out := p.submit(ctx, ActionDeposit, func(signer *evm.Signer) (*types.Transaction, error) {
		return p.bridge.Deposit(ctx, signer, amount)
	})

	phase := DepositSettledSuccess
	if out.Err != nil {
		phase = DepositSettledError
	}
	p.post(func(s *State) { s.Deposit = phase })
}

// submit signs with the wallet for chain A, runs send and reports the outcome.
func (p *Page) submit(ctx context.Context, action Action, send func(*evm.Signer) (*types.Transaction, error)) Outcome {
	log := p.logger.With().Str("action", string(action)).Logger()
	out := Outcome{Action: action}

	signer, err := p.wallet.Signer(p.dep.ChainA.ChainID())
	if err == nil {
		out.Tx, out.Err = send(signer)
	} else {
		out.Err = err
	}

	if out.Err != nil {
		out.Tx = nil
		log.Error().Err(out.Err).Msg("action failed")
	} else {
		log.Info().Str("tx", out.Tx.Hash().Hex()).Msg("action submitted")
	}

	if p.cfg.settled != nil {
		p.cfg.settled(out)
	}
	return out
}

func zero() *big.Int {
	return new(big.Int)
}
