package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/thep2p/go-eth-bridge/internal/utils"
)

// Contract binds a parsed ABI to a deployed address on one backend.
type Contract struct {
	logger  zerolog.Logger
	address common.Address
	abi     abi.ABI
	backend Backend
}

// NewContract returns a binding for the contract at address.
func NewContract(logger zerolog.Logger, address common.Address, parsed abi.ABI, backend Backend) *Contract {
	return &Contract{
		logger:  logger.With().Str("component", "contract").Str("address", address.Hex()).Logger(),
		address: address,
		abi:     parsed,
		backend: backend,
	}
}

// Address returns the contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

// ABI returns the interface the contract is encoded with.
func (c *Contract) ABI() abi.ABI {
	return c.abi
}

// Call invokes a read-only method at the latest block and returns the
// decoded outputs.
func (c *Contract) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &c.address, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("call %s on %s: %w", method, c.address.Hex(), ErrNoCode)
	}

	values, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

// Transact encodes method with args, signs it as a legacy transaction and
// submits it. It returns once the node accepted the transaction; it does not
// wait for inclusion.
func (c *Contract) Transact(ctx context.Context, signer *Signer, method string, args ...interface{}) (*types.Transaction, error) {
	tx, err := c.Prepare(ctx, signer, method, args...)
	if err != nil {
		return nil, err
	}
	if err := c.Send(ctx, tx); err != nil {
		return nil, fmt.Errorf("send %s: %w", method, err)
	}
	return tx, nil
}

// Prepare encodes method with args and signs it as a legacy transaction at
// the signer's pending nonce without submitting it. Sending the returned
// transaction more than once can only ever execute it once.
func (c *Contract) Prepare(ctx context.Context, signer *Signer, method string, args ...interface{}) (*types.Transaction, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	from := signer.Address()
	gas, err := c.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &c.address, Data: data})
	if err != nil {
		return nil, fmt.Errorf("estimate gas for %s: %w", method, err)
	}
	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}
	nonce, err := c.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("pending nonce of %s: %w", from.Hex(), err)
	}

	return signer.Sign(types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &c.address,
		Value:    new(big.Int),
		Data:     data,
	}))
}

// Send submits a transaction built by Prepare.
func (c *Contract) Send(ctx context.Context, tx *types.Transaction) error {
	if err := c.backend.SendTransaction(ctx, tx); err != nil {
		return err
	}

	c.logger.Info().
		Str("selector", utils.Selector(tx.Data())).
		Str("tx", tx.Hash().Hex()).
		Uint64("nonce", tx.Nonce()).
		Uint64("gas", tx.Gas()).
		Msg("transaction submitted")
	return nil
}

func bigOutput(method string, values []interface{}) (*big.Int, error) {
	if len(values) != 1 {
		return nil, fmt.Errorf("%s: expected 1 output, got %d", method, len(values))
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected output type %T", method, values[0])
	}
	return v, nil
}

func addressOutput(method string, values []interface{}) (common.Address, error) {
	if len(values) != 1 {
		return common.Address{}, fmt.Errorf("%s: expected 1 output, got %d", method, len(values))
	}
	v, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: unexpected output type %T", method, values[0])
	}
	return v, nil
}
