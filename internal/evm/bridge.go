package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/thep2p/go-eth-bridge/internal/contracts"
	"github.com/thep2p/go-eth-bridge/internal/model"
)

// ErrUnexpectedLog is returned when a log is not a DepositBridge event.
var ErrUnexpectedLog = errors.New("log is not a DepositBridge event")

// DepositBridgeEvent is the decoded form of the DepositBridge log.
type DepositBridgeEvent struct {
	ID     common.Hash
	From   common.Address
	Amount *big.Int
	Raw    types.Log
}

// Bridge is a binding for the GMP bridge contract.
type Bridge struct {
	*Contract
}

// NewBridge binds the bridge contract at address.
func NewBridge(logger zerolog.Logger, address common.Address, backend Backend) *Bridge {
	return &Bridge{Contract: NewContract(logger, address, contracts.BridgeABI, backend)}
}

// Deposit locks amount tokens of the sender in the bridge. The sender must
// have approved the bridge beforehand.
func (b *Bridge) Deposit(ctx context.Context, signer *Signer, amount *big.Int) (*types.Transaction, error) {
	return b.Transact(ctx, signer, model.MethodDeposit, amount)
}

// ParseDepositBridge decodes a DepositBridge log emitted by any bridge deployment.
func ParseDepositBridge(log types.Log) (*DepositBridgeEvent, error) {
	event := contracts.BridgeABI.Events[model.EventDepositBridge]
	if len(log.Topics) != 3 || log.Topics[0] != event.ID {
		return nil, ErrUnexpectedLog
	}

	values, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s data: %w", event.Name, err)
	}
	amount, err := bigOutput(event.Name, values)
	if err != nil {
		return nil, err
	}

	return &DepositBridgeEvent{
		ID:     log.Topics[1],
		From:   common.BytesToAddress(log.Topics[2].Bytes()),
		Amount: amount,
		Raw:    log,
	}, nil
}
