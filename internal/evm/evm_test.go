package evm_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-eth-bridge/internal/contracts"
	"github.com/thep2p/go-eth-bridge/internal/evm"
	"github.com/thep2p/go-eth-bridge/internal/model"
	"github.com/thep2p/go-eth-bridge/internal/unittest"
	"github.com/thep2p/go-eth-bridge/internal/unittest/mocks"
)

// callTo matches a CallMsg addressed to contract whose calldata starts with the selector of method.
func callTo(contract common.Address, method []byte) interface{} {
	return mock.MatchedBy(func(msg ethereum.CallMsg) bool {
		return msg.To != nil && *msg.To == contract && len(msg.Data) >= 4 && string(msg.Data[:4]) == string(method)
	})
}

// expectSubmission sets up the gas, nonce and send expectations of one transaction and
// returns a pointer that receives the submitted transaction.
func expectSubmission(backend *mocks.MockBackend, from common.Address) **types.Transaction {
	var sent *types.Transaction
	backend.EXPECT().EstimateGas(mock.Anything, mock.MatchedBy(func(msg ethereum.CallMsg) bool {
		return msg.From == from
	})).Return(uint64(60_000), nil).Once()
	backend.EXPECT().SuggestGasPrice(mock.Anything).Return(big.NewInt(1_000_000_000), nil).Once()
	backend.EXPECT().PendingNonceAt(mock.Anything, from).Return(uint64(7), nil).Once()
	backend.EXPECT().SendTransaction(mock.Anything, mock.Anything).
		Run(func(_ context.Context, tx *types.Transaction) { sent = tx }).
		Return(nil).Once()
	return &sent
}

// TestTokenBalanceOf verifies that balanceOf is encoded for the holder and its output decoded.
func TestTokenBalanceOf(t *testing.T) {
	backend := mocks.NewMockBackend(t)
	tokenAddr := unittest.RandomAddress(t)
	holder := unittest.RandomAddress(t)

	method := contracts.ERC20ABI.Methods[model.MethodBalanceOf]
	out, err := method.Outputs.Pack(big.NewInt(1234))
	require.NoError(t, err)

	backend.EXPECT().CallContract(mock.Anything, callTo(tokenAddr, method.ID), (*big.Int)(nil)).
		RunAndReturn(func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
			args, err := method.Inputs.Unpack(msg.Data[4:])
			require.NoError(t, err)
			require.Equal(t, holder, args[0])
			return out, nil
		}).Once()

	token := evm.NewToken(unittest.Logger(t), tokenAddr, backend)
	balance, err := token.BalanceOf(context.Background(), holder)
	require.NoError(t, err)
	require.Equal(t, int64(1234), balance.Int64())
}

// TestCallNoCode verifies that an empty eth_call result is reported as missing contract code.
func TestCallNoCode(t *testing.T) {
	backend := mocks.NewMockBackend(t)
	backend.EXPECT().CallContract(mock.Anything, mock.Anything, (*big.Int)(nil)).Return([]byte{}, nil).Once()

	token := evm.NewToken(unittest.Logger(t), unittest.RandomAddress(t), backend)
	_, err := token.BalanceOf(context.Background(), unittest.RandomAddress(t))
	require.ErrorIs(t, err, evm.ErrNoCode)
}

// TestCallBackendError verifies that transport errors are wrapped and returned.
func TestCallBackendError(t *testing.T) {
	backend := mocks.NewMockBackend(t)
	rpcErr := errors.New("connection refused")
	backend.EXPECT().CallContract(mock.Anything, mock.Anything, (*big.Int)(nil)).Return(nil, rpcErr).Once()

	token := evm.NewToken(unittest.Logger(t), unittest.RandomAddress(t), backend)
	_, err := token.Allowance(context.Background(), unittest.RandomAddress(t), unittest.RandomAddress(t))
	require.ErrorIs(t, err, rpcErr)
	require.Contains(t, err.Error(), "call allowance")
}

// TestBridgeDeposit_EncodesAmount verifies that a deposit of 250 is sent to the bridge as
// deposit(uint256 250) in a transaction signed by the caller for the signer's chain.
func TestBridgeDeposit_EncodesAmount(t *testing.T) {
	backend := mocks.NewMockBackend(t)
	key := unittest.PrivateKeyFixture(t)
	signer := evm.NewSigner(key, big.NewInt(11155111))
	bridgeAddr := common.HexToAddress(model.DefaultBridgeAddress)

	sent := expectSubmission(backend, signer.Address())

	bridge := evm.NewBridge(unittest.Logger(t), bridgeAddr, backend)
	tx, err := bridge.Deposit(context.Background(), signer, big.NewInt(250))
	require.NoError(t, err)
	require.Equal(t, tx, *sent)

	require.Equal(t, bridgeAddr, *tx.To())
	require.Equal(t, uint64(7), tx.Nonce())
	require.Equal(t, uint64(60_000), tx.Gas())
	require.Equal(t, int64(11155111), tx.ChainId().Int64())
	require.Equal(t, signer.Address(), unittest.TxSender(t, tx))

	method, err := contracts.BridgeABI.MethodById(tx.Data())
	require.NoError(t, err)
	require.Equal(t, model.MethodDeposit, method.Name)
	args, err := method.Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	require.Equal(t, big.NewInt(250), args[0])
}

// TestTokenApprove verifies the approve encoding of spender and amount.
func TestTokenApprove(t *testing.T) {
	backend := mocks.NewMockBackend(t)
	signer := evm.NewSigner(unittest.PrivateKeyFixture(t), big.NewInt(81))
	spender := unittest.RandomAddress(t)

	expectSubmission(backend, signer.Address())

	token := evm.NewToken(unittest.Logger(t), unittest.RandomAddress(t), backend)
	tx, err := token.Approve(context.Background(), signer, spender, big.NewInt(100))
	require.NoError(t, err)

	method, err := contracts.ERC20ABI.MethodById(tx.Data())
	require.NoError(t, err)
	require.Equal(t, model.MethodApprove, method.Name)
	args, err := method.Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	require.Equal(t, spender, args[0])
	require.Equal(t, big.NewInt(100), args[1])
}

// TestTransact_SendFailure verifies that a rejected transaction surfaces as an error.
func TestTransact_SendFailure(t *testing.T) {
	backend := mocks.NewMockBackend(t)
	signer := evm.NewSigner(unittest.PrivateKeyFixture(t), big.NewInt(81))
	rejected := errors.New("insufficient funds for gas")

	backend.EXPECT().EstimateGas(mock.Anything, mock.Anything).Return(uint64(21_000), nil).Once()
	backend.EXPECT().SuggestGasPrice(mock.Anything).Return(big.NewInt(1), nil).Once()
	backend.EXPECT().PendingNonceAt(mock.Anything, signer.Address()).Return(uint64(0), nil).Once()
	backend.EXPECT().SendTransaction(mock.Anything, mock.Anything).Return(rejected).Once()

	token := evm.NewToken(unittest.Logger(t), unittest.RandomAddress(t), backend)
	tx, err := token.Mint(context.Background(), signer, signer.Address(), big.NewInt(100))
	require.ErrorIs(t, err, rejected)
	require.Nil(t, tx)
}

// TestTransact_EstimateFailure verifies that nothing is sent when gas estimation reverts.
func TestTransact_EstimateFailure(t *testing.T) {
	backend := mocks.NewMockBackend(t)
	signer := evm.NewSigner(unittest.PrivateKeyFixture(t), big.NewInt(81))
	revert := errors.New("execution reverted")

	backend.EXPECT().EstimateGas(mock.Anything, mock.Anything).Return(uint64(0), revert).Once()

	bridge := evm.NewBridge(unittest.Logger(t), unittest.RandomAddress(t), backend)
	_, err := bridge.Deposit(context.Background(), signer, big.NewInt(1))
	require.ErrorIs(t, err, revert)
}

// TestParseDepositBridge verifies decoding of indexed and non-indexed event fields.
func TestParseDepositBridge(t *testing.T) {
	event := contracts.BridgeABI.Events[model.EventDepositBridge]
	id := unittest.RandomHash(t)
	from := unittest.RandomAddress(t)
	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(250))
	require.NoError(t, err)

	log := types.Log{
		Topics: []common.Hash{event.ID, id, common.BytesToHash(from.Bytes())},
		Data:   data,
	}

	parsed, err := evm.ParseDepositBridge(log)
	require.NoError(t, err)
	require.Equal(t, id, parsed.ID)
	require.Equal(t, from, parsed.From)
	require.Equal(t, int64(250), parsed.Amount.Int64())

	t.Run("foreign log", func(t *testing.T) {
		log.Topics[0] = unittest.RandomHash(t)
		_, err := evm.ParseDepositBridge(log)
		require.ErrorIs(t, err, evm.ErrUnexpectedLog)
	})
}

// TestLiquidityBridgeReads verifies the relayer-side view calls.
func TestLiquidityBridgeReads(t *testing.T) {
	backend := mocks.NewMockBackend(t)
	addr := unittest.RandomAddress(t)
	depositor := unittest.RandomAddress(t)
	lp := contracts.LiquidityBridgeABI

	nonceOut, err := lp.Methods[model.MethodDepositNonce].Outputs.Pack(big.NewInt(3))
	require.NoError(t, err)
	depositorOut, err := lp.Methods[model.MethodGetDepositor].Outputs.Pack(depositor)
	require.NoError(t, err)
	amountOut, err := lp.Methods[model.MethodGetDepositAmount].Outputs.Pack(big.NewInt(40))
	require.NoError(t, err)

	backend.EXPECT().CallContract(mock.Anything, callTo(addr, lp.Methods[model.MethodDepositNonce].ID), (*big.Int)(nil)).
		Return(nonceOut, nil).Once()
	backend.EXPECT().CallContract(mock.Anything, callTo(addr, lp.Methods[model.MethodGetDepositor].ID), (*big.Int)(nil)).
		Return(depositorOut, nil).Once()
	backend.EXPECT().CallContract(mock.Anything, callTo(addr, lp.Methods[model.MethodGetDepositAmount].ID), (*big.Int)(nil)).
		Return(amountOut, nil).Once()

	bridge := evm.NewLiquidityBridge(unittest.Logger(t), addr, backend)
	ctx := context.Background()

	nonce, err := bridge.DepositNonce(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(3), nonce)

	got, err := bridge.Depositor(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, depositor, got)

	amount, err := bridge.DepositAmount(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, int64(40), amount.Int64())
}

// TestPrepareRelease_SignsWithoutSending verifies that a prepared release can be broadcast
// repeatedly as the same transaction.
func TestPrepareRelease_SignsWithoutSending(t *testing.T) {
	backend := mocks.NewMockBackend(t)
	signer := evm.NewSigner(unittest.PrivateKeyFixture(t), big.NewInt(81))
	to := unittest.RandomAddress(t)

	backend.EXPECT().EstimateGas(mock.Anything, mock.Anything).Return(uint64(60_000), nil).Once()
	backend.EXPECT().SuggestGasPrice(mock.Anything).Return(big.NewInt(1_000_000_000), nil).Once()
	backend.EXPECT().PendingNonceAt(mock.Anything, signer.Address()).Return(uint64(4), nil).Once()

	bridge := evm.NewLiquidityBridge(unittest.Logger(t), unittest.RandomAddress(t), backend)
	tx, err := bridge.PrepareRelease(context.Background(), signer, to, big.NewInt(90))
	require.NoError(t, err)
	require.Equal(t, uint64(4), tx.Nonce())
	require.Equal(t, signer.Address(), unittest.TxSender(t, tx))

	method, err := contracts.LiquidityBridgeABI.MethodById(tx.Data())
	require.NoError(t, err)
	require.Equal(t, model.MethodRelease, method.Name)

	var hashes []common.Hash
	backend.EXPECT().SendTransaction(mock.Anything, mock.Anything).
		Run(func(_ context.Context, sent *types.Transaction) { hashes = append(hashes, sent.Hash()) }).
		Return(nil).Times(2)
	require.NoError(t, bridge.Send(context.Background(), tx))
	require.NoError(t, bridge.Send(context.Background(), tx))
	require.Equal(t, []common.Hash{tx.Hash(), tx.Hash()}, hashes)
}

// TestSendErrorClasses verifies classification of node responses by their message.
func TestSendErrorClasses(t *testing.T) {
	require.True(t, evm.AlreadyKnown(errors.New("already known")))
	require.True(t, evm.AlreadyKnown(fmt.Errorf("send release: %w", errors.New("already known"))))
	require.False(t, evm.AlreadyKnown(errors.New("i/o timeout")))
	require.False(t, evm.AlreadyKnown(nil))

	require.True(t, evm.NonceUsed(fmt.Errorf("send: %w", errors.New("nonce too low"))))
	require.True(t, evm.NonceUsed(errors.New("nonce too low: address 0x01, tx: 3 state: 4")))

	require.True(t, evm.Rejected(errors.New("insufficient funds for gas * price + value: address 0x01 have 0 want 80000000000000")))
	require.True(t, evm.Rejected(errors.New("replacement transaction underpriced")))
	require.True(t, evm.Rejected(errors.New("intrinsic gas too low")))
	require.False(t, evm.Rejected(errors.New("connection refused")))
	require.False(t, evm.Rejected(context.DeadlineExceeded))
}
