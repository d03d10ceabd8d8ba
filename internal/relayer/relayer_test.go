package relayer_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-eth-bridge/internal/contracts"
	"github.com/thep2p/go-eth-bridge/internal/evm"
	"github.com/thep2p/go-eth-bridge/internal/model"
	"github.com/thep2p/go-eth-bridge/internal/relayer"
	"github.com/thep2p/go-eth-bridge/internal/unittest"
	"github.com/thep2p/go-eth-bridge/internal/unittest/mocks"
	"github.com/thep2p/go-eth-bridge/internal/wallet"
)

type deposit struct {
	from   common.Address
	amount int64
}

type release struct {
	to     common.Address
	amount *big.Int
}

// fakeBridge is the on-chain state of one liquidity bridge, served through a mocked backend.
type fakeBridge struct {
	t       *testing.T
	backend *mocks.MockBackend
	address common.Address

	mu         sync.Mutex
	reserve    int64
	deposits   []deposit
	released   []release
	broadcasts []common.Hash
	sendErrs   []error
}

func newFakeBridge(t *testing.T, reserve int64) *fakeBridge {
	f := &fakeBridge{
		t:       t,
		backend: mocks.NewMockBackend(t),
		address: unittest.RandomAddress(t),
		reserve: reserve,
	}
	f.backend.EXPECT().CallContract(mock.Anything, mock.Anything, (*big.Int)(nil)).RunAndReturn(f.call).Maybe()
	f.backend.EXPECT().EstimateGas(mock.Anything, mock.Anything).Return(uint64(80_000), nil).Maybe()
	f.backend.EXPECT().SuggestGasPrice(mock.Anything).Return(big.NewInt(1_000_000_000), nil).Maybe()
	f.backend.EXPECT().PendingNonceAt(mock.Anything, mock.Anything).Return(uint64(0), nil).Maybe()
	f.backend.EXPECT().SendTransaction(mock.Anything, mock.Anything).RunAndReturn(f.send).Maybe()
	return f
}

func (f *fakeBridge) call(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	method, err := contracts.LiquidityBridgeABI.MethodById(msg.Data[:4])
	require.NoError(f.t, err)
	args, err := method.Inputs.Unpack(msg.Data[4:])
	require.NoError(f.t, err)

	switch method.Name {
	case model.MethodDepositNonce:
		return method.Outputs.Pack(big.NewInt(int64(len(f.deposits))))
	case model.MethodGetReserve:
		return method.Outputs.Pack(big.NewInt(f.reserve))
	case model.MethodGetDepositAmount:
		return method.Outputs.Pack(big.NewInt(f.deposits[args[0].(*big.Int).Int64()].amount))
	case model.MethodGetDepositor:
		return method.Outputs.Pack(f.deposits[args[0].(*big.Int).Int64()].from)
	default:
		f.t.Fatalf("unexpected call to %s", method.Name)
		return nil, nil
	}
}

func (f *fakeBridge) send(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.broadcasts = append(f.broadcasts, tx.Hash())
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		return err
	}

	method, err := contracts.LiquidityBridgeABI.MethodById(tx.Data()[:4])
	require.NoError(f.t, err)
	require.Equal(f.t, model.MethodRelease, method.Name)
	args, err := method.Inputs.Unpack(tx.Data()[4:])
	require.NoError(f.t, err)
	f.released = append(f.released, release{to: args[0].(common.Address), amount: args[1].(*big.Int)})
	return nil
}

func (f *fakeBridge) deposit(from common.Address, amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deposits = append(f.deposits, deposit{from: from, amount: amount})
}

func (f *fakeBridge) failSends(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendErrs = append(f.sendErrs, errs...)
}

func (f *fakeBridge) releases() []release {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]release(nil), f.released...)
}

func (f *fakeBridge) sent() []common.Hash {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]common.Hash(nil), f.broadcasts...)
}

func (f *fakeBridge) side(t *testing.T, name string, chainID int64) relayer.Side {
	return relayer.Side{
		Name:    name,
		ChainID: big.NewInt(chainID),
		Bridge:  evm.NewLiquidityBridge(unittest.Logger(t), f.address, f.backend),
	}
}

type fixture struct {
	src, dst  *fakeBridge
	store     *relayer.Store
	publisher *mocks.MockPublisher
	relayer   *relayer.Relayer
}

func newFixture(t *testing.T, maxRetries uint64) *fixture {
	ctx := context.Background()
	src := newFakeBridge(t, 1000)
	dst := newFakeBridge(t, 1000)

	store, err := relayer.OpenStore("")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	w := wallet.New(unittest.Logger(t), wallet.HexKey(unittest.PrivateKeyHex(unittest.PrivateKeyFixture(t))))
	require.NoError(t, w.Connect(ctx))

	publisher := mocks.NewMockPublisher(t)
	r, err := relayer.New(unittest.Logger(t), relayer.Config{
		PollInterval:  10 * time.Millisecond,
		Fee:           decimal.Zero,
		MaxRetries:    maxRetries,
		RetryInterval: time.Millisecond,
	}, src.side(t, "sepolia", 11155111), dst.side(t, "shibuya", 81), w, store, publisher)
	require.NoError(t, err)

	return &fixture{src: src, dst: dst, store: store, publisher: publisher, relayer: r}
}

// TestPoll_FirstScanStartsAtCurrentNonce verifies that deposits made before the
// relayer first saw a side are not released.
func TestPoll_FirstScanStartsAtCurrentNonce(t *testing.T) {
	f := newFixture(t, 1)
	f.src.deposit(unittest.RandomAddress(t), 100)

	require.NoError(t, f.relayer.Poll(context.Background()))
	require.Empty(t, f.dst.releases())

	next, ok, err := f.store.Cursor("sepolia")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(1), next)

	next, ok, err = f.store.Cursor("shibuya")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(0), next)
}

// TestPoll_RelaysEveryNewDeposit verifies that all deposits made since the last
// poll are released on the opposite side with the quoted amount.
func TestPoll_RelaysEveryNewDeposit(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	require.NoError(t, f.relayer.Poll(ctx))

	alice := unittest.RandomAddress(t)
	bob := unittest.RandomAddress(t)
	f.src.deposit(alice, 100)
	f.src.deposit(bob, 50)

	var events []relayer.ReleaseEvent
	f.publisher.EXPECT().Publish(mock.Anything, mock.Anything).
		Run(func(_ context.Context, e relayer.ReleaseEvent) { events = append(events, e) }).
		Return(nil).Times(2)

	require.NoError(t, f.relayer.Poll(ctx))

	// 100·1000/1100 and 50·1000/1050, floored
	releases := f.dst.releases()
	require.Len(t, releases, 2)
	require.Equal(t, alice, releases[0].to)
	require.Equal(t, int64(90), releases[0].amount.Int64())
	require.Equal(t, bob, releases[1].to)
	require.Equal(t, int64(47), releases[1].amount.Int64())
	require.Empty(t, f.src.releases())

	require.Len(t, events, 2)
	require.Equal(t, "sepolia", events[0].Source)
	require.Equal(t, "shibuya", events[0].Destination)
	require.Equal(t, uint64(0), events[0].Nonce)
	require.Equal(t, "100", events[0].AmountIn)
	require.Equal(t, "90", events[0].AmountOut)
	require.Equal(t, uint64(1), events[1].Nonce)

	next, _, err := f.store.Cursor("sepolia")
	require.NoError(t, err)
	require.Equal(t, uint64(2), next)

	// nothing new, nothing released
	require.NoError(t, f.relayer.Poll(ctx))
	require.Len(t, f.dst.releases(), 2)
}

// TestPoll_RelaysBothDirections verifies that deposits on the destination side are
// released on the source side.
func TestPoll_RelaysBothDirections(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	require.NoError(t, f.relayer.Poll(ctx))

	carol := unittest.RandomAddress(t)
	f.dst.deposit(carol, 100)
	f.publisher.EXPECT().Publish(mock.Anything, mock.MatchedBy(func(e relayer.ReleaseEvent) bool {
		return e.Source == "shibuya" && e.Destination == "sepolia"
	})).Return(nil).Once()

	require.NoError(t, f.relayer.Poll(ctx))
	releases := f.src.releases()
	require.Len(t, releases, 1)
	require.Equal(t, carol, releases[0].to)
}

// TestPoll_RetriesTransientFailure verifies that a failed release is retried within the
// same poll.
func TestPoll_RetriesTransientFailure(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	require.NoError(t, f.relayer.Poll(ctx))

	f.src.deposit(unittest.RandomAddress(t), 100)
	f.dst.failSends(errors.New("connection reset by peer"), errors.New("connection reset by peer"))
	f.publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, f.relayer.Poll(ctx))
	require.Len(t, f.dst.releases(), 1)

	// every attempt rebroadcasts the one signed transaction
	sent := f.dst.sent()
	require.Len(t, sent, 3)
	require.Equal(t, sent[0], sent[1])
	require.Equal(t, sent[0], sent[2])
}

// TestPoll_AcceptedBroadcastIsNotPaidTwice verifies that a release the node accepted but
// reported as failed is treated as delivered on the retry instead of signed again.
func TestPoll_AcceptedBroadcastIsNotPaidTwice(t *testing.T) {
	cases := map[string]error{
		"already known": errors.New("already known"),
		"already mined": errors.New("nonce too low: address 0x01, tx: 0 state: 1"),
	}
	for name, retryErr := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, 3)
			ctx := context.Background()
			require.NoError(t, f.relayer.Poll(ctx))

			f.src.deposit(unittest.RandomAddress(t), 100)
			f.dst.failSends(errors.New("i/o timeout"), retryErr)
			var event relayer.ReleaseEvent
			f.publisher.EXPECT().Publish(mock.Anything, mock.Anything).
				Run(func(_ context.Context, e relayer.ReleaseEvent) { event = e }).
				Return(nil).Once()

			require.NoError(t, f.relayer.Poll(ctx))

			sent := f.dst.sent()
			require.Len(t, sent, 2)
			require.Equal(t, sent[0], sent[1])
			require.Equal(t, sent[0].Hex(), event.TxHash)

			next, _, err := f.store.Cursor("sepolia")
			require.NoError(t, err)
			require.Equal(t, uint64(1), next)

			// nothing left to relay: no fresh transaction is signed
			require.NoError(t, f.relayer.Poll(ctx))
			require.Len(t, f.dst.sent(), 2)
		})
	}
}

// TestPoll_RejectedReleaseIsNotRetried verifies that a release the node refuses outright is
// not rebroadcast within the poll and the deposit stays pending.
func TestPoll_RejectedReleaseIsNotRetried(t *testing.T) {
	cases := map[string]error{
		"insufficient funds": errors.New("insufficient funds for gas * price + value: address 0x01 have 0 want 80000000000000"),
		"nonce too low":      errors.New("nonce too low"),
		"underpriced":        errors.New("transaction underpriced: tip needed 1, tip permitted 0"),
	}
	for name, rejectErr := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, 5)
			ctx := context.Background()
			require.NoError(t, f.relayer.Poll(ctx))

			f.src.deposit(unittest.RandomAddress(t), 100)
			f.dst.failSends(rejectErr)

			err := f.relayer.Poll(ctx)
			require.ErrorContains(t, err, "relay deposit 0 of sepolia")
			require.Len(t, f.dst.sent(), 1)
			require.Empty(t, f.dst.releases())

			next, _, err := f.store.Cursor("sepolia")
			require.NoError(t, err)
			require.Equal(t, uint64(0), next)
		})
	}
}

// TestPoll_ExhaustedRetriesKeepCursor verifies that a deposit whose release keeps failing
// is retried on the next poll.
func TestPoll_ExhaustedRetriesKeepCursor(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	require.NoError(t, f.relayer.Poll(ctx))

	f.src.deposit(unittest.RandomAddress(t), 100)
	f.dst.failSends(errors.New("rpc down"), errors.New("rpc down"))

	err := f.relayer.Poll(ctx)
	require.ErrorContains(t, err, "relay deposit 0 of sepolia")
	require.Empty(t, f.dst.releases())

	next, _, err := f.store.Cursor("sepolia")
	require.NoError(t, err)
	require.Equal(t, uint64(0), next)

	f.publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Once()
	require.NoError(t, f.relayer.Poll(ctx))
	require.Len(t, f.dst.releases(), 1)
}

// TestPoll_PublishFailureAdvancesCursor verifies that an unpublished event does not
// cause the deposit to be released twice.
func TestPoll_PublishFailureAdvancesCursor(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	require.NoError(t, f.relayer.Poll(ctx))

	f.src.deposit(unittest.RandomAddress(t), 100)
	f.publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	require.NoError(t, f.relayer.Poll(ctx))
	require.NoError(t, f.relayer.Poll(ctx))
	require.Len(t, f.dst.releases(), 1)
}

// TestPoll_ZeroQuoteIsSkipped verifies that dust deposits are consumed without a release.
func TestPoll_ZeroQuoteIsSkipped(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.dst.reserve = 0
	require.NoError(t, f.relayer.Poll(ctx))

	f.src.deposit(unittest.RandomAddress(t), 100)
	require.NoError(t, f.relayer.Poll(ctx))
	require.Empty(t, f.dst.releases())

	next, _, err := f.store.Cursor("sepolia")
	require.NoError(t, err)
	require.Equal(t, uint64(1), next)
}

// TestStartAndStop verifies the lifecycle of the poll loop.
func TestStartAndStop(t *testing.T) {
	f := newFixture(t, 1)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, f.relayer.Start(ctx))
	require.ErrorIs(t, f.relayer.Start(ctx), relayer.ErrAlreadyStarted)
	unittest.RequireReady(t, f.relayer)

	alice := unittest.RandomAddress(t)
	published := make(chan relayer.ReleaseEvent, 1)
	f.publisher.EXPECT().Publish(mock.Anything, mock.Anything).
		Run(func(_ context.Context, e relayer.ReleaseEvent) { published <- e }).
		Return(nil).Once()

	// the first poll initialises the cursors before the deposit lands
	require.Eventually(t, func() bool {
		_, ok, err := f.store.Cursor("shibuya")
		return err == nil && ok
	}, time.Second, 5*time.Millisecond)
	f.src.deposit(alice, 100)

	select {
	case e := <-published:
		require.Equal(t, alice.Hex(), e.Depositor)
	case <-time.After(time.Second):
		require.Fail(t, "deposit was not relayed")
	}

	cancel()
	unittest.RequireDone(t, f.relayer)
}

// TestNewRejectsSameSideNames verifies that the two cursors cannot collide.
func TestNewRejectsSameSideNames(t *testing.T) {
	store, err := relayer.OpenStore("")
	require.NoError(t, err)
	defer store.Close()

	side := relayer.Side{Name: "local", ChainID: big.NewInt(1337)}
	_, err = relayer.New(unittest.Logger(t), relayer.Config{PollInterval: time.Second}, side, side, nil, store, nil)
	require.Error(t, err)
}
