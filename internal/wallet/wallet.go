// Package wallet holds the signing account of the bridge client and reports
// its connection status to observers.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"github.com/thep2p/go-eth-bridge/internal/evm"
)

// ErrNotConnected is returned when a signer is requested from a disconnected wallet.
var ErrNotConnected = errors.New("wallet not connected")

// Status is the connection status of a wallet.
type Status int

const (
	Disconnected Status = iota
	Connecting
	Connected
)

func (s Status) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State is a snapshot of the wallet. Address is the zero address unless
// Status is Connected.
type State struct {
	Status  Status
	Address common.Address
}

// Wallet loads a key from a KeySource on Connect and hands out signers for it.
type Wallet struct {
	logger zerolog.Logger
	source KeySource

	mu    sync.Mutex
	state State
	key   *ecdsa.PrivateKey
	subs  map[chan State]struct{}
}

// New returns a disconnected wallet.
func New(logger zerolog.Logger, source KeySource) *Wallet {
	return &Wallet{
		logger: logger.With().Str("component", "wallet").Logger(),
		source: source,
		subs:   make(map[chan State]struct{}),
	}
}

// Connect loads the key. The wallet passes through Connecting and ends up
// Connected, or Disconnected if the key cannot be loaded.
func (w *Wallet) Connect(ctx context.Context) error {
	w.mu.Lock()
	if w.state.Status != Disconnected {
		w.mu.Unlock()
		return nil
	}
	w.setLocked(State{Status: Connecting})
	w.mu.Unlock()

	key, err := w.source.Load(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.setLocked(State{Status: Disconnected})
		w.logger.Warn().Err(err).Msg("wallet connection failed")
		return fmt.Errorf("connect wallet: %w", err)
	}

	w.key = key
	w.setLocked(State{Status: Connected, Address: crypto.PubkeyToAddress(key.PublicKey)})
	w.logger.Info().Str("address", w.state.Address.Hex()).Msg("wallet connected")
	return nil
}

// Disconnect forgets the key.
func (w *Wallet) Disconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Status == Disconnected {
		return
	}
	w.key = nil
	w.setLocked(State{Status: Disconnected})
	w.logger.Info().Msg("wallet disconnected")
}

// State returns the current state.
func (w *Wallet) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Subscribe returns a channel that receives the current state immediately and
// every later state. A slow reader only sees the latest state. The returned
// function cancels the subscription and closes the channel.
func (w *Wallet) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	w.mu.Lock()
	w.subs[ch] = struct{}{}
	ch <- w.state
	w.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			delete(w.subs, ch)
			close(ch)
		})
	}
}

// Signer returns a signer for chainID.
func (w *Wallet) Signer(chainID *big.Int) (*evm.Signer, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Status != Connected {
		return nil, ErrNotConnected
	}
	return evm.NewSigner(w.key, chainID), nil
}

// setLocked stores s and notifies subscribers. w.mu must be held.
func (w *Wallet) setLocked(s State) {
	w.state = s
	for ch := range w.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
