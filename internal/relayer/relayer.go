// Package relayer pays out deposits made on one side of the liquidity bridge
// from the pool on the other side.
//
// Every deposit is numbered by its bridge. The relayer remembers, per side,
// the next nonce it has to serve and catches up with the bridge's deposit
// nonce on every poll. The released amount is quoted by the constant-product
// formula over the two pool reserves.
package relayer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/thep2p/go-eth-bridge/internal/amm"
	"github.com/thep2p/go-eth-bridge/internal/evm"
)

// ErrAlreadyStarted is returned by Start when the relayer is already running.
var ErrAlreadyStarted = errors.New("relayer already started")

// Side is one end of the liquidity bridge.
type Side struct {
	// Name keys the side's cursor in the store. It must be unique per relayer.
	Name    string
	ChainID *big.Int
	Bridge  *evm.LiquidityBridge
}

// SignerSource hands out transaction signers. *wallet.Wallet implements it.
type SignerSource interface {
	Signer(chainID *big.Int) (*evm.Signer, error)
}

// Config tunes the relayer.
type Config struct {
	PollInterval  time.Duration
	Fee           decimal.Decimal
	MaxRetries    uint64
	RetryInterval time.Duration
}

// Relayer watches both sides of a liquidity bridge and releases every new
// deposit on the opposite side.
type Relayer struct {
	logger    zerolog.Logger
	cfg       Config
	a, b      Side
	signers   SignerSource
	store     *Store
	publisher Publisher

	mu      sync.Mutex
	started bool
	ready   chan struct{}
	done    chan struct{}
}

// New creates a relayer between sides a and b. It does not own store or publisher.
func New(logger zerolog.Logger, cfg Config, a, b Side, signers SignerSource, store *Store, publisher Publisher) (*Relayer, error) {
	if a.Name == b.Name {
		return nil, fmt.Errorf("both sides are named %q", a.Name)
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 1
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}

	return &Relayer{
		logger:    logger.With().Str("component", "relayer").Logger(),
		cfg:       cfg,
		a:         a,
		b:         b,
		signers:   signers,
		store:     store,
		publisher: publisher,
		ready:     make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Start runs the poll loop until ctx is cancelled.
func (r *Relayer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true

	go r.run(ctx)
	return nil
}

// Ready is closed once the poll loop runs.
func (r *Relayer) Ready() <-chan struct{} {
	return r.ready
}

// Done is closed once the poll loop has exited.
func (r *Relayer) Done() <-chan struct{} {
	return r.done
}

func (r *Relayer) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	r.logger.Info().
		Str("a", r.a.Name).
		Str("b", r.b.Name).
		Dur("poll_interval", r.cfg.PollInterval).
		Msg("relayer started")
	close(r.ready)

	for {
		if err := r.Poll(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error().Err(err).Msg("poll failed")
		}

		select {
		case <-ctx.Done():
			r.logger.Info().Msg("relayer stopped")
			return
		case <-ticker.C:
		}
	}
}

// Poll relays the deposits accepted on either side since the last poll.
// A side seen for the first time starts at its current deposit nonce, so
// older deposits are never paid twice by a fresh store.
func (r *Relayer) Poll(ctx context.Context) error {
	return errors.Join(
		r.catchUp(ctx, r.a, r.b),
		r.catchUp(ctx, r.b, r.a),
	)
}

func (r *Relayer) catchUp(ctx context.Context, from, to Side) error {
	current, err := from.Bridge.DepositNonce(ctx)
	if err != nil {
		return fmt.Errorf("read deposit nonce of %s: %w", from.Name, err)
	}

	next, ok, err := r.store.Cursor(from.Name)
	if err != nil {
		return err
	}
	if !ok {
		r.logger.Info().Str("side", from.Name).Uint64("nonce", current).Msg("starting at current deposit nonce")
		return r.store.SetCursor(from.Name, current)
	}

	for ; next < current; next++ {
		if err := r.relay(ctx, from, to, next); err != nil {
			return fmt.Errorf("relay deposit %d of %s: %w", next, from.Name, err)
		}
		if err := r.store.SetCursor(from.Name, next+1); err != nil {
			return err
		}
	}
	return nil
}

func (r *Relayer) relay(ctx context.Context, from, to Side, nonce uint64) error {
	lg := r.logger.With().Str("from", from.Name).Str("to", to.Name).Uint64("nonce", nonce).Logger()

	amountIn, err := from.Bridge.DepositAmount(ctx, nonce)
	if err != nil {
		return fmt.Errorf("read deposit amount: %w", err)
	}
	depositor, err := from.Bridge.Depositor(ctx, nonce)
	if err != nil {
		return fmt.Errorf("read depositor: %w", err)
	}
	reserveIn, err := from.Bridge.Reserve(ctx)
	if err != nil {
		return fmt.Errorf("read reserve of %s: %w", from.Name, err)
	}
	reserveOut, err := to.Bridge.Reserve(ctx)
	if err != nil {
		return fmt.Errorf("read reserve of %s: %w", to.Name, err)
	}

	amountOut := amm.Quote(amountIn, reserveIn, reserveOut, r.cfg.Fee)
	if amountOut.Sign() <= 0 {
		lg.Warn().Str("amount_in", amountIn.String()).Msg("deposit quotes to nothing, skipping release")
		return nil
	}

	tx, err := r.release(ctx, lg, to, depositor, amountOut)
	if err != nil {
		return err
	}
	lg.Info().
		Str("depositor", depositor.Hex()).
		Str("amount_in", amountIn.String()).
		Str("amount_out", amountOut.String()).
		Str("tx", tx.Hash().Hex()).
		Msg("deposit released")

	event := ReleaseEvent{
		Source:      from.Name,
		Destination: to.Name,
		Nonce:       nonce,
		Depositor:   depositor.Hex(),
		AmountIn:    amountIn.String(),
		AmountOut:   amountOut.String(),
		TxHash:      tx.Hash().Hex(),
		Time:        time.Now().UTC(),
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		// the release is on chain; a lost event must not replay it
		lg.Warn().Err(err).Msg("failed to publish release event")
	}
	return nil
}

// release signs the release transaction once and broadcasts it, resending
// the same signed transaction on transient failures with exponential backoff
// up to MaxRetries attempts. Every attempt carries the same nonce, so a
// broadcast that was accepted but reported as failed cannot pay out twice.
func (r *Relayer) release(ctx context.Context, lg zerolog.Logger, to Side, depositor common.Address, amount *big.Int) (*types.Transaction, error) {
	signer, err := r.signers.Signer(to.ChainID)
	if err != nil {
		return nil, fmt.Errorf("signer for %s: %w", to.Name, err)
	}
	tx, err := to.Bridge.PrepareRelease(ctx, signer, depositor, amount)
	if err != nil {
		return nil, fmt.Errorf("prepare release on %s: %w", to.Name, err)
	}
	lg = lg.With().Str("tx", tx.Hash().Hex()).Uint64("tx_nonce", tx.Nonce()).Logger()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.cfg.RetryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, r.cfg.MaxRetries-1), ctx)

	attempt := 0
	err = backoff.RetryNotify(func() error {
		attempt++
		err := to.Bridge.Send(ctx, tx)
		switch {
		case err == nil:
			return nil
		case evm.AlreadyKnown(err):
			lg.Debug().Int("attempt", attempt).Msg("release already in the pool")
			return nil
		case attempt > 1 && evm.NonceUsed(err):
			// an earlier broadcast of this transaction has been mined
			lg.Debug().Int("attempt", attempt).Msg("release nonce consumed by earlier broadcast")
			return nil
		case evm.Rejected(err):
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, next time.Duration) {
		lg.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", next).Msg("release broadcast failed, retrying")
	})
	if err != nil {
		return nil, fmt.Errorf("release on %s: %w", to.Name, err)
	}
	return tx, nil
}
