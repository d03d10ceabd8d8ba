// Package page is the headless view model of the bridge page. It keeps the
// pool and user balances of both chains up to date and submits the approve,
// mint and deposit transactions on behalf of the connected wallet.
//
// A single loop goroutine owns every write to the view state. Balance queries
// run concurrently and hand their results to the loop; actions hand their
// state changes to the loop as well. Readers take copies with Snapshot.
package page

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/thep2p/go-eth-bridge/internal/evm"
	"github.com/thep2p/go-eth-bridge/internal/wallet"
)

// ErrNotMounted is returned by WaitIdle when the page is not mounted.
var ErrNotMounted = errors.New("page not mounted")

type tokenKey struct {
	chainID uint64
	address common.Address
}

type update struct {
	fn   func(*State)
	done chan struct{}
}

// Page is the bridge page view model.
type Page struct {
	logger zerolog.Logger
	dep    Deployment
	wallet *wallet.Wallet
	cfg    config

	tokens map[tokenKey]*evm.Token
	bridge *evm.Bridge

	mu    sync.RWMutex
	state State

	// loop-owned
	keys    [slotCount]*QueryKey
	gen     [slotCount]uint64
	waiters []chan struct{}

	results chan queryResult
	updates chan update
	idleReq chan chan struct{}

	mountOnce   sync.Once
	unmountOnce sync.Once
	cancel      context.CancelFunc
	inflight    sync.WaitGroup
	ready       chan struct{}
	done        chan struct{}
}

// New builds a page for dep. backends must hold a backend for both chains of
// the deployment, keyed by chain id.
func New(logger zerolog.Logger, dep Deployment, w *wallet.Wallet, backends map[uint64]evm.Backend, opts ...Option) (*Page, error) {
	logger = logger.With().Str("component", "bridge-page").Logger()

	backendA, ok := backends[dep.ChainA.ID]
	if !ok {
		return nil, fmt.Errorf("no backend for chain %s (%d)", dep.ChainA.Name, dep.ChainA.ID)
	}
	backendB, ok := backends[dep.ChainB.ID]
	if !ok {
		return nil, fmt.Errorf("no backend for chain %s (%d)", dep.ChainB.Name, dep.ChainB.ID)
	}

	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Page{
		logger: logger,
		dep:    dep,
		wallet: w,
		cfg:    cfg,
		tokens: map[tokenKey]*evm.Token{
			{dep.ChainA.ID, dep.TokenA}: evm.NewToken(logger, dep.TokenA, backendA),
			{dep.ChainB.ID, dep.TokenB}: evm.NewToken(logger, dep.TokenB, backendB),
		},
		bridge:  evm.NewBridge(logger, dep.Bridge, backendA),
		results: make(chan queryResult),
		updates: make(chan update),
		idleReq: make(chan chan struct{}),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// Mount initialises the view state, starts the page loop and issues the
// balance queries. Ready is closed once the queries are issued. Mount has no
// effect after the first call.
func (p *Page) Mount(ctx context.Context) {
	p.mountOnce.Do(func() {
		ctx, p.cancel = context.WithCancel(ctx)
		updates, unsubscribe := p.wallet.Subscribe()

		p.mu.Lock()
		p.state = State{Mounted: true, Wallet: <-updates, DepositAmount: zero()}
		p.mu.Unlock()

		go p.loop(ctx, updates, unsubscribe)
	})
}

// Unmount stops the page loop and cancels in-flight queries. The view state
// is discarded. Done is closed once every goroutine of the page has exited.
func (p *Page) Unmount() {
	p.unmountOnce.Do(func() {
		mounted := true
		p.mountOnce.Do(func() { mounted = false })
		if !mounted {
			close(p.done)
			return
		}
		p.cancel()
	})
}

// Ready returns a channel that is closed once the page is mounted.
func (p *Page) Ready() <-chan struct{} {
	return p.ready
}

// Done returns a channel that is closed once the page is unmounted.
func (p *Page) Done() <-chan struct{} {
	return p.done
}

// Snapshot returns a copy of the current view state.
func (p *Page) Snapshot() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.clone()
}

// WaitIdle blocks until no enabled balance query is pending.
func (p *Page) WaitIdle(ctx context.Context) error {
	select {
	case <-p.ready:
	default:
		return ErrNotMounted
	}

	ch := make(chan struct{})
	select {
	case p.idleReq <- ch:
	case <-p.done:
		return ErrNotMounted
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-ch:
		return nil
	case <-p.done:
		return ErrNotMounted
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Page) loop(ctx context.Context, walletUpdates <-chan wallet.State, unsubscribe func()) {
	defer close(p.done)
	defer unsubscribe()

	p.reconcile(ctx, false)
	close(p.ready)
	p.logger.Info().
		Str("chain_a", p.dep.ChainA.Name).
		Str("chain_b", p.dep.ChainB.Name).
		Str("bridge", p.dep.Bridge.Hex()).
		Msg("page mounted")

	var tick <-chan time.Time
	if p.cfg.refreshInterval > 0 {
		ticker := time.NewTicker(p.cfg.refreshInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			p.inflight.Wait()
			p.write(func(s *State) { *s = State{} })
			p.logger.Info().Msg("page unmounted")
			return

		case ws, ok := <-walletUpdates:
			if !ok {
				walletUpdates = nil
				continue
			}
			p.write(func(s *State) { s.Wallet = ws })
			p.logger.Debug().Str("status", ws.Status.String()).Str("address", ws.Address.Hex()).Msg("wallet status changed")
			p.reconcile(ctx, false)

		case r := <-p.results:
			p.apply(r)

		case u := <-p.updates:
			p.write(u.fn)
			close(u.done)

		case w := <-p.idleReq:
			p.waiters = append(p.waiters, w)

		case <-tick:
			p.reconcile(ctx, true)
		}
		p.notifyIdle()
	}
}

// write applies fn to the view state. Only the loop calls it.
func (p *Page) write(fn func(*State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.state)
}

// post hands fn to the loop and waits until it was applied. It reports
// false when the page is not mounted.
func (p *Page) post(fn func(*State)) bool {
	select {
	case <-p.ready:
	default:
		return false
	}

	u := update{fn: fn, done: make(chan struct{})}
	select {
	case p.updates <- u:
	case <-p.done:
		return false
	}
	<-u.done
	return true
}

func (p *Page) notifyIdle() {
	if len(p.waiters) == 0 {
		return
	}
	p.mu.RLock()
	pending := p.state.pending()
	p.mu.RUnlock()
	if pending {
		return
	}
	for _, w := range p.waiters {
		close(w)
	}
	p.waiters = nil
}

// config holds the optional page settings.
type config struct {
	refreshInterval time.Duration
	settled         SettledHook
}

// Option configures a Page.
type Option func(*config)

// WithRefreshInterval re-runs every enabled balance query at the given
// interval. Zero disables periodic refetching.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *config) {
		c.refreshInterval = d
	}
}

// WithSettledHook registers a callback invoked once per action after its
// submission succeeded or failed.
func WithSettledHook(h SettledHook) Option {
	return func(c *config) {
		c.settled = h
	}
}
