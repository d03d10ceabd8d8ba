package page

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/thep2p/go-eth-bridge/internal/evm"
	"github.com/thep2p/go-eth-bridge/internal/wallet"
)

type queryResult struct {
	slot  Slot
	gen   uint64
	key   QueryKey
	value *big.Int
	err   error
}

// reconcile brings the queries in line with the current wallet. A query whose
// key changed has its slot cleared and is issued again; a disabled query has
// its slot cleared. With refresh set, unchanged enabled queries are issued
// again without clearing their slot.
func (p *Page) reconcile(ctx context.Context, refresh bool) {
	p.mu.RLock()
	ws := p.state.Wallet
	p.mu.RUnlock()

	var holder *common.Address
	if ws.Status == wallet.Connected {
		holder = &ws.Address
	}
	want := p.dep.queryKeys(holder)

	for i := range want {
		slot := Slot(i)
		changed := !sameKey(want[slot], p.keys[slot])
		if !changed && (!refresh || want[slot] == nil) {
			continue
		}

		p.gen[slot]++
		p.keys[slot] = want[slot]

		if changed {
			status := QueryPending
			if want[slot] == nil {
				status = QueryDisabled
			}
			p.write(func(s *State) {
				*s.balance(slot) = nil
				s.Queries[slot] = status
			})
		}
		if want[slot] != nil {
			p.issue(ctx, slot, p.gen[slot], *want[slot])
		}
	}
}

// issue runs one balance query in its own goroutine.
func (p *Page) issue(ctx context.Context, slot Slot, gen uint64, key QueryKey) {
	p.logger.Debug().
		Str("slot", slot.String()).
		Str("token", key.Token.Hex()).
		Str("holder", key.Holder.Hex()).
		Uint64("chain_id", key.ChainID).
		Msg("balance query issued")

	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()

		value, err := p.readBalance(ctx, key)
		select {
		case p.results <- queryResult{slot: slot, gen: gen, key: key, value: value, err: err}:
		case <-ctx.Done():
		}
	}()
}

// readBalance returns nil without error when the token has no code, which is
// how an absent value is represented.
func (p *Page) readBalance(ctx context.Context, key QueryKey) (*big.Int, error) {
	token := p.tokens[tokenKey{chainID: key.ChainID, address: key.Token}]
	balance, err := token.BalanceOf(ctx, key.Holder)
	if errors.Is(err, evm.ErrNoCode) {
		return nil, nil
	}
	return balance, err
}

// apply stores a query result. Results of superseded queries are dropped;
// failed and absent results leave the slot as it is.
func (p *Page) apply(r queryResult) {
	log := p.logger.With().Str("slot", r.slot.String()).Uint64("chain_id", r.key.ChainID).Logger()

	if r.gen != p.gen[r.slot] {
		log.Debug().Msg("stale balance result dropped")
		return
	}

	switch {
	case r.err != nil:
		log.Warn().Err(r.err).Msg("balance query failed")
		p.write(func(s *State) { s.Queries[r.slot] = QueryFailed })
	case r.value == nil:
		log.Debug().Msg("balance query returned no value")
		p.write(func(s *State) { s.Queries[r.slot] = QueryResolved })
	default:
		log.Debug().Str("balance", r.value.String()).Msg("balance query resolved")
		p.write(func(s *State) {
			*s.balance(r.slot) = r.value
			s.Queries[r.slot] = QueryResolved
		})
	}
}

func sameKey(a, b *QueryKey) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
