package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrChainMismatch is returned when an endpoint serves a different chain than expected.
var ErrChainMismatch = errors.New("rpc endpoint serves a different chain")

// readyPollInterval is the delay between two eth_chainId requests while waiting for an endpoint.
const readyPollInterval = 100 * time.Millisecond

// Dial connects to the chain's RPC endpoint and waits until it answers
// eth_chainId, or until timeout elapses. The reported id must match c.ID.
func Dial(ctx context.Context, logger zerolog.Logger, c Chain, timeout time.Duration) (*ethclient.Client, error) {
	logger = logger.With().Str("component", "chain-dialer").Str("chain", c.Name).Logger()

	client, err := ethclient.DialContext(ctx, c.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.RPCURL, err)
	}

	deadline := time.Now().Add(timeout)
	for {
		id, err := client.ChainID(ctx)
		if err == nil {
			if id.Uint64() != c.ID {
				client.Close()
				return nil, fmt.Errorf("%w: %s reports %d, want %d", ErrChainMismatch, c.RPCURL, id.Uint64(), c.ID)
			}
			logger.Info().Str("rpc", c.RPCURL).Uint64("chain_id", c.ID).Msg("rpc endpoint ready")
			return client, nil
		}

		if time.Now().After(deadline) {
			client.Close()
			return nil, fmt.Errorf("rpc %q never came up: %w", c.RPCURL, err)
		}
		logger.Debug().Err(err).Msg("rpc endpoint not ready")

		select {
		case <-ctx.Done():
			client.Close()
			return nil, ctx.Err()
		case <-time.After(readyPollInterval):
		}
	}
}

// DialAll dials every chain concurrently and returns the clients keyed by
// chain id. If any dial fails, the clients opened so far are closed.
func DialAll(ctx context.Context, logger zerolog.Logger, timeout time.Duration, chains ...Chain) (map[uint64]*ethclient.Client, error) {
	var mu sync.Mutex
	clients := make(map[uint64]*ethclient.Client, len(chains))

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range chains {
		g.Go(func() error {
			client, err := Dial(gctx, logger, c, timeout)
			if err != nil {
				return err
			}
			mu.Lock()
			clients[c.ID] = client
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, client := range clients {
			client.Close()
		}
		return nil, err
	}
	return clients, nil
}
