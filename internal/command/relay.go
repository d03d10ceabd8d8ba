package command

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"github.com/thep2p/go-eth-bridge/internal/chain"
	"github.com/thep2p/go-eth-bridge/internal/evm"
	"github.com/thep2p/go-eth-bridge/internal/model"
	"github.com/thep2p/go-eth-bridge/internal/relayer"
	"github.com/thep2p/go-eth-bridge/internal/wallet"
	"github.com/urfave/cli/v2"
)

func (rt *runtime) relayCommand() *cli.Command {
	return &cli.Command{
		Name:  "relay",
		Usage: "release every liquidity-bridge deposit on the opposite chain",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "once",
				Usage: "poll both sides once and exit",
			},
		},
		Action: func(c *cli.Context) error {
			return rt.relay(c.Context, c.Bool("once"))
		},
	}
}

// relay wires the relayer from the configuration and runs it.
func (rt *runtime) relay(ctx context.Context, once bool) error {
	cfg := rt.cfg.Relayer

	source, err := rt.keySource()
	if err != nil {
		return err
	}
	w := wallet.New(rt.logger, source)
	if err := w.Connect(ctx); err != nil {
		return err
	}

	src, srcClient, err := rt.dialSide(ctx, cfg.Source)
	if err != nil {
		return err
	}
	defer srcClient.Close()
	dst, dstClient, err := rt.dialSide(ctx, cfg.Destination)
	if err != nil {
		return err
	}
	defer dstClient.Close()

	store, err := relayer.OpenStore(cfg.StoreDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			rt.logger.Error().Err(err).Msg("failed to close relayer store")
		}
	}()

	var publisher relayer.Publisher = relayer.NopPublisher{}
	if cfg.NATSURL != "" {
		publisher, err = relayer.NewNATSPublisher(rt.logger, cfg.NATSURL, cfg.Subject)
		if err != nil {
			return err
		}
	}
	defer publisher.Close()

	r, err := relayer.New(rt.logger, relayer.Config{
		PollInterval:  cfg.PollInterval,
		Fee:           decimal.NewFromFloat(cfg.Fee),
		MaxRetries:    cfg.MaxRetries,
		RetryInterval: cfg.RetryInterval,
	}, src, dst, w, store, publisher)
	if err != nil {
		return err
	}

	if once {
		return r.Poll(ctx)
	}

	if err := r.Start(ctx); err != nil {
		return err
	}
	<-r.Done()
	return nil
}

// dialSide connects to one end of the liquidity bridge.
func (rt *runtime) dialSide(ctx context.Context, side model.SideConfig) (relayer.Side, *ethclient.Client, error) {
	c := chain.Chain{ID: side.ChainID, Name: side.Name, Network: side.Name, RPCURL: side.RPC}
	if known, err := chain.DefaultRegistry.Get(side.ChainID); err == nil {
		c = known.WithRPC(side.RPC)
		c.Name = side.Name
	}

	client, err := chain.Dial(ctx, rt.logger, c, rt.cfg.Page.DialTimeout)
	if err != nil {
		return relayer.Side{}, nil, fmt.Errorf("dial %s: %w", side.Name, err)
	}

	return relayer.Side{
		Name:    side.Name,
		ChainID: c.ChainID(),
		Bridge:  evm.NewLiquidityBridge(rt.logger, common.HexToAddress(side.Bridge), client),
	}, client, nil
}
