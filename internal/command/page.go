package command

import (
	"context"
	"fmt"
	"time"

	"github.com/thep2p/go-eth-bridge/internal/chain"
	"github.com/thep2p/go-eth-bridge/internal/evm"
	"github.com/thep2p/go-eth-bridge/internal/page"
	"github.com/thep2p/go-eth-bridge/internal/wallet"
	"github.com/urfave/cli/v2"
)

// session is a mounted bridge page together with the clients it reads through.
type session struct {
	dep      page.Deployment
	page     *page.Page
	wallet   *wallet.Wallet
	outcomes chan page.Outcome
	close    func()
}

// openSession dials both chains of the deployment, connects the wallet when
// needWallet is set or a key is configured, and mounts the page. The returned
// session has settled its initial balance queries.
func (rt *runtime) openSession(ctx context.Context, needWallet bool, opts ...page.Option) (*session, error) {
	dep, err := page.NewDeployment(rt.cfg.Page)
	if err != nil {
		return nil, err
	}

	source, err := rt.keySource()
	if err != nil && needWallet {
		return nil, err
	}
	w := wallet.New(rt.logger, source)
	if source != nil {
		if err := w.Connect(ctx); err != nil {
			return nil, err
		}
	}

	clients, err := chain.DialAll(ctx, rt.logger, rt.cfg.Page.DialTimeout, dep.ChainA, dep.ChainB)
	if err != nil {
		return nil, err
	}
	backends := make(map[uint64]evm.Backend, len(clients))
	for id, client := range clients {
		backends[id] = client
	}
	closeClients := func() {
		for _, client := range clients {
			client.Close()
		}
	}

	s := &session{dep: dep, wallet: w, outcomes: make(chan page.Outcome, 1)}
	opts = append(opts, page.WithSettledHook(func(o page.Outcome) { s.outcomes <- o }))
	p, err := page.New(rt.logger, dep, w, backends, opts...)
	if err != nil {
		closeClients()
		return nil, err
	}
	s.page = p
	s.close = func() {
		p.Unmount()
		<-p.Done()
		closeClients()
	}

	p.Mount(ctx)
	select {
	case <-p.Ready():
	case <-ctx.Done():
		s.close()
		return nil, ctx.Err()
	}
	if err := p.WaitIdle(ctx); err != nil {
		s.close()
		return nil, fmt.Errorf("wait for balances: %w", err)
	}
	return s, nil
}

func (s *session) render(rt *runtime) error {
	return page.Render(rt.out, s.dep, s.page.Snapshot())
}

// settle waits for the outcome of the action just submitted and prints it.
func (s *session) settle(rt *runtime) error {
	o := <-s.outcomes
	if o.Err != nil {
		return fmt.Errorf("%s failed: %w", o.Action, o.Err)
	}
	_, err := fmt.Fprintf(rt.out, "%s submitted: %s\n", o.Action, o.Tx.Hash().Hex())
	return err
}

func (rt *runtime) balancesCommand() *cli.Command {
	return &cli.Command{
		Name:  "balances",
		Usage: "show the bridge liquidity and, with a wallet, your balances",
		Action: func(c *cli.Context) error {
			s, err := rt.openSession(c.Context, false)
			if err != nil {
				return err
			}
			defer s.close()
			return s.render(rt)
		},
	}
}

func (rt *runtime) watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "re-render the balances until interrupted",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "refresh interval; defaults to page.refresh_interval, or 10s",
			},
		},
		Action: func(c *cli.Context) error {
			interval := c.Duration("interval")
			if interval <= 0 {
				interval = rt.cfg.Page.RefreshInterval
			}
			if interval <= 0 {
				interval = 10 * time.Second
			}

			s, err := rt.openSession(c.Context, false, page.WithRefreshInterval(interval))
			if err != nil {
				return err
			}
			defer s.close()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				if err := s.render(rt); err != nil {
					return err
				}
				select {
				case <-c.Context.Done():
					return nil
				case <-ticker.C:
				}
				if err := s.page.WaitIdle(c.Context); err != nil {
					if c.Context.Err() != nil {
						return nil
					}
					return err
				}
			}
		},
	}
}

func (rt *runtime) approveCommand() *cli.Command {
	return &cli.Command{
		Name:  "approve",
		Usage: fmt.Sprintf("allow the bridge to spend %d tokens", page.ApproveAmount),
		Action: func(c *cli.Context) error {
			s, err := rt.openSession(c.Context, true)
			if err != nil {
				return err
			}
			defer s.close()

			s.page.Approve(c.Context)
			return s.settle(rt)
		},
	}
}

func (rt *runtime) mintCommand() *cli.Command {
	return &cli.Command{
		Name:  "mint",
		Usage: fmt.Sprintf("mint %d test tokens to the wallet", page.MintAmount),
		Action: func(c *cli.Context) error {
			s, err := rt.openSession(c.Context, true)
			if err != nil {
				return err
			}
			defer s.close()

			s.page.Mint(c.Context)
			return s.settle(rt)
		},
	}
}

func (rt *runtime) depositCommand() *cli.Command {
	return &cli.Command{
		Name:  "deposit",
		Usage: "deposit tokens into the bridge",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "amount",
				Usage:    "amount to deposit; fractions are truncated, invalid input deposits 0",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			s, err := rt.openSession(c.Context, true)
			if err != nil {
				return err
			}
			defer s.close()

			s.page.SetDepositAmount(c.String("amount"))
			s.page.Deposit(c.Context)
			if err := s.settle(rt); err != nil {
				return err
			}
			return s.render(rt)
		},
	}
}
