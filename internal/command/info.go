package command

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/thep2p/go-eth-bridge/internal/chain"
	"github.com/thep2p/go-eth-bridge/internal/contracts"
	"github.com/urfave/cli/v2"
)

// descriptors are the contract interfaces known to bridgectl, by command line name.
var descriptors = map[string]contracts.Descriptor{
	"bridge":   contracts.BridgeDescriptor,
	"erc20":    contracts.ERC20Descriptor,
	"lpbridge": contracts.LiquidityBridgeDescriptor,
}

func (rt *runtime) abiCommand() *cli.Command {
	return &cli.Command{
		Name:  "abi",
		Usage: "print a contract interface, or check it against Solidity source",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "contract",
				Usage: "bridge, erc20 or lpbridge",
				Value: "bridge",
			},
			&cli.PathFlag{
				Name:  "verify",
				Usage: "compile `FILE` with solc and compare its interface",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "contract to pick from the compiled file; defaults to the first one",
			},
		},
		Action: func(c *cli.Context) error {
			d, ok := descriptors[c.String("contract")]
			if !ok {
				return fmt.Errorf("unknown contract %q", c.String("contract"))
			}

			if path := c.Path("verify"); path != "" {
				_, compiled, err := contracts.GenerateAbiAndBin(path, c.String("name"))
				if err != nil {
					return err
				}
				if err := contracts.Verify(d, compiled); err != nil {
					return err
				}
				_, err = fmt.Fprintf(rt.out, "%s matches %s\n", c.String("contract"), path)
				return err
			}

			js, err := d.JSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(rt.out, js)
			return err
		},
	}
}

func (rt *runtime) chainsCommand() *cli.Command {
	return &cli.Command{
		Name:  "chains",
		Usage: "list the networks spanned by the bridge",
		Action: func(c *cli.Context) error {
			overrides := map[uint64]string{
				chain.Sepolia.ID: rt.cfg.Page.SepoliaRPC,
				chain.Shibuya.ID: rt.cfg.Page.ShibuyaRPC,
			}

			data := pterm.TableData{{"ID", "Name", "Network", "Currency", "RPC"}}
			for _, ch := range chain.DefaultRegistry.Available() {
				ch = ch.WithRPC(overrides[ch.ID])
				data = append(data, []string{
					strconv.FormatUint(ch.ID, 10),
					ch.Name,
					ch.Network,
					ch.Currency.Symbol,
					ch.RPCURL,
				})
			}
			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return fmt.Errorf("render chains: %w", err)
			}
			_, err = fmt.Fprintln(rt.out, table)
			return err
		},
	}
}
