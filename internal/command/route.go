package command

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/thep2p/go-eth-bridge/internal/amm"
	"github.com/urfave/cli/v2"
)

func (rt *runtime) routeCommand() *cli.Command {
	return &cli.Command{
		Name:  "route",
		Usage: "find the lowest-slippage swap route through a set of pools",
		Flags: []cli.Flag{
			&cli.PathFlag{Name: "pools", Usage: "YAML pool `FILE`", Required: true},
			&cli.StringFlag{Name: "from", Usage: "source token as CHAIN:NAME", Required: true},
			&cli.StringFlag{Name: "to", Usage: "target token as CHAIN:NAME", Required: true},
			&cli.StringFlag{Name: "amount", Usage: "amount swapped at every hop", Value: "1000"},
		},
		Action: func(c *cli.Context) error {
			from, err := parseNode(c.String("from"))
			if err != nil {
				return err
			}
			to, err := parseNode(c.String("to"))
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(c.String("amount"))
			if err != nil || !amount.IsPositive() {
				return fmt.Errorf("amount must be a positive number, got %q", c.String("amount"))
			}

			f, err := os.Open(c.Path("pools"))
			if err != nil {
				return fmt.Errorf("open pool file: %w", err)
			}
			defer f.Close()
			market, err := amm.LoadMarket(f)
			if err != nil {
				return err
			}

			route, err := amm.ShortestPath(market.Graph(amount), from, to)
			if err != nil {
				return err
			}
			return rt.printRoute(route)
		},
	}
}

func (rt *runtime) printRoute(route amm.Route) error {
	data := pterm.TableData{{"Step", "From", "To", "Pool", "Slippage"}}
	for i, e := range route.Edges {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			e.From.String(),
			e.To.String(),
			e.Pool,
			formatPercent(e.Cost),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("render route: %w", err)
	}

	_, err = fmt.Fprintf(rt.out, "%s\n\nTotal slippage: %s over %d hop(s)\n", table, formatPercent(route.TotalCost), len(route.Edges))
	return err
}

func parseNode(s string) (amm.Node, error) {
	chainName, name, ok := strings.Cut(s, ":")
	if !ok || chainName == "" || name == "" {
		return amm.Node{}, fmt.Errorf("token %q must be written as CHAIN:NAME", s)
	}
	return amm.Node{Chain: chainName, Name: name}, nil
}

func formatPercent(f float64) string {
	return strconv.FormatFloat(f*100, 'f', 4, 64) + "%"
}
