package page

import (
	"fmt"
	"io"
	"math/big"

	"github.com/pterm/pterm"
	"github.com/thep2p/go-eth-bridge/internal/utils"
	"github.com/thep2p/go-eth-bridge/internal/wallet"
)

const (
	title        = "Analog AMM Bridge"
	loadingLabel = "Loading..."
)

// Render writes the page view for s to w. Unknown pool balances show as
// Loading..., unknown user balances as 0.
func Render(w io.Writer, dep Deployment, s State) error {
	var out string

	if s.Mounted && s.Wallet.Status == wallet.Connected {
		out += fmt.Sprintf("Wallet is connected! (%s)\n", utils.ShortAddress(s.Wallet.Address))
	}
	out += title + "\n\n"

	liquidity, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Bridge " + dep.ChainA.Name + " Liquidity", "Bridge " + dep.ChainB.Name + " Liquidity"},
		{amountOr(s.PoolA, loadingLabel), amountOr(s.PoolB, loadingLabel)},
	}).Srender()
	if err != nil {
		return fmt.Errorf("render liquidity: %w", err)
	}

	user, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Your " + dep.ChainA.Name + " Balance", "Your " + dep.ChainB.Name + " Balance"},
		{amountOr(s.UserA, "0"), amountOr(s.UserB, "0")},
	}).Srender()
	if err != nil {
		return fmt.Errorf("render balances: %w", err)
	}

	out += liquidity + "\n\n" + user + "\n\n"
	out += fmt.Sprintf("Deposit amount: %s (%s)\n", plain(s.DepositAmount), s.Deposit)

	_, err = io.WriteString(w, out)
	return err
}

func amountOr(v *big.Int, placeholder string) string {
	if v == nil {
		return placeholder
	}
	return "$" + v.String()
}

func plain(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
