// Package command implements the bridgectl command line.
package command

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/thep2p/go-eth-bridge/internal/model"
	"github.com/thep2p/go-eth-bridge/internal/wallet"
	"github.com/urfave/cli/v2"
)

// ErrNoWallet is returned by commands that sign when neither a private key nor a keystore is configured.
var ErrNoWallet = errors.New("no wallet configured: set BRIDGE_PRIVATE_KEY or wallet.keystore")

// runtime is the state shared by the commands of one invocation. It is
// filled by the Before hook of the app.
type runtime struct {
	cfg    *model.Config
	logger zerolog.Logger
	out    io.Writer
}

// NewApp builds the bridgectl application. Command output goes to the app's
// Writer and logs go to its ErrWriter, so tests can capture both.
func NewApp() *cli.App {
	rt := &runtime{}

	app := &cli.App{
		Name:  "bridgectl",
		Usage: "inspect and operate the Analog AMM bridge",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration `FILE`",
				EnvVars: []string{"BRIDGE_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "trace, debug, info, warn or error; overrides the configuration",
			},
		},
		Before: rt.setup,
		Commands: []*cli.Command{
			rt.balancesCommand(),
			rt.watchCommand(),
			rt.approveCommand(),
			rt.mintCommand(),
			rt.depositCommand(),
			rt.relayCommand(),
			rt.routeCommand(),
			rt.abiCommand(),
			rt.chainsCommand(),
		},
	}
	return app
}

// setup loads the configuration and builds the logger.
//
// All errors are CRITICAL and abort the invocation before any command runs.
func (rt *runtime) setup(c *cli.Context) error {
	cfg, err := model.Load(c.Path("config"))
	if err != nil {
		return err
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	rt.cfg = cfg
	rt.out = c.App.Writer
	rt.logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        c.App.ErrWriter,
		TimeFormat: time.RFC3339,
	}).Level(level).With().Timestamp().Logger()
	return nil
}

// keySource returns the configured key source, or ErrNoWallet.
func (rt *runtime) keySource() (wallet.KeySource, error) {
	switch {
	case rt.cfg.Wallet.PrivateKey != "":
		return wallet.HexKey(rt.cfg.Wallet.PrivateKey), nil
	case rt.cfg.Wallet.Keystore != "":
		return wallet.KeystoreFile(rt.cfg.Wallet.Keystore, rt.cfg.Wallet.Passphrase), nil
	default:
		return nil, ErrNoWallet
	}
}
