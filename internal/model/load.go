package model

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/thep2p/go-eth-bridge/internal/utils"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultBridgeAddress is the GMP bridge deployed on Sepolia.
	DefaultBridgeAddress = "0x6f978Fc5909CaCCA93fABe3BaC75C12a1856f8F7"

	// DefaultSepoliaToken is the test USDC token on Sepolia.
	DefaultSepoliaToken = "0xa3DD50f2481d655d9E6e1cB14F0BE417338BB6bb"

	// DefaultShibuyaToken is the test USDC token on Astar Shibuya.
	DefaultShibuyaToken = "0xC6BfD304d993aBc9A00Af873465a05234cd79acD"

	// DefaultLocalBridge is the deterministic address of the liquidity bridge
	// when deployed as the fifth contract of a fresh development chain.
	DefaultLocalBridge = "0xCf7Ed3AccA5a467e9e704C703E8D87F634fB0Fc9"
)

// Default returns the configuration used when no file or environment override is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Page: PageConfig{
			SepoliaRPC:   "https://rpc.sepolia.org",
			ShibuyaRPC:   "https://evm.shibuya.astar.network/",
			Bridge:       DefaultBridgeAddress,
			SepoliaToken: DefaultSepoliaToken,
			ShibuyaToken: DefaultShibuyaToken,
			DialTimeout:  10 * time.Second,
		},
		Relayer: RelayerConfig{
			Source: SideConfig{
				Name:    "source",
				RPC:     utils.LocalAddress(8545),
				ChainID: 31337,
				Bridge:  DefaultLocalBridge,
			},
			Destination: SideConfig{
				Name:    "destination",
				RPC:     utils.LocalAddress(8546),
				ChainID: 31337,
				Bridge:  DefaultLocalBridge,
			},
			PollInterval:  time.Second,
			StoreDir:      "relayer-data",
			Subject:       "bridge.release",
			MaxRetries:    5,
			RetryInterval: 500 * time.Millisecond,
		},
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped when
// path is empty) and the process environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its validator tags.
func Validate(cfg Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Wallet.PrivateKey != "" && cfg.Wallet.Keystore != "" {
		return fmt.Errorf("invalid config: private key and keystore are mutually exclusive")
	}
	return nil
}
