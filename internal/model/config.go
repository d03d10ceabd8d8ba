package model

import "time"

// Config holds everything bridgectl needs to talk to the bridge deployment.
//
// Values are layered: Default, then the optional YAML file, then environment
// variables. The result is checked with validator tags before use.
type Config struct {
	// LogLevel is a zerolog level name.
	LogLevel string `yaml:"log_level" env:"BRIDGE_LOG_LEVEL" validate:"omitempty,oneof=trace debug info warn error"`

	Wallet  WalletConfig  `yaml:"wallet"`
	Page    PageConfig    `yaml:"page"`
	Relayer RelayerConfig `yaml:"relayer"`
}

// WalletConfig selects the key used to connect the wallet.
// At most one of PrivateKey and Keystore should be set.
type WalletConfig struct {
	// PrivateKey is a hex-encoded secp256k1 key, with or without 0x.
	PrivateKey string `yaml:"private_key" env:"BRIDGE_PRIVATE_KEY" validate:"omitempty,hexadecimal"`

	// Keystore is the path of a go-ethereum JSON keystore file.
	Keystore string `yaml:"keystore" env:"BRIDGE_KEYSTORE" validate:"omitempty,file"`

	// Passphrase unlocks Keystore. It is never read from the YAML file.
	Passphrase string `yaml:"-" env:"BRIDGE_KEYSTORE_PASSPHRASE"`
}

// PageConfig describes the public testnet deployment shown by the bridge page.
type PageConfig struct {
	SepoliaRPC string `yaml:"sepolia_rpc" env:"BRIDGE_SEPOLIA_RPC" validate:"required,url"`
	ShibuyaRPC string `yaml:"shibuya_rpc" env:"BRIDGE_SHIBUYA_RPC" validate:"required,url"`

	Bridge       string `yaml:"bridge" validate:"required,eth_addr"`
	SepoliaToken string `yaml:"sepolia_token" validate:"required,eth_addr"`
	ShibuyaToken string `yaml:"shibuya_token" validate:"required,eth_addr"`

	// RefreshInterval re-runs the balance queries periodically. Zero disables it.
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"BRIDGE_REFRESH_INTERVAL" validate:"gte=0"`

	// DialTimeout bounds how long bridgectl waits for an RPC endpoint to answer.
	DialTimeout time.Duration `yaml:"dial_timeout" validate:"gt=0"`
}

// RelayerConfig configures the liquidity-bridge relayer.
type RelayerConfig struct {
	Source      SideConfig `yaml:"source"`
	Destination SideConfig `yaml:"destination"`

	// PollInterval is the delay between two scans of the deposit nonces.
	PollInterval time.Duration `yaml:"poll_interval" validate:"gt=0"`

	// Fee is the fraction of every deposit kept by the pool, in [0, 1).
	Fee float64 `yaml:"fee" validate:"gte=0,lt=1"`

	// StoreDir holds the badger database with the relayed nonces.
	StoreDir string `yaml:"store_dir" env:"BRIDGE_RELAYER_STORE" validate:"required"`

	// NATSURL enables publishing of release events when set.
	NATSURL string `yaml:"nats_url" env:"BRIDGE_NATS_URL" validate:"omitempty,url"`

	// Subject is the NATS subject release events are published to.
	Subject string `yaml:"subject" validate:"required"`

	// MaxRetries bounds the attempts to submit one release transaction.
	MaxRetries uint64 `yaml:"max_retries" validate:"gte=1"`

	// RetryInterval is the initial delay between two release attempts. It grows exponentially.
	RetryInterval time.Duration `yaml:"retry_interval" validate:"gt=0"`
}

// SideConfig is one end of the liquidity bridge.
type SideConfig struct {
	Name    string `yaml:"name" validate:"required"`
	RPC     string `yaml:"rpc" validate:"required,url"`
	ChainID uint64 `yaml:"chain_id" validate:"gt=0"`
	Bridge  string `yaml:"bridge" validate:"required,eth_addr"`
}
