package model_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-eth-bridge/internal/model"
)

// TestDefaultIsValid verifies that the built-in configuration passes validation.
func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, model.Validate(model.Default()))
}

// TestLoad_NoFile verifies that an empty path yields the defaults.
func TestLoad_NoFile(t *testing.T) {
	cfg, err := model.Load("")
	require.NoError(t, err)
	require.Equal(t, model.DefaultBridgeAddress, cfg.Page.Bridge)
	require.Equal(t, "bridge.release", cfg.Relayer.Subject)
}

// TestLoad_FileAndEnv verifies that the YAML file overrides the defaults and the
// environment overrides the file.
func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
page:
  shibuya_rpc: http://127.0.0.1:9650
  refresh_interval: 15s
relayer:
  fee: 0.003
  poll_interval: 2s
`), 0600))

	t.Setenv("BRIDGE_SEPOLIA_RPC", "http://127.0.0.1:8545")
	t.Setenv("BRIDGE_LOG_LEVEL", "warn")

	cfg, err := model.Load(path)
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, "http://127.0.0.1:8545", cfg.Page.SepoliaRPC)
	require.Equal(t, "http://127.0.0.1:9650", cfg.Page.ShibuyaRPC)
	require.Equal(t, 15*time.Second, cfg.Page.RefreshInterval)
	require.Equal(t, 0.003, cfg.Relayer.Fee)
	require.Equal(t, 2*time.Second, cfg.Relayer.PollInterval)
	// untouched values keep their default
	require.Equal(t, model.DefaultSepoliaToken, cfg.Page.SepoliaToken)
}

// TestLoad_Invalid verifies that validation errors are reported.
func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad bridge address", "page:\n  bridge: not-an-address\n"},
		{"fee out of range", "relayer:\n  fee: 1.5\n"},
		{"unknown log level", "log_level: chatty\n"},
		{"malformed yaml", "page: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bridge.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0600))

			_, err := model.Load(path)
			require.Error(t, err)
		})
	}
}

// TestValidate_KeySourcesExclusive verifies that only one wallet key source may be configured.
func TestValidate_KeySourcesExclusive(t *testing.T) {
	keystore := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(keystore, []byte("{}"), 0600))

	cfg := model.Default()
	cfg.Wallet.PrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	cfg.Wallet.Keystore = keystore

	err := model.Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "mutually exclusive")
}

// TestLoad_MissingFile verifies that a missing config file is an error.
func TestLoad_MissingFile(t *testing.T) {
	_, err := model.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
