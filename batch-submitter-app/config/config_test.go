package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesFileOverDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
l1:
  rpc_endpoint: http://l1:8545
  private_key_hex: `+testKey+`
l2:
  rpc_endpoint: http://l2:8546
submitter:
  role: verifier
  poll_interval: 3s
  num_confirmations: 4
  max_gas_price_gwei: 120
  ceiling_policy: stop
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "http://l1:8545", cfg.L1.RPCEndpoint)
	require.Equal(t, "http://l2:8546", cfg.L2.RPCEndpoint)
	require.Equal(t, "verifier", cfg.Submitter.Role)
	require.Equal(t, 3*time.Second, cfg.Submitter.PollInterval)
	require.Equal(t, uint64(120), cfg.Submitter.MaxGasPriceGwei)
	require.Equal(t, "stop", cfg.Submitter.CeilingPolicy)
	require.Equal(t, uint64(4), cfg.L1.Confirmations)

	// untouched keys keep their defaults
	def := Default()
	require.Equal(t, def.Submitter.MaxTxSize, cfg.Submitter.MaxTxSize)
	require.Equal(t, def.Submitter.GasRetryIncrementGwei, cfg.Submitter.GasRetryIncrementGwei)
	require.Equal(t, def.API.ListenAddr, cfg.API.ListenAddr)
	require.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("L1_PRIVATE_KEY_HEX", testKey)
	t.Setenv("SUBMITTER_MAX_BATCH_SIZE", "7")
	t.Setenv("L2_RPC_ENDPOINT", "http://env-l2:8546")

	path := writeConfig(t, `
submitter:
  max_batch_size: 20
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, testKey, cfg.L1.PrivateKeyHex)
	require.Equal(t, uint64(7), cfg.Submitter.MaxBatchSize)
	require.Equal(t, "http://env-l2:8546", cfg.L2.RPCEndpoint)
}

func TestLoadWithoutFileUsesEnvironment(t *testing.T) {
	t.Setenv("L1_PRIVATE_KEY", testKey)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, testKey, cfg.L1.PrivateKeyHex)
	require.Equal(t, "producer", cfg.Submitter.Role)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing key",
			body: "l1:\n  rpc_endpoint: http://l1:8545\n",
		},
		{
			name: "unknown role",
			body: "l1:\n  private_key_hex: " + testKey + "\nsubmitter:\n  role: archiver\n",
		},
		{
			name: "min above max gas",
			body: "l1:\n  private_key_hex: " + testKey + "\nsubmitter:\n  min_gas_price_gwei: 90\n  max_gas_price_gwei: 10\n",
		},
		{
			name: "metrics without api",
			body: "l1:\n  private_key_hex: " + testKey + "\napi:\n  enabled: false\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorContains(t, err, "failed to read config file")
}
