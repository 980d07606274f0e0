package config

import (
	"fmt"
	"os"
	"strings"

	apisrv "github.com/compose-network/batch-submitter/server/api"
	"github.com/compose-network/batch-submitter/x/l1"
	"github.com/compose-network/batch-submitter/x/rollup"
	"github.com/compose-network/batch-submitter/x/submitter"
	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Log       LogConfig          `mapstructure:"log"       yaml:"log"`
	API       apisrv.Config      `mapstructure:"api"       yaml:"api"`
	Metrics   MetricsConfig      `mapstructure:"metrics"   yaml:"metrics"`
	L1        l1.Config          `mapstructure:"l1"        yaml:"l1"`
	L2        rollup.Config      `mapstructure:"l2"        yaml:"l2"`
	Submitter submitter.Settings `mapstructure:"submitter" yaml:"submitter"`
}

// MetricsConfig controls the Prometheus endpoint on the API server.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" env:"METRICS_ENABLED"`
	Path    string `mapstructure:"path"    yaml:"path"    env:"METRICS_PATH"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  env:"LOG_LEVEL"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty" env:"LOG_PRETTY"`
}

// Load reads configuration from an optional yaml file and the environment.
// Environment keys replace dots with underscores (L1_PRIVATE_KEY_HEX).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// legacy env alias for the signing key
	if strings.TrimSpace(cfg.L1.PrivateKeyHex) == "" {
		if v := strings.TrimSpace(os.Getenv("L1_PRIVATE_KEY")); v != "" {
			cfg.L1.PrivateKeyHex = v
		}
	}
	cfg.L1.Confirmations = cfg.Submitter.NumConfirmations

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.pretty", d.Log.Pretty)

	v.SetDefault("api.enabled", d.API.Enabled)
	v.SetDefault("api.listen_addr", d.API.ListenAddr)
	v.SetDefault("api.enable_cors", d.API.EnableCORS)
	v.SetDefault("api.read_header_timeout", d.API.ReadHeaderTimeout)
	v.SetDefault("api.read_timeout", d.API.ReadTimeout)
	v.SetDefault("api.write_timeout", d.API.WriteTimeout)
	v.SetDefault("api.idle_timeout", d.API.IdleTimeout)
	v.SetDefault("api.shutdown_timeout", d.API.ShutdownTimeout)
	v.SetDefault("api.max_header_bytes", d.API.MaxHeaderBytes)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)

	v.SetDefault("l1.rpc_endpoint", d.L1.RPCEndpoint)
	v.SetDefault("l1.chain_id", d.L1.ChainID)
	v.SetDefault("l1.receipt_poll_interval", d.L1.ReceiptPollInterval)
	v.SetDefault("l1.gas_limit_buffer_pct", d.L1.GasLimitBufferPct)
	v.SetDefault("l1.private_key_hex", "")

	v.SetDefault("l2.rpc_endpoint", d.L2.RPCEndpoint)
	v.SetDefault("l2.dial_timeout", d.L2.DialTimeout)

	s := d.Submitter
	v.SetDefault("submitter.role", s.Role)
	v.SetDefault("submitter.poll_interval", s.PollInterval)
	v.SetDefault("submitter.min_tx_size", s.MinTxSize)
	v.SetDefault("submitter.max_tx_size", s.MaxTxSize)
	v.SetDefault("submitter.max_batch_size", s.MaxBatchSize)
	v.SetDefault("submitter.max_batch_submission_time", s.MaxBatchSubmissionTime)
	v.SetDefault("submitter.num_confirmations", s.NumConfirmations)
	v.SetDefault("submitter.resubmission_timeout", s.ResubmissionTimeout)
	v.SetDefault("submitter.finality_confirmations", s.FinalityConfirmations)
	v.SetDefault("submitter.pull_addresses_from_registry", s.PullAddressesFromRegistry)
	v.SetDefault("submitter.min_balance_eth", s.MinBalanceEth)
	v.SetDefault("submitter.min_gas_price_gwei", s.MinGasPriceGwei)
	v.SetDefault("submitter.max_gas_price_gwei", s.MaxGasPriceGwei)
	v.SetDefault("submitter.gas_retry_increment_gwei", s.GasRetryIncrementGwei)
	v.SetDefault("submitter.balance_policy", s.BalancePolicy)
	v.SetDefault("submitter.ceiling_policy", s.CeilingPolicy)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Submitter.Validate(); err != nil {
		return fmt.Errorf("submitter: %w", err)
	}
	if err := c.L1.Validate(); err != nil {
		return err
	}
	if err := c.L2.Validate(); err != nil {
		return err
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return c.validateMetrics()
}

func (c *Config) validateMetrics() error {
	if !c.Metrics.Enabled {
		return nil
	}
	if !c.API.Enabled {
		return fmt.Errorf("metrics.enabled requires api.enabled, metrics are served by the API server")
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", c.Metrics.Path)
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Pretty: false,
		},
		API: apisrv.DefaultConfig(),
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		L1:        l1.DefaultConfig(),
		L2:        rollup.DefaultConfig(),
		Submitter: submitter.DefaultSettings(),
	}
}
