package submitter

import (
	"errors"
	"fmt"
	"time"

	"github.com/compose-network/batch-submitter/x/adapter"
	"github.com/compose-network/batch-submitter/x/escalator"
	"github.com/compose-network/batch-submitter/x/rollup"
	"github.com/rs/zerolog"
)

// Settings are the operator tunables of the submitter section.
type Settings struct {
	Role         string        `mapstructure:"role"          yaml:"role"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`

	MinTxSize              uint64        `mapstructure:"min_tx_size"               yaml:"min_tx_size"`
	MaxTxSize              uint64        `mapstructure:"max_tx_size"               yaml:"max_tx_size"`
	MaxBatchSize           uint64        `mapstructure:"max_batch_size"            yaml:"max_batch_size"`
	MaxBatchSubmissionTime time.Duration `mapstructure:"max_batch_submission_time" yaml:"max_batch_submission_time"`

	NumConfirmations          uint64        `mapstructure:"num_confirmations"            yaml:"num_confirmations"`
	ResubmissionTimeout       time.Duration `mapstructure:"resubmission_timeout"         yaml:"resubmission_timeout"`
	FinalityConfirmations     uint64        `mapstructure:"finality_confirmations"       yaml:"finality_confirmations"`
	PullAddressesFromRegistry bool          `mapstructure:"pull_addresses_from_registry" yaml:"pull_addresses_from_registry"`

	MinBalanceEth         float64 `mapstructure:"min_balance_eth"          yaml:"min_balance_eth"`
	MinGasPriceGwei       uint64  `mapstructure:"min_gas_price_gwei"       yaml:"min_gas_price_gwei"`
	MaxGasPriceGwei       uint64  `mapstructure:"max_gas_price_gwei"       yaml:"max_gas_price_gwei"`
	GasRetryIncrementGwei uint64  `mapstructure:"gas_retry_increment_gwei" yaml:"gas_retry_increment_gwei"`

	BalancePolicy string `mapstructure:"balance_policy" yaml:"balance_policy"`
	CeilingPolicy string `mapstructure:"ceiling_policy" yaml:"ceiling_policy"`
}

func DefaultSettings() Settings {
	return Settings{
		Role:                   string(rollup.RoleProducer),
		PollInterval:           15 * time.Second,
		MinTxSize:              1_000,
		MaxTxSize:              90_000,
		MaxBatchSize:           50,
		MaxBatchSubmissionTime: 5 * time.Minute,
		NumConfirmations:       1,
		ResubmissionTimeout:    5 * time.Minute,
		MinBalanceEth:          1,
		MaxGasPriceGwei:        70,
		GasRetryIncrementGwei:  5,
		BalancePolicy:          string(BalanceWarn),
		CeilingPolicy:          string(escalator.CeilingHold),
	}
}

// Validate fails fast on settings no iteration could run with.
func (s Settings) Validate() error {
	if _, err := rollup.ParseRole(s.Role); err != nil {
		return err
	}
	if s.PollInterval <= 0 {
		return errors.New("poll_interval must be positive")
	}
	if s.MaxTxSize == 0 {
		return errors.New("max_tx_size must be positive")
	}
	if s.MaxBatchSize == 0 {
		return errors.New("max_batch_size must be positive")
	}
	if s.ResubmissionTimeout <= 0 {
		return errors.New("resubmission_timeout must be positive")
	}
	if s.GasRetryIncrementGwei == 0 {
		return errors.New("gas_retry_increment_gwei must be positive")
	}
	if s.MinGasPriceGwei > s.MaxGasPriceGwei {
		return fmt.Errorf("min_gas_price_gwei %d > max_gas_price_gwei %d", s.MinGasPriceGwei, s.MaxGasPriceGwei)
	}
	if s.MinBalanceEth < 0 {
		return errors.New("min_balance_eth must not be negative")
	}
	if _, err := ParseBalancePolicy(s.BalancePolicy); err != nil {
		return err
	}
	if _, err := escalator.ParseCeilingPolicy(s.CeilingPolicy); err != nil {
		return err
	}
	return nil
}

// AdapterConfig derives the batch shaping config for the role adapters.
func (s Settings) AdapterConfig() adapter.Config {
	cfg := adapter.DefaultConfig()
	cfg.MaxBatchSize = s.MaxBatchSize
	cfg.MaxTxSize = s.MaxTxSize
	cfg.FinalityConfirmations = s.FinalityConfirmations
	cfg.PullAddressesFromRegistry = s.PullAddressesFromRegistry
	return cfg
}

// escalation builds the per-transaction escalation config from a starting price.
func (s Settings) escalation(startGwei uint64) escalator.Config {
	ceiling, _ := escalator.ParseCeilingPolicy(s.CeilingPolicy)
	return escalator.Config{
		Delay:         s.ResubmissionTimeout,
		MinGasPrice:   startGwei,
		MaxGasPrice:   s.MaxGasPriceGwei,
		Increment:     s.GasRetryIncrementGwei,
		CeilingPolicy: ceiling,
	}
}

// Config captures dependencies required to build a Controller.
type Config struct {
	Logger zerolog.Logger

	Adapter  adapter.ChainAdapter
	Account  Account
	Engine   Escalator
	Settings Settings
	Metrics  *Metrics

	Now func() time.Time
}

func DefaultConfig(logger zerolog.Logger, a adapter.ChainAdapter, account Account, engine Escalator) Config {
	return Config{
		Logger:   logger.With().Str("component", "submitter").Logger(),
		Adapter:  a,
		Account:  account,
		Engine:   engine,
		Settings: DefaultSettings(),
		Now:      time.Now,
	}
}

func (c *Config) apply() error {
	if c.Logger.GetLevel() == zerolog.NoLevel {
		c.Logger = zerolog.Nop()
	}
	if c.Adapter == nil {
		return errors.New("submitter: chain adapter is required")
	}
	if c.Account == nil {
		return errors.New("submitter: account is required")
	}
	if c.Engine == nil {
		return errors.New("submitter: escalation engine is required")
	}
	if err := c.Settings.Validate(); err != nil {
		return newError(KindConfig, "validate", err)
	}
	if c.Metrics == nil {
		c.Metrics = NewMetrics(nil)
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return nil
}
