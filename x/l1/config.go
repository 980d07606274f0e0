package l1

import (
	"fmt"
	"strings"
	"time"
)

// Config holds Ethereum L1 integration configuration
type Config struct {
	// RPC endpoint to an Ethereum node.
	RPCEndpoint string `mapstructure:"rpc_endpoint" yaml:"rpc_endpoint"`

	// Chain configuration. Zero means "ask the node".
	ChainID uint64 `mapstructure:"chain_id" yaml:"chain_id"`

	// Confirmations is filled from the submitter's num_confirmations.
	Confirmations uint64 `mapstructure:"-" yaml:"-"`

	ReceiptPollInterval time.Duration `mapstructure:"receipt_poll_interval" yaml:"receipt_poll_interval"`
	GasLimitBufferPct   uint64        `mapstructure:"gas_limit_buffer_pct"  yaml:"gas_limit_buffer_pct"` // add buffer to estimates

	// Signing configuration
	PrivateKeyHex string `mapstructure:"private_key_hex" yaml:"-" env:"L1_PRIVATE_KEY_HEX"`
}

func DefaultConfig() Config {
	return Config{
		RPCEndpoint:         "http://localhost:8545",
		Confirmations:       1,
		ReceiptPollInterval: 2 * time.Second,
		GasLimitBufferPct:   15,
	}
}

// Validate checks the fields required to sign and send transactions.
func (c Config) Validate() error {
	if strings.TrimSpace(c.RPCEndpoint) == "" {
		return fmt.Errorf("l1.rpc_endpoint is required")
	}
	if strings.TrimSpace(c.PrivateKeyHex) == "" {
		return fmt.Errorf("l1.private_key_hex is required")
	}
	if c.ReceiptPollInterval <= 0 {
		return fmt.Errorf("l1.receipt_poll_interval must be positive")
	}
	return nil
}
