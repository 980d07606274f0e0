package adapter

import (
	"fmt"
	"time"

	"github.com/andybalholm/brotli"
)

// Config holds the batch shaping knobs shared by all adapters.
type Config struct {
	// MaxBatchSize caps the number of elements in one batch.
	MaxBatchSize uint64
	// MaxTxSize caps the payload bytes of one batch transaction.
	MaxTxSize uint64
	// FinalityConfirmations is how far behind the L2 head state roots are
	// committed.
	FinalityConfirmations uint64
	// PullAddressesFromRegistry resolves contracts through the L1 address
	// manager instead of trusting rollup_getInfo.
	PullAddressesFromRegistry bool

	CompressionLevel  int
	RetryAttempts     uint
	RetryDelay        time.Duration
	RegistryCacheSize int
}

func DefaultConfig() Config {
	return Config{
		MaxBatchSize:      100,
		MaxTxSize:         90_000,
		CompressionLevel:  brotli.DefaultCompression,
		RetryAttempts:     5,
		RetryDelay:        400 * time.Millisecond,
		RegistryCacheSize: 64,
	}
}

func (c Config) Validate() error {
	if c.MaxBatchSize == 0 {
		return fmt.Errorf("max batch size must be positive")
	}
	if c.MaxTxSize == 0 {
		return fmt.Errorf("max tx size must be positive")
	}
	if c.CompressionLevel < brotli.BestSpeed || c.CompressionLevel > brotli.BestCompression {
		return fmt.Errorf("compression level %d out of range", c.CompressionLevel)
	}
	if c.RetryAttempts == 0 {
		return fmt.Errorf("retry attempts must be positive")
	}
	if c.RegistryCacheSize <= 0 {
		return fmt.Errorf("registry cache size must be positive")
	}
	return nil
}
