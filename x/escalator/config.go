package escalator

import (
	"fmt"
	"time"
)

// CeilingPolicy decides what happens once the price reaches MaxGasPrice.
type CeilingPolicy string

const (
	// CeilingHold keeps replacing at the ceiling until a receipt arrives or
	// the caller cancels.
	CeilingHold CeilingPolicy = "hold"
	// CeilingStop gives up with ErrGasCeilingReached once an attempt at the
	// ceiling has been outstanding for a full Delay.
	CeilingStop CeilingPolicy = "stop"
)

// ParseCeilingPolicy maps config text to a policy; empty means hold.
func ParseCeilingPolicy(s string) (CeilingPolicy, error) {
	switch CeilingPolicy(s) {
	case "", CeilingHold:
		return CeilingHold, nil
	case CeilingStop:
		return CeilingStop, nil
	default:
		return "", fmt.Errorf("%w: unknown ceiling policy %q", ErrInvalidConfig, s)
	}
}

// Config drives one escalation. Prices are integer gwei.
type Config struct {
	// Delay between successive attempt issuances.
	Delay time.Duration
	// MinGasPrice is the starting price.
	MinGasPrice uint64
	// MaxGasPrice is never exceeded.
	MaxGasPrice uint64
	// Increment is added to the price on each replacement.
	Increment uint64

	CeilingPolicy CeilingPolicy
}

// Validate enforces MinGasPrice <= MaxGasPrice, Increment > 0 and Delay > 0.
func (c Config) Validate() error {
	if c.Delay <= 0 {
		return fmt.Errorf("%w: delay must be positive, got %s", ErrInvalidConfig, c.Delay)
	}
	if c.Increment == 0 {
		return fmt.Errorf("%w: increment must be positive", ErrInvalidConfig)
	}
	if c.MinGasPrice > c.MaxGasPrice {
		return fmt.Errorf("%w: min gas price %d > max gas price %d", ErrInvalidConfig, c.MinGasPrice, c.MaxGasPrice)
	}
	if _, err := ParseCeilingPolicy(string(c.CeilingPolicy)); err != nil {
		return err
	}
	return nil
}

// next returns the price of the replacement following price, held at the ceiling.
func (c Config) next(price uint64) uint64 {
	if price >= c.MaxGasPrice || c.MaxGasPrice-price <= c.Increment {
		return c.MaxGasPrice
	}
	return price + c.Increment
}
