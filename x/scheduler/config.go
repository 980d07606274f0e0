package scheduler

import (
	"time"

	"github.com/rs/zerolog"
)

// Config configures a Scheduler.
type Config struct {
	// Handler runs once per tick. It is never invoked concurrently with itself.
	Handler Callback
	// Interval between ticks.
	Interval time.Duration
	// Now returns the current time. Defaults to time.Now if nil.
	Now     func() time.Time
	Logger  zerolog.Logger
	Metrics *Metrics
}

// DefaultConfig returns a config ticking every DefaultInterval.
func DefaultConfig(logger zerolog.Logger) Config {
	return Config{
		Handler:  nil, // set by the app once the controller exists
		Interval: DefaultInterval,
		Now:      time.Now,
		Logger:   logger.With().Str("component", "scheduler").Logger(),
	}
}

// DefaultInterval matches the submitter's default poll interval.
const DefaultInterval = 15 * time.Second
