package scheduler

import (
	"context"
	"time"
)

// Callback is the hook invoked on every tick.
type Callback func(context.Context, TickInfo) error

// TickInfo describes one tick.
type TickInfo struct {
	Seq      uint64
	FiredAt  time.Time
	Interval time.Duration
}
