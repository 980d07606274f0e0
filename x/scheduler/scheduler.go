package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

var ErrNoHandler = errors.New("scheduler: handler is required")

// Scheduler invokes the handler at a fixed cadence. A tick that arrives
// while the previous invocation is still running is skipped.
type Scheduler struct {
	log      zerolog.Logger
	handler  Callback
	interval time.Duration
	now      func() time.Time
	metrics  *Metrics

	running *atomic.Bool
	skipped *atomic.Uint64
	wg      sync.WaitGroup

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a Scheduler. If cfg.Handler is nil, SetHandler must be
// called before Start.
func New(cfg Config) *Scheduler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(nil)
	}

	return &Scheduler{
		log:      cfg.Logger,
		handler:  cfg.Handler,
		interval: cfg.Interval,
		now:      cfg.Now,
		metrics:  cfg.Metrics,
		running:  atomic.NewBool(false),
		skipped:  atomic.NewUint64(0),
	}
}

// SetHandler sets the tick handler. It must be called before Start.
func (s *Scheduler) SetHandler(handler Callback) {
	s.handler = handler
}

// Skipped is the number of ticks dropped because an invocation was in flight.
func (s *Scheduler) Skipped() uint64 { return s.skipped.Load() }

// Run ticks until ctx is cancelled, then waits for the in-flight invocation.
// The first tick fires immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.handler == nil {
		return ErrNoHandler
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("Scheduler started")
	var seq uint64
	s.fire(ctx, seq)
	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.log.Info().Uint64("ticks", seq+1).Uint64("skipped", s.Skipped()).Msg("Scheduler stopped")
			return nil
		case <-ticker.C:
			seq++
			s.fire(ctx, seq)
		}
	}
}

// Start runs the scheduler in the background until Stop or ctx cancellation.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.handler == nil {
		return ErrNoHandler
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	go func() {
		defer close(done)
		_ = s.Run(runCtx)
	}()
	return nil
}

// Stop cancels the scheduler and waits for the in-flight invocation, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) fire(ctx context.Context, seq uint64) {
	if !s.running.CompareAndSwap(false, true) {
		s.skipped.Inc()
		s.metrics.TicksTotal.WithLabelValues("skipped").Inc()
		s.log.Debug().Uint64("seq", seq).Msg("Previous tick still running, skipping")
		return
	}

	info := TickInfo{Seq: seq, FiredAt: s.now(), Interval: s.interval}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)

		if err := s.handler(ctx, info); err != nil {
			s.metrics.TicksTotal.WithLabelValues("failed").Inc()
			s.log.Warn().Err(err).Uint64("seq", seq).Msg("Tick handler returned error")
			return
		}
		s.metrics.TicksTotal.WithLabelValues("fired").Inc()
	}()
}
