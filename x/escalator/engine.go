package escalator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// SendFunc broadcasts the same-nonce transaction at gasPriceGwei and waits
// for its receipt. It must return when ctx is cancelled.
type SendFunc func(ctx context.Context, gasPriceGwei uint64) (*types.Receipt, error)

// PriceOracle samples the network gas price.
type PriceOracle interface {
	SuggestGasPriceGwei(ctx context.Context) (uint64, error)
}

// Engine races same-nonce attempts at rising gas prices until one confirms.
type Engine struct {
	log     zerolog.Logger
	oracle  PriceOracle
	metrics *Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics overrides the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an Engine. oracle may be nil when every caller passes a fixed
// minimum price to StartingPrice.
func New(log zerolog.Logger, oracle PriceOracle, opts ...Option) *Engine {
	e := &Engine{
		log:    log.With().Str("component", "escalator").Logger(),
		oracle: oracle,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = NewMetrics(nil)
	}
	return e
}

// StartingPrice returns minGasPrice when non-zero, otherwise the oracle
// price clamped to maxGasPrice.
func (e *Engine) StartingPrice(ctx context.Context, minGasPrice, maxGasPrice uint64) (uint64, error) {
	if minGasPrice != 0 {
		return minGasPrice, nil
	}
	if e.oracle == nil {
		return 0, fmt.Errorf("%w: no min gas price and no price oracle", ErrInvalidConfig)
	}

	suggested, err := e.oracle.SuggestGasPriceGwei(ctx)
	if err != nil {
		return 0, fmt.Errorf("sample gas price: %w", err)
	}
	if suggested > maxGasPrice {
		e.log.Warn().
			Uint64("suggested_gwei", suggested).
			Uint64("max_gwei", maxGasPrice).
			Msg("Network congested, gas price above max, clamping to max")
		return maxGasPrice, nil
	}
	return suggested, nil
}

var errNoReceipt = errors.New("attempt returned no receipt")

type attemptResult struct {
	n       int
	price   uint64
	receipt *types.Receipt
	err     error
}

// Send issues the first attempt at cfg.MinGasPrice and a replacement every
// cfg.Delay at the next price until a receipt arrives. Exactly one receipt is
// returned; losing attempts are cancelled and not awaited.
func (e *Engine) Send(ctx context.Context, send SendFunc, cfg Config) (*types.Receipt, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := e.log.With().Str("submission_id", uuid.NewString()).Logger()
	resolved := atomic.NewBool(false)
	inflight := atomic.NewInt32(0)
	results := make(chan attemptResult)
	started := time.Now()

	attempts := 0
	issue := func(price uint64) {
		attempts++
		inflight.Inc()
		e.metrics.AttemptsTotal.Inc()
		e.metrics.GasPriceGwei.Set(float64(price))
		if price == cfg.MaxGasPrice {
			e.metrics.CeilingHitsTotal.Inc()
		}
		log.Info().Int("attempt", attempts).Uint64("gas_price_gwei", price).Msg("Issuing transaction attempt")

		go func(n int, price uint64) {
			receipt, err := send(attemptCtx, price)
			// resolve before leaving the in-flight set so a drained set with
			// no winner means every attempt failed
			if err == nil && receipt != nil {
				if !resolved.CompareAndSwap(false, true) {
					inflight.Dec()
					return
				}
				e.metrics.ConfirmationsTotal.Inc()
			} else if err == nil {
				err = errNoReceipt
			}
			inflight.Dec()
			select {
			case results <- attemptResult{n: n, price: price, receipt: receipt, err: err}:
			case <-attemptCtx.Done():
			}
		}(attempts, price)
	}

	price := min(cfg.MinGasPrice, cfg.MaxGasPrice)
	issue(price)
	timer := time.NewTimer(cfg.Delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case res := <-results:
			if res.err == nil {
				cancel()
				e.metrics.AttemptsPerTx.Observe(float64(attempts))
				e.metrics.TimeToConfirm.Observe(time.Since(started).Seconds())
				log.Info().
					Int("attempt", res.n).
					Uint64("gas_price_gwei", res.price).
					Str("tx_hash", res.receipt.TxHash.Hex()).
					Msg("Transaction confirmed")
				return res.receipt, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if isNonceTooLow(res.err) && inflight.Load() == 0 && !resolved.Load() {
				e.metrics.AttemptErrorsTotal.WithLabelValues("nonce_consumed").Inc()
				return nil, fmt.Errorf("attempt %d at %d gwei: %w: %w", res.n, res.price, ErrNonceConsumed, res.err)
			}
			if IsReplacementError(res.err) {
				e.metrics.AttemptErrorsTotal.WithLabelValues("replacement").Inc()
				log.Debug().Err(res.err).Int("attempt", res.n).Msg("Attempt superseded, waiting on earlier attempts")
				continue
			}
			e.metrics.AttemptErrorsTotal.WithLabelValues("fatal").Inc()
			log.Error().Err(res.err).Int("attempt", res.n).Uint64("gas_price_gwei", res.price).Msg("Attempt failed, aborting escalation")
			return nil, fmt.Errorf("attempt %d at %d gwei: %w", res.n, res.price, res.err)

		case <-timer.C:
			if price >= cfg.MaxGasPrice && cfg.CeilingPolicy == CeilingStop {
				log.Warn().Uint64("max_gwei", cfg.MaxGasPrice).Int("attempts", attempts).Msg("Gas price ceiling reached, giving up")
				return nil, ErrGasCeilingReached
			}
			price = cfg.next(price)
			issue(price)
			timer.Reset(cfg.Delay)
		}
	}
}
