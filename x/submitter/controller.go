package submitter

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/compose-network/batch-submitter/x/adapter"
	"github.com/compose-network/batch-submitter/x/escalator"
	"github.com/compose-network/batch-submitter/x/l1"
	"github.com/compose-network/batch-submitter/x/rollup"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
)

// IterationResult describes an iteration that ended without error.
type IterationResult struct {
	Outcome  Outcome
	Receipt  *types.Receipt
	Range    *rollup.BatchRange
	Snapshot *rollup.ChainSnapshot
}

// Controller runs the submission control loop one iteration at a time.
// RunIteration is not reentrant; the scheduler serializes calls.
type Controller struct {
	log      zerolog.Logger
	adapter  adapter.ChainAdapter
	account  Account
	engine   Escalator
	settings Settings
	timing   TimingPolicy
	metrics  *Metrics
	now      func() time.Time

	role       rollup.Role
	minBalance *big.Int
	balance    BalancePolicy

	chainMu sync.RWMutex
	chainID *big.Int

	state state
}

// New constructs a Controller using the provided config.
func New(cfg Config) (*Controller, error) {
	if err := cfg.apply(); err != nil {
		return nil, err
	}
	role, _ := rollup.ParseRole(cfg.Settings.Role)
	balance, _ := ParseBalancePolicy(cfg.Settings.BalancePolicy)

	return &Controller{
		log:        cfg.Logger,
		adapter:    cfg.Adapter,
		account:    cfg.Account,
		engine:     cfg.Engine,
		settings:   cfg.Settings,
		timing:     NewTimingPolicy(cfg.Settings.MinTxSize, cfg.Settings.MaxBatchSubmissionTime, cfg.Logger),
		metrics:    cfg.Metrics,
		now:        cfg.Now,
		role:       role,
		minBalance: l1.EtherToWei(cfg.Settings.MinBalanceEth),
		balance:    balance,
	}, nil
}

// ChainID is the cached L2 chain id, nil until the first successful iteration.
func (c *Controller) ChainID() *big.Int {
	c.chainMu.RLock()
	defer c.chainMu.RUnlock()
	return c.chainID
}

// Status returns a copy of the controller state.
func (c *Controller) Status() Status {
	return c.state.snapshot()
}

// Ready reports whether an iteration has completed without error.
func (c *Controller) Ready() bool {
	return c.state.snapshot().Ready
}

// RunIteration refreshes the chain view and submits at most one batch.
func (c *Controller) RunIteration(ctx context.Context) (*IterationResult, error) {
	started := c.now()
	res, err := c.runIteration(ctx)
	c.metrics.IterationDuration.Observe(c.now().Sub(started).Seconds())
	c.state.recordIteration(c.now(), res, err)

	if err != nil {
		kind := KindOf(err)
		c.metrics.ErrorsTotal.WithLabelValues(kind.String()).Inc()
		var serr *Error
		ev := c.log.Error().Err(err).Str("kind", kind.String())
		if errors.As(err, &serr) {
			ev = ev.Str("op", serr.Op).Fields(serr.Context)
		}
		ev.Msg("Iteration failed")
		return nil, err
	}

	c.metrics.IterationsTotal.WithLabelValues(string(res.Outcome)).Inc()
	ev := c.log.Info().Str("outcome", string(res.Outcome))
	if res.Range != nil {
		ev = ev.Str("range", res.Range.String())
	}
	if res.Receipt != nil {
		ev = ev.Str("tx_hash", res.Receipt.TxHash.Hex())
		if res.Receipt.BlockNumber != nil {
			ev = ev.Uint64("block", res.Receipt.BlockNumber.Uint64())
		}
	}
	ev.Msg("Iteration complete")
	return res, nil
}

func (c *Controller) runIteration(ctx context.Context) (*IterationResult, error) {
	if err := c.ensureChainID(ctx); err != nil {
		return nil, err
	}

	snap, err := c.adapter.UpdateChainInfo(ctx)
	if err != nil {
		return nil, newError(KindTransient, "update_chain_info", err)
	}
	if snap.Role != c.role {
		c.log.Warn().
			Str("configured", c.role.String()).
			Str("node", snap.Role.String()).
			Msg("Node mode differs from configured role")
	}

	if err := c.checkBalance(ctx); err != nil {
		return nil, err
	}

	sess := &session{c: c}
	if snap.Syncing {
		c.log.Info().Msg("Node is syncing, skipping batch submission")
		receipt, err := c.adapter.OnSync(ctx, sess)
		if err != nil {
			return nil, c.classify("on_sync", err)
		}
		return &IterationResult{Outcome: OutcomeSynced, Receipt: receipt, Snapshot: snap}, nil
	}

	r, err := c.adapter.GetBatchRange(ctx)
	if err != nil {
		return nil, newError(KindTransient, "get_batch_range", err)
	}
	if r == nil {
		c.log.Debug().Msg("No batch range, nothing to submit")
		return &IterationResult{Outcome: OutcomeNoRange, Snapshot: snap}, nil
	}
	if err := r.Validate(); err != nil {
		return nil, newError(KindInvalidRange, "get_batch_range", err).
			WithContext("start", r.Start).
			WithContext("end", r.End)
	}
	c.metrics.BatchElements.Observe(float64(r.Len()))

	receipt, err := c.adapter.SubmitBatch(ctx, *r, sess)
	if err != nil {
		return nil, c.classify("submit_batch", err).WithContext("range", r.String())
	}
	if receipt == nil {
		c.metrics.DeferredTotal.Inc()
		return &IterationResult{Outcome: OutcomeWaiting, Range: r, Snapshot: snap}, nil
	}
	return &IterationResult{Outcome: OutcomeSubmitted, Receipt: receipt, Range: r, Snapshot: snap}, nil
}

func (c *Controller) ensureChainID(ctx context.Context) error {
	if c.ChainID() != nil {
		return nil
	}
	id, err := c.adapter.L2ChainID(ctx)
	if err != nil {
		return newError(KindTransient, "l2_chain_id", err)
	}

	c.chainMu.Lock()
	c.chainID = id
	c.chainMu.Unlock()
	c.log.Info().Str("chain_id", id.String()).Msg("Resolved L2 chain id")
	return nil
}

func (c *Controller) checkBalance(ctx context.Context) error {
	addr := c.account.Address()
	bal, err := c.account.Balance(ctx)
	if err != nil {
		return newError(KindTransient, "balance", err)
	}

	eth := l1.FormatEther(bal)
	c.log.Info().
		Str("address", addr.Hex()).
		Str("balance_eth", eth).
		Str("balance_wei", bal.String()).
		Msg("Signer balance")
	c.metrics.BalanceEther.Set(l1.WeiToEther(bal))

	if bal.Cmp(c.minBalance) >= 0 {
		return nil
	}
	c.metrics.LowBalanceTotal.Inc()
	c.log.Error().
		Str("address", addr.Hex()).
		Str("balance_eth", eth).
		Str("min_balance_eth", l1.FormatEther(c.minBalance)).
		Msg("Signer balance below minimum")
	if c.balance == BalanceBlock {
		return newError(KindInsufficientBalance, "balance", ErrInsufficientBalance).
			WithContext("balance_wei", bal.String())
	}
	return nil
}

func (c *Controller) classify(op string, err error) *Error {
	switch {
	case errors.Is(err, rollup.ErrInvalidRange):
		return newError(KindInvalidRange, op, err)
	case errors.Is(err, escalator.ErrInvalidConfig):
		return newError(KindConfig, op, err)
	default:
		return newError(KindTransient, op, err)
	}
}

// session binds one iteration to the timing policy and the escalation engine.
type session struct {
	c *Controller
}

func (s *session) ShouldSubmit(batchSizeBytes uint64) bool {
	s.c.metrics.BatchSizeBytes.Observe(float64(batchSizeBytes))
	return s.c.timing.ShouldSubmit(batchSizeBytes, s.c.state.LastBatchSubmission(), s.c.now())
}

// Send records the submission time before the first attempt is issued.
func (s *session) Send(ctx context.Context, send escalator.SendFunc, label string) (*types.Receipt, error) {
	c := s.c
	at := c.now()
	c.state.recordSubmission(at)
	c.metrics.LastSubmissionTime.Set(float64(at.Unix()))

	start, err := c.engine.StartingPrice(ctx, c.settings.MinGasPriceGwei, c.settings.MaxGasPriceGwei)
	if err != nil {
		return nil, err
	}

	c.metrics.SubmissionsInFlight.Inc()
	defer c.metrics.SubmissionsInFlight.Dec()
	c.log.Info().
		Str("label", label).
		Uint64("start_gwei", start).
		Uint64("max_gwei", c.settings.MaxGasPriceGwei).
		Msg("Submitting transaction")
	return c.engine.Send(ctx, send, c.settings.escalation(start))
}
