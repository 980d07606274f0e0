package submitter

import (
	"sync"
	"time"

	"github.com/compose-network/batch-submitter/x/rollup"
	"github.com/ethereum/go-ethereum/common"
)

// Outcome is how an iteration ended without error.
type Outcome string

const (
	OutcomeSubmitted Outcome = "submitted"
	OutcomeSynced    Outcome = "synced"
	OutcomeNoRange   Outcome = "no_range"
	OutcomeWaiting   Outcome = "waiting"
	// OutcomeFailed is only reported through Status.
	OutcomeFailed Outcome = "failed"
)

// Status is a point-in-time copy of the controller state.
type Status struct {
	Iterations          uint64                `json:"iterations"`
	LastOutcome         Outcome               `json:"last_outcome,omitempty"`
	LastError           string                `json:"last_error,omitempty"`
	LastIterationAt     time.Time             `json:"last_iteration_at"`
	LastBatchSubmission time.Time             `json:"last_batch_submission"`
	LastTxHash          *common.Hash          `json:"last_tx_hash,omitempty"`
	LastRange           *rollup.BatchRange    `json:"last_range,omitempty"`
	Snapshot            *rollup.ChainSnapshot `json:"snapshot,omitempty"`
	Ready               bool                  `json:"ready"`
}

// state is the only data carried across iterations.
type state struct {
	mu sync.RWMutex

	lastBatchSubmission time.Time
	status              Status
}

func (s *state) LastBatchSubmission() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastBatchSubmission
}

func (s *state) recordSubmission(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBatchSubmission = at
}

func (s *state) recordIteration(at time.Time, res *IterationResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Iterations++
	s.status.LastIterationAt = at
	if err != nil {
		s.status.LastOutcome = OutcomeFailed
		s.status.LastError = err.Error()
		return
	}

	s.status.Ready = true
	s.status.LastError = ""
	s.status.LastOutcome = res.Outcome
	if res.Snapshot != nil {
		s.status.Snapshot = res.Snapshot
	}
	if res.Range != nil {
		r := *res.Range
		s.status.LastRange = &r
	}
	if res.Receipt != nil {
		h := res.Receipt.TxHash
		s.status.LastTxHash = &h
	}
}

func (s *state) snapshot() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	st.LastBatchSubmission = s.lastBatchSubmission
	return st
}
