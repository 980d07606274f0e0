package submitter

import (
	"time"

	"github.com/rs/zerolog"
)

// TimingPolicy decides whether a batch is worth submitting now.
type TimingPolicy struct {
	MinTxSize              uint64
	MaxBatchSubmissionTime time.Duration

	log zerolog.Logger
}

func NewTimingPolicy(minTxSize uint64, maxBatchSubmissionTime time.Duration, log zerolog.Logger) TimingPolicy {
	return TimingPolicy{
		MinTxSize:              minTxSize,
		MaxBatchSubmissionTime: maxBatchSubmissionTime,
		log:                    log,
	}
}

// ShouldSubmit is true for batches of at least MinTxSize bytes, or for any
// batch once MaxBatchSubmissionTime has passed since the last submission.
func (p TimingPolicy) ShouldSubmit(batchSizeBytes uint64, last, now time.Time) bool {
	if batchSizeBytes >= p.MinTxSize {
		return true
	}

	elapsed := now.Sub(last)
	if elapsed >= p.MaxBatchSubmissionTime {
		p.log.Info().
			Uint64("batch_size", batchSizeBytes).
			Dur("since_last", elapsed).
			Msg("Batch below min size, timeout reached, submitting")
		return true
	}

	p.log.Info().
		Uint64("batch_size", batchSizeBytes).
		Uint64("min_tx_size", p.MinTxSize).
		Dur("wait_remaining", p.MaxBatchSubmissionTime-elapsed).
		Msg("Batch below min size, waiting")
	return false
}
