package adapter

import (
	"context"
	"math/big"

	"github.com/compose-network/batch-submitter/x/escalator"
	"github.com/compose-network/batch-submitter/x/rollup"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainAdapter knows what to submit for one rollup role. The controller
// drives it once per iteration: UpdateChainInfo first, then either OnSync or
// GetBatchRange followed by SubmitBatch.
type ChainAdapter interface {
	// Name identifies the adapter in logs and metrics.
	Name() string

	// L2ChainID returns the chain id of the L2 node.
	L2ChainID(ctx context.Context) (*big.Int, error)

	// UpdateChainInfo refreshes the node view and resolves contract addresses.
	UpdateChainInfo(ctx context.Context) (*rollup.ChainSnapshot, error)

	// GetBatchRange returns the next range to submit, or nil when there is
	// nothing to do.
	GetBatchRange(ctx context.Context) (*rollup.BatchRange, error)

	// SubmitBatch builds the batch for r and submits it through the session.
	// A nil receipt with a nil error means the session deferred submission.
	SubmitBatch(ctx context.Context, r rollup.BatchRange, s Session) (*types.Receipt, error)

	// OnSync runs instead of batch submission while the node is syncing.
	OnSync(ctx context.Context, s Session) (*types.Receipt, error)
}

// Session is the controller side of one iteration.
type Session interface {
	// ShouldSubmit applies the batch timing policy to a batch of the given size.
	ShouldSubmit(batchSizeBytes uint64) bool

	// Send runs the gas escalation for one transaction and records the
	// submission time.
	Send(ctx context.Context, send escalator.SendFunc, label string) (*types.Receipt, error)
}

// L2Client is the read surface of the L2 node.
type L2Client interface {
	RollupInfo(ctx context.Context) (*rollup.Info, error)
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	BlockByNumber(ctx context.Context, number *big.Int) (*types.Block, error)
}
