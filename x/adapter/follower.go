package adapter

import (
	"context"
	"fmt"

	"github.com/compose-network/batch-submitter/x/l1/contracts"
	"github.com/compose-network/batch-submitter/x/rollup"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var _ ChainAdapter = (*Follower)(nil)

// Follower appends L2 state roots to the state commitment chain.
type Follower struct {
	*BaseAdapter
}

func NewFollower(base *BaseAdapter) *Follower {
	return &Follower{BaseAdapter: base}
}

func (f *Follower) chain() (*contracts.StateCommitmentChain, error) {
	snap, err := f.Snapshot()
	if err != nil {
		return nil, err
	}
	return contracts.NewStateCommitmentChain(snap.Addresses.StateCommitmentChain)
}

// GetBatchRange stays FinalityConfirmations blocks behind the L2 head.
func (f *Follower) GetBatchRange(ctx context.Context) (*rollup.BatchRange, error) {
	scc, err := f.chain()
	if err != nil {
		return nil, err
	}
	start, err := f.totalElements(ctx, "getTotalElements", scc.TotalElements)
	if err != nil {
		return nil, err
	}
	head, err := f.l2Head(ctx)
	if err != nil {
		return nil, err
	}

	if head+1 <= f.cfg.FinalityConfirmations {
		return nil, nil
	}
	end := min(head+1-f.cfg.FinalityConfirmations, start+f.cfg.MaxBatchSize)
	if start >= end {
		return nil, nil
	}
	return &rollup.BatchRange{Start: start, End: end}, nil
}

func (f *Follower) SubmitBatch(ctx context.Context, r rollup.BatchRange, s Session) (*types.Receipt, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.Empty() {
		return nil, nil
	}
	scc, err := f.chain()
	if err != nil {
		return nil, err
	}
	blocks, err := f.blocks(ctx, r)
	if err != nil {
		return nil, err
	}

	roots := make([]common.Hash, len(blocks))
	for i, block := range blocks {
		roots[i] = block.Root()
	}
	if !s.ShouldSubmit(uint64(len(roots)) * common.HashLength) {
		return nil, nil
	}

	calldata, err := scc.PackAppendStateBatch(roots, r.Start)
	if err != nil {
		return nil, err
	}
	f.log.Info().Uint64("start", r.Start).Int("roots", len(roots)).Msg("Submitting state batch")
	return f.send(ctx, s, scc.Address(), calldata, fmt.Sprintf("state-batch %d+%d", r.Start, len(roots)))
}

// OnSync does nothing; state roots are only committed once the node is live.
func (f *Follower) OnSync(ctx context.Context, s Session) (*types.Receipt, error) {
	f.log.Info().Msg("Syncing, skipping state batch submission")
	return nil, nil
}
