package contracts

import (
	"context"
	_ "embed"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

//go:embed abi/state_commitment_chain.json
var stateCommitmentChainABIJSON string

var _ Binding = (*StateCommitmentChain)(nil)

// StateCommitmentChain holds L2 state roots.
type StateCommitmentChain struct {
	*binding
}

func NewStateCommitmentChain(addr common.Address) (*StateCommitmentChain, error) {
	b, err := newBinding("StateCommitmentChain", stateCommitmentChainABIJSON, addr)
	if err != nil {
		return nil, err
	}
	return &StateCommitmentChain{binding: b}, nil
}

// TotalElements is the number of state roots already appended.
func (s *StateCommitmentChain) TotalElements(ctx context.Context, caller Caller) (uint64, error) {
	res, err := s.call(ctx, caller, "getTotalElements")
	if err != nil {
		return 0, err
	}
	return bigToUint64(res[0])
}

// PackAppendStateBatch encodes appendStateBatch calldata.
func (s *StateCommitmentChain) PackAppendStateBatch(roots []common.Hash, start uint64) ([]byte, error) {
	batch := make([][32]byte, len(roots))
	for i, r := range roots {
		batch[i] = r
	}
	data, err := s.abi.Pack("appendStateBatch", batch, new(big.Int).SetUint64(start))
	if err != nil {
		return nil, fmt.Errorf("failed to pack appendStateBatch calldata: %w", err)
	}
	return data, nil
}
