package contracts

import (
	"context"
	_ "embed"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

//go:embed abi/canonical_transaction_chain.json
var canonicalTransactionChainABIJSON string

var _ Binding = (*CanonicalTransactionChain)(nil)

// CanonicalTransactionChain holds the ordered L2 transaction batches.
type CanonicalTransactionChain struct {
	*binding
}

func NewCanonicalTransactionChain(addr common.Address) (*CanonicalTransactionChain, error) {
	b, err := newBinding("CanonicalTransactionChain", canonicalTransactionChainABIJSON, addr)
	if err != nil {
		return nil, err
	}
	return &CanonicalTransactionChain{binding: b}, nil
}

// TotalElements is the number of L2 transactions already appended.
func (c *CanonicalTransactionChain) TotalElements(ctx context.Context, caller Caller) (uint64, error) {
	res, err := c.call(ctx, caller, "getTotalElements")
	if err != nil {
		return 0, err
	}
	return bigToUint64(res[0])
}

// NumPendingQueueElements is the number of L1→L2 messages waiting for inclusion.
func (c *CanonicalTransactionChain) NumPendingQueueElements(ctx context.Context, caller Caller) (uint64, error) {
	res, err := c.call(ctx, caller, "getNumPendingQueueElements")
	if err != nil {
		return 0, err
	}
	return bigToUint64(res[0])
}

// PackAppendSequencerBatch encodes appendSequencerBatch calldata.
func (c *CanonicalTransactionChain) PackAppendSequencerBatch(start, count uint64, batchData []byte) ([]byte, error) {
	if count >= 1<<24 {
		return nil, fmt.Errorf("batch of %d elements exceeds uint24", count)
	}
	if start >= 1<<40 {
		return nil, fmt.Errorf("start element %d exceeds uint40", start)
	}
	data, err := c.abi.Pack("appendSequencerBatch",
		new(big.Int).SetUint64(start),
		new(big.Int).SetUint64(count),
		batchData,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to pack appendSequencerBatch calldata: %w", err)
	}
	return data, nil
}

func bigToUint64(v any) (uint64, error) {
	n, ok := v.(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected numeric return type %T", v)
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("value %s overflows uint64", n)
	}
	return n.Uint64(), nil
}
