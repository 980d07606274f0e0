package adapter

import (
	"bytes"
	"context"
	"fmt"

	"github.com/andybalholm/brotli"
	"github.com/compose-network/batch-submitter/x/l1/contracts"
	"github.com/compose-network/batch-submitter/x/rollup"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
)

var _ ChainAdapter = (*Producer)(nil)

// Producer appends L2 transaction batches to the canonical transaction chain.
// L2 block n carries batch element n.
type Producer struct {
	*BaseAdapter
}

func NewProducer(base *BaseAdapter) *Producer {
	return &Producer{BaseAdapter: base}
}

func (p *Producer) chain() (*contracts.CanonicalTransactionChain, error) {
	snap, err := p.Snapshot()
	if err != nil {
		return nil, err
	}
	return contracts.NewCanonicalTransactionChain(snap.Addresses.CanonicalTransactionChain)
}

// GetBatchRange returns [totalElements, min(head+1, totalElements+MaxBatchSize)).
func (p *Producer) GetBatchRange(ctx context.Context) (*rollup.BatchRange, error) {
	ctc, err := p.chain()
	if err != nil {
		return nil, err
	}
	start, err := p.totalElements(ctx, "getTotalElements", ctc.TotalElements)
	if err != nil {
		return nil, err
	}
	head, err := p.l2Head(ctx)
	if err != nil {
		return nil, err
	}

	end := min(head+1, start+p.cfg.MaxBatchSize)
	if start >= end {
		return nil, nil
	}
	return &rollup.BatchRange{Start: start, End: end}, nil
}

// SubmitBatch encodes the blocks of r, trims the batch to MaxTxSize and
// submits it when the session allows.
func (p *Producer) SubmitBatch(ctx context.Context, r rollup.BatchRange, s Session) (*types.Receipt, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.Empty() {
		return nil, nil
	}
	ctc, err := p.chain()
	if err != nil {
		return nil, err
	}
	blocks, err := p.blocks(ctx, r)
	if err != nil {
		return nil, err
	}

	payload, count, err := p.buildPayload(blocks)
	if err != nil {
		return nil, err
	}
	if count < uint64(len(blocks)) {
		p.log.Info().
			Str("range", r.String()).
			Uint64("kept", count).
			Uint64("max_tx_size", p.cfg.MaxTxSize).
			Msg("Batch trimmed to fit max tx size")
	}

	if !s.ShouldSubmit(uint64(len(payload))) {
		return nil, nil
	}

	calldata, err := ctc.PackAppendSequencerBatch(r.Start, count, payload)
	if err != nil {
		return nil, err
	}
	p.log.Info().
		Uint64("start", r.Start).
		Uint64("count", count).
		Int("payload_bytes", len(payload)).
		Msg("Submitting transaction batch")
	return p.send(ctx, s, ctc.Address(), calldata, fmt.Sprintf("tx-batch %d+%d", r.Start, count))
}

// OnSync clears pending L1 to L2 queue elements with an empty batch.
func (p *Producer) OnSync(ctx context.Context, s Session) (*types.Receipt, error) {
	ctc, err := p.chain()
	if err != nil {
		return nil, err
	}
	pending, err := p.totalElements(ctx, "getNumPendingQueueElements", ctc.NumPendingQueueElements)
	if err != nil {
		return nil, err
	}
	if pending == 0 {
		p.log.Info().Msg("Syncing, no pending queue elements")
		return nil, nil
	}
	start, err := p.totalElements(ctx, "getTotalElements", ctc.TotalElements)
	if err != nil {
		return nil, err
	}

	calldata, err := ctc.PackAppendSequencerBatch(start, 0, nil)
	if err != nil {
		return nil, err
	}
	p.log.Info().Uint64("pending", pending).Msg("Syncing, submitting empty batch to clear the queue")
	return p.send(ctx, s, ctc.Address(), calldata, "clear-queue")
}

// buildPayload compresses the RLP transaction lists of as many leading blocks
// as fit in MaxTxSize, keeping at least one.
func (p *Producer) buildPayload(blocks []*types.Block) ([]byte, uint64, error) {
	var raw bytes.Buffer
	var payload []byte
	var count uint64

	for _, block := range blocks {
		enc, err := rlp.EncodeToBytes(block.Transactions())
		if err != nil {
			return nil, 0, fmt.Errorf("encode block %d: %w", block.NumberU64(), err)
		}
		raw.Write(enc)

		compressed, err := compress(raw.Bytes(), p.cfg.CompressionLevel)
		if err != nil {
			return nil, 0, err
		}
		if count > 0 && uint64(len(compressed)) > p.cfg.MaxTxSize {
			break
		}
		payload, count = compressed, count+1
	}
	return payload, count, nil
}

func compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, level)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compress batch: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress batch: %w", err)
	}
	return buf.Bytes(), nil
}
