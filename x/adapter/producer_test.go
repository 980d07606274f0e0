package adapter

import (
	"bytes"
	"context"
	"io"
	"math/big"
	"math/rand"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/compose-network/batch-submitter/x/l1/contracts"
	"github.com/compose-network/batch-submitter/x/rollup"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/require"
)

func newProducer(t *testing.T, mutate func(*Config)) (*Producer, *fixture) {
	t.Helper()
	f := newFixture(t, mutate)
	p := NewProducer(f.base)
	_, err := p.UpdateChainInfo(context.Background())
	require.NoError(t, err)
	return p, f
}

func randomTx(r *rand.Rand, nonce uint64, size int) *types.Transaction {
	data := make([]byte, size)
	r.Read(data)
	to := common.HexToAddress("0xbeef")
	return types.NewTx(&types.LegacyTx{Nonce: nonce, To: &to, Gas: 21000, GasPrice: big.NewInt(1), Data: data})
}

type appendCall struct {
	start, count uint64
	payload      []byte
}

func decodeAppendSequencerBatch(t *testing.T, data []byte) appendCall {
	t.Helper()
	ctc, err := contracts.NewCanonicalTransactionChain(ctcAddr)
	require.NoError(t, err)
	method := ctc.ABI().Methods["appendSequencerBatch"]
	require.Equal(t, method.ID, data[:4])
	args, err := method.Inputs.Unpack(data[4:])
	require.NoError(t, err)
	return appendCall{
		start:   args[0].(*big.Int).Uint64(),
		count:   args[1].(*big.Int).Uint64(),
		payload: args[2].([]byte),
	}
}

func decompress(t *testing.T, payload []byte) []byte {
	t.Helper()
	out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(payload)))
	require.NoError(t, err)
	return out
}

func TestProducerGetBatchRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		total uint64
		head  uint64
		max   uint64
		want  *rollup.BatchRange
	}{
		{name: "capped by max batch size", total: 5, head: 20, max: 10, want: &rollup.BatchRange{Start: 5, End: 15}},
		{name: "capped by head", total: 5, head: 7, max: 10, want: &rollup.BatchRange{Start: 5, End: 8}},
		{name: "caught up", total: 21, head: 20, max: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, f := newProducer(t, func(c *Config) { c.MaxBatchSize = tt.max })
			f.l2.head = tt.head
			f.l1.returns("getTotalElements", new(big.Int).SetUint64(tt.total))

			got, err := p.GetBatchRange(context.Background())
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestProducerGetBatchRangeNeedsSnapshot(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	_, err := NewProducer(f.base).GetBatchRange(context.Background())
	require.ErrorIs(t, err, ErrNoSnapshot)
}

func TestProducerSubmitBatch(t *testing.T) {
	t.Parallel()

	p, f := newProducer(t, nil)
	r := rand.New(rand.NewSource(1))
	var want bytes.Buffer
	for n := uint64(3); n < 6; n++ {
		block := f.l2.addBlock(n, randomTx(r, n, 64), randomTx(r, n+100, 64))
		enc, err := rlp.EncodeToBytes(block.Transactions())
		require.NoError(t, err)
		want.Write(enc)
	}

	session := &stubSession{allow: true}
	receipt, err := p.SubmitBatch(context.Background(), rollup.BatchRange{Start: 3, End: 6}, session)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	require.Len(t, session.sizes, 1)
	require.Equal(t, []string{"tx-batch 3+3"}, session.labels)
	require.Equal(t, []uint64{7}, f.signer.sent)

	call := decodeAppendSequencerBatch(t, f.signer.lastData(t))
	require.Equal(t, uint64(3), call.start)
	require.Equal(t, uint64(3), call.count)
	require.Equal(t, uint64(len(call.payload)), session.sizes[0])
	require.Equal(t, want.Bytes(), decompress(t, call.payload))
	require.Equal(t, ctcAddr, f.signer.prepared[0].To)
}

func TestProducerSubmitBatchDeferred(t *testing.T) {
	t.Parallel()

	p, f := newProducer(t, nil)
	f.l2.addBlock(0)

	session := &stubSession{allow: false}
	receipt, err := p.SubmitBatch(context.Background(), rollup.BatchRange{Start: 0, End: 1}, session)
	require.NoError(t, err)
	require.Nil(t, receipt)
	require.Len(t, session.sizes, 1)
	require.Empty(t, session.labels)
	require.Empty(t, f.signer.prepared)
}

func TestProducerTrimsToMaxTxSize(t *testing.T) {
	t.Parallel()

	p, f := newProducer(t, func(c *Config) { c.MaxTxSize = 2500 })
	r := rand.New(rand.NewSource(2))
	for n := uint64(0); n < 4; n++ {
		f.l2.addBlock(n, randomTx(r, n, 1000))
	}

	session := &stubSession{allow: true}
	_, err := p.SubmitBatch(context.Background(), rollup.BatchRange{Start: 0, End: 4}, session)
	require.NoError(t, err)

	call := decodeAppendSequencerBatch(t, f.signer.lastData(t))
	require.Equal(t, uint64(2), call.count)
	require.LessOrEqual(t, len(call.payload), 2500)
}

func TestProducerKeepsOneOversizedBlock(t *testing.T) {
	t.Parallel()

	p, f := newProducer(t, func(c *Config) { c.MaxTxSize = 10 })
	r := rand.New(rand.NewSource(3))
	f.l2.addBlock(0, randomTx(r, 0, 500))
	f.l2.addBlock(1, randomTx(r, 1, 500))

	_, err := p.SubmitBatch(context.Background(), rollup.BatchRange{Start: 0, End: 2}, &stubSession{allow: true})
	require.NoError(t, err)

	call := decodeAppendSequencerBatch(t, f.signer.lastData(t))
	require.Equal(t, uint64(1), call.count)
}

func TestProducerSubmitBatchRejectsInvalidRange(t *testing.T) {
	t.Parallel()

	p, f := newProducer(t, nil)
	_, err := p.SubmitBatch(context.Background(), rollup.BatchRange{Start: 5, End: 2}, &stubSession{allow: true})
	require.ErrorIs(t, err, rollup.ErrInvalidRange)
	require.Empty(t, f.signer.prepared)
}

func TestProducerOnSync(t *testing.T) {
	t.Parallel()

	t.Run("no pending queue elements", func(t *testing.T) {
		t.Parallel()

		p, f := newProducer(t, nil)
		f.l1.returns("getNumPendingQueueElements", big.NewInt(0))

		receipt, err := p.OnSync(context.Background(), &stubSession{allow: true})
		require.NoError(t, err)
		require.Nil(t, receipt)
		require.Empty(t, f.signer.prepared)
	})

	t.Run("clears the queue with an empty batch", func(t *testing.T) {
		t.Parallel()

		p, f := newProducer(t, nil)
		f.l1.returns("getNumPendingQueueElements", big.NewInt(2))
		f.l1.returns("getTotalElements", big.NewInt(9))

		session := &stubSession{allow: false}
		receipt, err := p.OnSync(context.Background(), session)
		require.NoError(t, err)
		require.NotNil(t, receipt)
		require.Equal(t, []string{"clear-queue"}, session.labels)

		call := decodeAppendSequencerBatch(t, f.signer.lastData(t))
		require.Equal(t, uint64(9), call.start)
		require.Zero(t, call.count)
		require.Empty(t, call.payload)
	})
}
