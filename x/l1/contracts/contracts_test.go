package contracts

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// fakeCaller answers calls by method name with pre-packed outputs.
type fakeCaller struct {
	abi     abi.ABI
	results map[string][]any
	calls   []string
}

func (f *fakeCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	method, err := f.abi.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	f.calls = append(f.calls, method.Name)
	return method.Outputs.Pack(f.results[method.Name]...)
}

func TestAddressManagerGetAddress(t *testing.T) {
	t.Parallel()

	am, err := NewAddressManager(common.HexToAddress("0xaa"))
	require.NoError(t, err)

	want := common.HexToAddress("0x000000000000000000000000000000000000c7c7")
	caller := &fakeCaller{abi: am.ABI(), results: map[string][]any{"getAddress": {want}}}

	got, err := am.GetAddress(context.Background(), caller, NameCanonicalTransactionChain)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, []string{"getAddress"}, caller.calls)
}

func TestCanonicalTransactionChainReadsAndPacks(t *testing.T) {
	t.Parallel()

	ctc, err := NewCanonicalTransactionChain(common.HexToAddress("0xbb"))
	require.NoError(t, err)

	caller := &fakeCaller{abi: ctc.ABI(), results: map[string][]any{
		"getTotalElements":           {big.NewInt(42)},
		"getNumPendingQueueElements": {big.NewInt(3)},
	}}

	total, err := ctc.TotalElements(context.Background(), caller)
	require.NoError(t, err)
	require.Equal(t, uint64(42), total)

	pending, err := ctc.NumPendingQueueElements(context.Background(), caller)
	require.NoError(t, err)
	require.Equal(t, uint64(3), pending)

	data, err := ctc.PackAppendSequencerBatch(42, 5, []byte{0x01, 0x02})
	require.NoError(t, err)

	method := ctc.ABI().Methods["appendSequencerBatch"]
	require.Equal(t, method.ID, data[:4])
	args, err := method.Inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Equal(t, big.NewInt(42), args[0])
	require.Equal(t, big.NewInt(5), args[1])
	require.Equal(t, []byte{0x01, 0x02}, args[2])

	_, err = ctc.PackAppendSequencerBatch(0, 1<<24, nil)
	require.Error(t, err)
}

func TestStateCommitmentChainPack(t *testing.T) {
	t.Parallel()

	scc, err := NewStateCommitmentChain(common.HexToAddress("0xcc"))
	require.NoError(t, err)

	roots := []common.Hash{common.HexToHash("0x01"), common.HexToHash("0x02")}
	data, err := scc.PackAppendStateBatch(roots, 7)
	require.NoError(t, err)

	method := scc.ABI().Methods["appendStateBatch"]
	args, err := method.Inputs.Unpack(data[4:])
	require.NoError(t, err)
	batch := args[0].([][32]byte)
	require.Len(t, batch, 2)
	require.Equal(t, [32]byte(roots[1]), batch[1])
	require.Equal(t, big.NewInt(7), args[1])
}

func TestZeroAddressRejected(t *testing.T) {
	t.Parallel()

	_, err := NewStateCommitmentChain(common.Address{})
	require.Error(t, err)
}
