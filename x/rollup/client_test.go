package rollup

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
)

type rollupAPI struct{ info Info }

func (a *rollupAPI) GetInfo() Info { return a.info }

type ethAPI struct{}

func (ethAPI) ChainId() *hexutil.Big { return (*hexutil.Big)(big.NewInt(420)) }

func newInProcClient(t *testing.T, info Info) *Client {
	t.Helper()

	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("rollup", &rollupAPI{info: info}))
	require.NoError(t, srv.RegisterName("eth", ethAPI{}))
	t.Cleanup(srv.Stop)

	c := NewClient(rpc.DialInProc(srv))
	t.Cleanup(c.Close)
	return c
}

func TestClientRollupInfo(t *testing.T) {
	t.Parallel()

	want := Info{
		Signer:        common.HexToAddress("0x01"),
		Mode:          "sequencer",
		Syncing:       true,
		L1BlockHash:   common.HexToHash("0xabc"),
		L1BlockHeight: 1234,
		Addresses: Addresses{
			CanonicalTransactionChain: common.HexToAddress("0x10"),
			StateCommitmentChain:      common.HexToAddress("0x20"),
		},
	}
	c := newInProcClient(t, want)

	got, err := c.RollupInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, *got)

	snap, err := got.Snapshot(got.Addresses)
	require.NoError(t, err)
	require.Equal(t, RoleProducer, snap.Role)
	require.True(t, snap.Syncing)
	require.Equal(t, uint64(1234), snap.L1BlockHeight)
}

func TestClientChainID(t *testing.T) {
	t.Parallel()

	c := newInProcClient(t, Info{})
	id, err := c.ChainID(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(420), id.Int64())
}
