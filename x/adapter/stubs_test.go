package adapter

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/compose-network/batch-submitter/x/escalator"
	"github.com/compose-network/batch-submitter/x/l1"
	"github.com/compose-network/batch-submitter/x/l1/contracts"
	"github.com/compose-network/batch-submitter/x/rollup"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	ctcAddr      = common.HexToAddress("0x00000000000000000000000000000000000c7c00")
	sccAddr      = common.HexToAddress("0x000000000000000000000000000000000005cc00")
	resolverAddr = common.HexToAddress("0x00000000000000000000000000000000000a0000")
	signerAddr   = common.HexToAddress("0x00000000000000000000000000000000000051a0")
)

type stubL2 struct {
	mu       sync.Mutex
	info     *rollup.Info
	chainID  *big.Int
	head     uint64
	blocks   map[uint64]*types.Block
	failures int
	calls    map[string]int
}

func newStubL2() *stubL2 {
	return &stubL2{
		info: &rollup.Info{
			Signer:      signerAddr,
			Mode:        "sequencer",
			L1BlockHash: common.HexToHash("0x01"),
			Addresses: rollup.Addresses{
				CanonicalTransactionChain: ctcAddr,
				StateCommitmentChain:      sccAddr,
				AddressResolver:           resolverAddr,
			},
		},
		chainID: big.NewInt(420),
		blocks:  make(map[uint64]*types.Block),
		calls:   make(map[string]int),
	}
}

// fail reports whether the current call should fail, consuming one failure.
func (s *stubL2) fail(op string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	if s.failures > 0 {
		s.failures--
		return true
	}
	return false
}

func (s *stubL2) RollupInfo(context.Context) (*rollup.Info, error) {
	if s.fail("rollup_getInfo") {
		return nil, errors.New("connection refused")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	info := *s.info
	return &info, nil
}

func (s *stubL2) ChainID(context.Context) (*big.Int, error) {
	if s.fail("eth_chainId") {
		return nil, errors.New("connection refused")
	}
	return s.chainID, nil
}

func (s *stubL2) BlockNumber(context.Context) (uint64, error) {
	if s.fail("eth_blockNumber") {
		return 0, errors.New("connection refused")
	}
	return s.head, nil
}

func (s *stubL2) BlockByNumber(_ context.Context, n *big.Int) (*types.Block, error) {
	if s.fail("eth_getBlockByNumber") {
		return nil, errors.New("connection refused")
	}
	block, ok := s.blocks[n.Uint64()]
	if !ok {
		return nil, ethereum.NotFound
	}
	return block, nil
}

func (s *stubL2) addBlock(n uint64, txs ...*types.Transaction) *types.Block {
	header := &types.Header{Number: new(big.Int).SetUint64(n), Root: common.BigToHash(new(big.Int).SetUint64(1000 + n))}
	block := types.NewBlock(header, &types.Body{Transactions: txs}, nil, trie.NewStackTrie(nil))
	s.blocks[n] = block
	if n > s.head {
		s.head = n
	}
	return block
}

// fakeL1 serves contract calls from per-method handlers.
type fakeL1 struct {
	mu       sync.Mutex
	abis     map[common.Address]abi.ABI
	handlers map[string]func(args []any) []any
	calls    map[string]int
}

func newFakeL1(t *testing.T) *fakeL1 {
	t.Helper()
	ctc, err := contracts.NewCanonicalTransactionChain(ctcAddr)
	require.NoError(t, err)
	scc, err := contracts.NewStateCommitmentChain(sccAddr)
	require.NoError(t, err)
	am, err := contracts.NewAddressManager(resolverAddr)
	require.NoError(t, err)

	return &fakeL1{
		abis: map[common.Address]abi.ABI{
			ctcAddr:      ctc.ABI(),
			sccAddr:      scc.ABI(),
			resolverAddr: am.ABI(),
		},
		handlers: make(map[string]func(args []any) []any),
		calls:    make(map[string]int),
	}
}

func (f *fakeL1) on(method string, h func(args []any) []any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = h
}

func (f *fakeL1) returns(method string, values ...any) {
	f.on(method, func([]any) []any { return values })
}

func (f *fakeL1) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeL1) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	contract, ok := f.abis[*msg.To]
	if !ok {
		return nil, errors.New("no contract at address")
	}
	method, err := contract.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	f.calls[method.Name]++
	h, ok := f.handlers[method.Name]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return method.Outputs.Pack(h(args)...)
}

type stubSigner struct {
	mu       sync.Mutex
	prepared []*l1.TxRequest
	sent     []uint64
}

func (s *stubSigner) Address() common.Address { return signerAddr }

func (s *stubSigner) Balance(context.Context) (*big.Int, error) { return big.NewInt(0), nil }

func (s *stubSigner) SuggestGasPriceGwei(context.Context) (uint64, error) { return 1, nil }

func (s *stubSigner) PrepareTx(_ context.Context, to common.Address, data []byte) (*l1.TxRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req := &l1.TxRequest{To: to, Data: data, Nonce: uint64(len(s.prepared)), GasLimit: 1_000_000}
	s.prepared = append(s.prepared, req)
	return req, nil
}

func (s *stubSigner) Send(_ context.Context, req *l1.TxRequest, gasPriceGwei uint64) (*types.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, gasPriceGwei)
	to := req.To
	return types.NewTx(&types.LegacyTx{
		Nonce:    req.Nonce,
		To:       &to,
		Gas:      req.GasLimit,
		GasPrice: l1.GweiToWei(gasPriceGwei),
		Data:     req.Data,
	}), nil
}

func (s *stubSigner) Wait(_ context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash()}, nil
}

func (s *stubSigner) lastData(t *testing.T) []byte {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.prepared)
	return s.prepared[len(s.prepared)-1].Data
}

// stubSession approves or defers every batch and sends once at a fixed price.
type stubSession struct {
	allow  bool
	sizes  []uint64
	labels []string
}

func (s *stubSession) ShouldSubmit(size uint64) bool {
	s.sizes = append(s.sizes, size)
	return s.allow
}

func (s *stubSession) Send(ctx context.Context, send escalator.SendFunc, label string) (*types.Receipt, error) {
	s.labels = append(s.labels, label)
	return send(ctx, 7)
}

type fixture struct {
	l2     *stubL2
	l1     *fakeL1
	signer *stubSigner
	base   *BaseAdapter
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	if mutate != nil {
		mutate(&cfg)
	}

	f := &fixture{l2: newStubL2(), l1: newFakeL1(t), signer: &stubSigner{}}
	base, err := NewBaseAdapter("test", cfg, f.l2, f.l1, f.signer, zerolog.Nop())
	require.NoError(t, err)
	f.base = base
	return f
}
