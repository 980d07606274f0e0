package adapter

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/avast/retry-go/v4"
	"github.com/compose-network/batch-submitter/x/escalator"
	"github.com/compose-network/batch-submitter/x/l1"
	"github.com/compose-network/batch-submitter/x/l1/contracts"
	"github.com/compose-network/batch-submitter/x/rollup"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// ErrNoSnapshot is returned when a batch is requested before UpdateChainInfo.
var ErrNoSnapshot = errors.New("chain info not loaded")

type registryKey struct {
	resolver common.Address
	name     string
	block    common.Hash
}

// BaseAdapter holds what every role needs: the L2 reads, L1 contract reads,
// the signer and the last snapshot. Role adapters embed it.
type BaseAdapter struct {
	name   string
	cfg    Config
	l2     L2Client
	l1     contracts.Caller
	signer l1.Signer
	log    zerolog.Logger

	registry *lru.Cache[registryKey, common.Address]

	mu       sync.RWMutex
	snapshot *rollup.ChainSnapshot
}

// NewBaseAdapter wires the shared dependencies of a role adapter.
func NewBaseAdapter(
	name string,
	cfg Config,
	l2 L2Client,
	caller contracts.Caller,
	signer l1.Signer,
	log zerolog.Logger,
) (*BaseAdapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid adapter config: %w", err)
	}
	if l2 == nil || caller == nil || signer == nil {
		return nil, fmt.Errorf("adapter %s: l2 client, l1 caller and signer are required", name)
	}
	cache, err := lru.New[registryKey, common.Address](cfg.RegistryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create registry cache: %w", err)
	}

	return &BaseAdapter{
		name:     name,
		cfg:      cfg,
		l2:       l2,
		l1:       caller,
		signer:   signer,
		log:      log.With().Str("component", "adapter").Str("role", name).Logger(),
		registry: cache,
	}, nil
}

func (b *BaseAdapter) Name() string { return b.name }

// L2ChainID reads eth_chainId from the L2 node.
func (b *BaseAdapter) L2ChainID(ctx context.Context) (*big.Int, error) {
	var id *big.Int
	err := b.retry(ctx, "eth_chainId", func() error {
		var err error
		id, err = b.l2.ChainID(ctx)
		return err
	})
	return id, err
}

// UpdateChainInfo reads rollup_getInfo and resolves the contract addresses.
func (b *BaseAdapter) UpdateChainInfo(ctx context.Context) (*rollup.ChainSnapshot, error) {
	var info *rollup.Info
	err := b.retry(ctx, "rollup_getInfo", func() error {
		var err error
		info, err = b.l2.RollupInfo(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	addrs := info.Addresses
	if b.cfg.PullAddressesFromRegistry {
		addrs, err = b.resolveAddresses(ctx, info)
		if err != nil {
			return nil, err
		}
	}

	snap, err := info.Snapshot(addrs)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.snapshot = snap
	b.mu.Unlock()
	return snap, nil
}

// Snapshot returns the view stored by the last UpdateChainInfo.
func (b *BaseAdapter) Snapshot() (*rollup.ChainSnapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return b.snapshot, nil
}

func (b *BaseAdapter) resolveAddresses(ctx context.Context, info *rollup.Info) (rollup.Addresses, error) {
	addrs := info.Addresses
	manager, err := contracts.NewAddressManager(info.Addresses.AddressResolver)
	if err != nil {
		return addrs, fmt.Errorf("address resolver: %w", err)
	}

	ctc, err := b.lookup(ctx, manager, contracts.NameCanonicalTransactionChain, info.L1BlockHash)
	if err != nil {
		return addrs, err
	}
	scc, err := b.lookup(ctx, manager, contracts.NameStateCommitmentChain, info.L1BlockHash)
	if err != nil {
		return addrs, err
	}
	addrs.CanonicalTransactionChain = ctc
	addrs.StateCommitmentChain = scc
	return addrs, nil
}

func (b *BaseAdapter) lookup(
	ctx context.Context,
	manager *contracts.AddressManager,
	name string,
	block common.Hash,
) (common.Address, error) {
	key := registryKey{resolver: manager.Address(), name: name, block: block}
	if addr, ok := b.registry.Get(key); ok {
		return addr, nil
	}

	var addr common.Address
	err := b.retry(ctx, "getAddress "+name, func() error {
		var err error
		addr, err = manager.GetAddress(ctx, b.l1, name)
		return err
	})
	if err != nil {
		return common.Address{}, err
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%s is not registered at resolver %s", name, manager.Address())
	}

	b.registry.Add(key, addr)
	b.log.Debug().Str("name", name).Str("address", addr.Hex()).Msg("Resolved contract address")
	return addr, nil
}

// l2Head returns the latest L2 block number.
func (b *BaseAdapter) l2Head(ctx context.Context) (uint64, error) {
	var head uint64
	err := b.retry(ctx, "eth_blockNumber", func() error {
		var err error
		head, err = b.l2.BlockNumber(ctx)
		return err
	})
	return head, err
}

// blocks fetches the L2 blocks numbered by r.
func (b *BaseAdapter) blocks(ctx context.Context, r rollup.BatchRange) ([]*types.Block, error) {
	out := make([]*types.Block, 0, r.Len())
	for n := r.Start; n < r.End; n++ {
		var block *types.Block
		err := b.retry(ctx, "eth_getBlockByNumber", func() error {
			var err error
			block, err = b.l2.BlockByNumber(ctx, new(big.Int).SetUint64(n))
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("fetch L2 block %d: %w", n, err)
		}
		out = append(out, block)
	}
	return out, nil
}

// totalElements reads a chain contract's element count with retries.
func (b *BaseAdapter) totalElements(ctx context.Context, op string, read func(context.Context, contracts.Caller) (uint64, error)) (uint64, error) {
	var total uint64
	err := b.retry(ctx, op, func() error {
		var err error
		total, err = read(ctx, b.l1)
		return err
	})
	return total, err
}

// send prepares one transaction slot and hands its escalation to the session.
func (b *BaseAdapter) send(ctx context.Context, s Session, to common.Address, data []byte, label string) (*types.Receipt, error) {
	req, err := b.signer.PrepareTx(ctx, to, data)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", label, err)
	}

	var attempt escalator.SendFunc = func(ctx context.Context, gasPriceGwei uint64) (*types.Receipt, error) {
		tx, err := b.signer.Send(ctx, req, gasPriceGwei)
		if err != nil {
			return nil, err
		}
		return b.signer.Wait(ctx, tx)
	}
	return s.Send(ctx, attempt, label)
}

func (b *BaseAdapter) retry(ctx context.Context, op string, fn func() error) error {
	err := retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(b.cfg.RetryAttempts),
		retry.Delay(b.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			b.log.Debug().Err(err).Str("op", op).Uint("attempt", n+1).Msg("Retrying L2 read")
		}),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
