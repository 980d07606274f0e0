package rollup

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	methodRollupInfo = "rollup_getInfo"
	methodChainID    = "eth_chainId"
)

// Client talks to the L2 rollup node.
type Client struct {
	rpc *rpc.Client
	eth *ethclient.Client
}

// Dial connects to the L2 node JSON-RPC endpoint.
func Dial(ctx context.Context, endpoint string) (*Client, error) {
	c, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial l2 rpc %s: %w", endpoint, err)
	}
	return NewClient(c), nil
}

// NewClient wraps an established RPC connection.
func NewClient(c *rpc.Client) *Client {
	return &Client{rpc: c, eth: ethclient.NewClient(c)}
}

// RollupInfo returns the node's rollup status.
func (c *Client) RollupInfo(ctx context.Context) (*Info, error) {
	var info Info
	if err := c.rpc.CallContext(ctx, &info, methodRollupInfo); err != nil {
		return nil, fmt.Errorf("%s: %w", methodRollupInfo, err)
	}
	return &info, nil
}

// ChainID returns the L2 chain id.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	var id hexutil.Big
	if err := c.rpc.CallContext(ctx, &id, methodChainID); err != nil {
		return nil, fmt.Errorf("%s: %w", methodChainID, err)
	}
	return (*big.Int)(&id), nil
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

func (c *Client) BlockByNumber(ctx context.Context, number *big.Int) (*types.Block, error) {
	return c.eth.BlockByNumber(ctx, number)
}

func (c *Client) Close() {
	c.rpc.Close()
}
