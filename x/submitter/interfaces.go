package submitter

import (
	"context"
	"math/big"

	"github.com/compose-network/batch-submitter/x/escalator"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Account is the signer view the controller needs for balance checks.
type Account interface {
	Address() common.Address
	Balance(ctx context.Context) (*big.Int, error)
}

// Escalator sends one transaction with rising gas prices.
type Escalator interface {
	StartingPrice(ctx context.Context, minGasPrice, maxGasPrice uint64) (uint64, error)
	Send(ctx context.Context, send escalator.SendFunc, cfg escalator.Config) (*types.Receipt, error)
}
