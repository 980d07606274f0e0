package l1

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EthClient is the subset of ethclient.Client used against L1.
type EthClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Caller performs read-only contract calls.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// TransactionSigner signs transactions for a single account.
type TransactionSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction) (*types.Transaction, error)
}

// TxRequest is one logical transaction. All price replacements of it share
// Nonce and GasLimit.
type TxRequest struct {
	To       common.Address
	Data     []byte
	Nonce    uint64
	GasLimit uint64
}

// Signer is the account capability consumed by the submitter.
type Signer interface {
	Address() common.Address
	Balance(ctx context.Context) (*big.Int, error)
	SuggestGasPriceGwei(ctx context.Context) (uint64, error)
	PrepareTx(ctx context.Context, to common.Address, data []byte) (*TxRequest, error)
	Send(ctx context.Context, req *TxRequest, gasPriceGwei uint64) (*types.Transaction, error)
	Wait(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}
