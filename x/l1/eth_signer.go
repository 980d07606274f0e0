package l1

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
)

var (
	ErrTxReverted = errors.New("transaction reverted")

	_ Signer = (*EthSigner)(nil)
)

// EthSigner implements Signer over an L1 JSON-RPC client.
type EthSigner struct {
	cfg    Config
	client EthClient
	signer TransactionSigner
	log    zerolog.Logger
}

// NewEthSigner builds a signer; zero poll interval falls back to the default.
func NewEthSigner(cfg Config, client EthClient, signer TransactionSigner, log zerolog.Logger) (*EthSigner, error) {
	if client == nil {
		return nil, errors.New("l1: eth client is required")
	}
	if signer == nil {
		return nil, errors.New("l1: transaction signer is required")
	}
	if cfg.ReceiptPollInterval <= 0 {
		cfg.ReceiptPollInterval = DefaultConfig().ReceiptPollInterval
	}

	return &EthSigner{
		cfg:    cfg,
		client: client,
		signer: signer,
		log:    log.With().Str("component", "l1-signer").Str("from", signer.Address().Hex()).Logger(),
	}, nil
}

func (s *EthSigner) Address() common.Address { return s.signer.Address() }

// Client exposes the underlying L1 client for contract reads.
func (s *EthSigner) Client() EthClient { return s.client }

func (s *EthSigner) Balance(ctx context.Context) (*big.Int, error) {
	bal, err := s.client.BalanceAt(ctx, s.signer.Address(), nil)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return bal, nil
}

// SuggestGasPriceGwei returns the node's suggested gas price truncated to gwei.
func (s *EthSigner) SuggestGasPriceGwei(ctx context.Context) (uint64, error) {
	price, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return 0, fmt.Errorf("suggest gas price: %w", err)
	}
	return WeiToGwei(price), nil
}

// PrepareTx reserves the next nonce and estimates gas for the call.
func (s *EthSigner) PrepareTx(ctx context.Context, to common.Address, data []byte) (*TxRequest, error) {
	from := s.signer.Address()

	nonce, err := s.client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("get pending nonce: %w", err)
	}

	gas, err := s.client.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Data: data})
	if err != nil {
		return nil, fmt.Errorf("estimate gas: %w", err)
	}
	if s.cfg.GasLimitBufferPct > 0 {
		gas += gas * s.cfg.GasLimitBufferPct / 100
	}

	return &TxRequest{To: to, Data: data, Nonce: nonce, GasLimit: gas}, nil
}

// Send signs and broadcasts req at the given gas price.
func (s *EthSigner) Send(ctx context.Context, req *TxRequest, gasPriceGwei uint64) (*types.Transaction, error) {
	if req == nil {
		return nil, errors.New("nil tx request")
	}
	to := req.To
	unsigned := types.NewTx(&types.LegacyTx{
		Nonce:    req.Nonce,
		GasPrice: GweiToWei(gasPriceGwei),
		Gas:      req.GasLimit,
		To:       &to,
		Value:    new(big.Int),
		Data:     req.Data,
	})

	tx, err := s.signer.SignTx(unsigned)
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}
	if err := s.client.SendTransaction(ctx, tx); err != nil {
		s.log.Warn().Err(err).
			Uint64("nonce", req.Nonce).
			Uint64("gas_price_gwei", gasPriceGwei).
			Msg("failed to send transaction")
		return nil, fmt.Errorf("send tx: %w", err)
	}

	s.log.Info().
		Str("tx_hash", tx.Hash().Hex()).
		Uint64("nonce", req.Nonce).
		Uint64("gas_limit", req.GasLimit).
		Uint64("gas_price_gwei", gasPriceGwei).
		Msg("sent transaction")
	return tx, nil
}

// Wait polls until tx is mined and has the configured number of confirmations.
func (s *EthSigner) Wait(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	ticker := time.NewTicker(s.cfg.ReceiptPollInterval)
	defer ticker.Stop()

	var receipt *types.Receipt
	for {
		if receipt == nil {
			r, err := s.client.TransactionReceipt(ctx, tx.Hash())
			switch {
			case err == nil:
				if r.Status != types.ReceiptStatusSuccessful {
					return r, fmt.Errorf("%w: %s", ErrTxReverted, tx.Hash().Hex())
				}
				receipt = r
			case errors.Is(err, ethereum.NotFound):
			default:
				s.log.Debug().Err(err).Str("tx_hash", tx.Hash().Hex()).Msg("receipt lookup failed")
			}
		}

		if receipt != nil {
			done, err := s.confirmed(ctx, receipt)
			if err != nil {
				s.log.Debug().Err(err).Msg("block number lookup failed")
			} else if done {
				return receipt, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *EthSigner) confirmed(ctx context.Context, receipt *types.Receipt) (bool, error) {
	if s.cfg.Confirmations <= 1 || receipt.BlockNumber == nil {
		return true, nil
	}
	head, err := s.client.BlockNumber(ctx)
	if err != nil {
		return false, err
	}
	return head+1 >= receipt.BlockNumber.Uint64()+s.cfg.Confirmations, nil
}
