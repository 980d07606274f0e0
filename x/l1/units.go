package l1

import (
	"math/big"

	"github.com/ethereum/go-ethereum/params"
)

var (
	gwei  = big.NewInt(params.GWei)
	ether = big.NewInt(params.Ether)
)

// GweiToWei converts an integer gwei amount to wei.
func GweiToWei(v uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(v), gwei)
}

// WeiToGwei truncates a wei amount to whole gwei. Amounts above MaxUint64
// gwei saturate.
func WeiToGwei(wei *big.Int) uint64 {
	if wei == nil || wei.Sign() <= 0 {
		return 0
	}
	q := new(big.Int).Quo(wei, gwei)
	if !q.IsUint64() {
		return ^uint64(0)
	}
	return q.Uint64()
}

// EtherToWei converts a decimal ether amount to wei, truncating below 1 wei.
func EtherToWei(eth float64) *big.Int {
	if eth <= 0 {
		return new(big.Int)
	}
	f := new(big.Float).SetPrec(256).SetFloat64(eth)
	f.Mul(f, new(big.Float).SetInt(ether))
	wei, _ := f.Int(nil)
	return wei
}

// FormatEther renders a wei amount as decimal ether.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	f := new(big.Float).SetPrec(256).SetInt(wei)
	f.Quo(f, new(big.Float).SetInt(ether))
	return f.Text('f', 18)
}

// WeiToEther is a lossy float conversion for gauges.
func WeiToEther(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f := new(big.Float).SetInt(wei)
	f.Quo(f, new(big.Float).SetInt(ether))
	v, _ := f.Float64()
	return v
}
