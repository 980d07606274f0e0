package submitter

import "fmt"

// BalancePolicy decides what a low signer balance does to an iteration.
type BalancePolicy string

const (
	// BalanceWarn logs at error level and keeps going.
	BalanceWarn BalancePolicy = "warn"
	// BalanceBlock fails the iteration.
	BalanceBlock BalancePolicy = "block"
)

func ParseBalancePolicy(s string) (BalancePolicy, error) {
	switch BalancePolicy(s) {
	case "", BalanceWarn:
		return BalanceWarn, nil
	case BalanceBlock:
		return BalanceBlock, nil
	default:
		return "", fmt.Errorf("unknown balance policy %q", s)
	}
}
