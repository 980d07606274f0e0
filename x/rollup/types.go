package rollup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Role is the operating role of the rollup node driving submission.
type Role string

const (
	RoleProducer Role = "producer"
	RoleFollower Role = "follower"
)

// ParseRole accepts both role names and the node's mode strings
// ("sequencer", "verifier").
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "producer", "sequencer":
		return RoleProducer, nil
	case "follower", "verifier":
		return RoleFollower, nil
	default:
		return "", fmt.Errorf("unknown rollup role %q", s)
	}
}

func (r Role) String() string { return string(r) }

// Addresses are the L1 contracts the submitter interacts with.
type Addresses struct {
	CanonicalTransactionChain common.Address `json:"canonicalTransactionChain"`
	StateCommitmentChain      common.Address `json:"stateCommitmentChain"`
	AddressResolver           common.Address `json:"addressResolver"`
	L1ToL2TransactionQueue    common.Address `json:"l1ToL2TransactionQueue"`
	SequencerDecompression    common.Address `json:"sequencerDecompression"`
}

// ChainSnapshot is the view of the rollup node and L1 taken at the start of
// one control-loop iteration. It is not modified after construction.
type ChainSnapshot struct {
	Signer        common.Address `json:"signer"`
	Role          Role           `json:"role"`
	Syncing       bool           `json:"syncing"`
	L1BlockHash   common.Hash    `json:"l1_block_hash"`
	L1BlockHeight uint64         `json:"l1_block_height"`
	Addresses     Addresses      `json:"addresses"`
}

var ErrInvalidRange = errors.New("invalid batch range")

// BatchRange is the half-open interval [Start, End) of L2 elements in a batch.
type BatchRange struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// Validate rejects ranges whose start lies past their end.
func (r BatchRange) Validate() error {
	if r.Start > r.End {
		return fmt.Errorf("%w: start %d > end %d", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

// Len is the number of elements in the range.
func (r BatchRange) Len() uint64 {
	if r.Start > r.End {
		return 0
	}
	return r.End - r.Start
}

// Empty reports whether the range holds no elements.
func (r BatchRange) Empty() bool { return r.Len() == 0 }

func (r BatchRange) String() string { return fmt.Sprintf("[%d,%d)", r.Start, r.End) }
