package rollup

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Info is the response of the node's rollup_getInfo RPC.
type Info struct {
	Signer        common.Address `json:"signer"`
	Mode          string         `json:"mode"`
	Syncing       bool           `json:"syncing"`
	L1BlockHash   common.Hash    `json:"l1BlockHash"`
	L1BlockHeight uint64         `json:"l1BlockHeight"`
	Addresses     Addresses      `json:"addresses"`
}

// Snapshot converts the RPC view into a ChainSnapshot, substituting the
// resolved contract addresses.
func (i *Info) Snapshot(addrs Addresses) (*ChainSnapshot, error) {
	if i == nil {
		return nil, fmt.Errorf("nil rollup info")
	}
	role, err := ParseRole(i.Mode)
	if err != nil {
		return nil, err
	}
	return &ChainSnapshot{
		Signer:        i.Signer,
		Role:          role,
		Syncing:       i.Syncing,
		L1BlockHash:   i.L1BlockHash,
		L1BlockHeight: i.L1BlockHeight,
		Addresses:     addrs,
	}, nil
}
