package contracts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

//go:embed abi/address_manager.json
var addressManagerABIJSON string

// Registry names of the contracts the submitter writes to.
const (
	NameCanonicalTransactionChain = "OVM_CanonicalTransactionChain"
	NameStateCommitmentChain      = "OVM_StateCommitmentChain"
)

var _ Binding = (*AddressManager)(nil)

// AddressManager resolves contract names through the on-chain registry.
type AddressManager struct {
	*binding
}

func NewAddressManager(addr common.Address) (*AddressManager, error) {
	b, err := newBinding("AddressManager", addressManagerABIJSON, addr)
	if err != nil {
		return nil, err
	}
	return &AddressManager{binding: b}, nil
}

// GetAddress looks up a registered contract by name.
func (m *AddressManager) GetAddress(ctx context.Context, caller Caller, name string) (common.Address, error) {
	res, err := m.call(ctx, caller, "getAddress", name)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := res[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected getAddress return type %T", res[0])
	}
	return addr, nil
}
