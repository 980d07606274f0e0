package contracts

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

type binding struct {
	name    string
	address common.Address
	abi     abi.ABI
}

func newBinding(name, abiJSON string, addr common.Address) (*binding, error) {
	if addr == (common.Address{}) {
		return nil, fmt.Errorf("%s address cannot be zero", name)
	}
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s ABI: %w", name, err)
	}
	return &binding{name: name, address: addr, abi: parsed}, nil
}

func (b *binding) Address() common.Address { return b.address }

func (b *binding) ABI() abi.ABI { return b.abi }

func (b *binding) call(ctx context.Context, caller Caller, method string, args ...any) ([]any, error) {
	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s.%s: %w", b.name, method, err)
	}
	to := b.address
	out, err := caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s.%s: %w", b.name, method, err)
	}
	res, err := b.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s.%s: %w", b.name, method, err)
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("%s.%s returned no values", b.name, method)
	}
	return res, nil
}
