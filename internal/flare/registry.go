package flare

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// FtsoV2Name is the ContractRegistry key of the FTSOv2 contract.
const FtsoV2Name = "FtsoV2"

// Registry resolves Flare system contracts by name and remembers the answers.
type Registry struct {
	caller  Caller
	address common.Address

	mu    sync.RWMutex
	cache map[string]common.Address
}

// NewRegistry builds a resolver for the ContractRegistry at address.
func NewRegistry(caller Caller, address common.Address) *Registry {
	return &Registry{
		caller:  caller,
		address: address,
		cache:   make(map[string]common.Address),
	}
}

// Resolve returns the address registered under name. A zero answer is not cached.
func (r *Registry) Resolve(ctx context.Context, name string) (common.Address, error) {
	r.mu.RLock()
	addr, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return addr, nil
	}
	if IsZeroAddress(r.address) {
		return common.Address{}, ErrContractNotDeployed
	}

	parsed, err := ContractRegistryABI()
	if err != nil {
		return common.Address{}, err
	}
	values, err := callMethod(ctx, r.caller, r.address, parsed, "getContractAddressByName", name)
	if err != nil {
		return common.Address{}, err
	}
	addr, err = asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("getContractAddressByName: %w", err)
	}
	if IsZeroAddress(addr) {
		return common.Address{}, fmt.Errorf("%s: %w", name, ErrContractNotDeployed)
	}

	r.mu.Lock()
	r.cache[name] = addr
	r.mu.Unlock()
	return addr, nil
}
