package flare

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"flareVault/internal/model"
)

// Vault reads an ERC-4626 vault such as stFXRP.
type Vault struct {
	caller  Caller
	address common.Address
}

// NewVault builds a reader for the vault at address.
func NewVault(caller Caller, address common.Address) *Vault {
	return &Vault{caller: caller, address: address}
}

// Deployed reports whether the reader points at a contract.
func (v *Vault) Deployed() bool {
	return !IsZeroAddress(v.address)
}

// FetchState reads vault totals. When account is non-zero its share balance
// and the asset value of those shares are read too.
func (v *Vault) FetchState(ctx context.Context, account common.Address) (model.VaultState, error) {
	if !v.Deployed() {
		return model.VaultState{}, ErrContractNotDeployed
	}
	parsed, err := VaultABI()
	if err != nil {
		return model.VaultState{}, err
	}

	state := model.VaultState{
		Address:      v.address.Hex(),
		Shares:       big.NewInt(0),
		AssetBalance: big.NewInt(0),
	}
	if state.TotalAssets, err = callBigInt(ctx, v.caller, v.address, parsed, "totalAssets"); err != nil {
		return model.VaultState{}, err
	}
	if state.TotalSupply, err = callBigInt(ctx, v.caller, v.address, parsed, "totalSupply"); err != nil {
		return model.VaultState{}, err
	}
	values, err := callMethod(ctx, v.caller, v.address, parsed, "decimals")
	if err != nil {
		return model.VaultState{}, err
	}
	if state.Decimals, err = asUint8(values[0]); err != nil {
		return model.VaultState{}, fmt.Errorf("decimals: %w", err)
	}

	if IsZeroAddress(account) {
		return state, nil
	}
	if state.Shares, err = callBigInt(ctx, v.caller, v.address, parsed, "balanceOf", account); err != nil {
		return model.VaultState{}, err
	}
	if state.Shares.Sign() > 0 {
		if state.AssetBalance, err = callBigInt(ctx, v.caller, v.address, parsed, "convertToAssets", state.Shares); err != nil {
			return model.VaultState{}, err
		}
	}
	return state, nil
}
