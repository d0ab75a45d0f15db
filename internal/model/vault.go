package model

import "math/big"

// VaultState captures ERC-4626 vault totals and one account's holdings.
type VaultState struct {
	Address      string   `json:"address"`
	Decimals     uint8    `json:"decimals"`
	TotalAssets  *big.Int `json:"total_assets"`
	TotalSupply  *big.Int `json:"total_supply"`
	Shares       *big.Int `json:"shares"`
	AssetBalance *big.Int `json:"asset_balance"`
}
