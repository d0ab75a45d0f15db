// Package stake derives stFXRP vault statistics from ERC-4626 totals.
package stake

import (
	"math/big"

	"flareVault/internal/model"
	"flareVault/internal/units"
)

// Stats is the display summary of a staking vault for one account.
type Stats struct {
	Vault         string  `json:"vault"`
	ExchangeRate  float64 `json:"exchange_rate"`
	TotalAssets   float64 `json:"total_assets"`
	TotalSupply   float64 `json:"total_supply"`
	Shares        float64 `json:"shares"`
	ShareValue    float64 `json:"share_value"`
	ShareValueUSD float64 `json:"share_value_usd"`
	TVLUSD        float64 `json:"tvl_usd"`
}

// ExchangeRate is assets per share. An empty vault trades 1:1.
func ExchangeRate(totalAssets, totalSupply *big.Int) float64 {
	if totalSupply == nil || totalSupply.Sign() <= 0 {
		return 1.0
	}
	rate, _ := new(big.Rat).SetFrac(units.OrZero(totalAssets), totalSupply).Float64()
	return rate
}

// BuildStats summarizes state, valuing the underlying asset at assetPrice USD.
// Share value prefers the vault's own convertToAssets answer when present.
func BuildStats(state model.VaultState, assetPrice float64) Stats {
	rate := ExchangeRate(state.TotalAssets, state.TotalSupply)
	shares := units.ToFloat(state.Shares, state.Decimals)
	value := units.ToFloat(state.AssetBalance, state.Decimals)
	if value == 0 {
		value = shares * rate
	}
	totalAssets := units.ToFloat(state.TotalAssets, state.Decimals)
	return Stats{
		Vault:         state.Address,
		ExchangeRate:  rate,
		TotalAssets:   totalAssets,
		TotalSupply:   units.ToFloat(state.TotalSupply, state.Decimals),
		Shares:        shares,
		ShareValue:    value,
		ShareValueUSD: value * assetPrice,
		TVLUSD:        totalAssets * assetPrice,
	}
}
