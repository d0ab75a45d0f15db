// Package yield lists the curated Flare yield opportunities.
package yield

import (
	"sort"

	"flareVault/internal/model"
)

// Risk levels.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

var curated = []model.YieldOpportunity{
	{
		Protocol:    "Firelight",
		Asset:       "FXRP",
		APY:         8.5,
		TVL:         2_400_000,
		Risk:        RiskMedium,
		Description: "Stake FXRP to earn stXRP with auto-compounding yield from FTSO delegation rewards.",
		LockPeriod:  "None",
	},
	{
		Protocol:    "FTSO Delegation",
		Asset:       "WFLR",
		APY:         5.2,
		TVL:         18_000_000,
		Risk:        RiskLow,
		Description: "Delegate WFLR to FTSO data providers and earn inflation rewards every reward epoch.",
		LockPeriod:  "None",
	},
	{
		Protocol:    "FlareDrops",
		Asset:       "WFLR",
		APY:         3.8,
		TVL:         45_000_000,
		Risk:        RiskLow,
		Description: "Wrap FLR and hold to receive monthly FlareDrop distributions over 36 months.",
		LockPeriod:  "None",
	},
	{
		Protocol:    "earnFXRP",
		Asset:       "FXRP",
		APY:         6.1,
		TVL:         800_000,
		Risk:        RiskMedium,
		Description: "Provide FXRP liquidity to earn trading fees and FAsset minting rewards.",
		LockPeriod:  "7 days",
	},
}

// Opportunities returns the curated list sorted by APY, highest first.
func Opportunities() []model.YieldOpportunity {
	return Sorted(curated)
}

// Sorted returns a copy of opps ordered by APY descending. Equal APYs keep their order.
func Sorted(opps []model.YieldOpportunity) []model.YieldOpportunity {
	out := append([]model.YieldOpportunity(nil), opps...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].APY > out[j].APY
	})
	return out
}

// Best returns the highest-APY opportunity, or false when opps is empty.
func Best(opps []model.YieldOpportunity) (model.YieldOpportunity, bool) {
	sorted := Sorted(opps)
	if len(sorted) == 0 {
		return model.YieldOpportunity{}, false
	}
	return sorted[0], true
}

// ForAsset filters opps to one asset symbol.
func ForAsset(opps []model.YieldOpportunity, asset string) []model.YieldOpportunity {
	out := make([]model.YieldOpportunity, 0, len(opps))
	for _, o := range opps {
		if o.Asset == asset {
			out = append(out, o)
		}
	}
	return out
}
