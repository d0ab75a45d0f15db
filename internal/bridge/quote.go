// Package bridge prices FAssets XRP to FXRP minting.
package bridge

import (
	"errors"
	"math/big"
	"sort"

	"flareVault/internal/model"
	"flareVault/internal/units"
)

// UnderlyingDecimals is the precision of XRP amounts in underlying base units (drops).
const UnderlyingDecimals = 6

// AgentStatusNormal is the only agent status that accepts new reservations.
const AgentStatusNormal uint8 = 0

const bipsDenominator = 10_000

// ErrNoLots is returned for a quote of zero lots.
var ErrNoLots = errors.New("lots must be greater than zero")

// Quote is the cost breakdown of reserving collateral for a number of lots.
type Quote struct {
	Lots              uint64       `json:"lots"`
	LotSizeXRP        float64      `json:"lot_size_xrp"`
	TotalXRP          float64      `json:"total_xrp"`
	AgentFeeBIPS      uint64       `json:"agent_fee_bips"`
	AgentFeePercent   float64      `json:"agent_fee_percent"`
	AgentFeeXRP       float64      `json:"agent_fee_xrp"`
	ReceiveXRP        float64      `json:"receive_xrp"`
	ReservationFeeNat float64      `json:"reservation_fee_nat"`
	MaxLots           uint64       `json:"max_lots"`
	Agent             *model.Agent `json:"agent,omitempty"`
	CanReserve        bool         `json:"can_reserve"`
}

// LotSizeXRP converts a lot size in drops to XRP.
func LotSizeXRP(lotSizeUBA *big.Int) float64 {
	return units.ToFloat(lotSizeUBA, UnderlyingDecimals)
}

// MaxLots returns the largest free lot count offered by any agent able to mint.
func MaxLots(agents []model.Agent) uint64 {
	var max uint64
	for _, a := range agents {
		if a.Status == AgentStatusNormal && a.FreeCollateralLots > max {
			max = a.FreeCollateralLots
		}
	}
	return max
}

// SelectAgent picks the cheapest normal agent with at least lots free lots.
// Ties go to the agent with more free lots, then to the lower vault address.
func SelectAgent(agents []model.Agent, lots uint64) (model.Agent, bool) {
	eligible := make([]model.Agent, 0, len(agents))
	for _, a := range agents {
		if a.Status == AgentStatusNormal && a.FreeCollateralLots >= lots && lots > 0 {
			eligible = append(eligible, a)
		}
	}
	if len(eligible) == 0 {
		return model.Agent{}, false
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.FeeBIPS != b.FeeBIPS {
			return a.FeeBIPS < b.FeeBIPS
		}
		if a.FreeCollateralLots != b.FreeCollateralLots {
			return a.FreeCollateralLots > b.FreeCollateralLots
		}
		return a.AgentVault < b.AgentVault
	})
	return eligible[0], true
}

// BuildQuote prices lots against the current lot size, reservation fee and agent list.
// Without an eligible agent the quote is still filled in but CanReserve is false.
func BuildQuote(lots uint64, lotSizeUBA, reservationFeeWei *big.Int, agents []model.Agent) (Quote, error) {
	if lots == 0 {
		return Quote{}, ErrNoLots
	}
	lotSize := LotSizeXRP(lotSizeUBA)
	q := Quote{
		Lots:              lots,
		LotSizeXRP:        lotSize,
		TotalXRP:          lotSize * float64(lots),
		ReservationFeeNat: units.ToFloat(reservationFeeWei, units.WeiDecimals),
		MaxLots:           MaxLots(agents),
	}
	q.ReceiveXRP = q.TotalXRP

	agent, ok := SelectAgent(agents, lots)
	if !ok {
		return q, nil
	}
	q.Agent = &agent
	q.AgentFeeBIPS = agent.FeeBIPS
	q.AgentFeePercent = float64(agent.FeeBIPS) / 100
	q.AgentFeeXRP = q.TotalXRP * float64(agent.FeeBIPS) / bipsDenominator
	q.ReceiveXRP = q.TotalXRP - q.AgentFeeXRP
	q.CanReserve = lots <= q.MaxLots
	return q, nil
}
