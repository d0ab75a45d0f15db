package market

import (
	"math/big"

	"flareVault/internal/feeds"
	"flareVault/internal/model"
	"flareVault/internal/units"
)

// Market status values.
const (
	StatusOpen               = "open"
	StatusAwaitingResolution = "awaiting_resolution"
	StatusResolved           = "resolved"
)

// defaultYesPercent is shown while a market has no bets.
const defaultYesPercent = 50

// View is the display model of one market for one account at one instant.
type View struct {
	ID            uint64   `json:"id"`
	Question      string   `json:"question"`
	FeedID        string   `json:"feed_id"`
	Symbol        string   `json:"symbol"`
	Creator       string   `json:"creator"`
	Deadline      int64    `json:"deadline"`
	IsExpired     bool     `json:"is_expired"`
	TimeLeft      string   `json:"time_left"`
	Status        string   `json:"status"`
	CurrentPrice  float64  `json:"current_price"`
	TargetPrice   float64  `json:"target_price"`
	YesPool       string   `json:"yes_pool"`
	NoPool        string   `json:"no_pool"`
	TotalPool     string   `json:"total_pool"`
	TotalPoolFLR  float64  `json:"total_pool_flr"`
	YesPercent    int      `json:"yes_percent"`
	NoPercent     int      `json:"no_percent"`
	AIProbability *int     `json:"ai_probability,omitempty"`
	Resolved      bool     `json:"resolved"`
	Outcome       *bool    `json:"outcome,omitempty"`
	ResolvedPrice *float64 `json:"resolved_price,omitempty"`
	YesBet        string   `json:"yes_bet"`
	NoBet         string   `json:"no_bet"`
	Payout        string   `json:"payout"`
	Claimed       bool     `json:"claimed"`
	HasUserBet    bool     `json:"has_user_bet"`
	CanClaim      bool     `json:"can_claim"`
}

// BuildView derives the display model from a market snapshot, the caller's
// position (zero value when the account never bet), a price snapshot and now.
func BuildView(m model.Market, pos model.UserPosition, prices model.PriceSnapshot, table feeds.Table, now int64) View {
	symbol := table.Resolve(m.FeedID)
	currentPrice := prices.Price(symbol)
	targetPrice := units.ToFloat(m.TargetPrice, units.WeiDecimals)

	yesPool := units.OrZero(m.YesPool)
	noPool := units.OrZero(m.NoPool)
	totalPool := units.Sum(yesPool, noPool)
	yesPercent := YesPercent(yesPool, totalPool)

	isExpired := now >= m.Deadline

	view := View{
		ID:           m.ID,
		Question:     m.Question,
		FeedID:       m.FeedID,
		Symbol:       symbol,
		Creator:      m.Creator,
		Deadline:     m.Deadline,
		IsExpired:    isExpired,
		TimeLeft:     FormatTimeLeft(m.Deadline, now),
		CurrentPrice: currentPrice,
		TargetPrice:  targetPrice,
		YesPool:      yesPool.String(),
		NoPool:       noPool.String(),
		TotalPool:    totalPool.String(),
		TotalPoolFLR: units.ToFloat(totalPool, units.WeiDecimals),
		YesPercent:   yesPercent,
		NoPercent:    100 - yesPercent,
		Resolved:     m.Resolved,
		YesBet:       units.OrZero(pos.YesBet).String(),
		NoBet:        units.OrZero(pos.NoBet).String(),
		Payout:       units.OrZero(pos.Payout).String(),
		Claimed:      pos.Claimed,
		HasUserBet:   isPositive(pos.YesBet) || isPositive(pos.NoBet),
		CanClaim:     CanClaim(m.Resolved, pos),
	}

	switch {
	case m.Resolved:
		view.Status = StatusResolved
		outcome := m.Outcome
		resolvedPrice := units.ToFloat(m.ResolvedPrice, units.WeiDecimals)
		view.Outcome = &outcome
		view.ResolvedPrice = &resolvedPrice
	case isExpired:
		view.Status = StatusAwaitingResolution
	default:
		view.Status = StatusOpen
	}

	if !m.Resolved {
		prob := EstimateProbability(currentPrice, targetPrice, m.Deadline, now)
		view.AIProbability = &prob
	}

	return view
}

// BuildViews builds a view per market, pairing each with positions[id].
// Markets without an entry get the zero position.
func BuildViews(markets []model.Market, positions map[uint64]model.UserPosition, prices model.PriceSnapshot, table feeds.Table, now int64) []View {
	views := make([]View, 0, len(markets))
	for _, m := range markets {
		views = append(views, BuildView(m, positions[m.ID], prices, table, now))
	}
	return views
}

// YesPercent is round(yes*100/total) as an integer percent, or 50 when the
// pool is empty.
func YesPercent(yes, total *big.Int) int {
	if total == nil || total.Sign() <= 0 {
		return defaultYesPercent
	}
	// round half up: (2*yes*100 + total) / (2*total)
	num := new(big.Int).Mul(units.OrZero(yes), big.NewInt(200))
	num.Add(num, total)
	den := new(big.Int).Mul(total, big.NewInt(2))
	pct := num.Quo(num, den).Int64()
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return int(pct)
}

// CanClaim reports whether a resolved market owes the account an unclaimed payout.
func CanClaim(resolved bool, pos model.UserPosition) bool {
	return resolved && isPositive(pos.Payout) && !pos.Claimed
}

func isPositive(v *big.Int) bool {
	return v != nil && v.Sign() > 0
}
