package model

import "math/big"

// Market is a FlareBet market snapshot as returned by getMarket.
type Market struct {
	ID            uint64   `json:"id"`
	Question      string   `json:"question"`
	FeedID        string   `json:"feed_id"`
	TargetPrice   *big.Int `json:"target_price"`
	Deadline      int64    `json:"deadline"`
	YesPool       *big.Int `json:"yes_pool"`
	NoPool        *big.Int `json:"no_pool"`
	ResolvedPrice *big.Int `json:"resolved_price"`
	Resolved      bool     `json:"resolved"`
	Outcome       bool     `json:"outcome"`
	Creator       string   `json:"creator"`
}

// UserPosition is one account's stake in a single market.
// The zero value is the position of an account that never bet.
type UserPosition struct {
	YesBet  *big.Int `json:"yes_bet"`
	NoBet   *big.Int `json:"no_bet"`
	Claimed bool     `json:"claimed"`
	Payout  *big.Int `json:"payout"`
}
