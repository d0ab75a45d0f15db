package model

// YieldOpportunity describes a yield source on Flare.
type YieldOpportunity struct {
	Protocol    string  `json:"protocol"`
	Asset       string  `json:"asset"`
	APY         float64 `json:"apy"`
	TVL         float64 `json:"tvl"`
	Risk        string  `json:"risk"`
	Description string  `json:"description"`
	LockPeriod  string  `json:"lock_period"`
}
