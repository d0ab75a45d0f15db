package model

// TokenBalance is a display balance for a single token.
type TokenBalance struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Balance  float64 `json:"balance"`
	Decimals uint8   `json:"decimals"`
	Address  string  `json:"address"`
	USDValue float64 `json:"usd_value"`
}
