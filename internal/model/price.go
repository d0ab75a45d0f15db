package model

// PriceSnapshot is a point-in-time symbol to USD price map.
type PriceSnapshot struct {
	Prices    map[string]float64 `json:"prices"`
	Timestamp uint64             `json:"timestamp"`
	Live      bool               `json:"live"`
}

// Price returns the USD price for symbol, or 0 when it is not in the snapshot.
func (p PriceSnapshot) Price(symbol string) float64 {
	if p.Prices == nil {
		return 0
	}
	return p.Prices[symbol]
}
