package model

import "testing"

func TestPriceSnapshotMissingSymbol(t *testing.T) {
	var empty PriceSnapshot
	if got := empty.Price("FLR"); got != 0 {
		t.Fatalf("expected 0 for nil map, got %v", got)
	}

	snap := PriceSnapshot{Prices: map[string]float64{"XRP": 0.55}}
	if got := snap.Price("XRP"); got != 0.55 {
		t.Fatalf("XRP price mismatch: %v", got)
	}
	if got := snap.Price("BTC"); got != 0 {
		t.Fatalf("expected 0 for missing symbol, got %v", got)
	}
}
