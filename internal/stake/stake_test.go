package stake

import (
	"math/big"
	"testing"

	"flareVault/internal/model"
)

func TestExchangeRate(t *testing.T) {
	cases := []struct {
		assets *big.Int
		supply *big.Int
		want   float64
	}{
		{big.NewInt(1_100), big.NewInt(1_000), 1.1},
		{big.NewInt(500), big.NewInt(1_000), 0.5},
		{big.NewInt(0), big.NewInt(0), 1.0},
		{big.NewInt(42), nil, 1.0},
		{nil, big.NewInt(10), 0},
	}
	for _, tc := range cases {
		if got := ExchangeRate(tc.assets, tc.supply); got != tc.want {
			t.Fatalf("ExchangeRate(%v, %v) = %v, want %v", tc.assets, tc.supply, got, tc.want)
		}
	}
}

func TestBuildStats(t *testing.T) {
	state := model.VaultState{
		Address:      "0xVault",
		Decimals:     6,
		TotalAssets:  big.NewInt(2_000_000_000),
		TotalSupply:  big.NewInt(1_000_000_000),
		Shares:       big.NewInt(5_000_000),
		AssetBalance: big.NewInt(10_000_000),
	}
	stats := BuildStats(state, 0.5)
	if stats.ExchangeRate != 2 || stats.Shares != 5 || stats.ShareValue != 10 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.ShareValueUSD != 5 || stats.TVLUSD != 1_000 {
		t.Fatalf("unexpected usd values: %+v", stats)
	}
}

func TestBuildStatsDerivesShareValue(t *testing.T) {
	state := model.VaultState{
		Decimals:    6,
		TotalAssets: big.NewInt(3_000_000),
		TotalSupply: big.NewInt(2_000_000),
		Shares:      big.NewInt(2_000_000),
	}
	stats := BuildStats(state, 1)
	if stats.ShareValue != 3 {
		t.Fatalf("expected share value from exchange rate, got %v", stats.ShareValue)
	}
}
