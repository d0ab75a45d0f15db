package portfolio

import (
	"context"
	"errors"
	"math/big"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"flareVault/internal/flare"
	"flareVault/internal/model"
)

func testTokens() []model.Token {
	return []model.Token{
		{Symbol: "C2FLR", Name: "Coston2 Flare", Decimals: 18, Address: model.NativeAddress},
		{Symbol: "WFLR", Name: "Wrapped Flare", Decimals: 18, Address: "0xC67DCE33e8b36abDD40FdBCA35F4e24CA3AEe78A"},
		{Symbol: "FXRP", Name: "FXRP", Decimals: 6, Address: "0x000000000000000000000000000000000000F001"},
		{Symbol: "FTestXRP", Name: "FXRP", Decimals: 6, Address: "0x0b6A3645c240605887a5532109323A3E12273dc7"},
		{Symbol: "USDT0", Name: "USDT0", Decimals: 6, Address: "0x0000000000000000000000000000000000000000"},
	}
}

type fakeReader struct {
	holders []common.Address
	tokens  []common.Address
	totals  flare.BalanceTotals
	err     error
}

func (f *fakeReader) FetchBalances(_ context.Context, holders []common.Address, tokens []common.Address) (flare.BalanceTotals, error) {
	f.holders = holders
	f.tokens = tokens
	return f.totals, f.err
}

func TestSplitTokens(t *testing.T) {
	native, erc20 := SplitTokens(testTokens())
	if native == nil || native.Symbol != "C2FLR" {
		t.Fatalf("unexpected native token: %+v", native)
	}
	var symbols []string
	for _, token := range erc20 {
		symbols = append(symbols, token.Symbol)
	}
	if !reflect.DeepEqual(symbols, []string{"WFLR", "FTestXRP"}) {
		t.Fatalf("unexpected erc20 tokens: %v", symbols)
	}
}

func TestIsPlaceholder(t *testing.T) {
	cases := []struct {
		addr string
		want bool
	}{
		{"0x0000000000000000000000000000000000000000", true},
		{"0x000000000000000000000000000000000000F002", true},
		{"0x00000000000000000000000000000000000F0002", false},
		{"0x", true},
		{"native", true},
		{"0x1D80c49BbBCd1C0911346656B529DF9E5c2F783d", false},
	}
	for _, tc := range cases {
		if got := IsPlaceholder(tc.addr); got != tc.want {
			t.Fatalf("IsPlaceholder(%q) = %v, want %v", tc.addr, got, tc.want)
		}
	}
}

func TestServiceBalances(t *testing.T) {
	reader := &fakeReader{totals: flare.BalanceTotals{
		Native: big.NewInt(2_500_000_000_000_000_000),
		Tokens: []*big.Int{big.NewInt(0), big.NewInt(12_500_000)},
	}}
	holders := []common.Address{common.HexToAddress("0x01"), common.HexToAddress("0x02")}
	flrPrice := 0.02
	prices := model.PriceSnapshot{Prices: map[string]float64{"C2FLR": flrPrice, "FTestXRP": 0.5}}
	flrUSD := 2.5 * flrPrice

	balances, err := NewService(reader, testTokens()).Balances(context.Background(), holders, prices)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if len(reader.tokens) != 2 || reader.tokens[1] != common.HexToAddress("0x0b6A3645c240605887a5532109323A3E12273dc7") {
		t.Fatalf("unexpected token reads: %v", reader.tokens)
	}

	want := []model.TokenBalance{
		{Symbol: "C2FLR", Name: "Coston2 Flare", Balance: 2.5, Decimals: 18, Address: model.NativeAddress, USDValue: flrUSD},
		{Symbol: "FTestXRP", Name: "FXRP", Balance: 12.5, Decimals: 6, Address: "0x0b6A3645c240605887a5532109323A3E12273dc7", USDValue: 6.25},
	}
	if !reflect.DeepEqual(balances, want) {
		t.Fatalf("unexpected balances:\n got %+v\nwant %+v", balances, want)
	}
	if got := TotalUSD(balances); got != flrUSD+6.25 {
		t.Fatalf("unexpected total: %v", got)
	}
}

func TestServiceBalancesError(t *testing.T) {
	reader := &fakeReader{err: errors.New("rpc down")}
	if _, err := NewService(reader, testTokens()).Balances(context.Background(), nil, model.PriceSnapshot{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAggregateSkipsZeroNative(t *testing.T) {
	native, erc20 := SplitTokens(testTokens())
	out := Aggregate(flare.BalanceTotals{Native: big.NewInt(0)}, native, erc20, model.PriceSnapshot{})
	if len(out) != 0 {
		t.Fatalf("expected no balances, got %+v", out)
	}
}
