package flare

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	testHolderA = common.HexToAddress("0xaaaa000000000000000000000000000000000001")
	testHolderB = common.HexToAddress("0xbbbb000000000000000000000000000000000002")
	testWFLR    = common.HexToAddress("0xC67DCE33e8b36abDD40FdBCA35F4e24CA3AEe78A")
	testFXRP    = common.HexToAddress("0x0b6A3645c240605887a5532109323A3E12273dc7")
	testVault   = common.HexToAddress("0x00000000000000000000000000000000000F0002")
)

func balanceOf(balances map[common.Address]int64) func([]interface{}) ([]interface{}, error) {
	return func(args []interface{}) ([]interface{}, error) {
		return []interface{}{big.NewInt(balances[args[0].(common.Address)])}, nil
	}
}

func TestFetchBalances(t *testing.T) {
	chain := newFakeChain(testMulticall)
	chain.handle(testMulticall, mustABI(Multicall3ABI()), "getEthBalance", balanceOf(map[common.Address]int64{
		testHolderA: 100,
		testHolderB: 23,
	}))
	token := mustABI(ERC20ABI())
	chain.handle(testWFLR, token, "balanceOf", balanceOf(map[common.Address]int64{testHolderA: 5, testHolderB: 6}))
	chain.handle(testFXRP, token, "balanceOf", reverts)

	mc := NewMulticall(chain, testMulticall)
	totals, err := mc.FetchBalances(context.Background(), []common.Address{testHolderA, testHolderB}, []common.Address{testWFLR, testFXRP})
	if err != nil {
		t.Fatalf("fetch balances: %v", err)
	}
	if totals.Native.Int64() != 123 {
		t.Fatalf("unexpected native total: %s", totals.Native)
	}
	if len(totals.Tokens) != 2 || totals.Tokens[0].Int64() != 11 || totals.Tokens[1].Sign() != 0 {
		t.Fatalf("unexpected token totals: %v", totals.Tokens)
	}
	if chain.calls != 1 {
		t.Fatalf("expected a single batched call, got %d", chain.calls)
	}
}

func TestFetchBalancesNoHolders(t *testing.T) {
	chain := newFakeChain(testMulticall)
	totals, err := NewMulticall(chain, testMulticall).FetchBalances(context.Background(), nil, []common.Address{testWFLR})
	if err != nil {
		t.Fatalf("fetch balances: %v", err)
	}
	if totals.Native.Sign() != 0 || totals.Tokens[0].Sign() != 0 || chain.calls != 0 {
		t.Fatalf("unexpected totals %+v after %d calls", totals, chain.calls)
	}
}

func TestAggregateReportsReverts(t *testing.T) {
	chain := newFakeChain(testMulticall)
	token := mustABI(ERC20ABI())
	chain.handle(testWFLR, token, "decimals", returns(uint8(18)))

	results, err := NewMulticall(chain, testMulticall).Aggregate(context.Background(), []Call{
		{Target: testWFLR, ABI: token, Method: "decimals"},
		{Target: testFXRP, ABI: token, Method: "decimals"},
	})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if !results[0].OK() || results[0].Values[0].(uint8) != 18 {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
	if results[1].OK() || !errors.Is(results[1].Err, ErrCallReverted) {
		t.Fatalf("expected revert, got %+v", results[1])
	}
}

func TestVaultFetchState(t *testing.T) {
	chain := newFakeChain(testMulticall)
	vault := mustABI(VaultABI())
	chain.handle(testVault, vault, "totalAssets", returns(big.NewInt(1_100)))
	chain.handle(testVault, vault, "totalSupply", returns(big.NewInt(1_000)))
	chain.handle(testVault, vault, "decimals", returns(uint8(6)))
	chain.handle(testVault, vault, "balanceOf", balanceOf(map[common.Address]int64{testAccount: 200}))
	chain.handle(testVault, vault, "convertToAssets", func(args []interface{}) ([]interface{}, error) {
		shares := args[0].(*big.Int)
		return []interface{}{new(big.Int).Div(new(big.Int).Mul(shares, big.NewInt(1_100)), big.NewInt(1_000))}, nil
	})

	state, err := NewVault(chain, testVault).FetchState(context.Background(), testAccount)
	if err != nil {
		t.Fatalf("fetch state: %v", err)
	}
	if state.Decimals != 6 || state.TotalAssets.Int64() != 1_100 || state.TotalSupply.Int64() != 1_000 {
		t.Fatalf("unexpected totals: %+v", state)
	}
	if state.Shares.Int64() != 200 || state.AssetBalance.Int64() != 220 {
		t.Fatalf("unexpected holdings: shares=%s assets=%s", state.Shares, state.AssetBalance)
	}

	anon, err := NewVault(chain, testVault).FetchState(context.Background(), common.Address{})
	if err != nil {
		t.Fatalf("fetch state without account: %v", err)
	}
	if anon.Shares.Sign() != 0 || anon.AssetBalance.Sign() != 0 {
		t.Fatalf("expected empty holdings, got %+v", anon)
	}
}

func TestVaultNotDeployed(t *testing.T) {
	if _, err := NewVault(newFakeChain(testMulticall), common.Address{}).FetchState(context.Background(), testAccount); !errors.Is(err, ErrContractNotDeployed) {
		t.Fatalf("expected ErrContractNotDeployed, got %v", err)
	}
}
