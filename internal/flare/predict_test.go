package flare

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"flareVault/internal/feeds"
	"flareVault/internal/model"
)

var testCreator = common.HexToAddress("0x2222222222222222222222222222222222222222")

func marketOutputs(question string, target string, deadline int64, yes, no string, resolved, outcome bool) []interface{} {
	feedID, err := feeds.Bytes21("0x015852502f55534400000000000000000000000000")
	if err != nil {
		panic(err)
	}
	return []interface{}{
		question,
		feedID,
		bigInt(target),
		big.NewInt(deadline),
		bigInt(yes),
		bigInt(no),
		big.NewInt(0),
		resolved,
		outcome,
		testCreator,
	}
}

func newMarketChain(count int64) *fakeChain {
	chain := newFakeChain(testMulticall)
	bet := mustABI(FlareBetABI())
	chain.handle(testFlareBet, bet, "nextMarketId", returns(big.NewInt(count)))
	chain.handle(testFlareBet, bet, "getMarket", func(args []interface{}) ([]interface{}, error) {
		switch args[0].(*big.Int).Int64() {
		case 0:
			return marketOutputs("Will XRP reach $1?", "1000000000000000000", 1_700_003_600, "3000000000000000000", "1000000000000000000", false, false), nil
		case 1:
			return nil, errors.New("execution reverted")
		default:
			return marketOutputs("Will XRP stay above $0.40?", "400000000000000000", 1_699_990_000, "0", "0", true, true), nil
		}
	})
	return chain
}

func TestMarketReaderFetchMarkets(t *testing.T) {
	chain := newMarketChain(3)
	reader := NewMarketReader(chain, NewMulticall(chain, testMulticall), testFlareBet, nil)

	markets, err := reader.FetchMarkets(context.Background())
	if err != nil {
		t.Fatalf("fetch markets: %v", err)
	}
	if len(markets) != 2 {
		t.Fatalf("expected reverted market to be skipped, got %d markets", len(markets))
	}

	first := markets[0]
	if first.ID != 0 || first.Question != "Will XRP reach $1?" {
		t.Fatalf("unexpected first market: %+v", first)
	}
	if first.FeedID != "0x015852502f55534400000000000000000000000000" {
		t.Fatalf("unexpected feed id: %s", first.FeedID)
	}
	if first.TargetPrice.String() != "1000000000000000000" || first.Deadline != 1_700_003_600 {
		t.Fatalf("unexpected target/deadline: %s %d", first.TargetPrice, first.Deadline)
	}
	if first.YesPool.String() != "3000000000000000000" || first.NoPool.String() != "1000000000000000000" {
		t.Fatalf("unexpected pools: %s %s", first.YesPool, first.NoPool)
	}
	if first.Creator != testCreator.Hex() {
		t.Fatalf("unexpected creator: %s", first.Creator)
	}

	second := markets[1]
	if second.ID != 2 || !second.Resolved || !second.Outcome {
		t.Fatalf("unexpected second market: %+v", second)
	}
}

func TestMarketReaderEmpty(t *testing.T) {
	chain := newMarketChain(0)
	reader := NewMarketReader(chain, NewMulticall(chain, testMulticall), testFlareBet, nil)

	markets, err := reader.FetchMarkets(context.Background())
	if err != nil {
		t.Fatalf("fetch markets: %v", err)
	}
	if len(markets) != 0 {
		t.Fatalf("expected no markets, got %d", len(markets))
	}
}

func TestMarketReaderNotDeployed(t *testing.T) {
	chain := newFakeChain(testMulticall)
	reader := NewMarketReader(chain, NewMulticall(chain, testMulticall), common.Address{}, nil)

	if _, err := reader.FetchMarkets(context.Background()); !errors.Is(err, ErrContractNotDeployed) {
		t.Fatalf("expected ErrContractNotDeployed, got %v", err)
	}
	if _, err := reader.FetchPositions(context.Background(), testAccount, []uint64{0}); !errors.Is(err, ErrContractNotDeployed) {
		t.Fatalf("expected ErrContractNotDeployed, got %v", err)
	}
}

func TestMarketReaderFetchPositions(t *testing.T) {
	chain := newMarketChain(2)
	bet := mustABI(FlareBetABI())
	chain.handle(testFlareBet, bet, "yesBets", func(args []interface{}) ([]interface{}, error) {
		if args[1].(common.Address) != testAccount {
			return []interface{}{big.NewInt(0)}, nil
		}
		return []interface{}{new(big.Int).Add(args[0].(*big.Int), big.NewInt(5))}, nil
	})
	chain.handle(testFlareBet, bet, "noBets", returns(big.NewInt(7)))
	chain.handle(testFlareBet, bet, "claimed", reverts)
	chain.handle(testFlareBet, bet, "calculatePayout", func(args []interface{}) ([]interface{}, error) {
		if args[0].(*big.Int).Sign() == 0 {
			return []interface{}{big.NewInt(12)}, nil
		}
		return []interface{}{big.NewInt(0)}, nil
	})
	reader := NewMarketReader(chain, NewMulticall(chain, testMulticall), testFlareBet, nil)

	positions, err := reader.FetchPositions(context.Background(), testAccount, []uint64{0, 1})
	if err != nil {
		t.Fatalf("fetch positions: %v", err)
	}
	expected := map[uint64]string{
		0: "5/7/false/12",
		1: "6/7/false/0",
	}
	if len(positions) != len(expected) {
		t.Fatalf("unexpected positions: %+v", positions)
	}
	for id, want := range expected {
		if got := formatPosition(positions[id]); got != want {
			t.Fatalf("market %d: expected %s, got %s", id, want, got)
		}
	}
}

func formatPosition(pos model.UserPosition) string {
	return fmt.Sprintf("%s/%s/%t/%s", pos.YesBet, pos.NoBet, pos.Claimed, pos.Payout)
}

func TestMarketReaderFetchMarket(t *testing.T) {
	chain := newMarketChain(3)
	reader := NewMarketReader(chain, NewMulticall(chain, testMulticall), testFlareBet, nil)

	m, err := reader.FetchMarket(context.Background(), 2)
	if err != nil {
		t.Fatalf("fetch market: %v", err)
	}
	if m.ID != 2 || m.TargetPrice.String() != "400000000000000000" {
		t.Fatalf("unexpected market: %+v", m)
	}
	if _, err := reader.FetchMarket(context.Background(), 1); err == nil {
		t.Fatalf("expected error for reverted market")
	}
}
