package flare

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"flareVault/internal/feeds"
	"flareVault/internal/model"
)

// positionCalls is the number of reads needed to build one UserPosition.
const positionCalls = 4

// MarketReader reads FlareBet markets and account positions.
type MarketReader struct {
	caller    Caller
	multicall *Multicall
	address   common.Address
	logger    *zap.Logger
}

// NewMarketReader builds a reader for the FlareBet contract at address.
func NewMarketReader(caller Caller, multicall *Multicall, address common.Address, logger *zap.Logger) *MarketReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketReader{caller: caller, multicall: multicall, address: address, logger: logger}
}

// Deployed reports whether the reader points at a contract.
func (r *MarketReader) Deployed() bool {
	return !IsZeroAddress(r.address)
}

// MarketCount returns nextMarketId. Market ids run from 0 to count-1.
func (r *MarketReader) MarketCount(ctx context.Context) (uint64, error) {
	if !r.Deployed() {
		return 0, ErrContractNotDeployed
	}
	parsed, err := FlareBetABI()
	if err != nil {
		return 0, err
	}
	count, err := callBigInt(ctx, r.caller, r.address, parsed, "nextMarketId")
	if err != nil {
		return 0, err
	}
	if !count.IsUint64() {
		return 0, fmt.Errorf("nextMarketId out of range: %s", count)
	}
	return count.Uint64(), nil
}

// FetchMarket reads a single market.
func (r *MarketReader) FetchMarket(ctx context.Context, id uint64) (model.Market, error) {
	if !r.Deployed() {
		return model.Market{}, ErrContractNotDeployed
	}
	parsed, err := FlareBetABI()
	if err != nil {
		return model.Market{}, err
	}
	values, err := callMethod(ctx, r.caller, r.address, parsed, "getMarket", new(big.Int).SetUint64(id))
	if err != nil {
		return model.Market{}, err
	}
	return decodeMarket(id, values)
}

// FetchMarkets reads every market in one batch. Markets whose read fails are skipped.
func (r *MarketReader) FetchMarkets(ctx context.Context) ([]model.Market, error) {
	count, err := r.MarketCount(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	parsed, err := FlareBetABI()
	if err != nil {
		return nil, err
	}

	calls := make([]Call, 0, count)
	for id := uint64(0); id < count; id++ {
		calls = append(calls, Call{
			Target: r.address,
			ABI:    parsed,
			Method: "getMarket",
			Args:   []interface{}{new(big.Int).SetUint64(id)},
		})
	}
	results, err := r.multicall.Aggregate(ctx, calls)
	if err != nil {
		return nil, err
	}

	markets := make([]model.Market, 0, len(results))
	for i, res := range results {
		id := uint64(i)
		if !res.OK() {
			r.logger.Debug("skip market", zap.Uint64("market", id), zap.Error(res.Err))
			continue
		}
		m, err := decodeMarket(id, res.Values)
		if err != nil {
			r.logger.Debug("skip market", zap.Uint64("market", id), zap.Error(err))
			continue
		}
		markets = append(markets, m)
	}
	return markets, nil
}

// FetchPositions reads account's position in each market id. A failed read leaves
// the corresponding field at its zero value.
func (r *MarketReader) FetchPositions(ctx context.Context, account common.Address, ids []uint64) (map[uint64]model.UserPosition, error) {
	if !r.Deployed() {
		return nil, ErrContractNotDeployed
	}
	out := make(map[uint64]model.UserPosition, len(ids))
	if len(ids) == 0 || IsZeroAddress(account) {
		return out, nil
	}
	parsed, err := FlareBetABI()
	if err != nil {
		return nil, err
	}

	calls := make([]Call, 0, len(ids)*positionCalls)
	for _, id := range ids {
		marketID := new(big.Int).SetUint64(id)
		for _, method := range []string{"yesBets", "noBets", "claimed", "calculatePayout"} {
			calls = append(calls, Call{
				Target: r.address,
				ABI:    parsed,
				Method: method,
				Args:   []interface{}{marketID, account},
			})
		}
	}
	results, err := r.multicall.Aggregate(ctx, calls)
	if err != nil {
		return nil, err
	}

	for i, id := range ids {
		base := i * positionCalls
		out[id] = model.UserPosition{
			YesBet:  resultBigInt(results[base]),
			NoBet:   resultBigInt(results[base+1]),
			Claimed: resultBool(results[base+2]),
			Payout:  resultBigInt(results[base+3]),
		}
	}
	return out, nil
}

func decodeMarket(id uint64, values []interface{}) (model.Market, error) {
	if len(values) != 10 {
		return model.Market{}, fmt.Errorf("getMarket: unexpected outputs %d", len(values))
	}
	question, ok := values[0].(string)
	if !ok {
		return model.Market{}, fmt.Errorf("getMarket question: unsupported type %T", values[0])
	}
	feedID, ok := values[1].([feeds.IDLength]byte)
	if !ok {
		return model.Market{}, fmt.Errorf("getMarket feedId: unsupported type %T", values[1])
	}
	nums := make([]*big.Int, 5)
	for i := range nums {
		v, err := asBigInt(values[2+i])
		if err != nil {
			return model.Market{}, fmt.Errorf("getMarket field %d: %w", 2+i, err)
		}
		nums[i] = v
	}
	resolved, err := asBool(values[7])
	if err != nil {
		return model.Market{}, fmt.Errorf("getMarket resolved: %w", err)
	}
	outcome, err := asBool(values[8])
	if err != nil {
		return model.Market{}, fmt.Errorf("getMarket outcome: %w", err)
	}
	creator, err := asAddress(values[9])
	if err != nil {
		return model.Market{}, fmt.Errorf("getMarket creator: %w", err)
	}
	deadline := nums[1]
	if !deadline.IsInt64() {
		return model.Market{}, fmt.Errorf("getMarket deadline out of range: %s", deadline)
	}

	return model.Market{
		ID:            id,
		Question:      question,
		FeedID:        feeds.HexID(feedID),
		TargetPrice:   nums[0],
		Deadline:      deadline.Int64(),
		YesPool:       nums[2],
		NoPool:        nums[3],
		ResolvedPrice: nums[4],
		Resolved:      resolved,
		Outcome:       outcome,
		Creator:       creator.Hex(),
	}, nil
}

func resultBigInt(res CallResult) *big.Int {
	if !res.OK() {
		return big.NewInt(0)
	}
	v, err := asBigInt(res.Values[0])
	if err != nil {
		return big.NewInt(0)
	}
	return v
}

func resultBool(res CallResult) bool {
	if !res.OK() {
		return false
	}
	v, err := asBool(res.Values[0])
	if err != nil {
		return false
	}
	return v
}
