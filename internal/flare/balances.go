package flare

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// BalanceTotals holds balances summed across a set of holders.
type BalanceTotals struct {
	Native *big.Int
	Tokens []*big.Int
}

// FetchBalances sums native and ERC-20 balances of holders in one batch.
// Tokens[i] is the total for tokens[i]. Failed reads count as zero.
func (m *Multicall) FetchBalances(ctx context.Context, holders []common.Address, tokens []common.Address) (BalanceTotals, error) {
	totals := BalanceTotals{Native: big.NewInt(0), Tokens: make([]*big.Int, len(tokens))}
	for i := range totals.Tokens {
		totals.Tokens[i] = big.NewInt(0)
	}
	if len(holders) == 0 {
		return totals, nil
	}

	mcABI, err := Multicall3ABI()
	if err != nil {
		return BalanceTotals{}, err
	}
	tokenABI, err := ERC20ABI()
	if err != nil {
		return BalanceTotals{}, err
	}

	calls := make([]Call, 0, len(holders)*(len(tokens)+1))
	for _, holder := range holders {
		calls = append(calls, Call{Target: m.address, ABI: mcABI, Method: "getEthBalance", Args: []interface{}{holder}})
	}
	for _, holder := range holders {
		for _, token := range tokens {
			calls = append(calls, Call{Target: token, ABI: tokenABI, Method: "balanceOf", Args: []interface{}{holder}})
		}
	}

	results, err := m.Aggregate(ctx, calls)
	if err != nil {
		return BalanceTotals{}, err
	}
	for i := range holders {
		totals.Native.Add(totals.Native, resultBigInt(results[i]))
	}
	offset := len(holders)
	for h := range holders {
		for t := range tokens {
			totals.Tokens[t].Add(totals.Tokens[t], resultBigInt(results[offset+h*len(tokens)+t]))
		}
	}
	return totals, nil
}
