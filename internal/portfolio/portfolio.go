// Package portfolio aggregates token balances across many addresses.
package portfolio

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"flareVault/internal/flare"
	"flareVault/internal/model"
	"flareVault/internal/units"
)

// placeholderPrefix matches addresses whose first 36 hex digits are zero,
// which covers the zero address and undeployed token slots.
const placeholderPrefix = "0x000000000000000000000000000000000000"

// BalanceReader sums balances of holders in one batched read.
type BalanceReader interface {
	FetchBalances(ctx context.Context, holders []common.Address, tokens []common.Address) (flare.BalanceTotals, error)
}

// Service reads and values the token table of one network.
type Service struct {
	reader BalanceReader
	tokens []model.Token
}

// NewService builds a portfolio reader over tokens.
func NewService(reader BalanceReader, tokens []model.Token) *Service {
	return &Service{reader: reader, tokens: tokens}
}

// Balances sums balances of holders and values them with prices.
func (s *Service) Balances(ctx context.Context, holders []common.Address, prices model.PriceSnapshot) ([]model.TokenBalance, error) {
	native, erc20 := SplitTokens(s.tokens)
	addresses := make([]common.Address, 0, len(erc20))
	for _, token := range erc20 {
		addresses = append(addresses, common.HexToAddress(token.Address))
	}
	totals, err := s.reader.FetchBalances(ctx, holders, addresses)
	if err != nil {
		return nil, fmt.Errorf("fetch balances: %w", err)
	}
	return Aggregate(totals, native, erc20, prices), nil
}

// SplitTokens separates the native token from readable ERC-20 tokens.
// Tokens without a deployed address are dropped.
func SplitTokens(tokens []model.Token) (*model.Token, []model.Token) {
	var native *model.Token
	erc20 := make([]model.Token, 0, len(tokens))
	for i := range tokens {
		token := tokens[i]
		if token.IsNative() {
			native = &token
			continue
		}
		if IsPlaceholder(token.Address) {
			continue
		}
		erc20 = append(erc20, token)
	}
	return native, erc20
}

// IsPlaceholder reports whether addr is missing, malformed or a reserved placeholder.
func IsPlaceholder(addr string) bool {
	if !common.IsHexAddress(addr) {
		return true
	}
	return strings.HasPrefix(strings.ToLower(addr), placeholderPrefix)
}

// Aggregate converts raw totals into display balances. Zero totals are omitted.
// totals.Tokens[i] must correspond to erc20[i].
func Aggregate(totals flare.BalanceTotals, native *model.Token, erc20 []model.Token, prices model.PriceSnapshot) []model.TokenBalance {
	out := make([]model.TokenBalance, 0, len(erc20)+1)
	if native != nil && totals.Native != nil && totals.Native.Sign() > 0 {
		out = append(out, balanceOf(*native, units.ToFloat(totals.Native, native.Decimals), prices))
	}
	for i, token := range erc20 {
		if i >= len(totals.Tokens) {
			break
		}
		total := totals.Tokens[i]
		if total == nil || total.Sign() <= 0 {
			continue
		}
		out = append(out, balanceOf(token, units.ToFloat(total, token.Decimals), prices))
	}
	return out
}

// TotalUSD sums the USD value of balances.
func TotalUSD(balances []model.TokenBalance) float64 {
	var total float64
	for _, b := range balances {
		total += b.USDValue
	}
	return total
}

func balanceOf(token model.Token, amount float64, prices model.PriceSnapshot) model.TokenBalance {
	return model.TokenBalance{
		Symbol:   token.Symbol,
		Name:     token.Name,
		Balance:  amount,
		Decimals: token.Decimals,
		Address:  token.Address,
		USDValue: amount * prices.Price(token.Symbol),
	}
}
