package flare

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"flareVault/internal/feeds"
	"flareVault/internal/model"
	"flareVault/internal/units"
)

// stakedPremium prices staked XRP above XRP to reflect accrued vault yield.
const stakedPremium = 1.05

var demoPrices = map[string]float64{
	"FLR":      0.025,
	"C2FLR":    0.025,
	"WFLR":     0.025,
	"XRP":      0.55,
	"FXRP":     0.55,
	"FTestXRP": 0.55,
	"stXRP":    0.58,
	"USDT0":    1.0,
}

// DemoSnapshot returns the fallback prices used when FTSOv2 cannot be read.
func DemoSnapshot() model.PriceSnapshot {
	prices := make(map[string]float64, len(demoPrices))
	for k, v := range demoPrices {
		prices[k] = v
	}
	return model.PriceSnapshot{Prices: prices}
}

// PriceReader reads the feed table from FTSOv2 in a single call.
type PriceReader struct {
	caller   Caller
	registry *Registry
	table    feeds.Table
	logger   *zap.Logger
}

// NewPriceReader builds a reader for every feed in table.
func NewPriceReader(caller Caller, registry *Registry, table feeds.Table, logger *zap.Logger) *PriceReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceReader{caller: caller, registry: registry, table: table, logger: logger}
}

// Fetch reads current prices. Symbols the feed reports as zero keep their demo value.
func (r *PriceReader) Fetch(ctx context.Context) (model.PriceSnapshot, error) {
	ids, err := r.table.IDs()
	if err != nil {
		return model.PriceSnapshot{}, err
	}
	ftso, err := r.registry.Resolve(ctx, FtsoV2Name)
	if err != nil {
		return model.PriceSnapshot{}, fmt.Errorf("resolve ftso: %w", err)
	}
	parsed, err := FtsoV2ABI()
	if err != nil {
		return model.PriceSnapshot{}, err
	}
	values, err := callMethod(ctx, r.caller, ftso, parsed, "getFeedsByIdInWei", ids)
	if err != nil {
		return model.PriceSnapshot{}, err
	}
	if len(values) != 2 {
		return model.PriceSnapshot{}, fmt.Errorf("getFeedsByIdInWei: unexpected outputs %d", len(values))
	}
	weis, ok := values[0].([]*big.Int)
	if !ok {
		return model.PriceSnapshot{}, fmt.Errorf("getFeedsByIdInWei: unsupported values type %T", values[0])
	}
	if len(weis) != len(ids) {
		return model.PriceSnapshot{}, fmt.Errorf("getFeedsByIdInWei: %d values for %d feeds", len(weis), len(ids))
	}
	ts, err := asUint64(values[1])
	if err != nil {
		return model.PriceSnapshot{}, fmt.Errorf("getFeedsByIdInWei timestamp: %w", err)
	}

	snap := DemoSnapshot()
	snap.Timestamp = ts
	snap.Live = true
	for i, symbol := range r.table.Symbols() {
		if weis[i] == nil || weis[i].Sign() == 0 {
			continue
		}
		snap.Prices[symbol] = units.ToFloat(weis[i], units.WeiDecimals)
	}
	deriveWrapped(snap.Prices)
	return snap, nil
}

// FetchOrDemo reads prices and falls back to the demo snapshot on any failure.
func (r *PriceReader) FetchOrDemo(ctx context.Context) model.PriceSnapshot {
	snap, err := r.Fetch(ctx)
	if err != nil {
		r.logger.Warn("ftso read failed, using demo prices", zap.Error(err))
		return DemoSnapshot()
	}
	return snap
}

func deriveWrapped(prices map[string]float64) {
	flr := prices["FLR"]
	xrp := prices["XRP"]
	prices["C2FLR"] = flr
	prices["WFLR"] = flr
	prices["FXRP"] = xrp
	prices["FTestXRP"] = xrp
	prices["stXRP"] = xrp * stakedPremium
	prices["stFXRP"] = xrp * stakedPremium
}
