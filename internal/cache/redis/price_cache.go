package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"flareVault/internal/model"
)

// ErrNoPrices is returned when the cache holds no snapshot yet.
var ErrNoPrices = errors.New("no cached prices")

const symbolsKey = "prices:symbols"

// PriceCache keeps the latest price of every symbol as a hash at
// "price:{symbol}" with fields price, ts and live.
type PriceCache struct {
	rdb *redis.Client
}

// NewPriceCache builds a cache on c.
func NewPriceCache(c *Client) *PriceCache {
	return &PriceCache{rdb: c.rdb}
}

func priceKey(symbol string) string {
	return "price:" + symbol
}

// PutPrices stores every price of snap in one pipeline.
func (pc *PriceCache) PutPrices(ctx context.Context, _ string, snap model.PriceSnapshot) error {
	if len(snap.Prices) == 0 {
		return nil
	}
	pipe := pc.rdb.TxPipeline()
	for symbol, price := range snap.Prices {
		pipe.HSet(ctx, priceKey(symbol), priceFields(price, snap.Timestamp, snap.Live))
		pipe.SAdd(ctx, symbolsKey, symbol)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: put prices: %w", err)
	}
	return nil
}

// LatestPrices rebuilds a snapshot from the cached hashes. Timestamp is the newest
// ts seen and Live is true only when every entry was live.
func (pc *PriceCache) LatestPrices(ctx context.Context) (model.PriceSnapshot, error) {
	symbols, err := pc.rdb.SMembers(ctx, symbolsKey).Result()
	if err != nil {
		return model.PriceSnapshot{}, fmt.Errorf("redis: list symbols: %w", err)
	}
	if len(symbols) == 0 {
		return model.PriceSnapshot{}, ErrNoPrices
	}
	sort.Strings(symbols)

	pipe := pc.rdb.Pipeline()
	cmds := make(map[string]*redis.MapStringStringCmd, len(symbols))
	for _, symbol := range symbols {
		cmds[symbol] = pipe.HGetAll(ctx, priceKey(symbol))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return model.PriceSnapshot{}, fmt.Errorf("redis: get prices pipeline: %w", err)
	}

	entries := make(map[string]map[string]string, len(cmds))
	for symbol, cmd := range cmds {
		vals, err := cmd.Result()
		if err != nil {
			continue
		}
		entries[symbol] = vals
	}
	snap := snapshotFromHashes(entries)
	if len(snap.Prices) == 0 {
		return model.PriceSnapshot{}, ErrNoPrices
	}
	return snap, nil
}

func priceFields(price float64, ts uint64, live bool) map[string]interface{} {
	return map[string]interface{}{
		"price": strconv.FormatFloat(price, 'f', -1, 64),
		"ts":    strconv.FormatUint(ts, 10),
		"live":  strconv.FormatBool(live),
	}
}

// snapshotFromHashes skips entries with a missing or unparsable price.
func snapshotFromHashes(entries map[string]map[string]string) model.PriceSnapshot {
	snap := model.PriceSnapshot{Prices: make(map[string]float64, len(entries)), Live: true}
	for symbol, vals := range entries {
		price, err := strconv.ParseFloat(vals["price"], 64)
		if err != nil {
			continue
		}
		snap.Prices[symbol] = price
		if ts, err := strconv.ParseUint(vals["ts"], 10, 64); err == nil && ts > snap.Timestamp {
			snap.Timestamp = ts
		}
		if live, err := strconv.ParseBool(vals["live"]); err != nil || !live {
			snap.Live = false
		}
	}
	if len(snap.Prices) == 0 {
		snap.Live = false
	}
	return snap
}
