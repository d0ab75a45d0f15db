// Package poller refreshes prices and market views on fixed intervals.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"flareVault/internal/feeds"
	"flareVault/internal/flare"
	"flareVault/internal/market"
	"flareVault/internal/model"
	"flareVault/internal/retry"
	"flareVault/internal/storage"
)

// ErrMarketNotFound is returned by View for an id the last poll did not see.
var ErrMarketNotFound = errors.New("market not found")

// PriceSource reads a live price snapshot.
type PriceSource interface {
	Fetch(ctx context.Context) (model.PriceSnapshot, error)
}

// MarketSource reads prediction markets and account positions.
type MarketSource interface {
	FetchMarkets(ctx context.Context) ([]model.Market, error)
	FetchPositions(ctx context.Context, account common.Address, ids []uint64) (map[uint64]model.UserPosition, error)
}

// Options controls poll cadence and retries.
type Options struct {
	Account        common.Address
	PriceInterval  time.Duration
	MarketInterval time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

// Poller keeps the latest price snapshot and market list in memory. Views are
// rebuilt from them on every request, so time-dependent fields stay current.
type Poller struct {
	prices  PriceSource
	markets MarketSource
	table   feeds.Table
	opts    Options
	priceSk storage.PriceSink
	viewSk  storage.ViewSink
	logger  *zap.Logger

	now    func() time.Time
	pollID func() string

	mu        sync.RWMutex
	snapshot  model.PriceSnapshot
	hasPrices bool
	latest    []model.Market
}

// New builds a poller. Nil sinks discard writes.
func New(
	prices PriceSource,
	markets MarketSource,
	table feeds.Table,
	priceSink storage.PriceSink,
	viewSink storage.ViewSink,
	opts Options,
	logger *zap.Logger,
) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PriceInterval <= 0 {
		opts.PriceInterval = 10 * time.Second
	}
	if opts.MarketInterval <= 0 {
		opts.MarketInterval = 30 * time.Second
	}
	return &Poller{
		prices:  prices,
		markets: markets,
		table:   table,
		opts:    opts,
		priceSk: priceSink,
		viewSk:  viewSink,
		logger:  logger,
		now:     time.Now,
		pollID:  func() string { return uuid.New().String() },
	}
}

// Run polls prices and markets until ctx is cancelled. Failed cycles are logged
// and retried on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller starting",
		zap.Duration("price_interval", p.opts.PriceInterval),
		zap.Duration("market_interval", p.opts.MarketInterval),
	)

	// First market cycle needs a snapshot.
	if _, err := p.PollPrices(ctx); err != nil {
		p.logger.Warn("price poll failed", zap.Error(err))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.loop(ctx, p.opts.PriceInterval, false, func(ctx context.Context) error {
			_, err := p.PollPrices(ctx)
			return err
		})
	})
	g.Go(func() error {
		return p.loop(ctx, p.opts.MarketInterval, true, func(ctx context.Context) error {
			_, err := p.PollMarkets(ctx)
			return err
		})
	})

	err := g.Wait()
	p.logger.Info("poller stopped")
	return err
}

func (p *Poller) loop(ctx context.Context, interval time.Duration, immediate bool, poll func(context.Context) error) error {
	if immediate {
		if err := poll(ctx); err != nil && ctx.Err() == nil {
			p.logger.Warn("poll failed", zap.Error(err))
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := poll(ctx); err != nil && ctx.Err() == nil {
				p.logger.Warn("poll failed", zap.Error(err))
			}
		}
	}
}

// PollPrices runs one price cycle. When the feed stays unavailable after
// retries the demo snapshot is stored instead, so the error is only ever a
// sink failure.
func (p *Poller) PollPrices(ctx context.Context) (model.PriceSnapshot, error) {
	var snap model.PriceSnapshot
	err := retry.Do(ctx, p.opts.MaxRetries, p.opts.RetryBackoff, func(ctx context.Context) error {
		var err error
		snap, err = p.prices.Fetch(ctx)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return model.PriceSnapshot{}, ctx.Err()
		}
		p.logger.Warn("ftso read failed, using demo prices", zap.Error(err))
		snap = flare.DemoSnapshot()
	}

	p.mu.Lock()
	p.snapshot = snap
	p.hasPrices = true
	p.mu.Unlock()

	pollID := p.pollID()
	p.logger.Debug("prices polled",
		zap.String("poll_id", pollID),
		zap.Bool("live", snap.Live),
		zap.Int("symbols", len(snap.Prices)),
	)
	if p.priceSk != nil {
		if err := p.priceSk.PutPrices(ctx, pollID, snap); err != nil {
			return snap, fmt.Errorf("store prices: %w", err)
		}
	}
	return snap, nil
}

// PollMarkets runs one market cycle and returns the views it stored.
func (p *Poller) PollMarkets(ctx context.Context) ([]market.View, error) {
	var markets []model.Market
	err := retry.Do(ctx, p.opts.MaxRetries, p.opts.RetryBackoff, func(ctx context.Context) error {
		var err error
		markets, err = p.markets.FetchMarkets(ctx)
		if errors.Is(err, flare.ErrContractNotDeployed) {
			markets, err = nil, nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}

	p.mu.Lock()
	p.latest = markets
	p.mu.Unlock()

	views, err := p.Views(ctx, p.opts.Account)
	if err != nil {
		return nil, err
	}

	pollID := p.pollID()
	p.logger.Info("markets polled", zap.String("poll_id", pollID), zap.Int("markets", len(views)))
	if p.viewSk != nil {
		if err := p.viewSk.PutViews(ctx, pollID, views); err != nil {
			return views, fmt.Errorf("store views: %w", err)
		}
	}
	return views, nil
}

// LatestPrices returns the most recent snapshot, or the demo snapshot before
// the first poll.
func (p *Poller) LatestPrices(_ context.Context) (model.PriceSnapshot, error) {
	return p.latestSnapshot(), nil
}

func (p *Poller) latestSnapshot() model.PriceSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.hasPrices {
		return flare.DemoSnapshot()
	}
	return p.snapshot
}

// Views builds fresh views of the last polled markets for account. A zero
// account gets the zero position everywhere.
func (p *Poller) Views(ctx context.Context, account common.Address) ([]market.View, error) {
	markets := p.cachedMarkets()
	prices := p.latestSnapshot()

	positions, err := p.positions(ctx, account, markets)
	if err != nil {
		return nil, err
	}
	return market.BuildViews(markets, positions, prices, p.table, p.now().Unix()), nil
}

// View builds the view of a single market for account.
func (p *Poller) View(ctx context.Context, id uint64, account common.Address) (market.View, error) {
	var found []model.Market
	for _, m := range p.cachedMarkets() {
		if m.ID == id {
			found = append(found, m)
			break
		}
	}
	if len(found) == 0 {
		return market.View{}, ErrMarketNotFound
	}

	prices := p.latestSnapshot()
	positions, err := p.positions(ctx, account, found)
	if err != nil {
		return market.View{}, err
	}
	return market.BuildView(found[0], positions[id], prices, p.table, p.now().Unix()), nil
}

func (p *Poller) cachedMarkets() []model.Market {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.Market, len(p.latest))
	copy(out, p.latest)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (p *Poller) positions(ctx context.Context, account common.Address, markets []model.Market) (map[uint64]model.UserPosition, error) {
	if flare.IsZeroAddress(account) || len(markets) == 0 {
		return nil, nil
	}
	ids := make([]uint64, 0, len(markets))
	for _, m := range markets {
		ids = append(ids, m.ID)
	}

	var positions map[uint64]model.UserPosition
	err := retry.Do(ctx, p.opts.MaxRetries, p.opts.RetryBackoff, func(ctx context.Context) error {
		var err error
		positions, err = p.markets.FetchPositions(ctx, account, ids)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}
	return positions, nil
}
