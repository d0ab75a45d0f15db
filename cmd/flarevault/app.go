package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flareVault/internal/cache/redis"
	"flareVault/internal/chain"
	"flareVault/internal/config"
	"flareVault/internal/flare"
	"flareVault/internal/poller"
	"flareVault/internal/storage"
	"flareVault/internal/storage/postgres"
)

// app holds the clients shared by every command.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	chain   *chain.Client
	account common.Address

	multicall *flare.Multicall
	prices    *flare.PriceReader
	markets   *flare.MarketReader

	closers []func()
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		chainClient.Close()
		return nil, fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() || chainID.Uint64() != cfg.Network.ChainID {
		chainClient.Close()
		return nil, fmt.Errorf("rpc chain id %s does not match network %s (%d)", chainID, cfg.Network.Name, cfg.Network.ChainID)
	}

	var account common.Address
	if cfg.Account != "" {
		account = common.HexToAddress(cfg.Account)
	}

	multicall := flare.NewMulticall(chainClient, cfg.Network.Multicall3)
	registry := flare.NewRegistry(chainClient, cfg.Network.ContractRegistry)

	a := &app{
		cfg:       cfg,
		logger:    logger,
		chain:     chainClient,
		account:   account,
		multicall: multicall,
		prices:    flare.NewPriceReader(chainClient, registry, cfg.Feeds, logger),
		markets:   flare.NewMarketReader(chainClient, multicall, cfg.Network.FlareBet, logger),
	}
	a.onClose(chainClient.Close)

	logger.Info("connected",
		zap.String("network", cfg.Network.Name),
		zap.Uint64("chain_id", cfg.Network.ChainID),
		zap.String("rpc", cfg.RPCURL),
		zap.Bool("flarebet", a.markets.Deployed()),
	)
	return a, nil
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}

func (a *app) newPoller(priceSink storage.PriceSink, viewSink storage.ViewSink) *poller.Poller {
	return poller.New(a.prices, a.markets, a.cfg.Feeds, priceSink, viewSink, poller.Options{
		Account:        a.account,
		PriceInterval:  a.cfg.PriceInterval,
		MarketInterval: a.cfg.MarketInterval,
		MaxRetries:     a.cfg.MaxRetries,
		RetryBackoff:   a.cfg.RetryBackoff,
	}, a.logger)
}

// sinks opens every configured output: JSONL, Postgres and the Redis price cache.
func (a *app) sinks(ctx context.Context) (storage.Fanout, error) {
	var fanout storage.Fanout

	if a.cfg.Out != "" {
		jsonl := storage.NewJsonlStorage(a.cfg.Out)
		fanout.Prices = append(fanout.Prices, jsonl)
		fanout.Views = append(fanout.Views, jsonl)
	}

	if a.cfg.PGDSN != "" {
		store, err := a.openStore(ctx)
		if err != nil {
			return storage.Fanout{}, err
		}
		fanout.Prices = append(fanout.Prices, store)
		fanout.Views = append(fanout.Views, store)
	}

	if a.cfg.RedisAddr != "" {
		cache, err := a.openPriceCache(ctx)
		if err != nil {
			return storage.Fanout{}, err
		}
		fanout.Prices = append(fanout.Prices, cache)
	}

	a.logger.Info("sinks ready",
		zap.String("out", a.cfg.Out),
		zap.Bool("postgres", a.cfg.PGDSN != ""),
		zap.Bool("redis", a.cfg.RedisAddr != ""),
	)
	return fanout, nil
}

func (a *app) openStore(ctx context.Context) (*postgres.Store, error) {
	store, err := postgres.NewStore(ctx, a.cfg.PGDSN, a.cfg.Network.ChainID)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.onClose(store.Close)
	if err := store.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (a *app) openPriceCache(ctx context.Context) (*redis.PriceCache, error) {
	client, err := redis.New(ctx, redis.ClientConfig{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	})
	if err != nil {
		return nil, err
	}
	a.onClose(func() { _ = client.Close() })
	return redis.NewPriceCache(client), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
