package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flareVault/internal/cache/redis"
)

func runPrices(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	cached, _ := cmd.Flags().GetBool("cached")
	if cached {
		if a.cfg.RedisAddr == "" {
			return errors.New("--cached requires --redis-addr")
		}
		cache, err := a.openPriceCache(ctx)
		if err != nil {
			return err
		}
		snap, err := cache.LatestPrices(ctx)
		if err == nil {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(snap)
		}
		if !errors.Is(err, redis.ErrNoPrices) {
			return err
		}
		a.logger.Info("price cache empty, reading ftso", zap.Error(err))
	}

	snap, err := a.newPoller(nil, nil).PollPrices(ctx)
	if err != nil {
		return err
	}
	return json.NewEncoder(cmd.OutOrStdout()).Encode(snap)
}
