package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runPoll(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	fanout, err := a.sinks(ctx)
	if err != nil {
		return err
	}

	a.logger.Info("poll start",
		zap.Duration("price_interval", a.cfg.PriceInterval),
		zap.Duration("market_interval", a.cfg.MarketInterval),
		zap.String("account", a.cfg.Account),
	)
	return a.newPoller(fanout, fanout).Run(ctx)
}
