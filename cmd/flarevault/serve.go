package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"flareVault/internal/bridge"
	"flareVault/internal/chain"
	"flareVault/internal/flare"
	"flareVault/internal/portfolio"
	"flareVault/internal/server"
)

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	holders, err := chain.ParseAddresses(a.cfg.Addresses)
	if err != nil {
		return err
	}

	fanout, err := a.sinks(ctx)
	if err != nil {
		return err
	}
	p := a.newPoller(fanout, fanout)

	network := a.cfg.Network
	deps := server.Deps{
		Prices:         p,
		Markets:        p,
		Balances:       portfolio.NewService(a.multicall, network.Tokens),
		DefaultHolders: holders,
	}
	if vault := flare.NewVault(a.chain, network.StXRP); vault.Deployed() {
		deps.Vault = vault
	}
	if am := flare.NewAssetManager(a.chain, network.AssetManager); am.Deployed() {
		deps.Bridge = bridge.NewService(am, a.chain, a.logger)
	}
	srv := server.New(deps, a.logger)

	a.logger.Info("serve start",
		zap.String("listen", a.cfg.Listen),
		zap.Bool("vault", deps.Vault != nil),
		zap.Bool("bridge", deps.Bridge != nil),
		zap.Int("default_holders", len(holders)),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.Run(ctx)
	})
	g.Go(func() error {
		return srv.Run(ctx, a.cfg.Listen)
	})
	return g.Wait()
}
