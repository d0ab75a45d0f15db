package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flareVault/internal/indexer"
	"flareVault/internal/storage"
	"flareVault/internal/storage/postgres"
)

func runScan(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	assetManager := a.cfg.Network.AssetManager

	var (
		sink       storage.ReservationSink
		checkpoint indexer.Checkpointer
	)
	if a.cfg.PGDSN != "" {
		store, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		sink = store
		if a.cfg.CheckpointEnabled {
			checkpoint = store.Checkpoint(postgres.StateName(a.cfg.Network.ChainID, assetManager.Hex()))
		}
	} else {
		sink = storage.NewJsonlStorage(a.cfg.Out)
		checkpoint = indexer.NewCheckpointStore(a.cfg.Checkpoint, a.cfg.CheckpointEnabled, assetManager.Hex())
	}

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:    a.cfg.FromBlock,
		ToBlock:      a.cfg.ToBlock,
		AssetManager: assetManager,
		BatchSize:    a.cfg.BatchSize,
		MaxRetries:   a.cfg.MaxRetries,
		RetryBackoff: a.cfg.RetryBackoff,
	}, a.chain, sink, checkpoint, a.logger)

	a.logger.Info("scan start",
		zap.String("asset_manager", assetManager.Hex()),
		zap.Uint64("from", a.cfg.FromBlock),
		zap.Uint64("to", a.cfg.ToBlock),
		zap.Uint64("batch_size", a.cfg.BatchSize),
		zap.String("out", a.cfg.Out),
		zap.Bool("postgres", a.cfg.PGDSN != ""),
		zap.Bool("checkpoint_enabled", a.cfg.CheckpointEnabled),
		zap.String("checkpoint", a.cfg.Checkpoint),
	)

	return runner.Run(ctx)
}
