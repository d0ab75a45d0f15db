package indexer

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"flareVault/internal/flare"
	"flareVault/internal/model"
	"flareVault/internal/retry"
	"flareVault/internal/storage"
)

// Chain is the subset of the RPC client the indexer reads from.
type Chain interface {
	GetChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// RunConfig holds runtime settings for the indexer.
type RunConfig struct {
	FromBlock    uint64
	ToBlock      uint64
	AssetManager common.Address
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// Runner scans CollateralReserved logs and writes decoded reservations to storage.
type Runner struct {
	cfg        RunConfig
	chain      Chain
	sink       storage.ReservationSink
	checkpoint Checkpointer
	logger     *zap.Logger
	seen       map[string]struct{}
}

// NewRunner builds a Runner with its dependencies. A nil checkpoint always
// starts from cfg.FromBlock.
func NewRunner(cfg RunConfig, chainClient Chain, sink storage.ReservationSink, checkpoint Checkpointer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		chain:      chainClient,
		sink:       sink,
		checkpoint: checkpoint,
		logger:     logger,
		seen:       make(map[string]struct{}),
	}
}

// Run executes the indexing loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if r.sink == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	if flare.IsZeroAddress(r.cfg.AssetManager) {
		return fmt.Errorf("asset manager: %w", flare.ErrContractNotDeployed)
	}

	topic, err := flare.CollateralReservedTopic()
	if err != nil {
		return err
	}

	chainID, err := r.chain.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}
	chainIDValue := chainID.Uint64()

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	var last uint64
	var resume bool
	if r.checkpoint != nil {
		last, resume, err = r.checkpoint.Load(ctx)
		if err != nil {
			return err
		}
	}
	if r.cfg.BatchSize > maxLogWindow {
		r.logger.Warn("batch size above rpc log window, clamping",
			zap.Uint64("batch_size", r.cfg.BatchSize),
			zap.Uint64("window", maxLogWindow),
		)
	}

	windows, err := planWindows(from, to, r.cfg.BatchSize, last, resume)
	if err != nil {
		return err
	}
	if len(windows) == 0 {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to), zap.Uint64("last_processed", last))
		return nil
	}
	if windows[0].From != from {
		r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", last), zap.Uint64("from", windows[0].From))
	}

	for _, window := range windows {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r.logger.Info("fetch logs", zap.Uint64("from", window.From), zap.Uint64("to", window.To))

		logs, err := r.filterLogsWithRetry(ctx, window.From, window.To, topic)
		if err != nil {
			return fmt.Errorf("filter logs: %w", err)
		}

		reservations := make([]model.CollateralReservation, 0, len(logs))
		var decodeErrors []model.DecodeError
		for _, log := range logs {
			if log.Removed || r.isDuplicate(log) {
				continue
			}

			ts, err := r.blockTimestampWithRetry(ctx, log.BlockNumber)
			if err != nil {
				return fmt.Errorf("block timestamp %d: %w", log.BlockNumber, err)
			}
			reservation, decodeErr := decodeReservation(chainIDValue, log, ts)
			if decodeErr != nil {
				r.logger.Warn("decode failed",
					zap.String("tx_hash", decodeErr.TxHash),
					zap.Uint64("log_index", decodeErr.LogIndex),
					zap.String("error", decodeErr.Error),
				)
				decodeErrors = append(decodeErrors, *decodeErr)
				continue
			}
			reservations = append(reservations, reservation)
		}

		if err := r.sink.PutReservations(ctx, reservations); err != nil {
			return fmt.Errorf("store reservations: %w", err)
		}
		if errSink, ok := r.sink.(storage.DecodeErrorSink); ok && len(decodeErrors) > 0 {
			if err := errSink.PutDecodeErrors(ctx, decodeErrors); err != nil {
				return fmt.Errorf("store decode errors: %w", err)
			}
		}

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(ctx, window.To); err != nil {
				return err
			}
		}

		r.logger.Info("batch complete",
			zap.Int("reservations", len(reservations)),
			zap.Int("decode_errors", len(decodeErrors)),
			zap.Uint64("from", window.From),
			zap.Uint64("to", window.To),
		)
	}

	return nil
}

func (r *Runner) filterLogsWithRetry(ctx context.Context, fromBlock, toBlock uint64, topic common.Hash) ([]types.Log, error) {
	var logs []types.Log
	addresses := []common.Address{r.cfg.AssetManager}
	err := retry.Do(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = r.chain.FilterLogs(ctx, fromBlock, toBlock, addresses, []common.Hash{topic})
		if err != nil {
			r.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		}
		return err
	})
	return logs, err
}

func (r *Runner) blockTimestampWithRetry(ctx context.Context, blockNumber uint64) (uint64, error) {
	var ts uint64
	err := retry.Do(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		ts, err = r.chain.BlockTimestamp(ctx, blockNumber)
		if err != nil {
			r.logger.Warn("block timestamp fetch failed", zap.Error(err), zap.Uint64("block_number", blockNumber))
		}
		return err
	})
	return ts, err
}

func (r *Runner) isDuplicate(log types.Log) bool {
	id := fmt.Sprintf("%d:%s:%d", log.BlockNumber, log.TxHash.Hex(), log.Index)
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}
