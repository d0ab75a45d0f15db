// Package postgres persists markets, prices and reservations in PostgreSQL via pgx.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"flareVault/internal/market"
	"flareVault/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store provides Postgres persistence for one chain.
type Store struct {
	pool    *pgxpool.Pool
	chainID uint64
}

func NewStore(ctx context.Context, dsn string, chainID uint64) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Store{pool: pool, chainID: chainID}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// RunMigrations applies the embedded schema files in name order, once each.
func (s *Store) RunMigrations(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("postgres: create schema_migrations: %w", err)
	}

	names, err := migrationNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		var applied bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)`, name,
		).Scan(&applied); err != nil {
			return fmt.Errorf("postgres: check migration %s: %w", name, err)
		}
		if applied {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("postgres: read migration %s: %w", name, err)
		}
		if err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(data)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1)`, name)
			return err
		}); err != nil {
			return fmt.Errorf("postgres: apply migration %s: %w", name, err)
		}
	}
	return nil
}

func migrationNames() ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("postgres: read migrations dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// PutViews upserts the market rows and appends one history row per view.
func (s *Store) PutViews(ctx context.Context, pollID string, views []market.View) error {
	if len(views) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, v := range views {
		batch.Queue(`
			INSERT INTO markets (
				chain_id, market_id, question, feed_id, symbol, creator, deadline, target_price,
				resolved, outcome, resolved_price, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now(),now())
			ON CONFLICT (chain_id, market_id)
			DO UPDATE SET
				resolved = EXCLUDED.resolved,
				outcome = EXCLUDED.outcome,
				resolved_price = EXCLUDED.resolved_price,
				updated_at = now()
		`,
			int64(s.chainID),
			int64(v.ID),
			v.Question,
			v.FeedID,
			v.Symbol,
			v.Creator,
			v.Deadline,
			v.TargetPrice,
			v.Resolved,
			v.Outcome,
			v.ResolvedPrice,
		)
		batch.Queue(`
			INSERT INTO market_views (
				poll_id, chain_id, market_id, status, current_price, yes_pool, no_pool,
				yes_percent, ai_probability, time_left
			) VALUES ($1,$2,$3,$4,$5,$6::numeric,$7::numeric,$8,$9,$10)
		`,
			pollID,
			int64(s.chainID),
			int64(v.ID),
			v.Status,
			v.CurrentPrice,
			v.YesPool,
			v.NoPool,
			v.YesPercent,
			v.AIProbability,
			v.TimeLeft,
		)
	}
	return s.sendBatch(ctx, batch)
}

// PutPrices appends one history row per symbol.
func (s *Store) PutPrices(ctx context.Context, pollID string, snap model.PriceSnapshot) error {
	if len(snap.Prices) == 0 {
		return nil
	}
	symbols := make([]string, 0, len(snap.Prices))
	for symbol := range snap.Prices {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	batch := &pgx.Batch{}
	for _, symbol := range symbols {
		batch.Queue(`
			INSERT INTO price_history (poll_id, chain_id, symbol, price, feed_ts, live)
			VALUES ($1,$2,$3,$4,$5,$6)
		`,
			pollID,
			int64(s.chainID),
			symbol,
			snap.Prices[symbol],
			int64(snap.Timestamp),
			snap.Live,
		)
	}
	return s.sendBatch(ctx, batch)
}

// PutReservations inserts reservations, ignoring ones already stored.
func (s *Store) PutReservations(ctx context.Context, reservations []model.CollateralReservation) error {
	if len(reservations) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range reservations {
		batch.Queue(`
			INSERT INTO collateral_reservations (
				chain_id, tx_hash, log_index, block_number, asset_manager, agent_vault, minter,
				reservation_id, value_uba, fee_uba, first_underlying_block, last_underlying_block,
				last_underlying_timestamp, payment_address, payment_reference, executor,
				executor_fee_nat_wei, block_timestamp
			) VALUES (
				$1,$2,$3,$4,$5,$6,$7,$8::numeric,$9::numeric,$10::numeric,$11::numeric,$12::numeric,
				$13,$14,$15,$16,$17::numeric,$18
			)
			ON CONFLICT (chain_id, tx_hash, log_index) DO NOTHING
		`,
			int64(r.ChainID),
			r.TxHash,
			int64(r.LogIndex),
			int64(r.BlockNumber),
			r.AssetManager,
			r.AgentVault,
			r.Minter,
			r.ReservationID,
			r.ValueUBA,
			r.FeeUBA,
			r.FirstUnderlyingBlock,
			r.LastUnderlyingBlock,
			int64(r.LastUnderlyingTimestamp),
			r.PaymentAddress,
			r.PaymentReference,
			r.Executor,
			r.ExecutorFeeNatWei,
			int64(r.Timestamp),
		)
	}
	return s.sendBatch(ctx, batch)
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns last_processed_block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(block), true, nil
}

// SaveState upserts last_processed_block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, int64(block))
	return err
}

// Checkpoint binds the indexer_state row called name to the indexer's checkpoint interface.
type Checkpoint struct {
	store *Store
	name  string
}

// Checkpoint returns a checkpoint backed by indexer_state.
func (s *Store) Checkpoint(name string) *Checkpoint {
	return &Checkpoint{store: s, name: name}
}

func (c *Checkpoint) Load(ctx context.Context) (uint64, bool, error) {
	return c.store.LoadState(ctx, c.name)
}

func (c *Checkpoint) Save(ctx context.Context, block uint64) error {
	return c.store.SaveState(ctx, c.name, block)
}

// StateName derives the checkpoint name for a scan of one AssetManager.
func StateName(chainID uint64, assetManager string) string {
	return fmt.Sprintf("collateral_reserved:%d:%s", chainID, strings.ToLower(assetManager))
}
