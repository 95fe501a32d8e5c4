package archive

import (
	"context"
	"encoding/json"
	"fmt"

	domain "orderflow/internal/domain/entity/marketdata"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists trades and order-book snapshots to Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() {
	if r == nil || r.pool == nil {
		return
	}
	r.pool.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

const schema = `
	CREATE TABLE IF NOT EXISTS orderflow_trades (
		trade_id  UUID PRIMARY KEY,
		symbol    TEXT NOT NULL,
		side      TEXT NOT NULL,
		price     DOUBLE PRECISION NOT NULL,
		size      DOUBLE PRECISION NOT NULL,
		traded_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS orderflow_trades_symbol_time_idx
		ON orderflow_trades (symbol, traded_at);
	CREATE TABLE IF NOT EXISTS orderflow_order_books (
		snapshot_id UUID PRIMARY KEY,
		symbol      TEXT NOT NULL,
		snapshot_at TIMESTAMPTZ NOT NULL,
		bids        JSONB NOT NULL,
		asks        JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS orderflow_order_books_symbol_time_idx
		ON orderflow_order_books (symbol, snapshot_at);`

// EnsureSchema creates the archive tables when they are missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure archive schema: %w", err)
	}
	return nil
}

// Trades

func (r *Repository) AddTrades(ctx context.Context, symbol string, trades []domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	rows := make([][]interface{}, 0, len(trades))
	for i := range trades {
		rows = append(rows, []interface{}{
			uuid.New(),
			symbol,
			string(trades[i].Side),
			trades[i].Price.InexactFloat64(),
			trades[i].Size.InexactFloat64(),
			trades[i].Timestamp,
		})
	}
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"orderflow_trades"},
		[]string{"trade_id", "symbol", "side", "price", "size", "traded_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

// Order book snapshots

func (r *Repository) AddOrderBookSnapshots(ctx context.Context, snapshots []domain.OrderBookSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	rows := make([][]interface{}, 0, len(snapshots))
	for i := range snapshots {
		if snapshots[i].ID == uuid.Nil {
			snapshots[i].ID = uuid.New()
		}
		bidsJSON, err := json.Marshal(snapshots[i].Bids)
		if err != nil {
			return err
		}
		asksJSON, err := json.Marshal(snapshots[i].Asks)
		if err != nil {
			return err
		}
		rows = append(rows, []interface{}{
			snapshots[i].ID,
			snapshots[i].Symbol,
			snapshots[i].SnapshotAt,
			bidsJSON,
			asksJSON,
		})
	}
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"orderflow_order_books"},
		[]string{"snapshot_id", "symbol", "snapshot_at", "bids", "asks"},
		pgx.CopyFromRows(rows),
	)
	return err
}
