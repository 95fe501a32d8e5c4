package interfaces

import (
	"context"
	"time"

	marketdata "orderflow/internal/domain/entity/marketdata"
)

// TradeSource is the ingestion adapter boundary. Implementations own their
// timeouts; any returned error counts as "no update this cycle".
type TradeSource interface {
	FetchRecentTrades(ctx context.Context, symbol string, limit int) ([]marketdata.Trade, error)
	FetchOrderBook(ctx context.Context, symbol string, depth int) (*marketdata.OrderBookSnapshot, error)
}

// TradeStore is the deduplicated, time-bounded system of record for trades.
// It is insertion-ordered, not time-ordered.
type TradeStore interface {
	Merge(trades []marketdata.Trade, now time.Time) int
	Evict(now time.Time) int
	Trades() []marketdata.Trade
	Len() int
}

// OrderBookHistory is a bounded FIFO of recent snapshots.
type OrderBookHistory interface {
	Record(snapshot marketdata.OrderBookSnapshot)
	Latest() (marketdata.OrderBookSnapshot, bool)
	Snapshots() []marketdata.OrderBookSnapshot
	Len() int
}

// Archive receives accepted data for offline use. It is write-only.
type Archive interface {
	AddTrades(trades []marketdata.Trade) error
	AddOrderBook(snapshot *marketdata.OrderBookSnapshot) error
}

type DashboardPublisher interface {
	PublishDashboard(ctx context.Context, dashboard *marketdata.Dashboard) error
}
