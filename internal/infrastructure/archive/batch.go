package archive

import (
	"context"
	"errors"
	"sync"
	"time"

	domain "orderflow/internal/domain/entity/marketdata"
	"orderflow/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// BatchConfig controls batching thresholds for archive writes.
type BatchConfig struct {
	Size    int
	Timeout time.Duration
}

type writer interface {
	AddTrades(ctx context.Context, symbol string, trades []domain.Trade) error
	AddOrderBookSnapshots(ctx context.Context, snapshots []domain.OrderBookSnapshot) error
}

// BatchWriter buffers accepted trades and snapshots and flushes them to the
// repository in bulk.
type BatchWriter struct {
	trades     *batchBuffer[domain.Trade]
	orderBooks *batchBuffer[domain.OrderBookSnapshot]
}

var _ interfaces.Archive = (*BatchWriter)(nil)

func NewBatchWriter(cfg BatchConfig, symbol string, repo writer, logger *logrus.Logger) *BatchWriter {
	componentLogger := logger.WithField("component", "archive")
	return &BatchWriter{
		trades: newBatchBuffer(cfg, func(ctx context.Context, batch []domain.Trade) error {
			return repo.AddTrades(ctx, symbol, batch)
		}, componentLogger.WithField("entity", "trade")),
		orderBooks: newBatchBuffer(cfg, func(ctx context.Context, batch []domain.OrderBookSnapshot) error {
			return repo.AddOrderBookSnapshots(ctx, batch)
		}, componentLogger.WithField("entity", "orderbook")),
	}
}

// Run sets the base context for asynchronous flush operations.
func (b *BatchWriter) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	b.trades.setContext(ctx)
	b.orderBooks.setContext(ctx)
}

// Stop flushes remaining buffers using the provided context.
func (b *BatchWriter) Stop(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	b.trades.setContext(ctx)
	b.orderBooks.setContext(ctx)

	var errs []error
	if err := b.trades.drain(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := b.orderBooks.drain(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (b *BatchWriter) AddTrades(trades []domain.Trade) error {
	var errs []error
	for _, trade := range trades {
		if err := b.trades.enqueue(trade); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *BatchWriter) AddOrderBook(snapshot *domain.OrderBookSnapshot) error {
	if snapshot == nil {
		return errors.New("order book snapshot is nil")
	}
	return b.orderBooks.enqueue(*snapshot)
}

type batchBuffer[T any] struct {
	cfg     BatchConfig
	mu      sync.Mutex
	items   []T
	timer   *time.Timer
	flushFn func(context.Context, []T) error
	logger  *logrus.Entry
	ctx     context.Context
}

func newBatchBuffer[T any](cfg BatchConfig, flushFn func(context.Context, []T) error, logger *logrus.Entry) *batchBuffer[T] {
	return &batchBuffer[T]{
		cfg:     cfg,
		flushFn: flushFn,
		logger:  logger,
	}
}

func (bb *batchBuffer[T]) setContext(ctx context.Context) {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	bb.ctx = ctx
}

func (bb *batchBuffer[T]) enqueue(item T) error {
	bb.mu.Lock()
	ctx := bb.ctx
	if ctx == nil {
		bb.mu.Unlock()
		return errors.New("batch buffer is not running")
	}
	if err := ctx.Err(); err != nil {
		bb.mu.Unlock()
		return err
	}
	bb.items = append(bb.items, item)
	var batch []T
	limit := bb.cfg.Size
	if limit <= 0 {
		limit = 1
	}
	if len(bb.items) >= limit {
		batch = bb.takeBatchLocked()
	} else if bb.timer == nil && bb.cfg.Timeout > 0 {
		bb.startTimerLocked()
	}
	bb.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return bb.flush(ctx, batch)
}

func (bb *batchBuffer[T]) startTimerLocked() {
	bb.timer = time.AfterFunc(bb.cfg.Timeout, func() {
		bb.mu.Lock()
		batch := bb.takeBatchLocked()
		ctx := bb.ctx
		bb.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		if err := bb.flush(ctx, batch); err != nil {
			bb.logger.WithError(err).Warn("batch flush failed")
		}
	})
}

func (bb *batchBuffer[T]) takeBatchLocked() []T {
	if bb.timer != nil {
		bb.timer.Stop()
		bb.timer = nil
	}
	if len(bb.items) == 0 {
		return nil
	}
	batch := make([]T, len(bb.items))
	copy(batch, bb.items)
	bb.items = bb.items[:0]
	return batch
}

func (bb *batchBuffer[T]) flush(ctx context.Context, batch []T) error {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	if err := bb.flushFn(ctx, batch); err != nil {
		return err
	}
	bb.logger.WithFields(logrus.Fields{
		"size":    len(batch),
		"took_ms": time.Since(start).Milliseconds(),
	}).Debug("flushed batch")
	return nil
}

func (bb *batchBuffer[T]) drain(ctx context.Context) error {
	bb.mu.Lock()
	batch := bb.takeBatchLocked()
	bb.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}
	return bb.flush(ctx, batch)
}
