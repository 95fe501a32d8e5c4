package marketdata

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"orderflow/internal/application/service/analytics"
	marketdata "orderflow/internal/domain/entity/marketdata"
	interfaces "orderflow/internal/domain/interfaces"
	"orderflow/internal/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	MinRefreshInterval = 10 * time.Second
	MaxRefreshInterval = 300 * time.Second

	// CycleTimeout bounds one refresh cycle once it no longer follows the
	// caller's cancellation.
	CycleTimeout = 30 * time.Second
)

var (
	ErrInvalidLimit    = errors.New("limit must be positive")
	ErrInvalidInterval = fmt.Errorf("refresh interval must be between %s and %s", MinRefreshInterval, MaxRefreshInterval)
	ErrEmptyOrderBook  = errors.New("source returned no order book")
)

// Config holds the ingestion settings of one tracked pair.
type Config struct {
	Symbol          string
	TradeLimit      int
	FetchDepth      int
	Depth           int
	RefreshInterval time.Duration
	Defaults        marketdata.DashboardParams
}

type Option func(*Service)

// WithArchive forwards every accepted trade and recorded snapshot.
func WithArchive(archive interfaces.Archive) Option {
	return func(s *Service) { s.archive = archive }
}

// WithPublishers pushes the default dashboard after each successful cycle.
func WithPublishers(publishers ...interfaces.DashboardPublisher) Option {
	return func(s *Service) { s.publishers = append(s.publishers, publishers...) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service owns the trade store and order-book history of one pair. Refresh
// cycles never overlap and readers always see the state between two cycles.
type Service struct {
	cfg        Config
	source     interfaces.TradeSource
	store      interfaces.TradeStore
	history    interfaces.OrderBookHistory
	archive    interfaces.Archive
	publishers []interfaces.DashboardPublisher
	logger     *logrus.Entry
	now        func() time.Time

	cycles singleflight.Group

	mu         sync.RWMutex
	last       marketdata.CycleResult
	lastUpdate time.Time

	intervalMu sync.Mutex
	interval   time.Duration
	reschedule chan struct{}
	trigger    chan struct{}
}

func NewService(cfg Config, source interfaces.TradeSource, store interfaces.TradeStore, history interfaces.OrderBookHistory, logger *logrus.Logger, opts ...Option) *Service {
	interval := cfg.RefreshInterval
	if interval < MinRefreshInterval || interval > MaxRefreshInterval {
		interval = 30 * time.Second
	}
	s := &Service{
		cfg:        cfg,
		source:     source,
		store:      store,
		history:    history,
		logger:     logger.WithFields(logrus.Fields{"component": "orderflow", "symbol": cfg.Symbol}),
		now:        time.Now,
		interval:   interval,
		reschedule: make(chan struct{}, 1),
		trigger:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Symbol() string {
	return s.cfg.Symbol
}

func (s *Service) DefaultParams() marketdata.DashboardParams {
	return s.cfg.Defaults
}

// Ingestion

// Refresh runs one ingestion cycle. Callers arriving while a cycle is in
// flight share its result instead of starting another one. The shared
// cycle keeps running when the caller that started it goes away.
func (s *Service) Refresh(ctx context.Context) marketdata.CycleResult {
	v, _, _ := s.cycles.Do("refresh", func() (any, error) {
		cycleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CycleTimeout)
		defer cancel()
		return s.refresh(cycleCtx), nil
	})
	return v.(marketdata.CycleResult)
}

func (s *Service) refresh(ctx context.Context) marketdata.CycleResult {
	id := uuid.New()
	startedAt := time.Now()
	log := s.logger.WithField("cycle_id", id.String())

	trades, book, err := s.fetch(ctx)
	if err != nil {
		result := marketdata.Failed(id, startedAt, err)
		s.mu.Lock()
		s.last = result
		s.mu.Unlock()
		metrics.RefreshCycles.WithLabelValues("failure").Inc()
		metrics.RefreshDuration.Observe(result.Duration.Seconds())
		log.WithError(err).Warn("refresh cycle failed, state unchanged")
		return result
	}

	valid := make([]marketdata.Trade, 0, len(trades))
	for _, trade := range trades {
		if err := trade.Validate(); err != nil {
			log.WithError(err).Debug("skip malformed trade")
			continue
		}
		valid = append(valid, trade)
	}

	now := s.now()
	snapshot := s.prepareSnapshot(book, now)

	s.mu.Lock()
	evicted := s.store.Evict(now)
	accepted := s.store.Merge(valid, now)
	s.history.Record(snapshot)
	stored := s.store.Trades()
	historyLen := s.history.Len()
	result := marketdata.CycleResult{
		ID:        id,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Accepted:  accepted,
		Fetched:   len(trades),
		Stored:    len(stored),
		Evicted:   evicted,
	}
	s.last = result
	s.lastUpdate = now
	s.mu.Unlock()

	metrics.RefreshCycles.WithLabelValues("success").Inc()
	metrics.RefreshDuration.Observe(result.Duration.Seconds())
	metrics.TradesAccepted.Add(float64(accepted))
	metrics.TradeStoreSize.Set(float64(len(stored)))
	metrics.OrderBookHistorySize.Set(float64(historyLen))

	log.WithFields(logrus.Fields{
		"fetched":  result.Fetched,
		"accepted": result.Accepted,
		"stored":   result.Stored,
		"evicted":  result.Evicted,
		"took_ms":  result.Duration.Milliseconds(),
	}).Info("refresh cycle completed")

	// accepted trades are the tail of the insertion-ordered store
	s.forward(stored[len(stored)-accepted:], &snapshot, log)
	s.publish(ctx, log)
	return result
}

func (s *Service) fetch(ctx context.Context) ([]marketdata.Trade, *marketdata.OrderBookSnapshot, error) {
	var (
		trades []marketdata.Trade
		book   *marketdata.OrderBookSnapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetched, err := s.source.FetchRecentTrades(gctx, s.cfg.Symbol, s.cfg.TradeLimit)
		if err != nil {
			return fmt.Errorf("fetch trades: %w", err)
		}
		trades = fetched
		return nil
	})
	g.Go(func() error {
		fetched, err := s.source.FetchOrderBook(gctx, s.cfg.Symbol, s.cfg.FetchDepth)
		if err != nil {
			return fmt.Errorf("fetch order book: %w", err)
		}
		if fetched == nil {
			return ErrEmptyOrderBook
		}
		book = fetched
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return trades, book, nil
}

func (s *Service) prepareSnapshot(book *marketdata.OrderBookSnapshot, now time.Time) marketdata.OrderBookSnapshot {
	snapshot := book.Truncate(s.cfg.Depth)
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}
	if snapshot.Symbol == "" {
		snapshot.Symbol = s.cfg.Symbol
	}
	if snapshot.SnapshotAt.IsZero() {
		snapshot.SnapshotAt = now
	}
	return snapshot
}

func (s *Service) forward(trades []marketdata.Trade, snapshot *marketdata.OrderBookSnapshot, log *logrus.Entry) {
	if s.archive == nil {
		return
	}
	if len(trades) > 0 {
		if err := s.archive.AddTrades(trades); err != nil {
			log.WithError(err).Warn("archive trades failed")
		}
	}
	if err := s.archive.AddOrderBook(snapshot); err != nil {
		log.WithError(err).Warn("archive order book failed")
	}
}

func (s *Service) publish(ctx context.Context, log *logrus.Entry) {
	if len(s.publishers) == 0 {
		return
	}
	dashboard, err := s.Dashboard(ctx, s.cfg.Defaults)
	if err != nil {
		log.WithError(err).Warn("build dashboard for publishers failed")
		return
	}
	for _, publisher := range s.publishers {
		if err := publisher.PublishDashboard(ctx, dashboard); err != nil {
			name := fmt.Sprintf("%T", publisher)
			metrics.PublishFailures.WithLabelValues(name).Inc()
			log.WithError(err).WithField("publisher", name).Warn("publish dashboard failed")
		}
	}
}

// Scheduling

// Run refreshes immediately and then on every tick until ctx is done.
// Manual triggers and interval changes take effect without a restart.
func (s *Service) Run(ctx context.Context) {
	s.Refresh(ctx)

	ticker := time.NewTicker(s.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		case <-s.trigger:
			s.Refresh(ctx)
			ticker.Reset(s.Interval())
		case <-s.reschedule:
			ticker.Reset(s.Interval())
		}
	}
}

// Trigger asks Run for an immediate cycle. Repeated triggers before the
// cycle starts collapse into one.
func (s *Service) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *Service) SetInterval(d time.Duration) error {
	if d < MinRefreshInterval || d > MaxRefreshInterval {
		return ErrInvalidInterval
	}
	s.intervalMu.Lock()
	s.interval = d
	s.intervalMu.Unlock()
	select {
	case s.reschedule <- struct{}{}:
	default:
	}
	s.logger.WithField("interval", d.String()).Info("refresh interval changed")
	return nil
}

func (s *Service) Interval() time.Duration {
	s.intervalMu.Lock()
	defer s.intervalMu.Unlock()
	return s.interval
}

// Reads

// LastCycle returns the most recent cycle result and the time of the last
// successful one.
func (s *Service) LastCycle() (marketdata.CycleResult, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.lastUpdate
}

// Trades returns up to limit most recently stored trades in store order.
func (s *Service) Trades(limit int) ([]marketdata.Trade, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	trades := s.store.Trades()
	s.mu.RUnlock()
	if len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}
	return trades, nil
}

func (s *Service) OrderBooks() []marketdata.OrderBookSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Snapshots()
}

// Depth builds depth curves from the latest snapshot. The boolean is false
// when no usable snapshot is held.
func (s *Service) Depth() (marketdata.Depth, bool) {
	s.mu.RLock()
	latest, ok := s.history.Latest()
	s.mu.RUnlock()
	if !ok {
		return marketdata.Depth{}, false
	}
	return analytics.BuildDepth(latest)
}

// Metrics computes the window metrics. The boolean is false when the
// window holds no trades.
func (s *Service) Metrics(windowMinutes int) (marketdata.Metrics, bool, error) {
	if windowMinutes <= 0 {
		return marketdata.Metrics{}, false, marketdata.ErrInvalidWindow
	}
	s.mu.RLock()
	trades := s.store.Trades()
	s.mu.RUnlock()
	m, ok := analytics.ComputeMetrics(trades, s.now(), time.Duration(windowMinutes)*time.Minute)
	return m, ok, nil
}
