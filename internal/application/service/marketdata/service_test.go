package marketdata

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	marketdata "orderflow/internal/domain/entity/marketdata"
	inframarketdata "orderflow/internal/infrastructure/marketdata"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu        sync.Mutex
	trades    []marketdata.Trade
	book      *marketdata.OrderBookSnapshot
	tradesErr error
	bookErr   error
	calls     int
	// gate, when set, holds every trade fetch until it is closed.
	gate chan struct{}
}

func (f *fakeSource) FetchRecentTrades(ctx context.Context, _ string, _ int) ([]marketdata.Trade, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tradesErr != nil {
		return nil, f.tradesErr
	}
	return f.trades, nil
}

func (f *fakeSource) FetchOrderBook(_ context.Context, _ string, _ int) (*marketdata.OrderBookSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	return f.book, nil
}

type fakeArchive struct {
	trades []marketdata.Trade
	books  int
}

func (f *fakeArchive) AddTrades(trades []marketdata.Trade) error {
	f.trades = append(f.trades, trades...)
	return nil
}

func (f *fakeArchive) AddOrderBook(*marketdata.OrderBookSnapshot) error {
	f.books++
	return nil
}

type fakePublisher struct {
	dashboards []*marketdata.Dashboard
	err        error
}

func (f *fakePublisher) PublishDashboard(_ context.Context, d *marketdata.Dashboard) error {
	f.dashboards = append(f.dashboards, d)
	return f.err
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func trade(ago time.Duration, price, size string, side marketdata.TradeSide) marketdata.Trade {
	return marketdata.Trade{Timestamp: fixedNow.Add(-ago), Price: dec(price), Size: dec(size), Side: side}
}

func book() *marketdata.OrderBookSnapshot {
	levels := func(start int64, step int64) []marketdata.OrderBookLevel {
		out := make([]marketdata.OrderBookLevel, 0, 30)
		for i := int64(0); i < 30; i++ {
			out = append(out, marketdata.OrderBookLevel{Price: decimal.NewFromInt(start + step*i), Size: decimal.NewFromInt(1)})
		}
		return out
	}
	return &marketdata.OrderBookSnapshot{Bids: levels(99, -1), Asks: levels(100, 1)}
}

func defaultParams() marketdata.DashboardParams {
	return marketdata.DashboardParams{WindowMinutes: 30, MinTradeSize: dec("1"), BucketMinutes: 1, ProfileLevels: 20}
}

func newTestService(source *fakeSource, opts ...Option) *Service {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	cfg := Config{
		Symbol:          "BTC/USDT",
		TradeLimit:      200,
		FetchDepth:      50,
		Depth:           20,
		RefreshInterval: 30 * time.Second,
		Defaults:        defaultParams(),
	}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(cfg, source, inframarketdata.NewTradeStore(0), inframarketdata.NewOrderBookHistory(0), logger, opts...)
}

func TestService_RefreshMergesAndRecords(t *testing.T) {
	source := &fakeSource{
		trades: []marketdata.Trade{
			trade(2*time.Minute, "100", "1", marketdata.TradeSideBuy),
			trade(2*time.Minute, "100", "1", marketdata.TradeSideBuy),
			trade(time.Minute, "101", "2", marketdata.TradeSideSell),
		},
		book: book(),
	}
	svc := newTestService(source)

	result := svc.Refresh(context.Background())
	require.True(t, result.Succeeded())
	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 2, result.Accepted)
	assert.Equal(t, 2, result.Stored)

	books := svc.OrderBooks()
	require.Len(t, books, 1)
	assert.Len(t, books[0].Bids, 20)
	assert.Len(t, books[0].Asks, 20)
	assert.Equal(t, "BTC/USDT", books[0].Symbol)
	assert.Equal(t, fixedNow, books[0].SnapshotAt)

	m, ok, err := svc.Metrics(30)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, dec("3").Equal(m.TotalVolume))
	assert.True(t, dec("-1").Equal(m.NetDelta))
}

func TestService_RefreshFailureLeavesStateUnchanged(t *testing.T) {
	source := &fakeSource{
		trades: []marketdata.Trade{trade(time.Minute, "100", "1", marketdata.TradeSideBuy)},
		book:   book(),
	}
	svc := newTestService(source)
	require.True(t, svc.Refresh(context.Background()).Succeeded())

	source.trades = append(source.trades, trade(0, "102", "1", marketdata.TradeSideBuy))
	source.bookErr = errors.New("exchange unavailable")

	result := svc.Refresh(context.Background())
	assert.False(t, result.Succeeded())
	assert.Contains(t, result.Failure, "exchange unavailable")
	assert.Zero(t, result.Accepted)

	trades, err := svc.Trades(10)
	require.NoError(t, err)
	assert.Len(t, trades, 1)
	assert.Len(t, svc.OrderBooks(), 1)

	last, lastUpdate := svc.LastCycle()
	assert.False(t, last.Succeeded())
	assert.Equal(t, fixedNow, lastUpdate)
}

func TestService_RefreshRejectsNilBook(t *testing.T) {
	svc := newTestService(&fakeSource{})

	result := svc.Refresh(context.Background())
	assert.ErrorIs(t, result.Err, ErrEmptyOrderBook)
}

func TestService_RefreshSkipsMalformedTrades(t *testing.T) {
	source := &fakeSource{
		trades: []marketdata.Trade{
			trade(time.Minute, "100", "1", marketdata.TradeSideBuy),
			trade(time.Minute, "-1", "1", marketdata.TradeSideBuy),
			{Timestamp: fixedNow, Price: dec("100"), Size: dec("1"), Side: "hold"},
		},
		book: book(),
	}
	svc := newTestService(source)

	result := svc.Refresh(context.Background())
	require.True(t, result.Succeeded())
	assert.Equal(t, 1, result.Accepted)
}

func TestService_RefreshForwardsToArchiveAndPublishers(t *testing.T) {
	archive := &fakeArchive{}
	publisher := &fakePublisher{err: errors.New("broker down")}
	source := &fakeSource{
		trades: []marketdata.Trade{trade(time.Minute, "100", "1", marketdata.TradeSideBuy)},
		book:   book(),
	}
	svc := newTestService(source, WithArchive(archive), WithPublishers(publisher))

	require.True(t, svc.Refresh(context.Background()).Succeeded())
	require.True(t, svc.Refresh(context.Background()).Succeeded())

	assert.Len(t, archive.trades, 1)
	assert.Equal(t, 2, archive.books)
	require.Len(t, publisher.dashboards, 2)
	assert.Equal(t, marketdata.DashboardStatusReady, publisher.dashboards[0].Status)
}

func TestService_DashboardCollectingWhenEmpty(t *testing.T) {
	svc := newTestService(&fakeSource{book: book()})
	require.True(t, svc.Refresh(context.Background()).Succeeded())

	dashboard, err := svc.Dashboard(context.Background(), defaultParams())
	require.NoError(t, err)
	assert.Equal(t, marketdata.DashboardStatusCollecting, dashboard.Status)
	assert.Nil(t, dashboard.Metrics)
	assert.Empty(t, dashboard.Candles)
	require.NotNil(t, dashboard.Depth)
	assert.True(t, dec("1").Equal(dashboard.Depth.Spread))
	assert.Equal(t, 1, dashboard.Summary.OrderBooks)
}

func TestService_Dashboard(t *testing.T) {
	source := &fakeSource{
		trades: []marketdata.Trade{
			trade(45*time.Minute, "90", "10", marketdata.TradeSideBuy),
			trade(3*time.Minute, "100", "1", marketdata.TradeSideBuy),
			trade(2*time.Minute, "101", "2", marketdata.TradeSideSell),
			trade(time.Minute, "102", "0.5", marketdata.TradeSideBuy),
		},
		book: book(),
	}
	svc := newTestService(source)
	require.True(t, svc.Refresh(context.Background()).Succeeded())

	dashboard, err := svc.Dashboard(context.Background(), defaultParams())
	require.NoError(t, err)

	assert.Equal(t, marketdata.DashboardStatusReady, dashboard.Status)
	require.NotNil(t, dashboard.Metrics)
	assert.Equal(t, 3, dashboard.Metrics.Trades)
	assert.True(t, dec("3.5").Equal(dashboard.Metrics.TotalVolume))
	assert.Len(t, dashboard.Candles, 3)
	assert.Len(t, dashboard.Profile, 20)
	require.NotNil(t, dashboard.Delta)
	assert.True(t, dec("-0.5").Equal(dashboard.Delta.Last()))
	require.NotNil(t, dashboard.LargeTrades)
	assert.Len(t, dashboard.LargeTrades.Buys, 1)
	assert.Len(t, dashboard.LargeTrades.Sells, 1)
	assert.Len(t, dashboard.PriceTrend, 3)

	assert.Equal(t, 4, dashboard.Summary.TotalTrades)
	assert.Equal(t, 3, dashboard.Summary.LargeTrades)
	assert.Equal(t, 4, dashboard.Summary.NewTrades)
	require.NotNil(t, dashboard.Summary.LastUpdate)
}

func TestService_DashboardPriceTrendCoversSmallTrades(t *testing.T) {
	source := &fakeSource{
		trades: []marketdata.Trade{
			trade(3*time.Minute, "100", "0.1", marketdata.TradeSideBuy),
			trade(2*time.Minute, "101", "0.1", marketdata.TradeSideSell),
			trade(time.Minute, "102", "0.1", marketdata.TradeSideBuy),
		},
		book: book(),
	}
	svc := newTestService(source)
	require.True(t, svc.Refresh(context.Background()).Succeeded())

	dashboard, err := svc.Dashboard(context.Background(), defaultParams())
	require.NoError(t, err)

	assert.Equal(t, marketdata.DashboardStatusReady, dashboard.Status)
	require.NotNil(t, dashboard.LargeTrades)
	assert.Empty(t, dashboard.LargeTrades.Buys)
	assert.Empty(t, dashboard.LargeTrades.Sells)
	require.Len(t, dashboard.PriceTrend, 3)
	assert.True(t, dec("100").Equal(dashboard.PriceTrend[0].Price))
	assert.True(t, dec("102").Equal(dashboard.PriceTrend[2].Price))
}

func TestService_DashboardRejectsInvalidParams(t *testing.T) {
	svc := newTestService(&fakeSource{book: book()})

	params := defaultParams()
	params.WindowMinutes = 0
	_, err := svc.Dashboard(context.Background(), params)
	assert.ErrorIs(t, err, marketdata.ErrInvalidWindow)
}

func TestService_SetInterval(t *testing.T) {
	svc := newTestService(&fakeSource{})

	assert.ErrorIs(t, svc.SetInterval(5*time.Second), ErrInvalidInterval)
	assert.ErrorIs(t, svc.SetInterval(10*time.Minute), ErrInvalidInterval)
	require.NoError(t, svc.SetInterval(time.Minute))
	assert.Equal(t, time.Minute, svc.Interval())
}

func TestService_TradesLimit(t *testing.T) {
	source := &fakeSource{
		trades: []marketdata.Trade{
			trade(3*time.Minute, "100", "1", marketdata.TradeSideBuy),
			trade(2*time.Minute, "101", "1", marketdata.TradeSideBuy),
			trade(time.Minute, "102", "1", marketdata.TradeSideBuy),
		},
		book: book(),
	}
	svc := newTestService(source)
	svc.Refresh(context.Background())

	_, err := svc.Trades(0)
	assert.ErrorIs(t, err, ErrInvalidLimit)

	trades, err := svc.Trades(2)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.True(t, dec("102").Equal(trades[1].Price))
}

func TestService_RunRefreshesOnTrigger(t *testing.T) {
	source := &fakeSource{book: book()}
	svc := newTestService(source)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	calls := func() int {
		source.mu.Lock()
		defer source.mu.Unlock()
		return source.calls
	}
	assert.Eventually(t, func() bool { return calls() >= 1 }, time.Second, 5*time.Millisecond)

	svc.Trigger()
	assert.Eventually(t, func() bool { return calls() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func (f *fakeSource) fetchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestService_ConcurrentRefreshSharesOneCycle(t *testing.T) {
	source := &fakeSource{
		trades: []marketdata.Trade{trade(time.Minute, "100", "1", marketdata.TradeSideBuy)},
		book:   book(),
		gate:   make(chan struct{}),
	}
	svc := newTestService(source)

	const callers = 5
	results := make([]marketdata.CycleResult, callers)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = svc.Refresh(context.Background())
	}()
	require.Eventually(t, func() bool { return source.fetchCalls() == 1 }, time.Second, time.Millisecond)

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Refresh(context.Background())
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(source.gate)
	wg.Wait()

	assert.Equal(t, 1, source.fetchCalls())
	assert.Len(t, svc.OrderBooks(), 1)
	for _, result := range results {
		assert.True(t, result.Succeeded())
		assert.Equal(t, results[0].ID, result.ID)
	}
}

func TestService_RefreshOutlivesCancelledCaller(t *testing.T) {
	source := &fakeSource{
		trades: []marketdata.Trade{trade(time.Minute, "100", "1", marketdata.TradeSideBuy)},
		book:   book(),
		gate:   make(chan struct{}),
	}
	svc := newTestService(source)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan marketdata.CycleResult, 1)
	go func() { first <- svc.Refresh(ctx) }()
	require.Eventually(t, func() bool { return source.fetchCalls() == 1 }, time.Second, time.Millisecond)

	second := make(chan marketdata.CycleResult, 1)
	go func() { second <- svc.Refresh(context.Background()) }()
	time.Sleep(20 * time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	close(source.gate)

	assert.True(t, (<-first).Succeeded())
	assert.True(t, (<-second).Succeeded())
	assert.Len(t, svc.OrderBooks(), 1)
}
