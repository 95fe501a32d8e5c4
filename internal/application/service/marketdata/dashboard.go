package marketdata

import (
	"context"
	"time"

	"orderflow/internal/application/service/analytics"
	marketdata "orderflow/internal/domain/entity/marketdata"
	"orderflow/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// Dashboard derives every view for the given parameters from one
// consistent copy of the store and the latest order book. An empty window
// yields a dashboard in the collecting state rather than an error.
func (s *Service) Dashboard(ctx context.Context, params marketdata.DashboardParams) (*marketdata.Dashboard, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() {
		metrics.DashboardDuration.Observe(time.Since(start).Seconds())
	}()

	s.mu.RLock()
	trades := s.store.Trades()
	latest, hasBook := s.history.Latest()
	books := s.history.Len()
	last, lastUpdate := s.last, s.lastUpdate
	s.mu.RUnlock()

	now := s.now()
	window := analytics.WindowTrades(trades, now, params.Window())

	dashboard := &marketdata.Dashboard{
		Symbol:      s.cfg.Symbol,
		GeneratedAt: now,
		Status:      marketdata.DashboardStatusCollecting,
		Params:      params,
		Candles:     []marketdata.Candle{},
		Profile:     []marketdata.VolumeLevel{},
		PriceTrend:  []marketdata.PricePoint{},
		Summary: marketdata.Summary{
			TotalTrades:    len(trades),
			LargeTrades:    analytics.CountLarge(trades, params.MinTradeSize),
			OrderBooks:     books,
			LastCycleError: last.Failure,
		},
	}
	if last.Succeeded() {
		dashboard.Summary.NewTrades = last.Accepted
	}
	if !lastUpdate.IsZero() {
		at := lastUpdate
		dashboard.Summary.LastUpdate = &at
	}
	if hasBook {
		if depth, ok := analytics.BuildDepth(latest); ok {
			dashboard.Depth = &depth
		}
	}
	if len(window) == 0 {
		return dashboard, nil
	}
	dashboard.Status = marketdata.DashboardStatusReady

	var g errgroup.Group
	g.Go(func() error {
		if m, ok := analytics.ComputeMetrics(trades, now, params.Window()); ok {
			dashboard.Metrics = &m
		}
		return nil
	})
	g.Go(func() error {
		dashboard.Candles = analytics.BuildCandles(window, params.Bucket())
		return nil
	})
	g.Go(func() error {
		dashboard.Profile = analytics.BuildVolumeProfile(window, params.ProfileLevels)
		return nil
	})
	g.Go(func() error {
		delta := analytics.BuildDeltaSeries(window)
		dashboard.Delta = &delta
		return nil
	})
	g.Go(func() error {
		large := analytics.FilterLarge(window, params.MinTradeSize)
		dashboard.LargeTrades = &large
		dashboard.PriceTrend = analytics.BuildPriceTrend(window, analytics.DeltaBucket)
		if dashboard.PriceTrend == nil {
			dashboard.PriceTrend = []marketdata.PricePoint{}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dashboard, nil
}
