package exchange

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	domain "orderflow/internal/domain/entity/marketdata"
	"orderflow/internal/domain/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SyntheticSource produces a random-walk market for demos and tests. Each
// fetch returns the trades generated since the previous fetch.
type SyntheticSource struct {
	mu     sync.Mutex
	rng    *rand.Rand
	price  float64
	last   time.Time
	now    func() time.Time
	rate   time.Duration
	spread float64
}

var _ interfaces.TradeSource = (*SyntheticSource)(nil)

// NewSyntheticSource seeds the walk. A zero seed uses the current time.
func NewSyntheticSource(seed uint64, startPrice decimal.Decimal) *SyntheticSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &SyntheticSource{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		price:  startPrice.InexactFloat64(),
		now:    time.Now,
		rate:   250 * time.Millisecond,
		spread: 0.0001,
	}
}

func (s *SyntheticSource) FetchRecentTrades(ctx context.Context, _ string, limit int) ([]domain.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if s.last.IsZero() {
		s.last = now.Add(-time.Duration(limit) * s.rate)
	}

	trades := make([]domain.Trade, 0, limit)
	for ts := s.last.Add(s.rate); !ts.After(now) && len(trades) < limit; ts = ts.Add(s.rate) {
		s.step()
		side := domain.TradeSideBuy
		if s.rng.IntN(2) == 0 {
			side = domain.TradeSideSell
		}
		// mostly small fills with an occasional block
		size := s.rng.ExpFloat64() * 0.4
		if s.rng.IntN(20) == 0 {
			size += 1 + s.rng.Float64()*4
		}
		trades = append(trades, domain.Trade{
			Timestamp: ts,
			Price:     decimal.NewFromFloat(s.price).Round(2),
			Size:      decimal.NewFromFloat(size).Round(5).Add(decimal.New(1, -5)),
			Side:      side,
		})
		s.last = ts
	}
	if len(trades) == limit {
		s.last = now
	}
	return trades, nil
}

func (s *SyntheticSource) FetchOrderBook(ctx context.Context, symbol string, depth int) (*domain.OrderBookSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	half := s.price * s.spread / 2
	tick := s.price * 0.00005
	bids := make([]domain.OrderBookLevel, 0, depth)
	asks := make([]domain.OrderBookLevel, 0, depth)
	for i := 0; i < depth; i++ {
		offset := half + float64(i)*tick
		bids = append(bids, domain.OrderBookLevel{
			Price: decimal.NewFromFloat(s.price - offset).Round(2),
			Size:  decimal.NewFromFloat(0.05 + s.rng.Float64()*2).Round(4),
		})
		asks = append(asks, domain.OrderBookLevel{
			Price: decimal.NewFromFloat(s.price + offset).Round(2),
			Size:  decimal.NewFromFloat(0.05 + s.rng.Float64()*2).Round(4),
		})
	}
	return &domain.OrderBookSnapshot{
		ID:         uuid.New(),
		Symbol:     symbol,
		SnapshotAt: s.now().UTC(),
		Bids:       bids,
		Asks:       asks,
	}, nil
}

func (s *SyntheticSource) step() {
	s.price += s.rng.NormFloat64() * s.price * 0.0002
	if s.price <= 1 {
		s.price = 1
	}
}
