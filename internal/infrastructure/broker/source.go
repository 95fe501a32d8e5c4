package broker

import (
	"context"
	"errors"
	"sync"

	domain "orderflow/internal/domain/entity/marketdata"
	"orderflow/internal/domain/interfaces"
)

var ErrNoOrderBook = errors.New("no order book received yet")

// Source buffers what the consumer receives and serves it through the
// pull-style TradeSource boundary. Only the newest capacity trades are
// kept; the store deduplicates repeated reads.
type Source struct {
	mu       sync.RWMutex
	trades   []domain.Trade
	capacity int
	book     *domain.OrderBookSnapshot
}

var _ interfaces.TradeSource = (*Source)(nil)

func NewSource(capacity int) *Source {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Source{
		trades:   make([]domain.Trade, 0, capacity),
		capacity: capacity,
	}
}

func (s *Source) AddTrade(trade domain.Trade) error {
	if err := trade.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.trades) == s.capacity {
		copy(s.trades, s.trades[1:])
		s.trades[len(s.trades)-1] = trade
		return nil
	}
	s.trades = append(s.trades, trade)
	return nil
}

func (s *Source) SetOrderBook(snapshot domain.OrderBookSnapshot) error {
	if len(snapshot.Bids) == 0 && len(snapshot.Asks) == 0 {
		return errors.New("order book has no levels")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.book = &snapshot
	return nil
}

// FetchRecentTrades returns up to limit of the newest buffered trades in
// arrival order.
func (s *Source) FetchRecentTrades(ctx context.Context, _ string, limit int) ([]domain.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && len(s.trades) > limit {
		start = len(s.trades) - limit
	}
	out := make([]domain.Trade, len(s.trades)-start)
	copy(out, s.trades[start:])
	return out, nil
}

func (s *Source) FetchOrderBook(ctx context.Context, _ string, _ int) (*domain.OrderBookSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.book == nil {
		return nil, ErrNoOrderBook
	}
	snapshot := *s.book
	return &snapshot, nil
}
