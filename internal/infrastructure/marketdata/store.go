package marketdata

import (
	"sync"
	"time"

	domain "orderflow/internal/domain/entity/marketdata"
	"orderflow/internal/domain/interfaces"
)

// DefaultRetention bounds how far back the store keeps trades.
const DefaultRetention = 4 * time.Hour

// TradeStore keeps trades in insertion order. Consumers that need time
// order must sort their own copy.
type TradeStore struct {
	mu        sync.RWMutex
	trades    []domain.Trade
	keys      map[domain.TradeKey]struct{}
	latest    time.Time
	retention time.Duration
}

var _ interfaces.TradeStore = (*TradeStore)(nil)

func NewTradeStore(retention time.Duration) *TradeStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &TradeStore{
		keys:      make(map[domain.TradeKey]struct{}),
		retention: retention,
	}
}

// Merge appends the trades strictly newer than the newest stored trade (all
// of them when the store is empty), collapses duplicates onto the first
// stored representative and then evicts expired trades. It returns how many
// of the incoming trades are stored afterwards.
func (s *TradeStore) Merge(trades []domain.Trade, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := len(s.trades) == 0
	threshold := s.latest
	cutoff := now.Add(-s.retention)

	accepted := 0
	for _, trade := range trades {
		if !fresh && !trade.Timestamp.After(threshold) {
			continue
		}
		key := trade.Key()
		if _, dup := s.keys[key]; dup {
			continue
		}
		s.keys[key] = struct{}{}
		s.trades = append(s.trades, trade)
		if trade.Timestamp.After(s.latest) {
			s.latest = trade.Timestamp
		}
		if trade.Timestamp.After(cutoff) {
			accepted++
		}
	}

	s.evictLocked(now)
	return accepted
}

// Evict drops every trade at or before now minus the retention window and
// returns how many were removed.
func (s *TradeStore) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked(now)
}

func (s *TradeStore) evictLocked(now time.Time) int {
	cutoff := now.Add(-s.retention)
	kept := s.trades[:0]
	var latest time.Time
	for _, trade := range s.trades {
		if !trade.Timestamp.After(cutoff) {
			delete(s.keys, trade.Key())
			continue
		}
		kept = append(kept, trade)
		if trade.Timestamp.After(latest) {
			latest = trade.Timestamp
		}
	}
	removed := len(s.trades) - len(kept)
	clear(s.trades[len(kept):])
	s.trades = kept
	s.latest = latest
	return removed
}

// Trades returns a copy of the stored trades in insertion order.
func (s *TradeStore) Trades() []domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Trade, len(s.trades))
	copy(out, s.trades)
	return out
}

func (s *TradeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trades)
}

// Latest returns the newest stored timestamp, zero when empty.
func (s *TradeStore) Latest() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
