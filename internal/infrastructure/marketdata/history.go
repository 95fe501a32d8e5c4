package marketdata

import (
	"sync"

	domain "orderflow/internal/domain/entity/marketdata"
	"orderflow/internal/domain/interfaces"
)

// DefaultHistorySize is the number of order-book snapshots kept.
const DefaultHistorySize = 50

// OrderBookHistory is a bounded FIFO of snapshots. Every recorded snapshot
// is kept, even when identical to the previous one.
type OrderBookHistory struct {
	mu        sync.RWMutex
	snapshots []domain.OrderBookSnapshot
	capacity  int
}

var _ interfaces.OrderBookHistory = (*OrderBookHistory)(nil)

func NewOrderBookHistory(capacity int) *OrderBookHistory {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &OrderBookHistory{
		snapshots: make([]domain.OrderBookSnapshot, 0, capacity),
		capacity:  capacity,
	}
}

func (h *OrderBookHistory) Record(snapshot domain.OrderBookSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.snapshots) == h.capacity {
		copy(h.snapshots, h.snapshots[1:])
		h.snapshots[len(h.snapshots)-1] = snapshot
		return
	}
	h.snapshots = append(h.snapshots, snapshot)
}

// Latest returns the most recently recorded snapshot.
func (h *OrderBookHistory) Latest() (domain.OrderBookSnapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.snapshots) == 0 {
		return domain.OrderBookSnapshot{}, false
	}
	return h.snapshots[len(h.snapshots)-1], true
}

// Snapshots returns the history oldest first.
func (h *OrderBookHistory) Snapshots() []domain.OrderBookSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.OrderBookSnapshot, len(h.snapshots))
	copy(out, h.snapshots)
	return out
}

func (h *OrderBookHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.snapshots)
}

func (h *OrderBookHistory) Capacity() int {
	return h.capacity
}
