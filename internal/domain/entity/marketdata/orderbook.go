package marketdata

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderBookLevel holds price/size pair for bids/asks within a snapshot.
type OrderBookLevel struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// OrderBookSnapshot is a point-in-time full replace of the top levels of
// the book, not a diff.
type OrderBookSnapshot struct {
	ID         uuid.UUID        `json:"id"`
	Symbol     string           `json:"symbol"`
	SnapshotAt time.Time        `json:"snapshot_at"`
	Bids       []OrderBookLevel `json:"bids"`
	Asks       []OrderBookLevel `json:"asks"`
}

// Truncate returns a copy keeping at most depth levels per side as
// delivered by the source. A non-positive depth keeps everything.
func (s OrderBookSnapshot) Truncate(depth int) OrderBookSnapshot {
	out := s
	out.Bids = copyLevels(s.Bids, depth)
	out.Asks = copyLevels(s.Asks, depth)
	return out
}

func copyLevels(levels []OrderBookLevel, depth int) []OrderBookLevel {
	n := len(levels)
	if depth > 0 && n > depth {
		n = depth
	}
	out := make([]OrderBookLevel, n)
	copy(out, levels[:n])
	return out
}
