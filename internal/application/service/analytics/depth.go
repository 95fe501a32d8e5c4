package analytics

import (
	"sort"

	domain "orderflow/internal/domain/entity/marketdata"

	"github.com/shopspring/decimal"
)

// BuildDepth turns a snapshot into cumulative depth curves. Bids are sorted
// by descending price and asks by ascending price regardless of how the
// source delivered them. The boolean is false when either side is empty.
func BuildDepth(snapshot domain.OrderBookSnapshot) (domain.Depth, bool) {
	if len(snapshot.Bids) == 0 || len(snapshot.Asks) == 0 {
		return domain.Depth{}, false
	}

	bids := sortedLevels(snapshot.Bids, func(a, b domain.OrderBookLevel) bool {
		return a.Price.GreaterThan(b.Price)
	})
	asks := sortedLevels(snapshot.Asks, func(a, b domain.OrderBookLevel) bool {
		return a.Price.LessThan(b.Price)
	})

	bestBid, bestAsk := bids[0].Price, asks[0].Price
	return domain.Depth{
		SnapshotAt: snapshot.SnapshotAt,
		Bids:       cumulate(bids),
		Asks:       cumulate(asks),
		Spread:     bestAsk.Sub(bestBid),
		Mid:        bestAsk.Add(bestBid).Div(two),
	}, true
}

func sortedLevels(levels []domain.OrderBookLevel, less func(a, b domain.OrderBookLevel) bool) []domain.OrderBookLevel {
	out := make([]domain.OrderBookLevel, len(levels))
	copy(out, levels)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func cumulate(levels []domain.OrderBookLevel) []domain.DepthPoint {
	out := make([]domain.DepthPoint, len(levels))
	var total decimal.Decimal
	for i, level := range levels {
		total = total.Add(level.Size)
		out[i] = domain.DepthPoint{Price: level.Price, Size: level.Size, Cumulative: total}
	}
	return out
}
