package analytics

import (
	"sort"

	domain "orderflow/internal/domain/entity/marketdata"

	"github.com/shopspring/decimal"
)

// DefaultProfileLevels is the number of price bins of a volume profile.
const DefaultProfileLevels = 20

var two = decimal.NewFromInt(2)

// BuildVolumeProfile spreads traded volume across levels equal-width price
// bins between the lowest and highest trade price. Bins are half-open
// [lower, upper) except the last one, which also holds the maximum price.
// When every trade has the same price the result is a single zero-width bin.
func BuildVolumeProfile(trades []domain.Trade, levels int) []domain.VolumeLevel {
	if len(trades) == 0 || levels <= 0 {
		return nil
	}

	low, high := trades[0].Price, trades[0].Price
	for _, trade := range trades[1:] {
		low = decimal.Min(low, trade.Price)
		high = decimal.Max(high, trade.Price)
	}

	if low.Equal(high) {
		var volume decimal.Decimal
		for _, trade := range trades {
			volume = volume.Add(trade.Size)
		}
		return []domain.VolumeLevel{{Price: low, Lower: low, Upper: high, Volume: volume}}
	}

	width := high.Sub(low).Div(decimal.NewFromInt(int64(levels)))

	out := make([]domain.VolumeLevel, levels)
	for i := range out {
		lower := low.Add(width.Mul(decimal.NewFromInt(int64(i))))
		upper := lower.Add(width)
		if i == levels-1 {
			upper = high
		}
		out[i] = domain.VolumeLevel{
			Price: lower.Add(upper).Div(two),
			Lower: lower,
			Upper: upper,
		}
	}

	// index against the stored bounds so a trade always lands in the bin
	// whose [Lower, Upper) contains it
	for _, trade := range trades {
		idx := sort.Search(levels, func(i int) bool {
			return out[i].Lower.GreaterThan(trade.Price)
		}) - 1
		if idx < 0 {
			idx = 0
		}
		out[idx].Volume = out[idx].Volume.Add(trade.Size)
	}
	return out
}
