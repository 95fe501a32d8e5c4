// Package analytics derives order-flow views from trades and order-book
// snapshots. Every function works on the slice it is given and never
// mutates it.
package analytics

import (
	"sort"
	"time"

	domain "orderflow/internal/domain/entity/marketdata"
)

// DeltaBucket is the fixed width of per-bucket delta sums.
const DeltaBucket = time.Minute

// WindowTrades returns the trades with a timestamp strictly after
// now-window, keeping their original order.
func WindowTrades(trades []domain.Trade, now time.Time, window time.Duration) []domain.Trade {
	cutoff := now.Add(-window)
	out := make([]domain.Trade, 0, len(trades))
	for _, trade := range trades {
		if trade.Timestamp.After(cutoff) {
			out = append(out, trade)
		}
	}
	return out
}

// SortByTime returns a time-ordered copy. Equal timestamps keep their
// relative order.
func SortByTime(trades []domain.Trade) []domain.Trade {
	out := make([]domain.Trade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// BucketStart aligns ts to the start of its UTC bucket.
func BucketStart(ts time.Time, width time.Duration) time.Time {
	return ts.UTC().Truncate(width)
}
