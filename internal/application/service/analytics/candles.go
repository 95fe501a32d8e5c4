package analytics

import (
	"time"

	domain "orderflow/internal/domain/entity/marketdata"

	"github.com/shopspring/decimal"
)

// BuildCandles buckets trades into OHLCV bars of the given width. Buckets
// without trades are omitted.
func BuildCandles(trades []domain.Trade, bucket time.Duration) []domain.Candle {
	if len(trades) == 0 || bucket <= 0 {
		return nil
	}

	sorted := SortByTime(trades)
	candles := make([]domain.Candle, 0)
	var current *domain.Candle
	for _, trade := range sorted {
		start := BucketStart(trade.Timestamp, bucket)
		if current == nil || !current.PeriodStart.Equal(start) {
			candles = append(candles, domain.Candle{
				PeriodStart: start,
				Open:        trade.Price,
				High:        trade.Price,
				Low:         trade.Price,
			})
			current = &candles[len(candles)-1]
		}
		if trade.Price.GreaterThan(current.High) {
			current.High = trade.Price
		}
		if trade.Price.LessThan(current.Low) {
			current.Low = trade.Price
		}
		current.Close = trade.Price
		current.Volume = current.Volume.Add(trade.Size)
		current.Trades++
	}
	return candles
}

// BuildPriceTrend returns the mean trade price per bucket, oldest first.
func BuildPriceTrend(trades []domain.Trade, bucket time.Duration) []domain.PricePoint {
	if len(trades) == 0 || bucket <= 0 {
		return nil
	}

	points := make([]domain.PricePoint, 0)
	counts := make([]int64, 0)
	for _, trade := range SortByTime(trades) {
		start := BucketStart(trade.Timestamp, bucket)
		last := len(points) - 1
		if last < 0 || !points[last].Time.Equal(start) {
			points = append(points, domain.PricePoint{Time: start})
			counts = append(counts, 0)
			last++
		}
		points[last].Price = points[last].Price.Add(trade.Price)
		counts[last]++
	}
	for i := range points {
		points[i].Price = points[i].Price.Div(decimal.NewFromInt(counts[i]))
	}
	return points
}
