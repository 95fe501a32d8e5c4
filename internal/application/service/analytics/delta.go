package analytics

import (
	domain "orderflow/internal/domain/entity/marketdata"

	"github.com/shopspring/decimal"
)

// BuildDeltaSeries returns the running delta with one point per trade and
// the delta summed per minute. Minutes without trades are omitted, minutes
// whose trades cancel out are kept with a zero value.
func BuildDeltaSeries(trades []domain.Trade) domain.DeltaSeries {
	series := domain.DeltaSeries{
		Cumulative: make([]domain.DeltaPoint, 0, len(trades)),
		PerBucket:  make([]domain.DeltaPoint, 0),
	}

	var running decimal.Decimal
	for _, trade := range SortByTime(trades) {
		delta := trade.Delta()
		running = running.Add(delta)
		series.Cumulative = append(series.Cumulative, domain.DeltaPoint{Time: trade.Timestamp, Value: running})

		start := BucketStart(trade.Timestamp, DeltaBucket)
		last := len(series.PerBucket) - 1
		if last < 0 || !series.PerBucket[last].Time.Equal(start) {
			series.PerBucket = append(series.PerBucket, domain.DeltaPoint{Time: start})
			last++
		}
		series.PerBucket[last].Value = series.PerBucket[last].Value.Add(delta)
	}
	return series
}
