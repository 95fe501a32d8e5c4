package marketdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// Metrics summarises the trades of one time window. It is derived on
// request and never stored.
type Metrics struct {
	CurrentPrice       decimal.Decimal `json:"current_price"`
	PriceChangePercent decimal.Decimal `json:"price_change_percent"`
	TotalVolume        decimal.Decimal `json:"total_volume"`
	BuyVolume          decimal.Decimal `json:"buy_volume"`
	SellVolume         decimal.Decimal `json:"sell_volume"`
	NetDelta           decimal.Decimal `json:"net_delta"`
	Trades             int             `json:"trades"`
}

// VolumeLevel is one price bin of a volume profile. Price is the bin midpoint.
type VolumeLevel struct {
	Price  decimal.Decimal `json:"price"`
	Lower  decimal.Decimal `json:"lower"`
	Upper  decimal.Decimal `json:"upper"`
	Volume decimal.Decimal `json:"volume"`
}

type DeltaPoint struct {
	Time  time.Time       `json:"time"`
	Value decimal.Decimal `json:"value"`
}

// DeltaSeries holds the running order-flow delta (one point per trade) and
// the delta summed per time bucket.
type DeltaSeries struct {
	Cumulative []DeltaPoint `json:"cumulative"`
	PerBucket  []DeltaPoint `json:"per_bucket"`
}

// Last returns the final cumulative value, zero for an empty series.
func (d DeltaSeries) Last() decimal.Decimal {
	if len(d.Cumulative) == 0 {
		return decimal.Zero
	}
	return d.Cumulative[len(d.Cumulative)-1].Value
}

type LargeTrades struct {
	Buys  []Trade `json:"buys"`
	Sells []Trade `json:"sells"`
}

// DepthPoint is one level of a depth curve with the size accumulated from
// the best price outward.
type DepthPoint struct {
	Price      decimal.Decimal `json:"price"`
	Size       decimal.Decimal `json:"size"`
	Cumulative decimal.Decimal `json:"cumulative"`
}

type Depth struct {
	SnapshotAt time.Time       `json:"snapshot_at"`
	Bids       []DepthPoint    `json:"bids"`
	Asks       []DepthPoint    `json:"asks"`
	Spread     decimal.Decimal `json:"spread"`
	Mid        decimal.Decimal `json:"mid"`
}

// PricePoint is the mean trade price of one time bucket.
type PricePoint struct {
	Time  time.Time       `json:"time"`
	Price decimal.Decimal `json:"price"`
}
