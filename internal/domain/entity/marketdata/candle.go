package marketdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle represents an OHLCV record for one time bucket.
type Candle struct {
	PeriodStart time.Time       `json:"period_start"`
	Open        decimal.Decimal `json:"open"`
	High        decimal.Decimal `json:"high"`
	Low         decimal.Decimal `json:"low"`
	Close       decimal.Decimal `json:"close"`
	Volume      decimal.Decimal `json:"volume"`
	Trades      int             `json:"trades"`
}
