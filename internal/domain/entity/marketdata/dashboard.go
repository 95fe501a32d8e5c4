package marketdata

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DashboardStatusCollecting = "collecting"
	DashboardStatusReady      = "ready"
)

var (
	ErrInvalidWindow  = errors.New("window minutes must be positive")
	ErrInvalidBucket  = errors.New("bucket minutes must be positive")
	ErrInvalidLevels  = errors.New("volume profile levels must be positive")
	ErrInvalidMinSize = errors.New("minimum trade size must not be negative")
)

// DashboardParams are the caller-supplied view filters of one refresh.
type DashboardParams struct {
	WindowMinutes int             `json:"window_minutes"`
	MinTradeSize  decimal.Decimal `json:"min_trade_size"`
	BucketMinutes int             `json:"bucket_minutes"`
	ProfileLevels int             `json:"profile_levels"`
}

func (p DashboardParams) Validate() error {
	if p.WindowMinutes <= 0 {
		return ErrInvalidWindow
	}
	if p.BucketMinutes <= 0 {
		return ErrInvalidBucket
	}
	if p.ProfileLevels <= 0 {
		return ErrInvalidLevels
	}
	if p.MinTradeSize.IsNegative() {
		return ErrInvalidMinSize
	}
	return nil
}

func (p DashboardParams) Window() time.Duration {
	return time.Duration(p.WindowMinutes) * time.Minute
}

func (p DashboardParams) Bucket() time.Duration {
	return time.Duration(p.BucketMinutes) * time.Minute
}

// Summary mirrors the footer of the dashboard.
type Summary struct {
	TotalTrades    int        `json:"total_trades"`
	LargeTrades    int        `json:"large_trades"`
	NewTrades      int        `json:"new_trades"`
	OrderBooks     int        `json:"order_books"`
	LastUpdate     *time.Time `json:"last_update,omitempty"`
	LastCycleError string     `json:"last_cycle_error,omitempty"`
}

// Dashboard is everything the presentation layer renders for one refresh.
// Nil sections mean "no data yet" rather than zero values.
type Dashboard struct {
	Symbol      string          `json:"symbol"`
	GeneratedAt time.Time       `json:"generated_at"`
	Status      string          `json:"status"`
	Params      DashboardParams `json:"params"`
	Metrics     *Metrics        `json:"metrics,omitempty"`
	Candles     []Candle        `json:"candles"`
	Profile     []VolumeLevel   `json:"volume_profile"`
	Delta       *DeltaSeries    `json:"delta,omitempty"`
	LargeTrades *LargeTrades    `json:"large_trades,omitempty"`
	PriceTrend  []PricePoint    `json:"price_trend"`
	Depth       *Depth          `json:"depth,omitempty"`
	Summary     Summary         `json:"summary"`
}
