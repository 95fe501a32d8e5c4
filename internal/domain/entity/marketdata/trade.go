package marketdata

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide represents the taker direction of an execution.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

func (s TradeSide) IsValid() bool {
	switch s {
	case TradeSideBuy, TradeSideSell:
		return true
	default:
		return false
	}
}

var (
	ErrInvalidTradeSide  = errors.New("trade side must be buy or sell")
	ErrInvalidTradePrice = errors.New("trade price must be positive")
	ErrInvalidTradeSize  = errors.New("trade size must be positive")
	ErrMissingTradeTime  = errors.New("trade timestamp is empty")
)

// Trade models a single executed fill. Size is expressed in base-asset units.
type Trade struct {
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
	Size      decimal.Decimal `json:"size"`
	Side      TradeSide       `json:"side"`
}

// TradeKey identifies a trade for deduplication. Distinct fills sharing
// timestamp, price and size collapse into one.
type TradeKey struct {
	UnixNano int64
	Price    string
	Size     string
}

func (t Trade) Key() TradeKey {
	return TradeKey{
		UnixNano: t.Timestamp.UnixNano(),
		Price:    t.Price.String(),
		Size:     t.Size.String(),
	}
}

// Delta is the signed size: positive for buys, negative for sells.
func (t Trade) Delta() decimal.Decimal {
	if t.Side == TradeSideBuy {
		return t.Size
	}
	return t.Size.Neg()
}

func (t Trade) Validate() error {
	if t.Timestamp.IsZero() {
		return ErrMissingTradeTime
	}
	if !t.Price.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidTradePrice, t.Price)
	}
	if !t.Size.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidTradeSize, t.Size)
	}
	if !t.Side.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTradeSide, t.Side)
	}
	return nil
}
