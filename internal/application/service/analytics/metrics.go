package analytics

import (
	"time"

	domain "orderflow/internal/domain/entity/marketdata"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeMetrics summarises the trades inside the window ending at now. The
// boolean is false when the window holds no trades.
//
// Current and first price follow store order within the window, so a late
// arriving trade with an older timestamp can still be the current price.
func ComputeMetrics(trades []domain.Trade, now time.Time, window time.Duration) (domain.Metrics, bool) {
	inWindow := WindowTrades(trades, now, window)
	if len(inWindow) == 0 {
		return domain.Metrics{}, false
	}

	var m domain.Metrics
	for _, trade := range inWindow {
		m.TotalVolume = m.TotalVolume.Add(trade.Size)
		switch trade.Side {
		case domain.TradeSideBuy:
			m.BuyVolume = m.BuyVolume.Add(trade.Size)
		case domain.TradeSideSell:
			m.SellVolume = m.SellVolume.Add(trade.Size)
		}
	}
	m.NetDelta = m.BuyVolume.Sub(m.SellVolume)
	m.Trades = len(inWindow)

	first := inWindow[0].Price
	m.CurrentPrice = inWindow[len(inWindow)-1].Price
	if len(inWindow) > 1 && !first.IsZero() {
		m.PriceChangePercent = m.CurrentPrice.Sub(first).Div(first).Mul(hundred)
	}
	return m, true
}
