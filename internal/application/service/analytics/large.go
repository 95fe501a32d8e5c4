package analytics

import (
	domain "orderflow/internal/domain/entity/marketdata"

	"github.com/shopspring/decimal"
)

// FilterLarge splits the trades with size at or above minSize by side, each
// side ordered by time.
func FilterLarge(trades []domain.Trade, minSize decimal.Decimal) domain.LargeTrades {
	out := domain.LargeTrades{
		Buys:  make([]domain.Trade, 0),
		Sells: make([]domain.Trade, 0),
	}
	for _, trade := range SortByTime(trades) {
		if trade.Size.LessThan(minSize) {
			continue
		}
		if trade.Side == domain.TradeSideBuy {
			out.Buys = append(out.Buys, trade)
		} else {
			out.Sells = append(out.Sells, trade)
		}
	}
	return out
}

// CountLarge counts trades with size at or above minSize.
func CountLarge(trades []domain.Trade, minSize decimal.Decimal) int {
	n := 0
	for _, trade := range trades {
		if trade.Size.GreaterThanOrEqual(minSize) {
			n++
		}
	}
	return n
}
