package marketdata

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeValidate(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	valid := Trade{Timestamp: at, Price: decimal.NewFromInt(100), Size: decimal.NewFromInt(1), Side: TradeSideBuy}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Trade)
		want   error
	}{
		{"zero time", func(tr *Trade) { tr.Timestamp = time.Time{} }, ErrMissingTradeTime},
		{"zero price", func(tr *Trade) { tr.Price = decimal.Zero }, ErrInvalidTradePrice},
		{"negative size", func(tr *Trade) { tr.Size = decimal.NewFromInt(-1) }, ErrInvalidTradeSize},
		{"bad side", func(tr *Trade) { tr.Side = "hold" }, ErrInvalidTradeSide},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := valid
			tc.mutate(&tr)
			assert.ErrorIs(t, tr.Validate(), tc.want)
		})
	}
}

func TestTradeKeyAndDelta(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	buy := Trade{Timestamp: at, Price: decimal.RequireFromString("100.0"), Size: decimal.NewFromInt(2), Side: TradeSideBuy}
	sell := buy
	sell.Side = TradeSideSell

	assert.Equal(t, buy.Key(), sell.Key())
	assert.True(t, buy.Delta().Equal(decimal.NewFromInt(2)))
	assert.True(t, sell.Delta().Equal(decimal.NewFromInt(-2)))
}

func TestOrderBookTruncate(t *testing.T) {
	levels := func(n int) []OrderBookLevel {
		out := make([]OrderBookLevel, n)
		for i := range out {
			out[i] = OrderBookLevel{Price: decimal.NewFromInt(int64(100 + i)), Size: decimal.NewFromInt(1)}
		}
		return out
	}
	book := OrderBookSnapshot{Symbol: "BTC/USDT", Bids: levels(25), Asks: levels(3)}

	cut := book.Truncate(20)
	assert.Len(t, cut.Bids, 20)
	assert.Len(t, cut.Asks, 3)
	assert.Equal(t, "BTC/USDT", cut.Symbol)

	cut.Bids[0].Size = decimal.NewFromInt(99)
	assert.True(t, book.Bids[0].Size.Equal(decimal.NewFromInt(1)))

	assert.Len(t, book.Truncate(0).Bids, 25)
}

func TestNewInstrument(t *testing.T) {
	inst, err := NewInstrument(" btc/usdt ", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "BTC/USDT", inst.Symbol)
	assert.Equal(t, int64(1), inst.Lot)
	assert.Equal(t, "BTC", inst.Base())
	assert.Equal(t, "USDT", inst.Quote())
	assert.Equal(t, "BTCUSDT", inst.Compact())

	_, err = NewInstrument("  ", "", 1)
	assert.Error(t, err)
}

func TestDashboardParamsValidate(t *testing.T) {
	ok := DashboardParams{WindowMinutes: 60, BucketMinutes: 5, ProfileLevels: 20, MinTradeSize: decimal.NewFromInt(1)}
	require.NoError(t, ok.Validate())
	assert.Equal(t, time.Hour, ok.Window())
	assert.Equal(t, 5*time.Minute, ok.Bucket())

	bad := ok
	bad.WindowMinutes = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidWindow)

	bad = ok
	bad.BucketMinutes = -1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidBucket)

	bad = ok
	bad.ProfileLevels = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidLevels)

	bad = ok
	bad.MinTradeSize = decimal.NewFromInt(-1)
	assert.ErrorIs(t, bad.Validate(), ErrInvalidMinSize)
}
