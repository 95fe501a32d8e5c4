package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticSource_TradesAdvance(t *testing.T) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	src := NewSyntheticSource(42, decimal.NewFromInt(60000))
	src.now = func() time.Time { return clock }

	first, err := src.FetchRecentTrades(context.Background(), "BTC/USDT", 200)
	require.NoError(t, err)
	require.Len(t, first, 200)
	for i, trade := range first {
		require.NoError(t, trade.Validate())
		if i > 0 {
			assert.True(t, trade.Timestamp.After(first[i-1].Timestamp))
		}
	}
	assert.Equal(t, clock, first[len(first)-1].Timestamp)

	clock = clock.Add(10 * time.Second)
	second, err := src.FetchRecentTrades(context.Background(), "BTC/USDT", 200)
	require.NoError(t, err)
	assert.Len(t, second, 40)
	assert.True(t, second[0].Timestamp.After(first[len(first)-1].Timestamp))
}

func TestSyntheticSource_Deterministic(t *testing.T) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a := NewSyntheticSource(7, decimal.NewFromInt(100))
	b := NewSyntheticSource(7, decimal.NewFromInt(100))
	a.now = func() time.Time { return clock }
	b.now = func() time.Time { return clock }

	ta, err := a.FetchRecentTrades(context.Background(), "X/Y", 20)
	require.NoError(t, err)
	tb, err := b.FetchRecentTrades(context.Background(), "X/Y", 20)
	require.NoError(t, err)
	assert.Equal(t, ta, tb)
}

func TestSyntheticSource_OrderBook(t *testing.T) {
	src := NewSyntheticSource(1, decimal.NewFromInt(60000))

	book, err := src.FetchOrderBook(context.Background(), "BTC/USDT", 50)
	require.NoError(t, err)
	require.Len(t, book.Bids, 50)
	require.Len(t, book.Asks, 50)
	assert.True(t, book.Bids[0].Price.LessThan(book.Asks[0].Price))
	assert.True(t, book.Bids[0].Price.GreaterThan(book.Bids[1].Price))
}

func TestSyntheticSource_CanceledContext(t *testing.T) {
	src := NewSyntheticSource(1, decimal.NewFromInt(60000))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.FetchRecentTrades(ctx, "BTC/USDT", 10)
	assert.ErrorIs(t, err, context.Canceled)
}
