package marketdata

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "orderflow/internal/domain/entity/marketdata"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func trade(offset time.Duration, price, size string, side domain.TradeSide) domain.Trade {
	return domain.Trade{
		Timestamp: baseTime.Add(offset),
		Price:     decimal.RequireFromString(price),
		Size:      decimal.RequireFromString(size),
		Side:      side,
	}
}

func TestTradeStore_MergeDeduplicates(t *testing.T) {
	store := NewTradeStore(DefaultRetention)
	now := baseTime.Add(time.Minute)

	accepted := store.Merge([]domain.Trade{
		trade(0, "100", "1", domain.TradeSideBuy),
		trade(0, "100", "1", domain.TradeSideBuy),
		trade(time.Second, "101", "2", domain.TradeSideSell),
	}, now)

	assert.Equal(t, 2, accepted)
	assert.Equal(t, 2, store.Len())
}

func TestTradeStore_DuplicateKeepsFirstRepresentative(t *testing.T) {
	store := NewTradeStore(DefaultRetention)

	store.Merge([]domain.Trade{
		trade(0, "100", "1", domain.TradeSideBuy),
		trade(0, "100.0", "1.00", domain.TradeSideSell),
	}, baseTime)

	trades := store.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, domain.TradeSideBuy, trades[0].Side)
}

func TestTradeStore_OnlyNewerTradesAreAdmitted(t *testing.T) {
	store := NewTradeStore(DefaultRetention)
	now := baseTime.Add(time.Minute)

	store.Merge([]domain.Trade{
		trade(0, "100", "1", domain.TradeSideBuy),
		trade(10*time.Second, "101", "1", domain.TradeSideBuy),
	}, now)

	accepted := store.Merge([]domain.Trade{
		trade(5*time.Second, "99", "3", domain.TradeSideSell),
		trade(10*time.Second, "102", "1", domain.TradeSideSell),
		trade(11*time.Second, "103", "1", domain.TradeSideBuy),
	}, now)

	assert.Equal(t, 1, accepted)
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, baseTime.Add(11*time.Second), store.Latest())
}

func TestTradeStore_KeepsInsertionOrder(t *testing.T) {
	store := NewTradeStore(DefaultRetention)

	store.Merge([]domain.Trade{
		trade(3*time.Second, "103", "1", domain.TradeSideBuy),
		trade(time.Second, "101", "1", domain.TradeSideBuy),
		trade(2*time.Second, "102", "1", domain.TradeSideBuy),
	}, baseTime.Add(time.Minute))

	trades := store.Trades()
	require.Len(t, trades, 3)
	assert.Equal(t, "103", trades[0].Price.String())
	assert.Equal(t, "101", trades[1].Price.String())
	assert.Equal(t, "102", trades[2].Price.String())
}

func TestTradeStore_EvictsExpiredTrades(t *testing.T) {
	store := NewTradeStore(DefaultRetention)

	store.Merge([]domain.Trade{
		trade(0, "100", "1", domain.TradeSideBuy),
		trade(time.Hour, "101", "1", domain.TradeSideBuy),
	}, baseTime.Add(time.Hour))

	now := baseTime.Add(4*time.Hour + time.Second)
	accepted := store.Merge([]domain.Trade{trade(2*time.Hour, "102", "1", domain.TradeSideSell)}, now)

	assert.Equal(t, 1, accepted)
	cutoff := now.Add(-DefaultRetention)
	for _, tr := range store.Trades() {
		assert.True(t, tr.Timestamp.After(cutoff), "trade at %s older than cutoff", tr.Timestamp)
	}
	assert.Equal(t, 2, store.Len())
}

func TestTradeStore_CutoffIsExclusive(t *testing.T) {
	store := NewTradeStore(time.Hour)

	store.Merge([]domain.Trade{trade(0, "100", "1", domain.TradeSideBuy)}, baseTime)
	removed := store.Evict(baseTime.Add(time.Hour))

	assert.Equal(t, 1, removed)
	assert.Zero(t, store.Len())
	assert.True(t, store.Latest().IsZero())
}

func TestTradeStore_ExpiredIncomingTradesAreNotCounted(t *testing.T) {
	store := NewTradeStore(time.Hour)
	now := baseTime.Add(2 * time.Hour)

	accepted := store.Merge([]domain.Trade{
		trade(0, "100", "1", domain.TradeSideBuy),
		trade(90*time.Minute, "101", "1", domain.TradeSideBuy),
	}, now)

	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, store.Len())
}

func TestTradeStore_EvictedKeyCanReturn(t *testing.T) {
	store := NewTradeStore(time.Hour)

	store.Merge([]domain.Trade{trade(0, "100", "1", domain.TradeSideBuy)}, baseTime)
	store.Evict(baseTime.Add(2 * time.Hour))

	// empty store admits everything again
	accepted := store.Merge([]domain.Trade{trade(0, "100", "1", domain.TradeSideBuy)}, baseTime.Add(time.Minute))
	assert.Equal(t, 1, accepted)
}

func TestTradeStore_TradesReturnsCopy(t *testing.T) {
	store := NewTradeStore(DefaultRetention)
	store.Merge([]domain.Trade{trade(0, "100", "1", domain.TradeSideBuy)}, baseTime)

	trades := store.Trades()
	trades[0].Price = decimal.NewFromInt(1)

	assert.Equal(t, "100", store.Trades()[0].Price.String())
}
