package main

import (
	"errors"
	"fmt"
	"time"

	domain "orderflow/internal/domain/entity/marketdata"

	"github.com/google/uuid"
	pb "github.com/russianinvestments/invest-api-go-sdk/proto"
	"github.com/shopspring/decimal"
)

func convertTrade(msg *pb.Trade, instrument domain.Instrument) (*domain.Trade, error) {
	if msg == nil {
		return nil, errors.New("trade payload is nil")
	}

	side, err := mapTradeSide(msg.GetDirection())
	if err != nil {
		return nil, err
	}

	tradedAt := time.Time{}
	if ts := msg.GetTime(); ts != nil {
		tradedAt = ts.AsTime().UTC()
	}

	trade := &domain.Trade{
		Timestamp: tradedAt,
		Price:     quotationToDecimal(msg.GetPrice()),
		Size:      lotsToSize(msg.GetQuantity(), instrument),
		Side:      side,
	}
	if err := trade.Validate(); err != nil {
		return nil, err
	}
	return trade, nil
}

func convertOrderBook(msg *pb.OrderBook, instrument domain.Instrument) (*domain.OrderBookSnapshot, error) {
	if msg == nil {
		return nil, errors.New("order book payload is nil")
	}

	snapshotAt := time.Now().UTC()
	if ts := msg.GetTime(); ts != nil {
		snapshotAt = ts.AsTime().UTC()
	}

	return &domain.OrderBookSnapshot{
		ID:         uuid.New(),
		Symbol:     instrument.Symbol,
		SnapshotAt: snapshotAt,
		Bids:       convertLevels(msg.GetBids(), instrument),
		Asks:       convertLevels(msg.GetAsks(), instrument),
	}, nil
}

func convertLevels(orders []*pb.Order, instrument domain.Instrument) []domain.OrderBookLevel {
	levels := make([]domain.OrderBookLevel, 0, len(orders))
	for _, order := range orders {
		if order.GetQuantity() <= 0 {
			continue
		}
		levels = append(levels, domain.OrderBookLevel{
			Price: quotationToDecimal(order.GetPrice()),
			Size:  lotsToSize(order.GetQuantity(), instrument),
		})
	}
	return levels
}

// quotationToDecimal keeps the exact units+nano value instead of going
// through float64.
func quotationToDecimal(q *pb.Quotation) decimal.Decimal {
	if q == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(q.GetUnits()).Add(decimal.New(int64(q.GetNano()), -9))
}

func lotsToSize(lots int64, instrument domain.Instrument) decimal.Decimal {
	return decimal.NewFromInt(lots).Mul(decimal.NewFromInt(instrument.Lot))
}

func mapTradeSide(direction pb.TradeDirection) (domain.TradeSide, error) {
	switch direction {
	case pb.TradeDirection_TRADE_DIRECTION_BUY:
		return domain.TradeSideBuy, nil
	case pb.TradeDirection_TRADE_DIRECTION_SELL:
		return domain.TradeSideSell, nil
	default:
		return "", fmt.Errorf("unsupported trade direction: %s", direction.String())
	}
}
