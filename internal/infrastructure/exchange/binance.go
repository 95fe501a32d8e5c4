package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	domain "orderflow/internal/domain/entity/marketdata"
	"orderflow/internal/domain/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrUnexpectedStatus = errors.New("unexpected exchange response status")

// BinanceClient reads public spot trades and depth over REST.
type BinanceClient struct {
	baseURL string
	client  *http.Client
}

var _ interfaces.TradeSource = (*BinanceClient)(nil)

func NewBinanceClient(baseURL string, timeout time.Duration) *BinanceClient {
	return &BinanceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type binanceTrade struct {
	Price        string `json:"price"`
	Qty          string `json:"qty"`
	Time         int64  `json:"time"`
	IsBuyerMaker bool   `json:"isBuyerMaker"`
}

type binanceDepth struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}

func (c *BinanceClient) FetchRecentTrades(ctx context.Context, symbol string, limit int) ([]domain.Trade, error) {
	var raw []binanceTrade
	if err := c.get(ctx, "/api/v3/trades", symbol, limit, &raw); err != nil {
		return nil, err
	}

	trades := make([]domain.Trade, 0, len(raw))
	for _, item := range raw {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return nil, fmt.Errorf("trade price parse: %w", err)
		}
		size, err := decimal.NewFromString(item.Qty)
		if err != nil {
			return nil, fmt.Errorf("trade qty parse: %w", err)
		}
		// the maker bought, so the taker sold
		side := domain.TradeSideBuy
		if item.IsBuyerMaker {
			side = domain.TradeSideSell
		}
		trades = append(trades, domain.Trade{
			Timestamp: time.UnixMilli(item.Time).UTC(),
			Price:     price,
			Size:      size,
			Side:      side,
		})
	}
	return trades, nil
}

func (c *BinanceClient) FetchOrderBook(ctx context.Context, symbol string, depth int) (*domain.OrderBookSnapshot, error) {
	var raw binanceDepth
	if err := c.get(ctx, "/api/v3/depth", symbol, depth, &raw); err != nil {
		return nil, err
	}

	bids, err := parseLevels(raw.Bids)
	if err != nil {
		return nil, fmt.Errorf("bid level parse: %w", err)
	}
	asks, err := parseLevels(raw.Asks)
	if err != nil {
		return nil, fmt.Errorf("ask level parse: %w", err)
	}
	return &domain.OrderBookSnapshot{
		ID:         uuid.New(),
		Symbol:     symbol,
		SnapshotAt: time.Now().UTC(),
		Bids:       bids,
		Asks:       asks,
	}, nil
}

func (c *BinanceClient) get(ctx context.Context, path, symbol string, limit int, out any) error {
	instrument, err := domain.NewInstrument(symbol, "", 1)
	if err != nil {
		return err
	}
	query := url.Values{}
	query.Set("symbol", instrument.Compact())
	query.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: %s", ErrUnexpectedStatus, path, resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func parseLevels(raw [][]string) ([]domain.OrderBookLevel, error) {
	levels := make([]domain.OrderBookLevel, 0, len(raw))
	for _, lvl := range raw {
		if len(lvl) < 2 {
			continue
		}
		price, err := decimal.NewFromString(lvl[0])
		if err != nil {
			return nil, err
		}
		size, err := decimal.NewFromString(lvl[1])
		if err != nil {
			return nil, err
		}
		if size.IsPositive() {
			levels = append(levels, domain.OrderBookLevel{Price: price, Size: size})
		}
	}
	return levels, nil
}
