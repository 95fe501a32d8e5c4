package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"orderflow/internal/config"
	domain "orderflow/internal/domain/entity/marketdata"
	"orderflow/internal/infrastructure/broker"
	"orderflow/internal/logging"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	investgo "github.com/russianinvestments/invest-api-go-sdk/investgo"
	pb "github.com/russianinvestments/invest-api-go-sdk/proto"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config error")
	}
	logger := logging.New(cfg.LogLevel)
	if envErr != nil {
		logger.WithError(envErr).Debug("no .env file loaded")
	}
	if cfg.Invest.Token == "" {
		logger.Fatal("INVEST_TOKEN is required")
	}
	if cfg.RabbitMQ.URL == "" {
		logger.Fatal("RABBITMQ_URL is required")
	}
	instrument, err := domain.NewInstrument(cfg.Market.Symbol, cfg.Invest.InstrumentUID, cfg.Invest.Lot)
	if err != nil {
		logger.Fatalf("instrument: %v", err)
	}
	if instrument.UID == "" {
		logger.Fatal("INVEST_INSTRUMENT_UID is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rabbitConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Fatalf("connect rabbitmq: %v", err)
	}
	defer rabbitConn.Close()

	pub, err := broker.NewPublisher(rabbitConn, broker.Exchanges{
		Trades:     cfg.RabbitMQ.TradesExchange,
		OrderBooks: cfg.RabbitMQ.OrderBooksExchange,
	}, logger)
	if err != nil {
		logger.Fatalf("init publisher: %v", err)
	}
	defer pub.Close()

	client, err := investgo.NewClient(ctx, investgo.Config{
		EndPoint:           cfg.Invest.Endpoint,
		Token:              cfg.Invest.Token,
		AppName:            cfg.Invest.AppName,
		InsecureSkipVerify: cfg.Invest.SkipTLSVerify,
	}, logger)
	if err != nil {
		logger.Fatalf("create invest api client: %v", err)
	}
	defer func() {
		if stopErr := client.Stop(); stopErr != nil {
			logger.Errorf("stop invest api client: %v", stopErr)
		}
	}()

	stream, err := client.NewMarketDataStreamClient().MarketDataStream()
	if err != nil {
		logger.Fatalf("create market data stream: %v", err)
	}
	defer stream.Stop()

	uids := []string{instrument.UID}
	tradeChan, err := stream.SubscribeTrade(uids, pb.TradeSourceType_TRADE_SOURCE_EXCHANGE, false)
	if err != nil {
		logger.Fatalf("subscribe trades: %v", err)
	}
	orderBookChan, err := stream.SubscribeOrderBook(uids, int32(cfg.Market.FetchDepth))
	if err != nil {
		logger.Fatalf("subscribe order books: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return stream.Listen()
	})
	g.Go(func() error {
		return pumpTrades(gctx, tradeChan, instrument, pub, logger)
	})
	g.Go(func() error {
		return pumpOrderBooks(gctx, orderBookChan, instrument, pub, logger)
	})

	logger.WithFields(logrus.Fields{
		"symbol":       instrument.Symbol,
		"uid":          instrument.UID,
		"trades_ex":    cfg.RabbitMQ.TradesExchange,
		"orderbook_ex": cfg.RabbitMQ.OrderBooksExchange,
	}).Info("producer started")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("producer stopped with error: %v", err)
	}

	logger.Info("producer stopped")
}

func pumpTrades(ctx context.Context, stream <-chan *pb.Trade, instrument domain.Instrument, pub *broker.Publisher, logger *logrus.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case trade, ok := <-stream:
			if !ok {
				return nil
			}
			entity, err := convertTrade(trade, instrument)
			if err != nil {
				logger.WithError(err).Warn("skip trade")
				continue
			}
			if err := pub.PublishTrade(ctx, entity); err != nil {
				return fmt.Errorf("publish trade: %w", err)
			}
		}
	}
}

func pumpOrderBooks(ctx context.Context, stream <-chan *pb.OrderBook, instrument domain.Instrument, pub *broker.Publisher, logger *logrus.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snapshot, ok := <-stream:
			if !ok {
				return nil
			}
			entity, err := convertOrderBook(snapshot, instrument)
			if err != nil {
				logger.WithError(err).Warn("skip order book")
				continue
			}
			if err := pub.PublishOrderBook(ctx, entity); err != nil {
				return fmt.Errorf("publish order book: %w", err)
			}
		}
	}
}
