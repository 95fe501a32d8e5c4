package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	docs "orderflow/docs"
	appmarketdata "orderflow/internal/application/service/marketdata"
	"orderflow/internal/config"
	domain "orderflow/internal/domain/entity/marketdata"
	"orderflow/internal/domain/interfaces"
	"orderflow/internal/infrastructure/archive"
	"orderflow/internal/infrastructure/broker"
	"orderflow/internal/infrastructure/exchange"
	inframarketdata "orderflow/internal/infrastructure/marketdata"
	"orderflow/internal/logging"
	infrahttp "orderflow/internal/interfaces/http"
	"orderflow/internal/interfaces/ws"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	logger := logging.New(cfg.LogLevel)
	if envErr != nil {
		logger.WithError(envErr).Debug("no .env file loaded")
	}

	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Host = cfg.HTTP.Addr()

	source, stopSource := buildSource(ctx, cfg, logger)
	defer stopSource()

	hub := ws.NewHub(logger)
	opts := []appmarketdata.Option{appmarketdata.WithPublishers(hub)}

	var rabbitConn *amqp.Connection
	if cfg.RabbitMQ.URL != "" {
		rabbitConn, err = amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			logger.Fatalf("connect rabbitmq: %v", err)
		}
		defer rabbitConn.Close()

		pub, err := broker.NewPublisher(rabbitConn, broker.Exchanges{Dashboards: cfg.RabbitMQ.DashboardExchange}, logger)
		if err != nil {
			logger.Fatalf("init dashboard publisher: %v", err)
		}
		defer pub.Close()
		opts = append(opts, appmarketdata.WithPublishers(pub))
	}

	var batcher *archive.BatchWriter
	if cfg.Postgres.DSN != "" {
		repo, err := archive.NewRepository(ctx, cfg.Postgres.DSN)
		if err != nil {
			logger.Fatalf("failed to init archive repo: %v", err)
		}
		defer repo.Close()
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatalf("failed to prepare archive schema: %v", err)
		}
		batcher = archive.NewBatchWriter(archive.BatchConfig{
			Size:    cfg.Postgres.BatchSize,
			Timeout: cfg.Postgres.BatchTimeout,
		}, cfg.Market.Symbol, repo, logger)
		batcher.Run(ctx)
		opts = append(opts, appmarketdata.WithArchive(batcher))
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	service := appmarketdata.NewService(appmarketdata.Config{
		Symbol:          cfg.Market.Symbol,
		TradeLimit:      cfg.Market.TradeLimit,
		FetchDepth:      cfg.Market.FetchDepth,
		Depth:           cfg.Market.Depth,
		RefreshInterval: cfg.Market.RefreshInterval,
		Defaults: domain.DashboardParams{
			WindowMinutes: cfg.Dashboard.WindowMinutes,
			MinTradeSize:  cfg.Dashboard.MinTradeSize,
			BucketMinutes: cfg.Dashboard.BucketMinutes,
			ProfileLevels: cfg.Dashboard.ProfileLevels,
		},
	},
		source,
		inframarketdata.NewTradeStore(cfg.Market.Retention),
		inframarketdata.NewOrderBookHistory(cfg.Market.History),
		logger,
		opts...,
	)

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		service.Run(ctx)
	}()

	handler := infrahttp.NewHandler(service, hub, redisClient, cfg.Cache.TTL())

	server := &http.Server{
		Addr:    cfg.HTTP.Addr(),
		Handler: handler,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":   cfg.HTTP.Addr(),
			"symbol": cfg.Market.Symbol,
			"source": cfg.Market.Source,
		}).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown error: %v", err)
	}
	<-schedulerDone
	if batcher != nil {
		if err := batcher.Stop(shutdownCtx); err != nil {
			logger.Errorf("archive flush error: %v", err)
		}
	}
	logger.Info("server stopped")
}

func buildSource(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (interfaces.TradeSource, func()) {
	switch cfg.Market.Source {
	case config.SourceBinance:
		return exchange.NewBinanceClient(cfg.Binance.BaseURL, cfg.Binance.Timeout), func() {}
	case config.SourceAMQP:
		source := broker.NewSource(cfg.RabbitMQ.BufferSize)
		consumer, err := broker.NewConsumer(cfg.RabbitMQ, source, logger)
		if err != nil {
			logger.Fatalf("init rabbitmq consumer: %v", err)
		}
		if err := consumer.Start(ctx); err != nil {
			logger.Fatalf("start rabbitmq consumer: %v", err)
		}
		return source, consumer.Close
	default:
		return exchange.NewSyntheticSource(cfg.Synthetic.Seed, cfg.Synthetic.StartPrice), func() {}
	}
}
