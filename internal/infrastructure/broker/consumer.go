package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"orderflow/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Consumer subscribes to the trade and order-book fanout exchanges and
// feeds every message into a Source.
type Consumer struct {
	cfg    config.RabbitMQConfig
	source *Source
	logger *logrus.Logger

	conn     *amqp.Connection
	channels []*amqp.Channel
	wg       sync.WaitGroup
}

// NewConsumer prepares a consumer for the given configuration.
func NewConsumer(cfg config.RabbitMQConfig, source *Source, logger *logrus.Logger) (*Consumer, error) {
	if cfg.URL == "" {
		return nil, errors.New("rabbitmq url is required")
	}
	return &Consumer{
		cfg:    cfg,
		source: source,
		logger: logger,
	}, nil
}

// Start establishes the AMQP connection and begins consuming.
func (c *Consumer) Start(ctx context.Context) error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("connect to rabbitmq: %w", err)
	}
	c.conn = conn

	if err := c.startStream(ctx, streamTrade, c.cfg.TradesExchange); err != nil {
		c.Close()
		return err
	}
	if err := c.startStream(ctx, streamOrderBook, c.cfg.OrderBooksExchange); err != nil {
		c.Close()
		return err
	}

	c.logger.Infof("rabbitmq consumer started: exchanges=%s,%s", c.cfg.TradesExchange, c.cfg.OrderBooksExchange)
	return nil
}

// Close stops consumption and releases resources.
func (c *Consumer) Close() {
	for _, ch := range c.channels {
		_ = ch.Close()
	}
	c.channels = nil
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.wg.Wait()
}

func (c *Consumer) startStream(ctx context.Context, stream streamType, exchange string) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel for %s: %w", stream, err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	queue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		ch.Close()
		return fmt.Errorf("declare queue for %s: %w", stream, err)
	}
	if err := ch.QueueBind(queue.Name, "", exchange, false, nil); err != nil {
		ch.Close()
		return fmt.Errorf("bind queue %s to %s: %w", queue.Name, exchange, err)
	}
	prefetch := c.cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		ch.Close()
		return fmt.Errorf("set qos for %s: %w", stream, err)
	}
	deliveries, err := ch.Consume(queue.Name, "", false, true, false, false, nil)
	if err != nil {
		ch.Close()
		return fmt.Errorf("start consume for %s: %w", stream, err)
	}
	c.channels = append(c.channels, ch)
	c.wg.Add(1)
	go c.consumeLoop(ctx, stream, deliveries)
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context, stream streamType, deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()
	log := c.logger.WithField("stream", string(stream))
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			if err := c.handleDelivery(stream, delivery.Body); err != nil {
				// malformed payloads never become valid, so they are dropped
				log.WithError(err).Warn("failed to process message")
				_ = delivery.Nack(false, false)
				continue
			}
			if err := delivery.Ack(false); err != nil {
				log.WithError(err).Warn("failed to ack delivery")
			}
		}
	}
}

func (c *Consumer) handleDelivery(stream streamType, body []byte) error {
	var payload Message
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	switch stream {
	case streamTrade:
		if payload.Trade == nil {
			return errors.New("trade payload is nil")
		}
		return c.source.AddTrade(*payload.Trade)
	case streamOrderBook:
		if payload.OrderBookSnapshot == nil {
			return errors.New("order book payload is nil")
		}
		return c.source.SetOrderBook(*payload.OrderBookSnapshot)
	default:
		return fmt.Errorf("unsupported stream: %s", stream)
	}
}

type streamType string

func (s streamType) String() string {
	return string(s)
}

const (
	streamTrade     streamType = "trades"
	streamOrderBook streamType = "orderbooks"
)
