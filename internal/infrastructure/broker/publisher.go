package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	domain "orderflow/internal/domain/entity/marketdata"
	"orderflow/internal/domain/interfaces"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher writes envelopes to fanout exchanges on a single channel.
type Publisher struct {
	channel   *amqp.Channel
	exchanges Exchanges
	logger    *logrus.Logger
	mu        sync.Mutex
}

var _ interfaces.DashboardPublisher = (*Publisher)(nil)

func NewPublisher(conn *amqp.Connection, exchanges Exchanges, logger *logrus.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}

	declared := map[string]struct{}{}
	for _, name := range []string{exchanges.Trades, exchanges.OrderBooks, exchanges.Dashboards} {
		if name == "" {
			continue
		}
		if _, ok := declared[name]; ok {
			continue
		}
		if err := ch.ExchangeDeclare(name, "fanout", true, false, false, false, nil); err != nil {
			ch.Close()
			return nil, fmt.Errorf("declare exchange %s: %w", name, err)
		}
		declared[name] = struct{}{}
	}
	if len(declared) == 0 {
		ch.Close()
		return nil, errors.New("at least one exchange name is required")
	}

	return &Publisher{
		channel:   ch,
		exchanges: exchanges,
		logger:    logger,
	}, nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if err := p.channel.Close(); err != nil {
		p.logger.Errorf("close rabbitmq channel: %v", err)
	}
}

func (p *Publisher) PublishTrade(ctx context.Context, trade *domain.Trade) error {
	return p.publish(ctx, p.exchanges.Trades, Message{Trade: trade})
}

func (p *Publisher) PublishOrderBook(ctx context.Context, snapshot *domain.OrderBookSnapshot) error {
	return p.publish(ctx, p.exchanges.OrderBooks, Message{OrderBookSnapshot: snapshot})
}

func (p *Publisher) PublishDashboard(ctx context.Context, dashboard *domain.Dashboard) error {
	return p.publish(ctx, p.exchanges.Dashboards, Message{Dashboard: dashboard})
}

func (p *Publisher) publish(ctx context.Context, exchange string, msg Message) error {
	if exchange == "" {
		return errors.New("exchange is not configured")
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.channel.PublishWithContext(ctx, exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
