package broker

import domain "orderflow/internal/domain/entity/marketdata"

// Message is the envelope shared by every exchange. Exactly one field is
// set per message.
type Message struct {
	Trade             *domain.Trade             `json:"trade,omitempty"`
	OrderBookSnapshot *domain.OrderBookSnapshot `json:"order_book_snapshot,omitempty"`
	Dashboard         *domain.Dashboard         `json:"dashboard,omitempty"`
}

// Exchanges names the fanout exchanges used by producer and consumers.
type Exchanges struct {
	Trades     string
	OrderBooks string
	Dashboards string
}
