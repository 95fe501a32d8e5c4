package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RefreshCycles counts ingestion cycles by result (success/failure).
var RefreshCycles = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "orderflow_refresh_cycles_total",
		Help: "Total number of ingestion cycles by result",
	},
	[]string{"result"},
)

// RefreshDuration records how long a full ingestion cycle takes.
var RefreshDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "orderflow_refresh_duration_seconds",
		Help:    "Duration in seconds of ingestion cycles",
		Buckets: prometheus.DefBuckets,
	},
)

// DashboardDuration records analytics computation time per dashboard.
var DashboardDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "orderflow_dashboard_duration_seconds",
		Help:    "Duration in seconds of dashboard computation",
		Buckets: prometheus.DefBuckets,
	},
)

// Store state
var (
	TradesAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orderflow_trades_accepted_total",
			Help: "Total number of trades accepted into the trade store",
		},
	)

	TradeStoreSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "orderflow_trade_store_size",
			Help: "Number of trades currently held",
		},
	)

	OrderBookHistorySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "orderflow_orderbook_history_size",
			Help: "Number of order-book snapshots currently held",
		},
	)
)

// HTTPRequests counts API requests by route and status.
var HTTPRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "orderflow_http_requests_total",
		Help: "Total number of HTTP requests by route and status",
	},
	[]string{"route", "status"},
)

// PublishFailures counts dashboard deliveries that failed per publisher.
var PublishFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "orderflow_publish_failures_total",
		Help: "Total number of failed dashboard publications",
	},
	[]string{"publisher"},
)

func init() {
	prometheus.MustRegister(RefreshCycles, RefreshDuration, DashboardDuration)
	prometheus.MustRegister(TradesAccepted, TradeStoreSize, OrderBookHistorySize)
	prometheus.MustRegister(HTTPRequests, PublishFailures)
}
