package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	SourceSynthetic = "synthetic"
	SourceBinance   = "binance"
	SourceAMQP      = "amqp"
)

// Config keeps the runtime configuration for the service.
type Config struct {
	Env       string `validate:"required"`
	LogLevel  string `validate:"required"`
	HTTP      HTTPConfig
	Market    MarketConfig
	Dashboard DashboardConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Cache     CacheConfig
	RabbitMQ  RabbitMQConfig
	Binance   BinanceConfig
	Synthetic SyntheticConfig
	Invest    InvestConfig
}

// HTTPConfig holds HTTP server related settings.
type HTTPConfig struct {
	Host string `validate:"required"`
	Port int    `validate:"min=1,max=65535"`
}

// Addr renders the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// MarketConfig describes the tracked pair and the ingestion cadence.
type MarketConfig struct {
	Symbol          string        `validate:"required"`
	Source          string        `validate:"oneof=synthetic binance amqp"`
	TradeLimit      int           `validate:"min=1,max=1000"`
	FetchDepth      int           `validate:"min=1,max=5000"`
	Depth           int           `validate:"min=1,max=5000"`
	History         int           `validate:"min=1"`
	Retention       time.Duration `validate:"min=1m"`
	RefreshInterval time.Duration `validate:"min=10s,max=300s"`
}

// DashboardConfig holds the view defaults used when a request omits them.
type DashboardConfig struct {
	WindowMinutes int `validate:"min=1"`
	MinTradeSize  decimal.Decimal
	BucketMinutes int `validate:"min=1"`
	ProfileLevels int `validate:"min=1,max=500"`
}

// PostgresConfig stores database connection parameters. An empty DSN
// disables the archive.
type PostgresConfig struct {
	DSN          string
	BatchSize    int           `validate:"min=1"`
	BatchTimeout time.Duration `validate:"min=0"`
}

// RedisConfig stores Redis connection parameters.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int `validate:"min=0"`
}

// CacheConfig stores cache behavior.
type CacheConfig struct {
	TTLSeconds int `validate:"min=0"`
}

// RabbitMQConfig holds broker settings shared by the publisher, the
// consumer source and the producer.
type RabbitMQConfig struct {
	URL                string
	TradesExchange     string `validate:"required"`
	OrderBooksExchange string `validate:"required"`
	DashboardExchange  string `validate:"required"`
	Prefetch           int    `validate:"min=0"`
	BufferSize         int    `validate:"min=1"`
}

type BinanceConfig struct {
	BaseURL string        `validate:"required,url"`
	Timeout time.Duration `validate:"min=1s"`
}

type SyntheticConfig struct {
	Seed       uint64
	StartPrice decimal.Decimal
}

// InvestConfig drives cmd/producer. The server ignores it.
type InvestConfig struct {
	Token         string
	Endpoint      string `validate:"required"`
	AppName       string `validate:"required"`
	SkipTLSVerify bool
	InstrumentUID string
	Lot           int64 `validate:"min=1"`
}

var defaults = map[string]any{
	"APP_ENV":                      "development",
	"LOG_LEVEL":                    "info",
	"HTTP_HOST":                    "0.0.0.0",
	"HTTP_PORT":                    8080,
	"MARKET_SYMBOL":                "BTC/USDT",
	"MARKET_SOURCE":                SourceSynthetic,
	"TRADE_FETCH_LIMIT":            200,
	"ORDERBOOK_FETCH_DEPTH":        50,
	"ORDERBOOK_DEPTH":              20,
	"ORDERBOOK_HISTORY":            50,
	"TRADE_RETENTION":              "4h",
	"REFRESH_INTERVAL":             "30s",
	"DEFAULT_WINDOW_MINUTES":       30,
	"DEFAULT_MIN_TRADE_SIZE":       "1.0",
	"DEFAULT_BUCKET_MINUTES":       1,
	"VOLUME_PROFILE_LEVELS":        20,
	"DATABASE_DSN":                 "",
	"ARCHIVE_BATCH_SIZE":           500,
	"ARCHIVE_BATCH_TIMEOUT":        "5s",
	"REDIS_ADDR":                   "",
	"REDIS_PASSWORD":               "",
	"REDIS_DB":                     0,
	"CACHE_TTL_SECONDS":            5,
	"RABBITMQ_URL":                 "",
	"RABBITMQ_TRADES_EXCHANGE":     "marketdata.trades",
	"RABBITMQ_ORDERBOOKS_EXCHANGE": "marketdata.orderbooks",
	"RABBITMQ_DASHBOARD_EXCHANGE":  "orderflow.dashboard",
	"RABBITMQ_PREFETCH":            50,
	"AMQP_BUFFER_SIZE":             1000,
	"BINANCE_HTTP_BASE":            "https://api.binance.com",
	"BINANCE_TIMEOUT":              "8s",
	"SYNTHETIC_SEED":               0,
	"SYNTHETIC_START_PRICE":        "60000",
	"INVEST_TOKEN":                 "",
	"INVEST_ENDPOINT":              "invest-public-api.tinkoff.ru:443",
	"INVEST_APP_NAME":              "orderflow-producer",
	"INVEST_INSECURE_SKIP_VERIFY":  false,
	"INVEST_INSTRUMENT_UID":        "",
	"INVEST_LOT":                   1,
}

// Load builds Config from environment variables, optionally layered over
// the file named by CONFIG_FILE.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := strings.TrimSpace(v.GetString("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	minSize, err := decimal.NewFromString(v.GetString("DEFAULT_MIN_TRADE_SIZE"))
	if err != nil {
		return nil, fmt.Errorf("parse DEFAULT_MIN_TRADE_SIZE: %w", err)
	}
	startPrice, err := decimal.NewFromString(v.GetString("SYNTHETIC_START_PRICE"))
	if err != nil {
		return nil, fmt.Errorf("parse SYNTHETIC_START_PRICE: %w", err)
	}

	cfg := &Config{
		Env:      v.GetString("APP_ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		Market: MarketConfig{
			Symbol:          strings.ToUpper(v.GetString("MARKET_SYMBOL")),
			Source:          strings.ToLower(v.GetString("MARKET_SOURCE")),
			TradeLimit:      v.GetInt("TRADE_FETCH_LIMIT"),
			FetchDepth:      v.GetInt("ORDERBOOK_FETCH_DEPTH"),
			Depth:           v.GetInt("ORDERBOOK_DEPTH"),
			History:         v.GetInt("ORDERBOOK_HISTORY"),
			Retention:       v.GetDuration("TRADE_RETENTION"),
			RefreshInterval: v.GetDuration("REFRESH_INTERVAL"),
		},
		Dashboard: DashboardConfig{
			WindowMinutes: v.GetInt("DEFAULT_WINDOW_MINUTES"),
			MinTradeSize:  minSize,
			BucketMinutes: v.GetInt("DEFAULT_BUCKET_MINUTES"),
			ProfileLevels: v.GetInt("VOLUME_PROFILE_LEVELS"),
		},
		Postgres: PostgresConfig{
			DSN:          v.GetString("DATABASE_DSN"),
			BatchSize:    v.GetInt("ARCHIVE_BATCH_SIZE"),
			BatchTimeout: v.GetDuration("ARCHIVE_BATCH_TIMEOUT"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			TTLSeconds: v.GetInt("CACHE_TTL_SECONDS"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:                v.GetString("RABBITMQ_URL"),
			TradesExchange:     v.GetString("RABBITMQ_TRADES_EXCHANGE"),
			OrderBooksExchange: v.GetString("RABBITMQ_ORDERBOOKS_EXCHANGE"),
			DashboardExchange:  v.GetString("RABBITMQ_DASHBOARD_EXCHANGE"),
			Prefetch:           v.GetInt("RABBITMQ_PREFETCH"),
			BufferSize:         v.GetInt("AMQP_BUFFER_SIZE"),
		},
		Binance: BinanceConfig{
			BaseURL: strings.TrimRight(v.GetString("BINANCE_HTTP_BASE"), "/"),
			Timeout: v.GetDuration("BINANCE_TIMEOUT"),
		},
		Synthetic: SyntheticConfig{
			Seed:       v.GetUint64("SYNTHETIC_SEED"),
			StartPrice: startPrice,
		},
		Invest: InvestConfig{
			Token:         strings.TrimSpace(v.GetString("INVEST_TOKEN")),
			Endpoint:      v.GetString("INVEST_ENDPOINT"),
			AppName:       v.GetString("INVEST_APP_NAME"),
			SkipTLSVerify: v.GetBool("INVEST_INSECURE_SKIP_VERIFY"),
			InstrumentUID: strings.TrimSpace(v.GetString("INVEST_INSTRUMENT_UID")),
			Lot:           v.GetInt64("INVEST_LOT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and the cross-field rules the tags
// cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Market.Depth > c.Market.FetchDepth {
		return errors.New("invalid config: ORDERBOOK_DEPTH exceeds ORDERBOOK_FETCH_DEPTH")
	}
	if c.Dashboard.MinTradeSize.IsNegative() {
		return errors.New("invalid config: DEFAULT_MIN_TRADE_SIZE must not be negative")
	}
	if !c.Synthetic.StartPrice.IsPositive() {
		return errors.New("invalid config: SYNTHETIC_START_PRICE must be positive")
	}
	if c.Market.Source == SourceAMQP && c.RabbitMQ.URL == "" {
		return errors.New("invalid config: RABBITMQ_URL is required for the amqp source")
	}
	return nil
}

// TTL renders the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}
