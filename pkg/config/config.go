package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"CryptoSignal/internal/service/cache"
	"CryptoSignal/internal/services/indicators"
	"CryptoSignal/internal/usecase"
	pkgch "CryptoSignal/pkg/clickhouse"
	xhttp "CryptoSignal/pkg/http"
	"CryptoSignal/pkg/logger"
)

type Config struct {
	Environment string             `yaml:"environment" default:"development" validate:"oneof=development staging production test"`
	Server      xhttp.ServerConfig `yaml:"server"`
	Log         logger.Config      `yaml:"log"`
	Analysis    Analysis           `yaml:"analysis"`
	MarketData  MarketData         `yaml:"market_data"`
	Kafka       Kafka              `yaml:"kafka"`
	Cache       Cache              `yaml:"cache"`
	Recorder    Recorder           `yaml:"recorder"`
	Scanner     usecase.ScanConfig `yaml:"scanner"`
}

// Analysis tunes the signal pipeline.
type Analysis struct {
	Lookback     int                `yaml:"lookback" default:"50" validate:"gte=2,lte=1000"`
	Indicators   indicators.Params  `yaml:"indicators"`
	Weights      map[string]float64 `yaml:"weights"`
	MaxCandles   int                `yaml:"max_candles" default:"2000" validate:"gte=0,lte=20000"`
	Parallel     bool               `yaml:"parallel" default:"true"`
	TrainTimeout time.Duration      `yaml:"train_timeout" default:"20s"`
}

// MarketData selects where candles come from.
type MarketData struct {
	Source     string       `yaml:"source" default:"clickhouse" validate:"oneof=clickhouse file"`
	Dir        string       `yaml:"dir" default:"data"`
	ClickHouse pkgch.Config `yaml:"clickhouse"`
}

type Kafka struct {
	Enabled       bool          `yaml:"enabled"`
	Brokers       []string      `yaml:"brokers"`
	SignalsTopic  string        `yaml:"signals_topic" default:"cryptosignal.signals"`
	RequestsTopic string        `yaml:"requests_topic"`
	DLQTopic      string        `yaml:"dlq_topic"`
	GroupID       string        `yaml:"group_id" default:"cryptosignal"`
	Workers       int           `yaml:"workers" default:"2"`
	Compression   string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
	MaxAttempts   int           `yaml:"max_attempts" default:"3"`
	RetryMax      int           `yaml:"retry_max" default:"3"`
	BackoffMin    time.Duration `yaml:"backoff_min" default:"100ms"`
	BackoffMax    time.Duration `yaml:"backoff_max" default:"5s"`
}

type Cache struct {
	Enabled bool              `yaml:"enabled" default:"true"`
	Backend string            `yaml:"backend" default:"memory" validate:"oneof=memory redis"`
	TTL     time.Duration     `yaml:"ttl" default:"5m"`
	Redis   cache.RedisConfig `yaml:"redis"`
}

type Recorder struct {
	// Path of the SQLite history database. Empty disables recording.
	Path string `yaml:"path"`
}

var validate = validator.New()

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides it with environment
// variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from the environment looked up through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("CRYPTOSIGNAL_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.MarketData.ClickHouse.Host = v
	}
	if v := getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.MarketData.ClickHouse.Password = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
		c.Kafka.Enabled = true
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Backend = "redis"
	}
	if v := getenv("SCAN_COINS"); v != "" {
		c.Scanner.Coins = splitList(v)
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks struct tags and the cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if !c.Analysis.Indicators.Valid() {
		return fmt.Errorf("analysis.indicators: windows must be positive and macd_fast < macd_slow")
	}
	for name, w := range c.Analysis.Weights {
		if w < 0 {
			return fmt.Errorf("analysis.weights.%s must not be negative", name)
		}
	}
	if c.MarketData.Source == "clickhouse" && c.MarketData.ClickHouse.Host == "" {
		return fmt.Errorf("market_data.clickhouse.host is required for the clickhouse source")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Scanner.Enabled && len(c.Scanner.Coins) == 0 {
		return fmt.Errorf("scanner.coins cannot be empty when the scanner is enabled")
	}
	return nil
}
