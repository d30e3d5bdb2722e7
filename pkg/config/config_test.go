package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParse_DefaultsAndOverrides(t *testing.T) {
	c, err := Parse([]byte(`
environment: production
market_data:
  source: clickhouse
  clickhouse:
    host: ch.internal
analysis:
  lookback: 80
  parallel: false
  weights:
    macd: 0.5
scanner:
  enabled: true
  coins: [bitcoin, ethereum]
`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Analysis.Lookback != 80 || c.Analysis.Parallel {
		t.Fatalf("overrides lost: %+v", c.Analysis)
	}
	if c.Analysis.MaxCandles != 2000 {
		t.Fatalf("max candles default %d", c.Analysis.MaxCandles)
	}
	if c.Analysis.TrainTimeout != 20*time.Second {
		t.Fatalf("train timeout default %v", c.Analysis.TrainTimeout)
	}
	if c.Analysis.Indicators.BollingerWindow != 20 || c.Analysis.Indicators.MACDSlow != 26 {
		t.Fatalf("indicator defaults missing: %+v", c.Analysis.Indicators)
	}
	if c.Server.Port != 8080 || c.MarketData.ClickHouse.Port != 9000 {
		t.Fatalf("server/clickhouse defaults missing: %d %d", c.Server.Port, c.MarketData.ClickHouse.Port)
	}
	if c.Scanner.Timeframe != "7d" || c.Scanner.Cron == "" {
		t.Fatalf("scanner defaults missing: %+v", c.Scanner)
	}
	if c.Cache.TTL != 5*time.Minute || c.Cache.Backend != "memory" {
		t.Fatalf("cache defaults: %+v", c.Cache)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad environment", "environment: moon\nmarket_data: {source: file}"},
		{"missing clickhouse host", "market_data: {source: clickhouse}"},
		{"bad source", "market_data: {source: ftp}"},
		{"macd order", "market_data: {source: file}\nanalysis: {indicators: {macd_fast: 30, macd_slow: 10}}"},
		{"negative weight", "market_data: {source: file}\nanalysis: {weights: {macd: -1}}"},
		{"kafka without brokers", "market_data: {source: file}\nkafka: {enabled: true}"},
		{"scanner without coins", "market_data: {source: file}\nscanner: {enabled: true}"},
		{"bad lookback", "market_data: {source: file}\nanalysis: {lookback: 1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	env := map[string]string{
		"HTTP_PORT":     "9090",
		"KAFKA_BROKERS": "k1:9092, k2:9092",
		"REDIS_ADDR":    "redis:6379",
		"SCAN_COINS":    "bitcoin,,solana",
	}
	c.ApplyEnv(func(k string) string { return env[k] })
	if c.Server.Port != 9090 {
		t.Fatalf("port %d", c.Server.Port)
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("kafka %+v", c.Kafka)
	}
	if c.Cache.Backend != "redis" || c.Cache.Redis.Addr != "redis:6379" {
		t.Fatalf("cache %+v", c.Cache)
	}
	if len(c.Scanner.Coins) != 2 {
		t.Fatalf("coins %v", c.Scanner.Coins)
	}
}

func TestLoad_ExampleFile(t *testing.T) {
	path := filepath.Join("..", "..", "configs", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Skip("example config not present")
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("example config invalid: %v", err)
	}
}
