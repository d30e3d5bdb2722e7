package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"CryptoSignal/internal/domain/models"
	domrepo "CryptoSignal/internal/domain/repository"
	pkgch "CryptoSignal/pkg/clickhouse"
	applogger "CryptoSignal/pkg/logger"
)

// DefaultCandleTable holds one-minute candles per coin.
const DefaultCandleTable = "cryptosignal.candles_1m"

// CandleSchema creates the database and candle table.
var CandleSchema = []string{
	`CREATE DATABASE IF NOT EXISTS cryptosignal`,
	`CREATE TABLE IF NOT EXISTS ` + DefaultCandleTable + ` (
		bucket DateTime64(3, 'UTC'),
		symbol LowCardinality(String),
		open Float64,
		high Float64,
		low Float64,
		close Float64,
		volume Float64
	) ENGINE = ReplacingMergeTree
	ORDER BY (symbol, bucket)`,
}

const insertChunk = 2000

// CHMarketData serves candles from ClickHouse, re-bucketed to the
// resolution of the requested timeframe.
type CHMarketData struct {
	db    *sql.DB
	table string
	now   func() time.Time
	ping  func(context.Context) error
	l     *applogger.Logger
}

var _ domrepo.HealthChecker = (*CHMarketData)(nil)

func NewCHMarketData(ch *pkgch.Client, l *applogger.Logger) *CHMarketData {
	s := newCHMarketData(ch.DB(), DefaultCandleTable, l)
	s.ping = ch.Health
	return s
}

func newCHMarketData(db *sql.DB, table string, l *applogger.Logger) *CHMarketData {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHMarketData{db: db, table: table, now: time.Now, ping: db.PingContext, l: l}
}

// Health pings ClickHouse.
func (s *CHMarketData) Health(ctx context.Context) error {
	if err := s.ping(ctx); err != nil {
		return fmt.Errorf("clickhouse ping: %w", err)
	}
	return nil
}

// fetchQuery aggregates raw candles into buckets of the given width.
func fetchQuery(table string, bucket time.Duration) string {
	return fmt.Sprintf(`
		SELECT
			toStartOfInterval(bucket, INTERVAL %d SECOND) AS b,
			symbol,
			argMin(open, bucket),
			max(high),
			min(low),
			argMax(close, bucket),
			sum(volume)
		FROM %s
		WHERE symbol = ? AND bucket >= ? AND bucket <= ?
		GROUP BY b, symbol
		ORDER BY b ASC`, int64(bucket/time.Second), table)
}

func (s *CHMarketData) Fetch(ctx context.Context, coinID string, tf domrepo.Timeframe) ([]models.Candle, error) {
	if !domrepo.IsValidTimeframe(tf) {
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedTimeframe, tf)
	}
	start := time.Now()
	to := s.now().UTC()
	from := to.Add(-tf.Span())

	rows, err := s.db.QueryContext(ctx, fetchQuery(s.table, tf.Bucket()), coinID, from, to)
	if err != nil {
		s.l.Error("clickhouse fetch query error",
			applogger.String("symbol", coinID), applogger.String("tf", string(tf)), applogger.Error(err))
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Candle, 0, 256)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse fetch ok",
		applogger.String("symbol", coinID),
		applogger.String("tf", string(tf)),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration", time.Since(start)))
	return out, nil
}

// StoreCandles inserts candles in multi-row chunks.
func (s *CHMarketData) StoreCandles(ctx context.Context, symbol string, candles []models.Candle) error {
	for start := 0; start < len(candles); start += insertChunk {
		end := start + insertChunk
		if end > len(candles) {
			end = len(candles)
		}
		q, args := insertQuery(s.table, symbol, candles[start:end])
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert candles [%d:%d]: %w", start, end, err)
		}
	}
	s.l.Info("clickhouse candles stored", applogger.String("symbol", symbol), applogger.Int("rows", len(candles)))
	return nil
}

func insertQuery(table, symbol string, candles []models.Candle) (string, []any) {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (bucket, symbol, open, high, low, close, volume) VALUES ", table)
	args := make([]any, 0, len(candles)*7)
	for i, c := range candles {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?)")
		sym := c.Symbol
		if sym == "" {
			sym = symbol
		}
		args = append(args, c.Bucket.UTC(), sym, c.Open, c.High, c.Low, c.Close, c.Volume)
	}
	return b.String(), args
}

var _ domrepo.MarketDataProvider = (*CHMarketData)(nil)
