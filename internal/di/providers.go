package di

import (
	"context"
	"fmt"
	"time"

	domrepo "CryptoSignal/internal/domain/repository"
	"CryptoSignal/internal/handler/api"
	internalrepo "CryptoSignal/internal/repository"
	"CryptoSignal/internal/service/cache"
	imetrics "CryptoSignal/internal/service/metrics"
	"CryptoSignal/internal/service/ratelimit"
	"CryptoSignal/internal/services/ensemble"
	"CryptoSignal/internal/services/fusion"
	"CryptoSignal/internal/usecase"
	pkgch "CryptoSignal/pkg/clickhouse"
	"CryptoSignal/pkg/config"
	xhttp "CryptoSignal/pkg/http"
	pkgkafka "CryptoSignal/pkg/kafka"
	applogger "CryptoSignal/pkg/logger"
	"CryptoSignal/pkg/metrics"
	"CryptoSignal/pkg/server"
)

const scanLockTTL = 10 * time.Minute

// ProvideLogger builds the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideMarketData picks the candle source. The ClickHouse client is
// closed by the returned cleanup.
func ProvideMarketData(cfg *config.Config, l *applogger.Logger) (domrepo.MarketDataProvider, func(), error) {
	if cfg.MarketData.Source == "file" {
		l.Info("market data from files", applogger.String("dir", cfg.MarketData.Dir))
		return internalrepo.NewFileMarketData(cfg.MarketData.Dir, l), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := pkgch.NewClient(ctx, cfg.MarketData.ClickHouse)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	if cfg.MarketData.ClickHouse.InitSchema {
		if err := client.InitSchema(ctx, internalrepo.CandleSchema); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}
	}
	l.Info("clickhouse connected", applogger.String("database", cfg.MarketData.ClickHouse.Database))
	cleanup := func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	return internalrepo.NewCHMarketData(client, l), cleanup, nil
}

// ProvideTTLCache is the in-process cache, also swept by the app.
func ProvideTTLCache() *cache.TTLCache {
	return cache.NewTTLCache()
}

// ProvideReportCache returns nil when caching is disabled. The same store
// holds the scanner lock.
func ProvideReportCache(cfg *config.Config, mem *cache.TTLCache, l *applogger.Logger) (cache.Store, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}
	if cfg.Cache.Backend != "redis" {
		return mem, func() {}, nil
	}
	rc := cache.NewRedisCache(cfg.Cache.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	l.Info("redis report cache", applogger.String("addr", cfg.Cache.Redis.Addr))
	return rc, func() { _ = rc.Close() }, nil
}

// ProvideRecorder opens the SQLite history, or a no-op recorder without a path.
func ProvideRecorder(cfg *config.Config, l *applogger.Logger) (domrepo.Recorder, func(), error) {
	if cfg.Recorder.Path == "" {
		return internalrepo.NoopRecorder{}, func() {}, nil
	}
	rec, err := internalrepo.NewSQLiteRecorder(cfg.Recorder.Path, l)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite recorder: %w", err)
	}
	return rec, func() {
		if err := rec.Close(); err != nil {
			l.Warn("sqlite close error", applogger.Error(err))
		}
	}, nil
}

// ProvideSignalPublisher publishes to Kafka when it is enabled.
func ProvideSignalPublisher(cfg *config.Config, l *applogger.Logger) (domrepo.SignalPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopPublisher{}, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(-1),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatching(100, 50*time.Millisecond),
		pkgkafka.WithWriteTimeout(10*time.Second),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalsTopic)
	return pub, func() {
		if err := pub.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}, nil
}

func ProvidePredictor(cfg *config.Config) *ensemble.Predictor {
	return ensemble.NewPredictor(
		ensemble.WithLookback(cfg.Analysis.Lookback),
		ensemble.WithMaxCandles(cfg.Analysis.MaxCandles),
		ensemble.WithParallel(cfg.Analysis.Parallel),
	)
}

func ProvideSignalGenerator(cfg *config.Config, p *ensemble.Predictor, m domrepo.Metrics, l *applogger.Logger) *usecase.SignalGenerator {
	return usecase.NewSignalGenerator(p,
		usecase.WithIndicatorParams(cfg.Analysis.Indicators),
		usecase.WithWeights(fusion.Weights(cfg.Analysis.Weights)),
		usecase.WithTrainTimeout(cfg.Analysis.TrainTimeout),
		usecase.WithGeneratorMetrics(m),
		usecase.WithGeneratorLogger(l),
	)
}

func ProvideInsightsUseCase(
	cfg *config.Config,
	provider domrepo.MarketDataProvider,
	gen *usecase.SignalGenerator,
	c cache.Store,
	pub domrepo.SignalPublisher,
	rec domrepo.Recorder,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.InsightsUseCase {
	opts := []usecase.InsightsOption{
		usecase.WithPublisher(pub),
		usecase.WithRecorder(rec),
		usecase.WithInsightsMetrics(m),
		usecase.WithInsightsLogger(l),
	}
	if c != nil {
		opts = append(opts, usecase.WithReportCache(c, cfg.Cache.TTL))
	}
	return usecase.NewInsightsUseCase(provider, gen, opts...)
}

// ProvideScanner returns nil when the scanner is disabled.
func ProvideScanner(cfg *config.Config, insights *usecase.InsightsUseCase, store cache.Store, l *applogger.Logger) *usecase.Scanner {
	if !cfg.Scanner.Enabled {
		return nil
	}
	s := usecase.NewScanner(insights, cfg.Scanner, l.With(applogger.String("component", "scanner")))
	if store != nil {
		s.SetLock(store, scanLockTTL)
	}
	return s
}

// ProvideKafkaConsumer returns nil unless Kafka and a requests topic are set.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.RequestsTopic == "" {
		return nil, nil
	}
	c, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Workers),
		pkgkafka.WithConsumerRetry(cfg.Kafka.RetryMax, cfg.Kafka.BackoffMin, cfg.Kafka.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return c, nil
}

func ProvideAnalysisRequestHandler(cfg *config.Config, insights *usecase.InsightsUseCase, l *applogger.Logger) pkgkafka.MessageHandler {
	return usecase.NewAnalysisRequestHandler(cfg.Kafka.RequestsTopic, insights, l)
}

func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.RateLimit, cfg.Server.RateBurst)
}

func ProvideHTTPHandler(insights *usecase.InsightsUseCase, advisor *usecase.AdvisorUseCase, scanner *usecase.Scanner, l *applogger.Logger) xhttp.Handler {
	h := api.NewSignalsHandler(insights, advisor, l)
	if scanner != nil {
		h.SetScanner(scanner)
	}
	return h
}

// ProvideHTTPServer adds the market data source to /healthz when it can
// report its own health.
func ProvideHTTPServer(
	cfg *config.Config,
	h xhttp.Handler,
	provider domrepo.MarketDataProvider,
	lim *ratelimit.Limiter,
	l *applogger.Logger,
) *xhttp.Server {
	imetrics.Register()
	opts := []xhttp.ServerOption{
		xhttp.WithRateLimiter(lim, func(route string) {
			imetrics.RateLimited.WithLabelValues(route).Inc()
		}),
	}
	if hc, ok := provider.(domrepo.HealthChecker); ok {
		opts = append(opts, xhttp.WithHealthCheck("market_data", hc.Health))
	}
	return xhttp.NewServer(cfg.Server, h, l, opts...)
}

func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	scanner *usecase.Scanner,
	consumer *pkgkafka.Consumer,
	requests pkgkafka.MessageHandler,
	lim *ratelimit.Limiter,
	mem *cache.TTLCache,
) *server.App {
	return server.New(cfg, l, srv, server.Components{
		Scanner:  scanner,
		Consumer: consumer,
		Requests: requests,
		Limiter:  lim,
		MemCache: mem,
	})
}
