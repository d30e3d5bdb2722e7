package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"CryptoSignal/internal/domain/models"
	domrepo "CryptoSignal/internal/domain/repository"
	"CryptoSignal/internal/service/cache"
	"CryptoSignal/internal/services/features"
	"CryptoSignal/internal/services/indicators"
	applogger "CryptoSignal/pkg/logger"
)

// InsightsWindow is the RSI and MA window used by the insight snapshot.
const InsightsWindow = 14

// InsightsUseCase fetches market data for a coin and runs the signal
// pipeline over it. Reports are cached by input, then recorded and
// published. Side-effect failures are logged and never fail the call.
type InsightsUseCase struct {
	provider  domrepo.MarketDataProvider
	gen       *SignalGenerator
	cache     cache.BytesCache
	cacheTTL  time.Duration
	publisher domrepo.SignalPublisher
	recorder  domrepo.Recorder
	metrics   domrepo.Metrics
	log       *applogger.Logger
}

type InsightsOption func(*InsightsUseCase)

func WithReportCache(c cache.BytesCache, ttl time.Duration) InsightsOption {
	return func(uc *InsightsUseCase) {
		uc.cache = c
		uc.cacheTTL = ttl
	}
}

func WithPublisher(p domrepo.SignalPublisher) InsightsOption {
	return func(uc *InsightsUseCase) { uc.publisher = p }
}

func WithRecorder(r domrepo.Recorder) InsightsOption {
	return func(uc *InsightsUseCase) { uc.recorder = r }
}

func WithInsightsMetrics(m domrepo.Metrics) InsightsOption {
	return func(uc *InsightsUseCase) { uc.metrics = m }
}

func WithInsightsLogger(l *applogger.Logger) InsightsOption {
	return func(uc *InsightsUseCase) {
		if l != nil {
			uc.log = l
		}
	}
}

func NewInsightsUseCase(provider domrepo.MarketDataProvider, gen *SignalGenerator, opts ...InsightsOption) *InsightsUseCase {
	uc := &InsightsUseCase{provider: provider, gen: gen, log: applogger.Nop()}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Generator exposes the underlying pipeline for callers holding raw candles.
func (uc *InsightsUseCase) Generator() *SignalGenerator { return uc.gen }

// Candles fetches the series for a coin. An empty series is reported as
// ErrNoData.
func (uc *InsightsUseCase) Candles(ctx context.Context, coin string, tf domrepo.Timeframe) ([]models.Candle, error) {
	start := time.Now()
	candles, err := uc.provider.Fetch(ctx, coin, tf)
	uc.latency("fetch", start)
	if err != nil {
		uc.fail("fetch")
		uc.log.Error("market data fetch failed",
			applogger.String("coin", coin), applogger.String("timeframe", string(tf)), applogger.Error(err))
		return nil, fmt.Errorf("fetch %s %s: %w", coin, tf, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("fetch %s %s: %w", coin, tf, models.ErrNoData)
	}
	return candles, nil
}

// Insights returns the raw indicator snapshot. Only an unsupported timeframe
// is an error; missing data is reported inside the result.
func (uc *InsightsUseCase) Insights(ctx context.Context, coin, timeframe string) (*models.Insights, error) {
	tf, err := domrepo.ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}
	out := &models.Insights{
		Method:    MethodML,
		Coin:      coin,
		Timeframe: string(tf),
		At:        time.Now().UTC(),
	}
	candles, err := uc.Candles(ctx, coin, tf)
	if err != nil {
		out.Error = fmt.Sprintf("failed to fetch OHLCV data for %s", coin)
		if !errors.Is(err, models.ErrNoData) {
			out.Error += ": " + err.Error()
		}
		return out, nil
	}
	Snapshot(out, candles, tf)
	return out, nil
}

// Snapshot fills the indicator fields of out from candles.
func Snapshot(out *models.Insights, candles []models.Candle, tf domrepo.Timeframe) {
	closes := models.Closes(candles)
	out.DataAvailable = len(closes) > 0
	out.DataPoints = len(candles)
	out.Candles = candles
	if len(closes) == 0 {
		return
	}
	out.High = models.Some(floats.Max(closes))
	out.Low = models.Some(floats.Min(closes))
	out.RSI = indicators.RSI(closes, InsightsWindow).Last()
	out.MA = indicators.MovingAverage(closes, InsightsWindow).Last()
	rets := features.ComputeLogReturns(candles)
	out.Volatility = features.RealizedVolatility(rets, len(rets), features.BarsPerYear(tf.Bucket()))
}

// Report runs the full pipeline for a coin.
func (uc *InsightsUseCase) Report(ctx context.Context, coin, timeframe string) (*models.SignalReport, error) {
	tf, err := domrepo.ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}
	candles, err := uc.Candles(ctx, coin, tf)
	if err != nil {
		if errors.Is(err, models.ErrNoData) {
			return &models.SignalReport{
				Symbol:         coin,
				Timeframe:      string(tf),
				GeneratedAt:    time.Now().UTC(),
				Recommendation: models.FusedRecommendation{Direction: models.Hold},
				Error:          fmt.Sprintf("failed to fetch OHLCV data for %s", coin),
			}, nil
		}
		return nil, err
	}
	return uc.AnalyzeCandles(ctx, coin, string(tf), candles)
}

// AnalyzeCandles runs the pipeline over caller-supplied candles. Identical
// input within the cache TTL returns the cached report.
func (uc *InsightsUseCase) AnalyzeCandles(ctx context.Context, symbol, timeframe string, candles []models.Candle) (*models.SignalReport, error) {
	start := time.Now()
	defer uc.latency("analyze", start)

	key := ""
	if uc.cache != nil {
		k, err := cache.Key("report", symbol, timeframe, candles, uc.gen.params, uc.gen.weights, uc.gen.predictor.Lookback())
		if err != nil {
			return nil, err
		}
		key = k
		var cached models.SignalReport
		ok, err := cache.GetJSON(ctx, uc.cache, key, &cached)
		if err != nil {
			uc.log.Warn("report cache read failed", applogger.String("key", key), applogger.Error(err))
		}
		if ok {
			uc.log.Debug("report cache hit", applogger.String("symbol", symbol))
			return &cached, nil
		}
		uc.log.Debug("report cache miss", applogger.String("symbol", symbol))
	}

	report := uc.gen.Analyze(ctx, candles)
	report.ID = uuid.NewString()
	report.Symbol = symbol
	report.Timeframe = timeframe

	if report.Error == "" {
		uc.emit(ctx, report)
	}
	if key != "" {
		if err := cache.SetJSON(ctx, uc.cache, key, report, uc.cacheTTL); err != nil {
			uc.log.Warn("report cache write failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return report, nil
}

// History returns recorded reports for a coin, newest first.
func (uc *InsightsUseCase) History(ctx context.Context, coin string, limit int) ([]models.SignalReport, error) {
	if uc.recorder == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	reports, err := uc.recorder.Recent(ctx, coin, limit)
	if err != nil {
		return nil, fmt.Errorf("report history: %w", err)
	}
	return reports, nil
}

func (uc *InsightsUseCase) emit(ctx context.Context, report *models.SignalReport) {
	rec := report.Recommendation
	if uc.metrics != nil {
		uc.metrics.RecordRecommendation(report.Symbol, report.Timeframe, rec.Direction, rec.Confidence)
	}
	uc.log.Info("signal generated",
		applogger.String("symbol", report.Symbol),
		applogger.String("timeframe", report.Timeframe),
		applogger.String("direction", string(rec.Direction)),
		applogger.Float64("confidence", rec.Confidence))

	if uc.recorder != nil {
		if err := uc.recorder.Record(ctx, report); err != nil {
			uc.fail("record")
			uc.log.Error("record report failed", applogger.String("id", report.ID), applogger.Error(err))
		}
	}
	if uc.publisher != nil {
		if err := uc.publisher.PublishReport(ctx, report); err != nil {
			uc.fail("publish")
			uc.log.Error("publish report failed", applogger.String("id", report.ID), applogger.Error(err))
		}
	}
}

func (uc *InsightsUseCase) latency(op string, start time.Time) {
	if uc.metrics != nil {
		uc.metrics.RecordLatency(op, time.Since(start).Seconds())
	}
}

func (uc *InsightsUseCase) fail(op string) {
	if uc.metrics != nil {
		uc.metrics.RecordError(op)
	}
}
