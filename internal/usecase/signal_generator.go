package usecase

import (
	"context"
	"fmt"
	"time"

	"CryptoSignal/internal/domain/models"
	domrepo "CryptoSignal/internal/domain/repository"
	"CryptoSignal/internal/services/analyzers"
	"CryptoSignal/internal/services/ensemble"
	"CryptoSignal/internal/services/fusion"
	"CryptoSignal/internal/services/indicators"
	applogger "CryptoSignal/pkg/logger"
)

// MinSignalRecords is the shortest series a full signal run accepts.
const MinSignalRecords = 20

// SignalGenerator wires indicators, analyzers, the ensemble and fusion into
// the analyze and predict entry points. It keeps no per-call state.
type SignalGenerator struct {
	predictor    *ensemble.Predictor
	params       indicators.Params
	weights      fusion.Weights
	trainTimeout time.Duration
	metrics      domrepo.Metrics
	log          *applogger.Logger
}

// GeneratorOption configures SignalGenerator.
type GeneratorOption func(*SignalGenerator)

func WithIndicatorParams(p indicators.Params) GeneratorOption {
	return func(g *SignalGenerator) { g.params = p }
}

func WithWeights(w fusion.Weights) GeneratorOption {
	return func(g *SignalGenerator) {
		if len(w) > 0 {
			g.weights = w
		}
	}
}

// WithTrainTimeout bounds ensemble training. Zero disables the bound.
func WithTrainTimeout(d time.Duration) GeneratorOption {
	return func(g *SignalGenerator) { g.trainTimeout = d }
}

func WithGeneratorMetrics(m domrepo.Metrics) GeneratorOption {
	return func(g *SignalGenerator) { g.metrics = m }
}

func WithGeneratorLogger(l *applogger.Logger) GeneratorOption {
	return func(g *SignalGenerator) {
		if l != nil {
			g.log = l
		}
	}
}

func NewSignalGenerator(predictor *ensemble.Predictor, opts ...GeneratorOption) *SignalGenerator {
	g := &SignalGenerator{
		predictor: predictor,
		params:    indicators.DefaultParams(),
		weights:   fusion.DefaultWeights(),
		log:       applogger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Params returns the indicator parameters in use.
func (g *SignalGenerator) Params() indicators.Params { return g.params }

// Indicators returns every raw indicator series for display.
func (g *SignalGenerator) Indicators(candles []models.Candle) indicators.Snapshot {
	return indicators.Compute(candles, g.params)
}

// Verdicts returns the per-analyzer verdicts.
func (g *SignalGenerator) Verdicts(candles []models.Candle) []models.SignalVerdict {
	return analyzers.All(g.Indicators(candles))
}

// Predict runs the ensemble, bounded by the training timeout.
func (g *SignalGenerator) Predict(ctx context.Context, candles []models.Candle) *models.EnsembleResult {
	return g.predict(ctx, g.predictor, candles)
}

// PredictLookback runs the ensemble with a caller-chosen feature window.
func (g *SignalGenerator) PredictLookback(ctx context.Context, candles []models.Candle, lookback int) *models.EnsembleResult {
	if lookback <= 0 || lookback == g.predictor.Lookback() {
		return g.Predict(ctx, candles)
	}
	return g.predict(ctx, g.predictor.Clone(ensemble.WithLookback(lookback)), candles)
}

func (g *SignalGenerator) predict(ctx context.Context, predictor *ensemble.Predictor, candles []models.Candle) *models.EnsembleResult {
	if g.trainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.trainTimeout)
		defer cancel()
	}
	start := time.Now()
	res := predictor.TrainAndPredict(ctx, candles)
	if g.metrics != nil {
		g.metrics.RecordLatency("ensemble_train", time.Since(start).Seconds())
	}
	for _, m := range res.Models {
		if !m.Failed() {
			continue
		}
		g.log.Warn("ensemble model degraded", applogger.String("model", m.Name), applogger.Error(m.Err))
		if g.metrics != nil {
			g.metrics.RecordModelFailure(m.Name)
		}
	}
	return res
}

// Analyze runs the full pipeline: indicators, analyzers, the ensemble and
// fusion. Short input yields a HOLD report with zero confidence and an
// error message; it is never an error return.
func (g *SignalGenerator) Analyze(ctx context.Context, candles []models.Candle) *models.SignalReport {
	report := &models.SignalReport{
		GeneratedAt: time.Now().UTC(),
		DataPoints:  len(candles),
	}
	if len(candles) < MinSignalRecords {
		report.Recommendation = models.FusedRecommendation{Direction: models.Hold}
		report.Error = fmt.Sprintf("insufficient data for signal generation: need at least %d records, got %d",
			MinSignalRecords, len(candles))
		return report
	}

	verdicts := g.Verdicts(candles)
	ml := g.Predict(ctx, candles)
	rec := fusion.Fuse(verdicts, ml, g.weights)

	report.Recommendation = rec
	report.Ensemble = ml
	report.Outlook = fusion.Outlook(rec.Verdicts, ml)
	report.Reasoning = fusion.MLReasoning(ml, rec.Rationale, len(candles))
	return report
}
