// Package ensemble trains a fixed bank of regressors on extracted features
// and averages their next-step return predictions.
package ensemble

import (
	"context"
	"fmt"
	"math"
	"sync"

	"CryptoSignal/internal/domain/models"
	"CryptoSignal/internal/domain/service"
	"CryptoSignal/internal/services/features"
)

const (
	DefaultLookback = 50
	// DefaultMaxCandles bounds the series a single run trains on.
	DefaultMaxCandles = 2000
	minSamples        = 5
)

// Predictor runs train-and-predict over a registry of regressors. It holds
// no state between calls and is safe for concurrent use.
type Predictor struct {
	lookback   int
	maxCandles int
	registry   []Entry
	parallel   bool
}

// Option configures Predictor.
type Option func(*Predictor)

// WithLookback sets the feature window length.
func WithLookback(n int) Option {
	return func(p *Predictor) {
		if n > 0 {
			p.lookback = n
		}
	}
}

// WithMaxCandles trims longer input to its most recent n candles before
// training. n <= 0 keeps the default.
func WithMaxCandles(n int) Option {
	return func(p *Predictor) {
		if n > 0 {
			p.maxCandles = n
		}
	}
}

// WithRegistry replaces the default model bank.
func WithRegistry(entries []Entry) Option {
	return func(p *Predictor) { p.registry = entries }
}

// WithParallel trains models concurrently. Results do not depend on it.
func WithParallel(enabled bool) Option {
	return func(p *Predictor) { p.parallel = enabled }
}

func NewPredictor(opts ...Option) *Predictor {
	p := &Predictor{lookback: DefaultLookback, maxCandles: DefaultMaxCandles, registry: DefaultRegistry()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Predictor) Lookback() int { return p.lookback }

// MaxCandles is the longest series a run trains on. It never drops below
// what the lookback needs for the minimum sample count.
func (p *Predictor) MaxCandles() int {
	return max(p.maxCandles, p.lookback+minSamples+1)
}

// Clone returns a copy of p with opts applied. The registry is shared.
func (p *Predictor) Clone(opts ...Option) *Predictor {
	c := *p
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// dataset is the training set derived from a candle series.
type dataset struct {
	X    [][]float64 // scaled training rows
	y    []float64
	last []float64 // scaled most recent feature vector
}

// TrainAndPredict trains every model on forward one-step returns and predicts
// the return following the most recent window. Short input yields an
// insufficient-data result, not an error. Individual model failures degrade
// that model to a zero prediction and score. Series longer than MaxCandles
// are trimmed to their most recent candles. ctx bounds the whole run; models
// not started before it is done, or whose fit observes it, are recorded as
// failures.
func (p *Predictor) TrainAndPredict(ctx context.Context, candles []models.Candle) *models.EnsembleResult {
	if len(candles) < p.lookback {
		return models.InsufficientEnsemble(fmt.Sprintf(
			"insufficient data for ML analysis: need at least %d data points, got %d", p.lookback, len(candles)))
	}
	if limit := p.MaxCandles(); len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	ds, err := p.prepare(candles)
	if err != nil {
		return models.InsufficientEnsemble(err.Error())
	}

	results := p.runModels(ctx, ds)

	res := &models.EnsembleResult{
		Status:            models.StatusOK,
		Predictions:       make(map[string]float64, len(results)+1),
		FeatureImportance: map[string][]float64{},
		ModelScores:       make(map[string]models.ModelScore, len(results)),
		Models:            results,
		SampleSize:        len(ds.X),
		FeatureCount:      len(ds.last),
	}
	var sum float64
	for _, r := range results {
		res.Predictions[r.Name] = r.Prediction
		res.ModelScores[r.Name] = r.Score
		if r.Importances != nil {
			res.FeatureImportance[r.Name] = r.Importances
		}
		sum += r.Prediction
	}
	if len(results) > 0 {
		res.Predictions[models.EnsembleKey] = sum / float64(len(results))
	}
	return res
}

// prepare builds the scaled training set. Only rows with a real forward
// return are used; the final feature vector is kept for inference.
func (p *Predictor) prepare(candles []models.Candle) (*dataset, error) {
	feats := features.Extract(candles, p.lookback)
	if feats == nil {
		return nil, fmt.Errorf("%w: failed to extract features", models.ErrInsufficientData)
	}
	closes := models.Closes(candles)

	var X [][]float64
	var y []float64
	for i := range feats {
		ref := i + p.lookback
		if ref+1 >= len(closes) {
			break
		}
		X = append(X, feats[i])
		y = append(y, forwardReturn(closes[ref], closes[ref+1]))
	}
	if len(X) < minSamples {
		return nil, fmt.Errorf("%w: insufficient valid samples for ML training (%d < %d)",
			models.ErrInsufficientData, len(X), minSamples)
	}

	var scaler StandardScaler
	if err := scaler.Fit(X); err != nil {
		return nil, err
	}
	return &dataset{
		X:    scaler.TransformAll(X),
		y:    y,
		last: scaler.Transform(feats[len(feats)-1]),
	}, nil
}

func forwardReturn(cur, next float64) float64 {
	if cur == 0 {
		return 0
	}
	return (next - cur) / cur
}

func (p *Predictor) runModels(ctx context.Context, ds *dataset) []models.ModelResult {
	results := make([]models.ModelResult, len(p.registry))
	if !p.parallel {
		for i, e := range p.registry {
			results[i] = runModel(ctx, e, ds)
		}
		return results
	}

	type item struct {
		idx int
		res models.ModelResult
	}
	ch := make(chan item, len(p.registry))
	var wg sync.WaitGroup
	for i, e := range p.registry {
		wg.Add(1)
		go func(i int, e Entry) {
			defer wg.Done()
			ch <- item{i, runModel(ctx, e, ds)}
		}(i, e)
	}
	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		results[it.idx] = it.res
	}
	return results
}

// runModel cross-validates, fits and predicts one model. Any error or panic
// becomes a zero result tagged with the model failure.
func runModel(ctx context.Context, e Entry, ds *dataset) (res models.ModelResult) {
	res.Name = e.Name
	defer func() {
		if r := recover(); r != nil {
			res = failed(e.Name, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := ctx.Err(); err != nil {
		return failed(e.Name, err)
	}

	score, err := CrossValidate(ctx, e.Factory, ds.X, ds.y, Folds(len(ds.X)))
	if err != nil {
		return failed(e.Name, err)
	}
	model := e.Factory()
	if err := fit(ctx, model, ds.X, ds.y); err != nil {
		return failed(e.Name, err)
	}
	pred, err := model.Predict(ds.last)
	if err != nil {
		return failed(e.Name, err)
	}
	if math.IsNaN(pred) || math.IsInf(pred, 0) || math.IsNaN(score.Mean) || math.IsNaN(score.Std) {
		return failed(e.Name, fmt.Errorf("non-finite output"))
	}

	res.Score = score
	res.Prediction = pred
	if ir, ok := model.(service.ImportanceReporter); ok {
		res.Importances = append([]float64(nil), ir.FeatureImportances()...)
	}
	return res
}

func failed(name string, err error) models.ModelResult {
	return models.ModelResult{Name: name, Err: fmt.Errorf("%w: %s: %v", models.ErrModelFailure, name, err)}
}
