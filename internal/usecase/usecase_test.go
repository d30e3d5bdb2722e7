package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"CryptoSignal/internal/domain/models"
	domrepo "CryptoSignal/internal/domain/repository"
	"CryptoSignal/internal/domain/service"
	"CryptoSignal/internal/service/cache"
	"CryptoSignal/internal/services/ensemble"
)

func candles(n int) []models.Candle {
	out := make([]models.Candle, n)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		c := 100 + 5*math.Sin(float64(i)/3) + float64(i)*0.2
		out[i] = models.Candle{
			Bucket: t0.Add(time.Duration(i) * time.Hour),
			Symbol: "bitcoin",
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000 + float64((i*37)%200),
		}
	}
	return out
}

func linearOnly() []ensemble.Entry {
	return []ensemble.Entry{
		{Name: "linear_regression", Factory: func() service.Regressor { return ensemble.NewLinearRegression() }},
		{Name: "ridge", Factory: func() service.Regressor { return ensemble.NewRidge(1) }},
	}
}

func newGenerator() *SignalGenerator {
	return NewSignalGenerator(ensemble.NewPredictor(ensemble.WithRegistry(linearOnly()), ensemble.WithLookback(20)))
}

type fakeProvider struct {
	data map[string][]models.Candle
	err  error
}

func (p *fakeProvider) Fetch(_ context.Context, coin string, _ domrepo.Timeframe) ([]models.Candle, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.data[coin], nil
}

type fakeSink struct {
	mu        sync.Mutex
	recorded  []*models.SignalReport
	published []*models.SignalReport
}

func (s *fakeSink) Record(_ context.Context, r *models.SignalReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded = append(s.recorded, r)
	return nil
}

func (s *fakeSink) Recent(_ context.Context, coin string, limit int) ([]models.SignalReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SignalReport
	for i := len(s.recorded) - 1; i >= 0 && len(out) < limit; i-- {
		if s.recorded[i].Symbol == coin {
			out = append(out, *s.recorded[i])
		}
	}
	return out, nil
}

func (s *fakeSink) PublishReport(_ context.Context, r *models.SignalReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, r)
	return nil
}

func (s *fakeSink) Close() error { return nil }

type countingMetrics struct {
	mu              sync.Mutex
	errors          map[string]int
	recommendations int
}

func (m *countingMetrics) RecordLatency(string, float64) {}
func (m *countingMetrics) RecordModelFailure(string)     {}
func (m *countingMetrics) RecordError(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errors == nil {
		m.errors = map[string]int{}
	}
	m.errors[op]++
}
func (m *countingMetrics) RecordRecommendation(string, string, models.Direction, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recommendations++
}

func TestAnalyze_TooFewRecords(t *testing.T) {
	r := newGenerator().Analyze(context.Background(), candles(MinSignalRecords-1))
	if r.Recommendation.Direction != models.Hold || r.Recommendation.Confidence != 0 {
		t.Fatalf("got %s/%.2f, want HOLD/0", r.Recommendation.Direction, r.Recommendation.Confidence)
	}
	if !strings.Contains(r.Error, "insufficient data for signal generation") {
		t.Fatalf("unexpected error %q", r.Error)
	}
	if r.Ensemble != nil {
		t.Fatal("ensemble should not run on short input")
	}
}

func TestAnalyze_FullPipeline(t *testing.T) {
	r := newGenerator().Analyze(context.Background(), candles(80))
	if r.Error != "" {
		t.Fatalf("unexpected error %q", r.Error)
	}
	rec := r.Recommendation
	switch rec.Direction {
	case models.Buy, models.Sell, models.Hold:
	default:
		t.Fatalf("bad direction %q", rec.Direction)
	}
	if rec.Confidence < 0 || rec.Confidence > 1 {
		t.Fatalf("confidence %.3f out of range", rec.Confidence)
	}
	if !r.Ensemble.OK() {
		t.Fatalf("ensemble status %s: %s", r.Ensemble.Status, r.Ensemble.Error)
	}
	if len(rec.Verdicts) != 5 {
		t.Fatalf("expected 4 technical verdicts plus ML, got %d", len(rec.Verdicts))
	}
	if rec.Verdicts[4].Name != models.SignalML {
		t.Fatalf("ML verdict should be last, got %s", rec.Verdicts[4].Name)
	}
	if r.Outlook.Long == "" || !strings.Contains(r.Reasoning, "Analysis based on 80 data points") {
		t.Fatalf("missing narrative: %+v / %q", r.Outlook, r.Reasoning)
	}
}

func TestInsights_UnsupportedTimeframe(t *testing.T) {
	uc := NewInsightsUseCase(&fakeProvider{}, newGenerator())
	_, err := uc.Insights(context.Background(), "bitcoin", "5m")
	if !errors.Is(err, models.ErrUnsupportedTimeframe) {
		t.Fatalf("got %v, want ErrUnsupportedTimeframe", err)
	}
}

func TestInsights_NoData(t *testing.T) {
	uc := NewInsightsUseCase(&fakeProvider{}, newGenerator())
	in, err := uc.Insights(context.Background(), "dogecoin", "24h")
	if err != nil {
		t.Fatal(err)
	}
	if in.DataAvailable || in.Error == "" {
		t.Fatalf("expected unavailable insight with error, got %+v", in)
	}
}

func TestInsights_ProviderFailureCounted(t *testing.T) {
	m := &countingMetrics{}
	uc := NewInsightsUseCase(&fakeProvider{err: errors.New("boom")}, newGenerator(), WithInsightsMetrics(m))
	in, err := uc.Insights(context.Background(), "bitcoin", "7d")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(in.Error, "boom") {
		t.Fatalf("provider error not surfaced: %q", in.Error)
	}
	if m.errors["fetch"] != 1 {
		t.Fatalf("fetch errors = %d, want 1", m.errors["fetch"])
	}
}

func TestInsights_Snapshot(t *testing.T) {
	data := candles(30)
	uc := NewInsightsUseCase(&fakeProvider{data: map[string][]models.Candle{"bitcoin": data}}, newGenerator())
	in, err := uc.Insights(context.Background(), "bitcoin", "")
	if err != nil {
		t.Fatal(err)
	}
	if in.Timeframe != "7d" || in.DataPoints != 30 || !in.DataAvailable {
		t.Fatalf("bad header %+v", in)
	}
	hi, lo := math.Inf(-1), math.Inf(1)
	for _, c := range data {
		hi = math.Max(hi, c.Close)
		lo = math.Min(lo, c.Close)
	}
	if in.High.V != hi || in.Low.V != lo {
		t.Fatalf("high/low = %v/%v, want %v/%v", in.High.V, in.Low.V, hi, lo)
	}
	if !in.RSI.Valid || in.RSI.V < 0 || in.RSI.V > 100 {
		t.Fatalf("bad RSI %+v", in.RSI)
	}
	if !in.MA.Valid {
		t.Fatal("MA should be defined for 30 closes")
	}
	if in.Volatility <= 0 {
		t.Fatalf("volatility %.4f should be positive", in.Volatility)
	}
}

func TestReport_CachedAndEmittedOnce(t *testing.T) {
	sink := &fakeSink{}
	m := &countingMetrics{}
	uc := NewInsightsUseCase(
		&fakeProvider{data: map[string][]models.Candle{"bitcoin": candles(60)}},
		newGenerator(),
		WithReportCache(cache.NewTTLCache(), time.Minute),
		WithRecorder(sink),
		WithPublisher(sink),
		WithInsightsMetrics(m),
	)
	ctx := context.Background()
	first, err := uc.Report(ctx, "bitcoin", "24h")
	if err != nil {
		t.Fatal(err)
	}
	second, err := uc.Report(ctx, "bitcoin", "24h")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == "" || first.ID != second.ID {
		t.Fatalf("expected cached report, ids %q and %q", first.ID, second.ID)
	}
	if len(sink.recorded) != 1 || len(sink.published) != 1 || m.recommendations != 1 {
		t.Fatalf("recorded=%d published=%d recommendations=%d, want 1 each",
			len(sink.recorded), len(sink.published), m.recommendations)
	}
	hist, err := uc.History(ctx, "bitcoin", 5)
	if err != nil || len(hist) != 1 || hist[0].ID != first.ID {
		t.Fatalf("history = %+v, err %v", hist, err)
	}
}

func TestReport_NoDataIsHold(t *testing.T) {
	sink := &fakeSink{}
	uc := NewInsightsUseCase(&fakeProvider{}, newGenerator(), WithRecorder(sink))
	r, err := uc.Report(context.Background(), "nothing", "1h")
	if err != nil {
		t.Fatal(err)
	}
	if r.Recommendation.Direction != models.Hold || r.Error == "" {
		t.Fatalf("got %+v", r)
	}
	if len(sink.recorded) != 0 {
		t.Fatal("failed reports must not be recorded")
	}
}

func TestTechnicalView(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   models.Direction
		sugg   string
	}{
		{"empty", nil, models.Hold, MethodTechnical + " Hold"},
		{"balanced", alternating(30), models.Hold, "Hold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := TechnicalView(tt.closes)
			if v.Direction != tt.want || v.Suggestion != tt.sugg {
				t.Fatalf("got %s %q, want %s %q", v.Direction, v.Suggestion, tt.want, tt.sugg)
			}
		})
	}
}

// alternating moves up and down by the same step, which pins RSI at 50.
func alternating(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i%2)
	}
	return out
}

func TestMomentumView(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   models.Direction
		reason string
	}{
		{"up", []float64{100, 101, 102, 104, 110}, models.Buy, "Strong upward momentum: +10.0%"},
		{"down", []float64{100, 99, 97, 95, 90}, models.Sell, "Strong downward momentum: -10.0%"},
		{"flat", []float64{100, 101, 100, 101, 102}, models.Hold, MethodMomentum + " analysis completed"},
		{"short", []float64{100, 200}, models.Hold, MethodMomentum + " analysis completed"},
		{"empty", nil, models.Hold, MethodMomentum + ": Insufficient data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := MomentumView(tt.closes)
			if v.Direction != tt.want || v.Reason != tt.reason {
				t.Fatalf("got %s %q, want %s %q", v.Direction, v.Reason, tt.want, tt.reason)
			}
		})
	}
}

func TestMLView(t *testing.T) {
	v := MLView(nil, "no data")
	if v.Suggestion != "Hold - Data Error" || v.Reason != "no data" {
		t.Fatalf("got %+v", v)
	}
	r := &models.SignalReport{
		Recommendation: models.FusedRecommendation{Direction: models.Buy, Confidence: 0.62},
		Outlook:        models.Outlook{Short: "a", Medium: "b", Long: "c"},
	}
	v = MLView(r, "")
	if v.Suggestion != "ML Buy [62% confidence]" || v.Buy != "Yes" || v.Sell != "No" {
		t.Fatalf("got %+v", v)
	}
	r.Recommendation = models.FusedRecommendation{Direction: models.Hold}
	if v = MLView(r, ""); v.Suggestion != "ML Hold [Low confidence]" {
		t.Fatalf("got %q", v.Suggestion)
	}
}

func TestAdvise(t *testing.T) {
	uc := NewAdvisorUseCase(NewInsightsUseCase(
		&fakeProvider{data: map[string][]models.Candle{"bitcoin": candles(60)}}, newGenerator()))
	adv, err := uc.Advise(context.Background(), AdviceParams{Coin: "bitcoin", Timeframe: "30d"})
	if err != nil {
		t.Fatal(err)
	}
	if len(adv.Views) != len(Methods) {
		t.Fatalf("got %d views", len(adv.Views))
	}
	for i, m := range Methods {
		if adv.Views[i].Method != m {
			t.Fatalf("view %d is %q, want %q", i, adv.Views[i].Method, m)
		}
	}
	if adv.Consensus.Method != "Consensus" {
		t.Fatalf("consensus method %q", adv.Consensus.Method)
	}
	if adv.Errors != nil {
		t.Fatalf("unexpected errors %v", adv.Errors)
	}
}

func TestAdvise_Validation(t *testing.T) {
	uc := NewAdvisorUseCase(NewInsightsUseCase(&fakeProvider{}, newGenerator()))
	if _, err := uc.Advise(context.Background(), AdviceParams{Coin: "bitcoin", Methods: []string{"Astrology"}}); !errors.Is(err, models.ErrInvalidParameter) {
		t.Fatalf("got %v, want ErrInvalidParameter", err)
	}
	if _, err := uc.Advise(context.Background(), AdviceParams{Coin: "bitcoin", Timeframe: "2w"}); !errors.Is(err, models.ErrUnsupportedTimeframe) {
		t.Fatalf("got %v, want ErrUnsupportedTimeframe", err)
	}
}

func TestAdvise_NoDataStillVotes(t *testing.T) {
	uc := NewAdvisorUseCase(NewInsightsUseCase(&fakeProvider{}, newGenerator()))
	adv, err := uc.Advise(context.Background(), AdviceParams{Coin: "ghost", Timeframe: "1h"})
	if err != nil {
		t.Fatal(err)
	}
	if adv.Errors["market_data"] == "" {
		t.Fatal("expected market_data error")
	}
	if adv.Consensus.Direction != models.Hold {
		t.Fatalf("consensus %s, want HOLD", adv.Consensus.Direction)
	}
}

func TestScanner_ScanOnce(t *testing.T) {
	uc := NewInsightsUseCase(&fakeProvider{data: map[string][]models.Candle{
		"bitcoin":  candles(40),
		"ethereum": candles(45),
	}}, newGenerator())
	s := NewScanner(uc, ScanConfig{Cron: "@every 1h", Coins: []string{"bitcoin", "ethereum", "ghost"}, Timeframe: "24h", Concurrency: 2}, nil)
	if err := s.ScanOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, coin := range []string{"bitcoin", "ethereum"} {
		r, ok := s.Latest(coin)
		if !ok || r.Symbol != coin {
			t.Fatalf("%s: missing report", coin)
		}
	}
	if r, ok := s.Latest("ghost"); !ok || r.Error == "" {
		t.Fatal("coin without data should still produce an error report")
	}
}

func TestScanner_LockSkipsConcurrentRun(t *testing.T) {
	uc := NewInsightsUseCase(&fakeProvider{data: map[string][]models.Candle{"bitcoin": candles(40)}}, newGenerator())
	s := NewScanner(uc, ScanConfig{Coins: []string{"bitcoin"}, Timeframe: "24h"}, nil)
	lock := cache.NewTTLCache()
	s.SetLock(lock, time.Minute)
	ctx := context.Background()

	if ok, _ := lock.TryLock(ctx, scanLockKey, time.Minute); !ok {
		t.Fatal("could not take lock")
	}
	if err := s.ScanOnce(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Latest("bitcoin"); ok {
		t.Fatal("scan should be skipped while the lock is held")
	}

	_ = lock.Unlock(ctx, scanLockKey)
	if err := s.ScanOnce(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Latest("bitcoin"); !ok {
		t.Fatal("scan should run once the lock is free")
	}
	if ok, _ := lock.TryLock(ctx, scanLockKey, time.Minute); !ok {
		t.Fatal("scan should release its lock")
	}
}

func TestScanner_BadCron(t *testing.T) {
	s := NewScanner(nil, ScanConfig{Cron: "not a cron"}, nil)
	if err := s.Register(context.Background()); err == nil {
		t.Fatal("expected register error")
	}
}

func TestAnalysisRequestHandler(t *testing.T) {
	sink := &fakeSink{}
	uc := NewInsightsUseCase(&fakeProvider{data: map[string][]models.Candle{"bitcoin": candles(50)}},
		newGenerator(), WithPublisher(sink))
	h := NewAnalysisRequestHandler("requests", uc, nil)
	if h.Topic() != "requests" {
		t.Fatalf("topic %q", h.Topic())
	}
	if err := h.Handle(context.Background(), []byte(`{"coin":"bitcoin","tf":"24h"}`)); err != nil {
		t.Fatal(err)
	}
	if len(sink.published) != 1 || sink.published[0].Timeframe != "24h" {
		t.Fatalf("published %+v", sink.published)
	}
	tests := []struct {
		name string
		body string
		want error
	}{
		{"bad json", `{`, nil},
		{"no coin", `{"tf":"7d"}`, models.ErrInvalidParameter},
		{"bad timeframe", `{"coin":"bitcoin","tf":"3m"}`, models.ErrUnsupportedTimeframe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Handle(context.Background(), []byte(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}
