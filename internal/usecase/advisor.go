package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CryptoSignal/internal/domain/models"
	domrepo "CryptoSignal/internal/domain/repository"
	"CryptoSignal/internal/services/analyzers"
	"CryptoSignal/internal/services/fusion"
)

const (
	MethodTechnical = "Technical Analysis"
	MethodMomentum  = "Momentum Model"
	MethodML        = "Enhanced ML Analysis"

	momentumBars      = 5
	momentumThreshold = 5.0 // percent
)

// Methods lists the advisor methods in presentation order.
var Methods = []string{MethodTechnical, MethodMomentum, MethodML}

// AdvisorUseCase produces one view per analysis method over a shared series
// and votes a consensus view across them.
type AdvisorUseCase struct {
	insights *InsightsUseCase
	timeout  time.Duration
}

func NewAdvisorUseCase(insights *InsightsUseCase) *AdvisorUseCase {
	return &AdvisorUseCase{insights: insights, timeout: 30 * time.Second}
}

type AdviceParams struct {
	Coin      string
	Timeframe string
	Methods   []string
}

func (uc *AdvisorUseCase) Advise(ctx context.Context, p AdviceParams) (*models.Advice, error) {
	if p.Coin == "" {
		return nil, fmt.Errorf("coin required: %w", models.ErrInvalidParameter)
	}
	tf, err := domrepo.ParseTimeframe(p.Timeframe)
	if err != nil {
		return nil, err
	}
	methods := p.Methods
	if len(methods) == 0 {
		methods = Methods
	}
	for _, m := range methods {
		if !knownMethod(m) {
			return nil, fmt.Errorf("method %q: %w", m, models.ErrInvalidParameter)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &models.Advice{Coin: p.Coin, Timeframe: string(tf), Errors: map[string]string{}}
	candles, err := uc.insights.Candles(ctx, p.Coin, tf)
	if err != nil {
		res.Errors["market_data"] = err.Error()
		candles = nil
	}

	type item struct {
		idx  int
		view models.AdvisorView
		err  error
	}
	ch := make(chan item, len(methods))
	var wg sync.WaitGroup
	for i, m := range methods {
		wg.Add(1)
		go func(i int, m string) {
			defer wg.Done()
			v, err := uc.view(ctx, m, p.Coin, string(tf), candles)
			ch <- item{i, v, err}
		}(i, m)
	}
	go func() { wg.Wait(); close(ch) }()

	views := make([]models.AdvisorView, len(methods))
	for it := range ch {
		if it.err != nil {
			res.Errors[methods[it.idx]] = it.err.Error()
		}
		views[it.idx] = it.view
	}
	res.Views = views
	res.Consensus = fusion.ConsensusView(views)
	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

func (uc *AdvisorUseCase) view(ctx context.Context, method, coin, tf string, candles []models.Candle) (models.AdvisorView, error) {
	closes := models.Closes(candles)
	switch method {
	case MethodTechnical:
		return TechnicalView(closes), nil
	case MethodMomentum:
		return MomentumView(closes), nil
	default:
		if len(candles) == 0 {
			return MLView(nil, fmt.Sprintf("failed to fetch OHLCV data for %s", coin)), nil
		}
		report, err := uc.insights.AnalyzeCandles(ctx, coin, tf, candles)
		if err != nil {
			return MLView(nil, err.Error()), err
		}
		return MLView(report, report.Error), nil
	}
}

func knownMethod(m string) bool {
	for _, k := range Methods {
		if k == m {
			return true
		}
	}
	return false
}

func neutralView(method string) models.AdvisorView {
	return models.AdvisorView{
		Method:     method,
		Short:      "Neutral",
		Medium:     "Neutral",
		Long:       "Neutral",
		Buy:        "No",
		Sell:       "No",
		Suggestion: method + " Hold",
		Reason:     method + " analysis completed",
		Direction:  models.Hold,
	}
}

// TechnicalView calls a strong buy or sell only when the RSI zone and the
// MA crossover agree.
func TechnicalView(closes []float64) models.AdvisorView {
	v := neutralView(MethodTechnical)
	if len(closes) == 0 {
		v.Reason = MethodTechnical + ": Insufficient data"
		return v
	}
	s := analyzers.BasicSignals(closes, InsightsWindow)
	rsi := 50.0
	if s.RSI.Value.Valid {
		rsi = s.RSI.Value.V
	}
	switch {
	case s.RSI.Signal == "buy" && s.MA.Signal == "buy":
		v.Suggestion = "Strong Buy"
		v.Reason = fmt.Sprintf("Both RSI (%.1f) and MA confirm oversold conditions", rsi)
		v.Short, v.Medium, v.Long = "Bullish reversal", "Upward trend likely", "Depends on fundamentals"
		v.Buy, v.Direction, v.Confidence = "Yes", models.Buy, 1
	case s.RSI.Signal == "sell" && s.MA.Signal == "sell":
		v.Suggestion = "Strong Sell"
		v.Reason = fmt.Sprintf("Both RSI (%.1f) and MA indicate overbought conditions", rsi)
		v.Short, v.Medium, v.Long = "Bearish reversal", "Downward trend likely", "Market correction expected"
		v.Sell, v.Direction, v.Confidence = "Yes", models.Sell, 1
	default:
		v.Suggestion = "Hold"
		v.Reason = fmt.Sprintf("Mixed signals: RSI=%s, MA=%s", s.RSI.Signal, s.MA.Signal)
		v.Short, v.Medium, v.Long = "Range-bound", "Consolidation phase", "Awaiting breakout"
	}
	return v
}

// MomentumView compares the last close with the close momentumBars-1 bars
// earlier.
func MomentumView(closes []float64) models.AdvisorView {
	v := neutralView(MethodMomentum)
	if len(closes) == 0 {
		v.Reason = MethodMomentum + ": Insufficient data"
		return v
	}
	if len(closes) < momentumBars {
		return v
	}
	base := closes[len(closes)-momentumBars]
	change := 0.0
	if base != 0 {
		change = (closes[len(closes)-1] - base) / base * 100
	}
	conf := change / (2 * momentumThreshold)
	if conf < 0 {
		conf = -conf
	}
	if conf > 1 {
		conf = 1
	}
	switch {
	case change > momentumThreshold:
		v.Suggestion = "Momentum Buy"
		v.Reason = fmt.Sprintf("Strong upward momentum: +%.1f%%", change)
		v.Short, v.Medium, v.Long = "Continuation expected", "Strong uptrend", "Momentum-driven growth"
		v.Buy, v.Direction, v.Confidence = "Yes", models.Buy, conf
	case change < -momentumThreshold:
		v.Suggestion = "Momentum Sell"
		v.Reason = fmt.Sprintf("Strong downward momentum: %.1f%%", change)
		v.Short, v.Medium, v.Long = "Further decline likely", "Downtrend continues", "Bearish momentum"
		v.Sell, v.Direction, v.Confidence = "Yes", models.Sell, conf
	}
	return v
}

// MLView renders a signal report as an advisor view. A nil report or a
// report carrying an error yields the data-unavailable view.
func MLView(report *models.SignalReport, errMsg string) models.AdvisorView {
	if report == nil || errMsg != "" {
		return models.AdvisorView{
			Method:     MethodML,
			Short:      "Data unavailable",
			Medium:     "Cannot analyze",
			Long:       "Insufficient data",
			Buy:        "No",
			Sell:       "No",
			Suggestion: "Hold - Data Error",
			Reason:     errMsg,
			Direction:  models.Hold,
		}
	}
	rec := report.Recommendation
	conf := "Low confidence"
	if rec.Confidence > 0 {
		conf = fmt.Sprintf("%.0f%% confidence", rec.Confidence*100)
	}
	v := models.AdvisorView{
		Method:     MethodML,
		Short:      report.Outlook.Short,
		Medium:     report.Outlook.Medium,
		Long:       report.Outlook.Long,
		Buy:        "No",
		Sell:       "No",
		Reason:     report.Reasoning,
		Direction:  rec.Direction,
		Confidence: rec.Confidence,
	}
	switch rec.Direction {
	case models.Buy:
		v.Buy = "Yes"
		v.Suggestion = fmt.Sprintf("ML Buy [%s]", conf)
	case models.Sell:
		v.Sell = "Yes"
		v.Suggestion = fmt.Sprintf("ML Sell [%s]", conf)
	default:
		v.Suggestion = fmt.Sprintf("ML Hold [%s]", conf)
	}
	return v
}
