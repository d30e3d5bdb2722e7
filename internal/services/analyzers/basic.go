package analyzers

import (
	"CryptoSignal/internal/domain/models"
	"CryptoSignal/internal/services/indicators"
)

const (
	rsiOversold   = 30
	rsiOverbought = 70
)

// BasicSignals derives the RSI zone call and the price/MA crossover call
// using the same window for both indicators.
func BasicSignals(prices []float64, window int) models.BasicSignals {
	var out models.BasicSignals

	rsi := indicators.RSI(prices, window).Last()
	switch {
	case !rsi.Valid:
		out.RSI = models.BasicSignal{Signal: "unknown"}
	case rsi.V < rsiOversold:
		out.RSI = models.BasicSignal{Signal: "buy", Value: rsi}
	case rsi.V > rsiOverbought:
		out.RSI = models.BasicSignal{Signal: "sell", Value: rsi}
	default:
		out.RSI = models.BasicSignal{Signal: "hold", Value: rsi}
	}

	ma := indicators.MovingAverage(prices, window)
	prevMA, curMA := ma.At(-2), ma.At(-1)
	if len(prices) < 2 || !prevMA.Valid {
		out.MA = models.BasicSignal{Signal: "unknown"}
		return out
	}
	prev, cur := prices[len(prices)-2], prices[len(prices)-1]
	switch {
	case prev < prevMA.V && cur > curMA.V:
		out.MA = models.BasicSignal{Signal: "buy", Value: curMA}
	case prev > prevMA.V && cur < curMA.V:
		out.MA = models.BasicSignal{Signal: "sell", Value: curMA}
	default:
		out.MA = models.BasicSignal{Signal: "hold", Value: curMA}
	}
	return out
}
