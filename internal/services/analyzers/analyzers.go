// Package analyzers turns the latest indicator points into verdicts.
package analyzers

import (
	"fmt"

	"CryptoSignal/internal/domain/models"
	"CryptoSignal/internal/services/indicators"
)

const priceTrendSpan = 5

func verdict(name string, d models.Direction, strength float64, reason string) models.SignalVerdict {
	return models.SignalVerdict{Name: name, Direction: d, Strength: strength, Rationale: reason}
}

// Bollinger compares the latest close with the latest bands.
func Bollinger(closes []float64, b indicators.Bands) models.SignalVerdict {
	const name = models.SignalBollinger
	if len(closes) < 2 {
		return verdict(name, models.Hold, 0, "Insufficient data")
	}
	upper, middle, lower := b.Upper.Last(), b.Middle.Last(), b.Lower.Last()
	if !upper.Valid || !middle.Valid || !lower.Valid {
		return verdict(name, models.Hold, 0, "Insufficient historical data")
	}

	price := closes[len(closes)-1]
	switch {
	case price <= lower.V:
		return verdict(name, models.Buy, 0.8, "Price touching lower Bollinger Band (oversold)")
	case price >= upper.V:
		return verdict(name, models.Sell, 0.8, "Price touching upper Bollinger Band (overbought)")
	case price > middle.V:
		return verdict(name, models.Hold, 0.3, "Price above middle band (bullish bias)")
	default:
		return verdict(name, models.Hold, 0.3, "Price below middle band (bearish bias)")
	}
}

// MACD looks for a crossover between the last two points.
func MACD(m indicators.MACDResult) models.SignalVerdict {
	const name = models.SignalMACD
	if len(m.Line) < 2 {
		return verdict(name, models.Hold, 0, "Insufficient MACD data")
	}
	cur, prev := m.Line.At(-1), m.Line.At(-2)
	curSig, prevSig := m.Signal.At(-1), m.Signal.At(-2)
	if !cur.Valid || !prev.Valid || !curSig.Valid || !prevSig.Valid {
		return verdict(name, models.Hold, 0, "Insufficient MACD historical data")
	}

	switch {
	case prev.V <= prevSig.V && cur.V > curSig.V:
		return verdict(name, models.Buy, 0.7, "MACD bullish crossover")
	case prev.V >= prevSig.V && cur.V < curSig.V:
		return verdict(name, models.Sell, 0.7, "MACD bearish crossover")
	case cur.V > curSig.V:
		return verdict(name, models.Hold, 0.4, "MACD above signal line (bullish momentum)")
	default:
		return verdict(name, models.Hold, 0.4, "MACD below signal line (bearish momentum)")
	}
}

// Stochastic flags oversold and overbought zones.
func Stochastic(s indicators.StochasticResult) models.SignalVerdict {
	const name = models.SignalStochastic
	if len(s.K) < 2 || len(s.D) == 0 {
		return verdict(name, models.Hold, 0, "Insufficient stochastic data")
	}
	k, d := s.K.Last(), s.D.Last()
	if !k.Valid || !d.Valid {
		return verdict(name, models.Hold, 0, "Insufficient stochastic historical data")
	}

	switch {
	case k.V < 20 && d.V < 20:
		return verdict(name, models.Buy, 0.6, "Stochastic oversold condition")
	case k.V > 80 && d.V > 80:
		return verdict(name, models.Sell, 0.6, "Stochastic overbought condition")
	default:
		return verdict(name, models.Hold, 0.2, fmt.Sprintf("Stochastic neutral (%%K: %.1f, %%D: %.1f)", k.V, d.V))
	}
}

// Volume checks whether volume confirms the 5-bar price direction.
func Volume(v indicators.VolumeStats, closes []float64) models.SignalVerdict {
	const name = models.SignalVolume
	if v.Empty() || len(closes) == 0 {
		return verdict(name, models.Hold, 0, "No volume data available")
	}
	if len(closes) < priceTrendSpan {
		return verdict(name, models.Hold, 0.1, "Insufficient price data for volume analysis")
	}

	priceTrend := indicators.TrendDecreasing
	if closes[len(closes)-1] > closes[len(closes)-priceTrendSpan] {
		priceTrend = indicators.TrendIncreasing
	}
	switch {
	case priceTrend == indicators.TrendIncreasing && v.Trend == indicators.TrendIncreasing:
		return verdict(name, models.Buy, 0.5, "Rising price with increasing volume")
	case priceTrend == indicators.TrendDecreasing && v.Trend == indicators.TrendIncreasing:
		return verdict(name, models.Sell, 0.5, "Falling price with increasing volume")
	default:
		return verdict(name, models.Hold, 0.2, fmt.Sprintf("Price %s, volume %s", priceTrend, v.Trend))
	}
}

// All runs every technical analyzer over a snapshot, in fusion order.
func All(s indicators.Snapshot) []models.SignalVerdict {
	return []models.SignalVerdict{
		Bollinger(s.Closes, s.Bollinger),
		MACD(s.MACD),
		Stochastic(s.Stochastic),
		Volume(s.Volume, s.Closes),
	}
}
