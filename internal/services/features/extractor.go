// Package features builds regression feature vectors from OHLCV history.
package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"CryptoSignal/internal/domain/models"
)

const (
	embeddedRSIWindow = 14
	embeddedRSIMinIdx = 20
	neutralRSI        = 50.0
)

// Names lists the features in vector order.
var Names = []string{
	"close_mean",
	"close_std",
	"high_max",
	"low_min",
	"close_to_mean",
	"return_mean",
	"return_std",
	"return_max",
	"return_min",
	"volume_mean",
	"volume_std",
	"volume_ratio",
	"rsi",
}

// Count is the length of every feature vector.
var Count = len(Names)

// Extract returns one feature vector per index i in [lookback, len(candles)),
// each built from the lookback candles ending at i-1. It returns nil when no
// index is eligible or when any feature is not finite.
func Extract(candles []models.Candle, lookback int) [][]float64 {
	if lookback <= 0 || len(candles) <= lookback {
		return nil
	}
	closes := models.Closes(candles)
	highs := models.Highs(candles)
	lows := models.Lows(candles)
	volumes := models.Volumes(candles)

	out := make([][]float64, 0, len(candles)-lookback)
	for i := lookback; i < len(candles); i++ {
		vec := make([]float64, 0, Count)
		wc := closes[i-lookback : i]
		wv := volumes[i-lookback : i]

		mean, std := stat.PopMeanStdDev(wc, nil)
		vec = append(vec,
			mean,
			std,
			floats.Max(highs[i-lookback:i]),
			floats.Min(lows[i-lookback:i]),
			ratio(closes[i-1], mean),
		)

		vec = append(vec, returnStats(wc)...)

		vmean, vstd := stat.PopMeanStdDev(wv, nil)
		vec = append(vec, vmean, vstd, ratio(volumes[i-1], vmean))

		rsi := neutralRSI
		if i >= embeddedRSIMinIdx {
			rsi = embeddedRSI(closes[i-embeddedRSIWindow : i])
		}
		vec = append(vec, rsi)

		for _, v := range vec {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil
			}
		}
		out = append(out, vec)
	}
	return out
}

func ratio(v, mean float64) float64 {
	if mean == 0 {
		return 1
	}
	return v / mean
}

// returnStats is mean, std, max and min of the period-over-period returns.
// Returns with a zero previous close are skipped.
func returnStats(closes []float64) []float64 {
	returns := make([]float64, 0, len(closes))
	for j := 1; j < len(closes); j++ {
		if closes[j-1] == 0 {
			continue
		}
		returns = append(returns, (closes[j]-closes[j-1])/closes[j-1])
	}
	if len(returns) == 0 {
		return []float64{0, 0, 0, 0}
	}
	mean, std := stat.PopMeanStdDev(returns, nil)
	return []float64{mean, std, floats.Max(returns), floats.Min(returns)}
}

// embeddedRSI is the simple-average RSI over the given closes. A window with
// no losses is treated as neutral.
func embeddedRSI(w []float64) float64 {
	var gain, loss float64
	for j := 1; j < len(w); j++ {
		gain += math.Max(0, w[j]-w[j-1])
		loss += math.Max(0, w[j-1]-w[j])
	}
	if loss == 0 {
		return neutralRSI
	}
	return 100 - 100/(1+gain/loss)
}
