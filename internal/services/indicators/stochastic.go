package indicators

import (
	"gonum.org/v1/gonum/floats"

	"CryptoSignal/internal/domain/models"
)

const (
	DefaultStochasticK = 14
	DefaultStochasticD = 3

	// flatWindowK is reported when the window's high equals its low.
	flatWindowK = 50.0
)

// StochasticResult holds %K and %D.
type StochasticResult struct {
	K models.Series `json:"k"`
	D models.Series `json:"d"`
}

// Stochastic computes %K over kPeriod-wide windows of high/low/close and %D
// as the simple moving average of %K over dPeriod points.
func Stochastic(candles []models.Candle, kPeriod, dPeriod int) StochasticResult {
	n := len(candles)
	res := StochasticResult{K: models.NewSeries(n), D: models.NewSeries(n)}
	if kPeriod <= 0 || dPeriod <= 0 || n < kPeriod {
		return res
	}

	highs := models.Highs(candles)
	lows := models.Lows(candles)
	for i := kPeriod - 1; i < n; i++ {
		hh := floats.Max(highs[i-kPeriod+1 : i+1])
		ll := floats.Min(lows[i-kPeriod+1 : i+1])
		if hh == ll {
			res.K[i] = models.Some(flatWindowK)
			continue
		}
		res.K[i] = models.Some((candles[i].Close - ll) / (hh - ll) * 100)
	}

	first := kPeriod - 1
	kv := res.K[first:].Defined()
	d := MovingAverage(kv, dPeriod)
	copy(res.D[first:], d)
	return res
}
