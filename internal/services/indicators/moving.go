// Package indicators computes classical technical indicators over price and
// OHLCV series. Every function returns a series aligned with its input and
// signals short input with undefined values, never with an error.
package indicators

import (
	"gonum.org/v1/gonum/stat"

	"CryptoSignal/internal/domain/models"
)

// MovingAverage is the trailing arithmetic mean over window prices. The first
// window-1 points are undefined; all points are undefined when the input is
// shorter than window.
func MovingAverage(prices []float64, window int) models.Series {
	out := models.NewSeries(len(prices))
	if window <= 0 || len(prices) < window {
		return out
	}
	for i := window - 1; i < len(prices); i++ {
		out[i] = models.Some(stat.Mean(prices[i-window+1:i+1], nil))
	}
	return out
}

// EMA is the exponential moving average seeded with the simple mean of the
// first window prices, with alpha = 2/(window+1).
func EMA(prices []float64, window int) models.Series {
	out := models.NewSeries(len(prices))
	if window <= 0 || len(prices) < window {
		return out
	}
	alpha := 2.0 / float64(window+1)
	prev := stat.Mean(prices[:window], nil)
	out[window-1] = models.Some(prev)
	for i := window; i < len(prices); i++ {
		prev = alpha*prices[i] + (1-alpha)*prev
		out[i] = models.Some(prev)
	}
	return out
}
