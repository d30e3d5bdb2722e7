package features

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"CryptoSignal/internal/domain/models"
)

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(candles)-1, or nil if insufficient data.
func ComputeLogReturns(candles []models.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		cur := candles[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RealizedVolatility is the annualized sample standard deviation of the
// last window log returns. It returns 0 when there is not enough data.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window || barsPerYear <= 0 {
		return 0
	}
	sd := stat.StdDev(logReturns[len(logReturns)-window:], nil)
	return sd * math.Sqrt(barsPerYear)
}

// BarsPerYear returns the number of candles of the given width in a year.
func BarsPerYear(bucket time.Duration) float64 {
	if bucket <= 0 {
		return 0
	}
	return float64(365*24*time.Hour) / float64(bucket)
}
