package indicators

import "CryptoSignal/internal/domain/models"

const DefaultRSIPeriod = 14

// RSI computes the relative strength index from simple averages of the gains
// and losses over each trailing window of period+1 prices. The first period
// points are undefined. A window without losses yields 100.
func RSI(prices []float64, period int) models.Series {
	out := models.NewSeries(len(prices))
	if period <= 0 || len(prices) <= period {
		return out
	}
	for i := period; i < len(prices); i++ {
		out[i] = models.Some(rsiWindow(prices[i-period : i+1]))
	}
	return out
}

// rsiWindow returns the RSI of a window of consecutive prices.
func rsiWindow(w []float64) float64 {
	var gain, loss float64
	for j := 1; j < len(w); j++ {
		d := w[j] - w[j-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	n := float64(len(w) - 1)
	avgGain, avgLoss := gain/n, loss/n
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}
