package indicators

import "CryptoSignal/internal/domain/models"

const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// MACDResult holds the MACD line, its signal line and the histogram.
type MACDResult struct {
	Line      models.Series `json:"macd"`
	Signal    models.Series `json:"signal"`
	Histogram models.Series `json:"histogram"`
}

// MACD computes EMA(fast) - EMA(slow). The signal line is the EMA of the
// defined MACD values, aligned to the right end of the input.
func MACD(prices []float64, fast, slow, signal int) MACDResult {
	n := len(prices)
	res := MACDResult{
		Line:      models.NewSeries(n),
		Signal:    models.NewSeries(n),
		Histogram: models.NewSeries(n),
	}
	if fast <= 0 || slow <= 0 || signal <= 0 || n < slow {
		return res
	}

	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)
	for i := 0; i < n; i++ {
		if fastEMA[i].Valid && slowEMA[i].Valid {
			res.Line[i] = models.Some(fastEMA[i].V - slowEMA[i].V)
		}
	}

	defined := res.Line.Defined()
	if len(defined) < signal {
		return res
	}
	sig := EMA(defined, signal)
	offset := n - len(sig)
	copy(res.Signal[offset:], sig)

	for i := 0; i < n; i++ {
		if res.Line[i].Valid && res.Signal[i].Valid {
			res.Histogram[i] = models.Some(res.Line[i].V - res.Signal[i].V)
		}
	}
	return res
}
