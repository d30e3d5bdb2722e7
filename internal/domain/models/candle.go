package models

import "time"

// Candle represents one OHLCV record. Volume may be 0 when the source has no
// volume data.
type Candle struct {
	Bucket time.Time `json:"bucket" ch:"bucket"`
	Symbol string    `json:"symbol,omitempty" ch:"symbol"`
	Open   float64   `json:"open" ch:"open"`
	High   float64   `json:"high" ch:"high"`
	Low    float64   `json:"low" ch:"low"`
	Close  float64   `json:"close" ch:"close"`
	Volume float64   `json:"volume" ch:"volume"`
}

// Closes returns the close prices of the candles in order.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

func Highs(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.High
	}
	return out
}

func Lows(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Low
	}
	return out
}

func Volumes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}
