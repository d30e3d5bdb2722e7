package indicators

import (
	"gonum.org/v1/gonum/floats"

	"CryptoSignal/internal/domain/models"
)

const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"

	maxVolumeWindow = 20
	trendSpan       = 5
)

// VolumeStats holds the volume-derived indicators. Empty input yields the
// zero value.
type VolumeStats struct {
	MA        models.Series `json:"volume_ma"`
	OBV       []float64     `json:"obv"`
	VPT       []float64     `json:"vpt"`
	AvgVolume float64       `json:"avg_volume"`
	Trend     string        `json:"volume_trend"`
}

// Empty reports whether the stats were computed from no data.
func (v VolumeStats) Empty() bool { return v.Trend == "" }

// Volume computes the volume moving average (window min(20, n)), on-balance
// volume, volume-price trend, the average volume and the 5-bar volume trend.
func Volume(candles []models.Candle) VolumeStats {
	n := len(candles)
	if n == 0 {
		return VolumeStats{}
	}
	volumes := models.Volumes(candles)
	closes := models.Closes(candles)

	window := maxVolumeWindow
	if n < window {
		window = n
	}
	stats := VolumeStats{
		MA:        MovingAverage(volumes, window),
		OBV:       make([]float64, n),
		VPT:       make([]float64, n),
		AvgVolume: floats.Sum(volumes) / float64(n),
	}

	for i := 1; i < n; i++ {
		switch {
		case closes[i] > closes[i-1]:
			stats.OBV[i] = stats.OBV[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			stats.OBV[i] = stats.OBV[i-1] - volumes[i]
		default:
			stats.OBV[i] = stats.OBV[i-1]
		}

		stats.VPT[i] = stats.VPT[i-1]
		if closes[i-1] != 0 {
			stats.VPT[i] += volumes[i] * (closes[i] - closes[i-1]) / closes[i-1]
		}
	}

	stats.Trend = volumeTrend(volumes)
	return stats
}

// volumeTrend compares the sum of the last five volumes with the five before.
func volumeTrend(volumes []float64) string {
	n := len(volumes)
	recentStart := max(0, n-trendSpan)
	prevStart := max(0, n-2*trendSpan)
	if floats.Sum(volumes[recentStart:]) > floats.Sum(volumes[prevStart:recentStart]) {
		return TrendIncreasing
	}
	return TrendDecreasing
}
