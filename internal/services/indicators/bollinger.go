package indicators

import (
	"gonum.org/v1/gonum/stat"

	"CryptoSignal/internal/domain/models"
)

const (
	DefaultBollingerWindow = 20
	DefaultBollingerStdDev = 2.0
)

// Bands holds the Bollinger envelope.
type Bands struct {
	Upper  models.Series `json:"upper"`
	Middle models.Series `json:"middle"`
	Lower  models.Series `json:"lower"`
}

// Bollinger computes the trailing mean plus and minus k population standard
// deviations over window prices.
func Bollinger(prices []float64, window int, k float64) Bands {
	n := len(prices)
	b := Bands{
		Upper:  models.NewSeries(n),
		Middle: models.NewSeries(n),
		Lower:  models.NewSeries(n),
	}
	if window <= 0 || n < window {
		return b
	}
	for i := window - 1; i < n; i++ {
		mean, std := stat.PopMeanStdDev(prices[i-window+1:i+1], nil)
		b.Middle[i] = models.Some(mean)
		b.Upper[i] = models.Some(mean + k*std)
		b.Lower[i] = models.Some(mean - k*std)
	}
	return b
}
