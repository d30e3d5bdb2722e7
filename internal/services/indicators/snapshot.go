package indicators

import "CryptoSignal/internal/domain/models"

// Params configures the indicator set computed for one analysis run.
type Params struct {
	Window          int     `yaml:"window" default:"14"`
	RSIPeriod       int     `yaml:"rsi_period" default:"14"`
	BollingerWindow int     `yaml:"bollinger_window" default:"20"`
	BollingerStdDev float64 `yaml:"bollinger_std_dev" default:"2"`
	MACDFast        int     `yaml:"macd_fast" default:"12"`
	MACDSlow        int     `yaml:"macd_slow" default:"26"`
	MACDSignal      int     `yaml:"macd_signal" default:"9"`
	StochasticK     int     `yaml:"stochastic_k" default:"14"`
	StochasticD     int     `yaml:"stochastic_d" default:"3"`
}

// DefaultParams returns the standard indicator parameters.
func DefaultParams() Params {
	return Params{
		Window:          14,
		RSIPeriod:       DefaultRSIPeriod,
		BollingerWindow: DefaultBollingerWindow,
		BollingerStdDev: DefaultBollingerStdDev,
		MACDFast:        DefaultMACDFast,
		MACDSlow:        DefaultMACDSlow,
		MACDSignal:      DefaultMACDSignal,
		StochasticK:     DefaultStochasticK,
		StochasticD:     DefaultStochasticD,
	}
}

// Valid reports whether every window is positive and MACD fast < slow.
func (p Params) Valid() bool {
	return p.Window > 0 && p.RSIPeriod > 0 && p.BollingerWindow > 0 && p.BollingerStdDev > 0 &&
		p.MACDFast > 0 && p.MACDSlow > p.MACDFast && p.MACDSignal > 0 &&
		p.StochasticK > 0 && p.StochasticD > 0
}

// Snapshot is every indicator series for one candle series.
type Snapshot struct {
	Closes     []float64        `json:"-"`
	MA         models.Series    `json:"ma"`
	RSI        models.Series    `json:"rsi"`
	Bollinger  Bands            `json:"bollinger_bands"`
	MACD       MACDResult       `json:"macd"`
	Stochastic StochasticResult `json:"stochastic"`
	Volume     VolumeStats      `json:"volume"`
}

// Compute runs the full indicator set.
func Compute(candles []models.Candle, p Params) Snapshot {
	closes := models.Closes(candles)
	return Snapshot{
		Closes:     closes,
		MA:         MovingAverage(closes, p.Window),
		RSI:        RSI(closes, p.RSIPeriod),
		Bollinger:  Bollinger(closes, p.BollingerWindow, p.BollingerStdDev),
		MACD:       MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal),
		Stochastic: Stochastic(candles, p.StochasticK, p.StochasticD),
		Volume:     Volume(candles),
	}
}
