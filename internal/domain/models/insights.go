package models

import "time"

// Insights is the raw indicator snapshot for one coin and timeframe.
type Insights struct {
	Method        string    `json:"method"`
	Coin          string    `json:"coin_id"`
	Timeframe     string    `json:"timeframe"`
	DataAvailable bool      `json:"data_available"`
	DataPoints    int       `json:"data_points"`
	High          Value     `json:"high"`
	Low           Value     `json:"low"`
	RSI           Value     `json:"rsi_value"`
	MA            Value     `json:"ma_value"`
	Volatility    float64   `json:"realized_volatility"`
	Candles       []Candle  `json:"ohlcv_array,omitempty"`
	At            time.Time `json:"at"`
	Error         string    `json:"error,omitempty"`
}

// BasicSignal is a lowercase buy/sell/hold/unknown call with its indicator value.
type BasicSignal struct {
	Signal string `json:"signal"`
	Value  Value  `json:"value"`
}

// BasicSignals pairs the RSI and moving-average calls.
type BasicSignals struct {
	RSI BasicSignal `json:"rsi"`
	MA  BasicSignal `json:"ma"`
}

// AdvisorView is one method's recommendation in advisor form.
type AdvisorView struct {
	Method     string    `json:"method"`
	Short      string    `json:"short"`
	Medium     string    `json:"medium"`
	Long       string    `json:"long"`
	Buy        string    `json:"buy"`
	Sell       string    `json:"sell"`
	Suggestion string    `json:"suggestion"`
	Reason     string    `json:"reason"`
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"`
}

// Advice groups the per-method views with their plurality consensus.
type Advice struct {
	Coin      string            `json:"coin_id"`
	Timeframe string            `json:"timeframe"`
	Views     []AdvisorView     `json:"views"`
	Consensus AdvisorView       `json:"consensus"`
	Errors    map[string]string `json:"errors,omitempty"`
}
