package models

import "time"

// Direction is the recommended action.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
	Hold Direction = "HOLD"
)

// Signal names used as keys for verdicts and fusion weights.
const (
	SignalBollinger  = "bollinger_bands"
	SignalMACD       = "macd"
	SignalStochastic = "stochastic"
	SignalVolume     = "volume"
	SignalML         = "ml_prediction"
)

// SignalVerdict is the output of a single analyzer.
type SignalVerdict struct {
	Name      string    `json:"name"`
	Direction Direction `json:"signal"`
	Strength  float64   `json:"strength"` // [0,1]
	Rationale string    `json:"reason"`
}

// FusedRecommendation is the combined verdict over all signal sources.
type FusedRecommendation struct {
	Direction  Direction       `json:"direction"`
	Confidence float64         `json:"confidence"` // [0,1]
	BuyScore   float64         `json:"buy_score"`
	SellScore  float64         `json:"sell_score"`
	Weight     float64         `json:"total_weight"`
	Verdicts   []SignalVerdict `json:"signals"`
	Rationale  string          `json:"technical_summary"`
}

// SignalReport is the full output of one analysis run.
type SignalReport struct {
	ID             string              `json:"id,omitempty"`
	Symbol         string              `json:"symbol,omitempty"`
	Timeframe      string              `json:"timeframe,omitempty"`
	GeneratedAt    time.Time           `json:"generated_at"`
	DataPoints     int                 `json:"data_points"`
	Recommendation FusedRecommendation `json:"recommendation"`
	Ensemble       *EnsembleResult     `json:"ml_analysis,omitempty"`
	Outlook        Outlook             `json:"outlook"`
	Reasoning      string              `json:"reasoning,omitempty"`
	Error          string              `json:"error,omitempty"`
}

// Outlook holds short, medium and long horizon narratives.
type Outlook struct {
	Short  string `json:"short"`
	Medium string `json:"medium"`
	Long   string `json:"long"`
}
