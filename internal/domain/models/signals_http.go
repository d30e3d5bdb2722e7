package models

// Requests for the signal HTTP endpoints. Defined in domain for reuse by the CLI.

type CoinRequest struct {
	Coin      string `query:"coin" json:"coin" param:"coin" validate:"required,max=64"`
	Timeframe string `query:"tf" json:"tf" default:"7d" validate:"oneof=1h 24h 7d 30d"`
}

type AnalyzeSeriesRequest struct {
	Symbol    string   `json:"symbol" default:"custom" validate:"max=64"`
	Timeframe string   `json:"tf" default:"7d" validate:"oneof=1h 24h 7d 30d"`
	Candles   []Candle `json:"candles" validate:"required,min=1,max=20000"`
}

type PredictRequest struct {
	Candles  []Candle `json:"candles" validate:"required,min=1,max=20000"`
	Lookback int      `json:"lookback" default:"50" validate:"gte=2,lte=1000"`
}

type IndicatorsRequest struct {
	Candles []Candle `json:"candles" validate:"required,min=1,max=20000"`
	Window  int      `json:"window" default:"14" validate:"gte=1,lte=500"`
}

type AdviceRequest struct {
	Coin      string   `query:"coin" json:"coin" param:"coin" validate:"required,max=64"`
	Timeframe string   `query:"tf" json:"tf" default:"7d" validate:"oneof=1h 24h 7d 30d"`
	Methods   []string `query:"methods" json:"methods" validate:"omitempty,dive,oneof='Technical Analysis' 'Momentum Model' 'Enhanced ML Analysis'"`
}

type HistoryRequest struct {
	Coin  string `query:"coin" json:"coin" validate:"required,max=64"`
	Limit int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=200"`
}
