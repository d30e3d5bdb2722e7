package models

import "errors"

var (
	// ErrInsufficientData marks input shorter than a required window or sample count.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrModelFailure marks a single ensemble member that failed to fit or score.
	ErrModelFailure = errors.New("model failure")
	// ErrUnsupportedTimeframe is returned for timeframes outside 1h, 24h, 7d, 30d.
	ErrUnsupportedTimeframe = errors.New("unsupported timeframe")
	// ErrInvalidParameter is returned for non-positive windows and similar caller errors.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrNoData is returned by providers when a coin has no candles.
	ErrNoData = errors.New("no market data")
)
