package repository

import (
	"fmt"
	"time"

	"CryptoSignal/internal/domain/models"
)

// Timeframe is the history span requested from the market data provider.
type Timeframe string

const (
	TF1h  Timeframe = "1h"
	TF24h Timeframe = "24h"
	TF7d  Timeframe = "7d"
	TF30d Timeframe = "30d"
)

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF1h, TF24h, TF7d, TF30d:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TF7d }

// ParseTimeframe validates s. Empty input yields the default; anything else
// outside the supported set is a caller error.
func ParseTimeframe(s string) (Timeframe, error) {
	if s == "" {
		return DefaultTimeframe(), nil
	}
	tf := Timeframe(s)
	if !IsValidTimeframe(tf) {
		return "", fmt.Errorf("%w: %q", models.ErrUnsupportedTimeframe, s)
	}
	return tf, nil
}

// Span is the history covered by the timeframe.
func (tf Timeframe) Span() time.Duration {
	switch tf {
	case TF1h:
		return time.Hour
	case TF24h:
		return 24 * time.Hour
	case TF7d:
		return 7 * 24 * time.Hour
	case TF30d:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// Bucket is the candle resolution used for the timeframe.
func (tf Timeframe) Bucket() time.Duration {
	switch tf {
	case TF1h:
		return time.Minute
	case TF24h:
		return 15 * time.Minute
	case TF7d:
		return time.Hour
	case TF30d:
		return 4 * time.Hour
	default:
		return 0
	}
}
