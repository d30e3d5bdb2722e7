package repository

import (
	"context"

	"CryptoSignal/internal/domain/models"
)

// MarketDataProvider returns chronological OHLCV records for a coin. An empty
// result means no data is available and is not an error.
type MarketDataProvider interface {
	Fetch(ctx context.Context, coinID string, tf Timeframe) ([]models.Candle, error)
}

// HealthChecker is implemented by providers backed by an external store.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// SignalPublisher emits finished reports to downstream consumers.
type SignalPublisher interface {
	PublishReport(ctx context.Context, report *models.SignalReport) error
	Close() error
}

// Recorder persists report history.
type Recorder interface {
	Record(ctx context.Context, report *models.SignalReport) error
	Recent(ctx context.Context, coinID string, limit int) ([]models.SignalReport, error)
	Close() error
}

// Metrics is the observability surface used by the use cases.
type Metrics interface {
	RecordLatency(op string, seconds float64)
	RecordError(op string)
	RecordModelFailure(model string)
	RecordRecommendation(coin, tf string, direction models.Direction, confidence float64)
}
