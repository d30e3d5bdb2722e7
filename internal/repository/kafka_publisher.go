package repository

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"CryptoSignal/internal/domain/models"
	domrepo "CryptoSignal/internal/domain/repository"
	pkgkafka "CryptoSignal/pkg/kafka"
)

// SignalEvent is the message published for each finished report.
type SignalEvent struct {
	ID          string                 `json:"id"`
	Symbol      string                 `json:"symbol"`
	Timeframe   string                 `json:"timeframe"`
	GeneratedAt time.Time              `json:"generated_at"`
	Direction   models.Direction       `json:"recommendation"`
	Confidence  float64                `json:"confidence"`
	Prediction  *float64               `json:"ml_prediction,omitempty"`
	Signals     []models.SignalVerdict `json:"signals"`
	Outlook     models.Outlook         `json:"outlook"`
}

func NewSignalEvent(r *models.SignalReport) SignalEvent {
	ev := SignalEvent{
		ID:          r.ID,
		Symbol:      r.Symbol,
		Timeframe:   r.Timeframe,
		GeneratedAt: r.GeneratedAt,
		Direction:   r.Recommendation.Direction,
		Confidence:  r.Recommendation.Confidence,
		Signals:     r.Recommendation.Verdicts,
		Outlook:     r.Outlook,
	}
	if p, ok := r.Ensemble.Ensemble(); ok {
		ev.Prediction = &p
	}
	return ev
}

// KafkaSignalPublisher publishes reports keyed by coin so that one coin's
// events stay ordered on a partition.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(p *pkgkafka.Producer, topic string) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: p, topic: topic}
}

func (p *KafkaSignalPublisher) PublishReport(ctx context.Context, r *models.SignalReport) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.Symbol), NewSignalEvent(r),
		kafka.Header{Key: "event_type", Value: []byte("signal.generated")},
		kafka.Header{Key: "timeframe", Value: []byte(r.Timeframe)},
	)
}

func (p *KafkaSignalPublisher) Close() error { return p.producer.Close() }

// NoopPublisher drops reports.
type NoopPublisher struct{}

func (NoopPublisher) PublishReport(context.Context, *models.SignalReport) error { return nil }
func (NoopPublisher) Close() error                                              { return nil }

var (
	_ domrepo.SignalPublisher = (*KafkaSignalPublisher)(nil)
	_ domrepo.SignalPublisher = NoopPublisher{}
)
