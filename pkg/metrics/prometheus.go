package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"CryptoSignal/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	latency         *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	modelFailures   *prometheus.CounterVec
	confidence      *prometheus.GaugeVec
	recommendations *prometheus.CounterVec
}

// New registers the recorder on the default registry.
func New() *Recorder { return NewWith(prometheus.DefaultRegisterer) }

// NewWith registers the recorder on reg.
func NewWith(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cryptosignal_analytics_latency_seconds",
			Help:    "Duration of analysis operations in seconds",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		errorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptosignal_analytics_errors_total",
			Help: "Errors by analysis operation",
		}, []string{"operation"}),
		modelFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptosignal_model_failures_total",
			Help: "Ensemble members that failed to fit or score",
		}, []string{"model"}),
		confidence: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cryptosignal_signal_confidence",
			Help: "Confidence of the latest recommendation",
		}, []string{"coin", "timeframe"}),
		recommendations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptosignal_recommendations_total",
			Help: "Recommendations by direction",
		}, []string{"direction"}),
	}
}

func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordError(op string) {
	r.errorsTotal.WithLabelValues(op).Inc()
}

func (r *Recorder) RecordModelFailure(model string) {
	r.modelFailures.WithLabelValues(model).Inc()
}

func (r *Recorder) RecordRecommendation(coin, tf string, direction models.Direction, confidence float64) {
	r.confidence.WithLabelValues(coin, tf).Set(confidence)
	r.recommendations.WithLabelValues(string(direction)).Inc()
}
