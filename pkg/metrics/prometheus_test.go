package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"CryptoSignal/internal/domain/models"
)

func TestRecorder(t *testing.T) {
	r := NewWith(prometheus.NewRegistry())

	r.RecordRecommendation("bitcoin", "7d", models.Buy, 0.8)
	r.RecordRecommendation("bitcoin", "7d", models.Buy, 0.6)
	r.RecordModelFailure("svr")
	r.RecordError("fetch")
	r.RecordError("fetch")

	if got := testutil.ToFloat64(r.confidence.WithLabelValues("bitcoin", "7d")); got != 0.6 {
		t.Fatalf("confidence gauge = %v, want latest 0.6", got)
	}
	if got := testutil.ToFloat64(r.recommendations.WithLabelValues("BUY")); got != 2 {
		t.Fatalf("recommendations = %v", got)
	}
	if got := testutil.ToFloat64(r.modelFailures.WithLabelValues("svr")); got != 1 {
		t.Fatalf("model failures = %v", got)
	}
	if got := testutil.ToFloat64(r.errorsTotal.WithLabelValues("fetch")); got != 2 {
		t.Fatalf("errors = %v", got)
	}
}
