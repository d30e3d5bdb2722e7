package fusion

import "CryptoSignal/internal/domain/models"

// Plurality returns the most frequent value. Ties go to the value seen first.
func Plurality[T comparable](values []T) (T, bool) {
	var zero T
	if len(values) == 0 {
		return zero, false
	}
	counts := make(map[T]int, len(values))
	best, bestCount := zero, 0
	for _, v := range values {
		counts[v]++
	}
	for _, v := range values {
		if c := counts[v]; c > bestCount {
			best, bestCount = v, c
		}
	}
	return best, true
}

// ConsensusDirection is the plurality direction across recommendations, or
// HOLD when there are none.
func ConsensusDirection(recs []models.FusedRecommendation) models.Direction {
	dirs := make([]models.Direction, len(recs))
	for i, r := range recs {
		dirs[i] = r.Direction
	}
	if d, ok := Plurality(dirs); ok {
		return d
	}
	return models.Hold
}

// ConsensusView votes each advisor field independently.
func ConsensusView(views []models.AdvisorView) models.AdvisorView {
	out := models.AdvisorView{Method: "Consensus", Direction: models.Hold}
	if len(views) == 0 {
		return out
	}
	field := func(get func(models.AdvisorView) string) string {
		vals := make([]string, len(views))
		for i, v := range views {
			vals[i] = get(v)
		}
		s, _ := Plurality(vals)
		return s
	}
	out.Short = field(func(v models.AdvisorView) string { return v.Short })
	out.Medium = field(func(v models.AdvisorView) string { return v.Medium })
	out.Long = field(func(v models.AdvisorView) string { return v.Long })
	out.Buy = field(func(v models.AdvisorView) string { return v.Buy })
	out.Sell = field(func(v models.AdvisorView) string { return v.Sell })
	out.Suggestion = field(func(v models.AdvisorView) string { return v.Suggestion })
	out.Reason = field(func(v models.AdvisorView) string { return v.Reason })
	out.Direction = models.Direction(field(func(v models.AdvisorView) string { return string(v.Direction) }))

	var sum float64
	var n int
	for _, v := range views {
		if v.Direction == out.Direction {
			sum += v.Confidence
			n++
		}
	}
	if n > 0 {
		out.Confidence = sum / float64(n)
	}
	return out
}
