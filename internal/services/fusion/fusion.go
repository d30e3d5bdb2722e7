// Package fusion combines analyzer verdicts and the ensemble prediction into
// a single recommendation.
package fusion

import (
	"fmt"
	"math"

	"CryptoSignal/internal/domain/models"
)

const (
	decisionThreshold = 0.4
	holdConfidenceCap = 0.3
	mlDeadZone        = 0.02
	mlScale           = 50.0
)

// Weights maps a signal name to its share of the vote.
type Weights map[string]float64

// DefaultWeights sums to 1 over the five signal sources.
func DefaultWeights() Weights {
	return Weights{
		models.SignalBollinger:  0.25,
		models.SignalMACD:       0.25,
		models.SignalStochastic: 0.20,
		models.SignalVolume:     0.15,
		models.SignalML:         0.15,
	}
}

// Fuse weighs the technical verdicts and the ML signal. Scores are
// normalized by the weight of the sources actually present. A nil ensemble
// result is absent; any other result is present, and one without a
// prediction votes 0, which falls in the dead zone but still carries its
// weight. Verdicts without a weight are ignored.
func Fuse(verdicts []models.SignalVerdict, ml *models.EnsembleResult, w Weights) models.FusedRecommendation {
	var buy, sell, total float64
	out := models.FusedRecommendation{Verdicts: make([]models.SignalVerdict, 0, len(verdicts)+1)}

	for _, v := range verdicts {
		weight, ok := w[v.Name]
		if !ok || v.Name == models.SignalML {
			continue
		}
		switch v.Direction {
		case models.Buy:
			buy += weight * v.Strength
		case models.Sell:
			sell += weight * v.Strength
		}
		total += weight
		out.Verdicts = append(out.Verdicts, v)
	}

	if ml != nil {
		pred, _ := ml.Ensemble()
		if weight, ok := w[models.SignalML]; ok {
			switch {
			case pred > mlDeadZone:
				buy += weight * math.Abs(pred) * mlScale
			case pred < -mlDeadZone:
				sell += weight * math.Abs(pred) * mlScale
			}
			total += weight
			out.Verdicts = append(out.Verdicts, MLVerdict(pred))
		}
	}

	out.Weight = total
	out.Rationale = TechnicalSummary(out.Verdicts)
	if total == 0 {
		out.Direction = models.Hold
		return out
	}

	buy /= total
	sell /= total
	out.BuyScore, out.SellScore = buy, sell
	confidence := math.Max(buy, sell)

	switch {
	case buy > sell && buy > decisionThreshold:
		out.Direction = models.Buy
	case sell > buy && sell > decisionThreshold:
		out.Direction = models.Sell
	default:
		out.Direction = models.Hold
		confidence = math.Min(confidence, holdConfidenceCap)
	}
	out.Confidence = math.Min(confidence, 1.0)
	return out
}

// MLVerdict expresses an ensemble prediction as a verdict for display.
func MLVerdict(pred float64) models.SignalVerdict {
	v := models.SignalVerdict{
		Name:      models.SignalML,
		Direction: models.Hold,
		Strength:  math.Min(math.Abs(pred)*mlScale, 1),
		Rationale: fmt.Sprintf("ML ensemble predicts %+.1f%% price change", pred*100),
	}
	switch {
	case pred > mlDeadZone:
		v.Direction = models.Buy
	case pred < -mlDeadZone:
		v.Direction = models.Sell
	}
	return v
}
