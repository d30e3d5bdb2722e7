package fusion

import (
	"fmt"
	"strings"
	"unicode"

	"CryptoSignal/internal/domain/models"
)

const longHorizonThreshold = 0.05

// Horizon selects the indicators an outlook is drawn from.
type Horizon string

const (
	Short  Horizon = "short"
	Medium Horizon = "medium"
	Long   Horizon = "long"
)

// TechnicalSummary joins the rationale of every technical verdict.
func TechnicalSummary(verdicts []models.SignalVerdict) string {
	parts := make([]string, 0, len(verdicts))
	for _, v := range verdicts {
		if v.Name == models.SignalML || v.Rationale == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", title(v.Name), v.Rationale))
	}
	if len(parts) == 0 {
		return "No technical signals available"
	}
	return strings.Join(parts, "; ")
}

// title upper-cases the first letter of each word, where any non-letter
// separates words.
func title(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		isLetter := unicode.IsLetter(r)
		switch {
		case isLetter && !prevLetter:
			b.WriteRune(unicode.ToUpper(r))
		case isLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}

// Outlook describes each horizon: momentum indicators for the short term,
// trend indicators for the medium term and the ensemble for the long term.
func Outlook(verdicts []models.SignalVerdict, ml *models.EnsembleResult) models.Outlook {
	return models.Outlook{
		Short:  HorizonOutlook(verdicts, ml, Short),
		Medium: HorizonOutlook(verdicts, ml, Medium),
		Long:   HorizonOutlook(verdicts, ml, Long),
	}
}

func HorizonOutlook(verdicts []models.SignalVerdict, ml *models.EnsembleResult, h Horizon) string {
	dir := func(name string) models.Direction {
		for _, v := range verdicts {
			if v.Name == name {
				return v.Direction
			}
		}
		return ""
	}

	switch h {
	case Short:
		switch {
		case dir(models.SignalMACD) == models.Buy:
			return "Bullish momentum detected"
		case dir(models.SignalMACD) == models.Sell:
			return "Bearish momentum detected"
		case dir(models.SignalStochastic) == models.Buy:
			return "Oversold bounce expected"
		case dir(models.SignalStochastic) == models.Sell:
			return "Overbought correction likely"
		}
		return "Sideways movement expected"
	case Medium:
		switch {
		case dir(models.SignalBollinger) == models.Buy:
			return "Trend reversal to upside"
		case dir(models.SignalBollinger) == models.Sell:
			return "Trend reversal to downside"
		case dir(models.SignalVolume) == models.Buy:
			return "Volume supporting uptrend"
		case dir(models.SignalVolume) == models.Sell:
			return "Volume supporting downtrend"
		}
		return "Consolidation phase"
	default:
		pred, _ := ml.Ensemble()
		switch {
		case pred > longHorizonThreshold:
			return "ML models suggest growth"
		case pred < -longHorizonThreshold:
			return "ML models suggest decline"
		}
		return "ML models neutral/uncertain"
	}
}

// MLReasoning summarizes the ensemble outcome, the technical summary and the
// amount of data used.
func MLReasoning(ml *models.EnsembleResult, summary string, dataPoints int) string {
	var parts []string
	if pred, ok := ml.Ensemble(); ok {
		parts = append(parts, fmt.Sprintf("ML ensemble predicts %+.1f%% price change", pred*100))
		if name, score, ok := ml.BestModel(); ok {
			parts = append(parts, fmt.Sprintf("Best model: %s (R²=%.2f)", name, score.Mean))
		}
	} else if ml != nil && ml.Error != "" {
		parts = append(parts, ml.Error)
	}
	if summary != "" {
		parts = append(parts, "Technical: "+summary)
	}
	parts = append(parts, fmt.Sprintf("Analysis based on %d data points", dataPoints))
	return strings.Join(parts, "; ")
}
