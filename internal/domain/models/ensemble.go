package models

// ResultStatus tags the outcome of an ensemble run.
type ResultStatus string

const (
	StatusOK               ResultStatus = "ok"
	StatusInsufficientData ResultStatus = "insufficient_data"
)

// EnsembleKey is the prediction entry holding the averaged output.
const EnsembleKey = "ensemble"

// ModelScore is the k-fold cross-validation summary for one model.
type ModelScore struct {
	Mean float64 `json:"mean_cv_score"`
	Std  float64 `json:"std_cv_score"`
}

// ModelResult is the outcome for one regressor. Err is set when the model
// failed; Prediction and Score are then zero.
type ModelResult struct {
	Name        string     `json:"name"`
	Score       ModelScore `json:"score"`
	Prediction  float64    `json:"prediction"`
	Importances []float64  `json:"feature_importance,omitempty"`
	Err         error      `json:"-"`
}

// Failed reports whether the model degraded to the zero result.
func (r ModelResult) Failed() bool { return r.Err != nil }

// EnsembleResult is the output of a train-and-predict run.
type EnsembleResult struct {
	Status            ResultStatus          `json:"status"`
	Predictions       map[string]float64    `json:"predictions"`
	FeatureImportance map[string][]float64  `json:"feature_importance"`
	ModelScores       map[string]ModelScore `json:"model_scores"`
	Models            []ModelResult         `json:"-"`
	SampleSize        int                   `json:"sample_size"`
	FeatureCount      int                   `json:"feature_count"`
	Error             string                `json:"error,omitempty"`
}

// OK reports whether the run produced predictions.
func (r *EnsembleResult) OK() bool {
	return r != nil && r.Status == StatusOK
}

// Ensemble returns the averaged prediction, or false when unavailable.
func (r *EnsembleResult) Ensemble() (float64, bool) {
	if !r.OK() {
		return 0, false
	}
	v, ok := r.Predictions[EnsembleKey]
	return v, ok
}

// BestModel returns the model with the highest mean CV score. Ties keep the
// earliest model in registry order.
func (r *EnsembleResult) BestModel() (string, ModelScore, bool) {
	if r == nil || len(r.Models) == 0 {
		return "", ModelScore{}, false
	}
	best := r.Models[0]
	for _, m := range r.Models[1:] {
		if m.Score.Mean > best.Score.Mean {
			best = m
		}
	}
	return best.Name, best.Score, true
}

// Failures lists the models that degraded to the zero result.
func (r *EnsembleResult) Failures() []string {
	var out []string
	if r == nil {
		return out
	}
	for _, m := range r.Models {
		if m.Failed() {
			out = append(out, m.Name)
		}
	}
	return out
}

// InsufficientEnsemble builds the empty result returned for short input.
func InsufficientEnsemble(msg string) *EnsembleResult {
	return &EnsembleResult{
		Status:            StatusInsufficientData,
		Predictions:       map[string]float64{},
		FeatureImportance: map[string][]float64{},
		ModelScores:       map[string]ModelScore{},
		Error:             msg,
	}
}
