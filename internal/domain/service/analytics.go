package service

import "context"

// Regressor is one member of the ensemble. Fit may be called repeatedly;
// each call replaces the previous state.
type Regressor interface {
	Name() string
	Fit(X [][]float64, y []float64) error
	Predict(x []float64) (float64, error)
}

// ContextFitter is implemented by regressors whose fit is long enough to
// observe cancellation.
type ContextFitter interface {
	FitContext(ctx context.Context, X [][]float64, y []float64) error
}

// ImportanceReporter is implemented by regressors exposing per-feature importances.
type ImportanceReporter interface {
	FeatureImportances() []float64
}

// RegressorFactory builds a fresh, unfitted regressor.
type RegressorFactory func() Regressor
