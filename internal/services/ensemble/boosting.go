package ensemble

import (
	"errors"

	"CryptoSignal/internal/domain/service"
)

// GradientBoosting fits shallow regression trees to squared-error residuals,
// starting from the target mean.
type GradientBoosting struct {
	Estimators   int
	MaxDepth     int
	LearningRate float64

	init        float64
	trees       []*RegressionTree
	importances []float64
}

var (
	_ service.Regressor          = (*GradientBoosting)(nil)
	_ service.ImportanceReporter = (*GradientBoosting)(nil)
)

func NewGradientBoosting(estimators, maxDepth int, learningRate float64) *GradientBoosting {
	return &GradientBoosting{Estimators: estimators, MaxDepth: maxDepth, LearningRate: learningRate}
}

func (m *GradientBoosting) Name() string { return "gradient_boosting" }

func (m *GradientBoosting) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.New("gradient_boosting: empty or mismatched input")
	}
	n := len(y)
	m.init = 0
	for _, v := range y {
		m.init += v
	}
	m.init /= float64(n)

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = m.init
	}
	residual := make([]float64, n)
	m.trees = make([]*RegressionTree, 0, m.Estimators)
	m.importances = make([]float64, len(X[0]))

	for e := 0; e < m.Estimators; e++ {
		for i := range residual {
			residual[i] = y[i] - pred[i]
		}
		tree := newRegressionTree(m.MaxDepth)
		if err := tree.Fit(X, residual, nil); err != nil {
			return err
		}
		for i, row := range X {
			pred[i] += m.LearningRate * tree.Predict(row)
		}
		for j, v := range tree.Importances() {
			m.importances[j] += v
		}
		m.trees = append(m.trees, tree)
	}
	normalize(m.importances)
	return nil
}

func (m *GradientBoosting) Predict(x []float64) (float64, error) {
	if m.trees == nil {
		return 0, errors.New("gradient_boosting: not fitted")
	}
	out := m.init
	for _, t := range m.trees {
		out += m.LearningRate * t.Predict(x)
	}
	return out, nil
}

func (m *GradientBoosting) FeatureImportances() []float64 { return m.importances }
