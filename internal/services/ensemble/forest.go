package ensemble

import (
	"errors"
	"math/rand"

	"CryptoSignal/internal/domain/service"
)

// RandomForest averages bootstrap-trained regression trees.
type RandomForest struct {
	Estimators int
	MaxDepth   int
	Seed       int64

	trees       []*RegressionTree
	importances []float64
}

var (
	_ service.Regressor          = (*RandomForest)(nil)
	_ service.ImportanceReporter = (*RandomForest)(nil)
)

func NewRandomForest(estimators, maxDepth int, seed int64) *RandomForest {
	return &RandomForest{Estimators: estimators, MaxDepth: maxDepth, Seed: seed}
}

func (m *RandomForest) Name() string { return "random_forest" }

func (m *RandomForest) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.New("random_forest: empty or mismatched input")
	}
	rng := rand.New(rand.NewSource(m.Seed))
	n := len(X)
	m.trees = make([]*RegressionTree, 0, m.Estimators)
	m.importances = make([]float64, len(X[0]))
	for e := 0; e < m.Estimators; e++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		tree := newRegressionTree(m.MaxDepth)
		if err := tree.Fit(X, y, sample); err != nil {
			return err
		}
		for j, v := range tree.Importances() {
			m.importances[j] += v
		}
		m.trees = append(m.trees, tree)
	}
	normalize(m.importances)
	return nil
}

func (m *RandomForest) Predict(x []float64) (float64, error) {
	if len(m.trees) == 0 {
		return 0, errors.New("random_forest: not fitted")
	}
	var sum float64
	for _, t := range m.trees {
		sum += t.Predict(x)
	}
	return sum / float64(len(m.trees)), nil
}

func (m *RandomForest) FeatureImportances() []float64 { return m.importances }
