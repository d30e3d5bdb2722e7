package ensemble

import (
	"errors"
	"sort"
)

// treeNode is a node of a fitted regression tree. Leaves have feature -1.
type treeNode struct {
	feature   int
	threshold float64
	value     float64
	left      *treeNode
	right     *treeNode
}

// RegressionTree is a CART tree minimizing squared error.
type RegressionTree struct {
	MaxDepth        int
	MinSamplesSplit int

	root        *treeNode
	nFeatures   int
	importances []float64
}

func newRegressionTree(maxDepth int) *RegressionTree {
	return &RegressionTree{MaxDepth: maxDepth, MinSamplesSplit: 2}
}

// Fit grows the tree on the rows of X selected by idx (all rows when nil).
func (t *RegressionTree) Fit(X [][]float64, y []float64, idx []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.New("tree: empty or mismatched input")
	}
	if idx == nil {
		idx = make([]int, len(X))
		for i := range idx {
			idx[i] = i
		}
	}
	t.nFeatures = len(X[0])
	t.importances = make([]float64, t.nFeatures)
	t.root = t.grow(X, y, idx, 0)
	normalize(t.importances)
	return nil
}

func (t *RegressionTree) Predict(x []float64) float64 {
	n := t.root
	for n != nil && n.feature >= 0 {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	if n == nil {
		return 0
	}
	return n.value
}

// Importances returns the normalized impurity decrease per feature.
func (t *RegressionTree) Importances() []float64 { return t.importances }

type split struct {
	feature   int
	threshold float64
	gain      float64
	pos       int
	order     []int
}

func (t *RegressionTree) grow(X [][]float64, y []float64, idx []int, depth int) *treeNode {
	sum, sumSq := 0.0, 0.0
	for _, i := range idx {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	n := float64(len(idx))
	leaf := &treeNode{feature: -1, value: sum / n}
	sse := sumSq - sum*sum/n

	if (t.MaxDepth > 0 && depth >= t.MaxDepth) || len(idx) < t.MinSamplesSplit || sse <= 1e-14 {
		return leaf
	}

	best := split{feature: -1}
	for f := 0; f < t.nFeatures; f++ {
		order := append([]int(nil), idx...)
		sort.SliceStable(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })

		lSum, lSq := 0.0, 0.0
		for k := 1; k < len(order); k++ {
			yi := y[order[k-1]]
			lSum += yi
			lSq += yi * yi
			lo, hi := X[order[k-1]][f], X[order[k]][f]
			if lo == hi {
				continue
			}
			nl, nr := float64(k), n-float64(k)
			rSum, rSq := sum-lSum, sumSq-lSq
			child := (lSq - lSum*lSum/nl) + (rSq - rSum*rSum/nr)
			if gain := sse - child; gain > best.gain {
				best = split{feature: f, threshold: lo + (hi-lo)/2, gain: gain, pos: k, order: order}
			}
		}
	}
	if best.feature < 0 {
		return leaf
	}

	t.importances[best.feature] += best.gain
	return &treeNode{
		feature:   best.feature,
		threshold: best.threshold,
		value:     leaf.value,
		left:      t.grow(X, y, best.order[:best.pos], depth+1),
		right:     t.grow(X, y, best.order[best.pos:], depth+1),
	}
}

// normalize scales v to sum to 1 in place, leaving an all-zero slice unchanged.
func normalize(v []float64) {
	var total float64
	for _, x := range v {
		total += x
	}
	if total <= 0 {
		return
	}
	for i := range v {
		v[i] /= total
	}
}
