package ensemble

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"CryptoSignal/internal/domain/service"
)

// SVR is epsilon-insensitive support vector regression with an RBF kernel.
// The bias is folded into the kernel as a constant term, which turns the dual
// into a box-constrained problem solved by coordinate descent.
type SVR struct {
	C       float64
	Epsilon float64
	MaxIter int
	Tol     float64

	gamma   float64
	support [][]float64
	beta    []float64
}

var (
	_ service.Regressor     = (*SVR)(nil)
	_ service.ContextFitter = (*SVR)(nil)
)

func NewSVR(c, epsilon float64) *SVR {
	return &SVR{C: c, Epsilon: epsilon, MaxIter: 1000, Tol: 1e-6}
}

func (m *SVR) Name() string { return "svr" }

func (m *SVR) Fit(X [][]float64, y []float64) error {
	return m.FitContext(context.Background(), X, y)
}

// FitContext fits the model, checking ctx between coordinate descent sweeps.
func (m *SVR) FitContext(ctx context.Context, X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 || n != len(y) {
		return errors.New("svr: empty or mismatched input")
	}
	m.gamma = scaleGamma(X)

	K := make([][]float64, n)
	for i := range K {
		K[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := m.kernel(X[i], X[j])
			K[i][j], K[j][i] = v, v
		}
	}

	beta := make([]float64, n)
	f := make([]float64, n) // (K beta)_i
	for iter := 0; iter < m.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("svr: %w", err)
		}
		maxDelta := 0.0
		for i := 0; i < n; i++ {
			a := K[i][i]
			u := beta[i] - (f[i]-y[i])/a
			next := clamp(softThreshold(u, m.Epsilon/a), -m.C, m.C)
			delta := next - beta[i]
			if delta == 0 {
				continue
			}
			beta[i] = next
			for j := 0; j < n; j++ {
				f[j] += delta * K[i][j]
			}
			maxDelta = math.Max(maxDelta, math.Abs(delta))
		}
		if maxDelta < m.Tol {
			break
		}
	}

	m.support = m.support[:0]
	m.beta = m.beta[:0]
	for i, b := range beta {
		if b != 0 {
			m.support = append(m.support, X[i])
			m.beta = append(m.beta, b)
		}
	}
	if m.support == nil {
		m.support = [][]float64{}
	}
	return nil
}

func (m *SVR) Predict(x []float64) (float64, error) {
	if m.support == nil {
		return 0, errors.New("svr: not fitted")
	}
	var out float64
	for i, s := range m.support {
		out += m.beta[i] * m.kernel(s, x)
	}
	return out, nil
}

// kernel is the RBF kernel plus the constant bias term.
func (m *SVR) kernel(a, b []float64) float64 {
	var d float64
	for j := range a {
		diff := a[j] - b[j]
		d += diff * diff
	}
	return math.Exp(-m.gamma*d) + 1
}

// scaleGamma is 1 / (n_features * var(X)) over all entries, or 1 for constant X.
func scaleGamma(X [][]float64) float64 {
	all := make([]float64, 0, len(X)*len(X[0]))
	for _, row := range X {
		all = append(all, row...)
	}
	_, v := stat.PopMeanVariance(all, nil)
	if v == 0 || len(X[0]) == 0 {
		return 1
	}
	return 1 / (float64(len(X[0])) * v)
}

func softThreshold(v, t float64) float64 {
	switch {
	case v > t:
		return v - t
	case v < -t:
		return v + t
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
