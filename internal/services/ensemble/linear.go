package ensemble

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"CryptoSignal/internal/domain/service"
)

// rcond is the relative singular value cutoff for least squares.
const rcond = 1e-12

// LinearRegression is ordinary least squares with an intercept, solved as the
// minimum-norm solution through an SVD of the centered design matrix.
type LinearRegression struct {
	coef      []float64
	intercept float64
}

var _ service.Regressor = (*LinearRegression)(nil)

func NewLinearRegression() *LinearRegression { return &LinearRegression{} }

func (m *LinearRegression) Name() string { return "linear_regression" }

func (m *LinearRegression) Fit(X [][]float64, y []float64) error {
	A, b, xMean, yMean, err := centered(X, y)
	if err != nil {
		return err
	}
	var svd mat.SVD
	if ok := svd.Factorize(A, mat.SVDThin); !ok {
		return errors.New("linear_regression: svd did not converge")
	}
	_, p := A.Dims()
	w := mat.NewVecDense(p, nil)
	if rank := svd.Rank(rcond); rank > 0 {
		svd.SolveVecTo(w, b, rank)
	}
	m.coef, m.intercept = finish(w, xMean, yMean)
	return nil
}

func (m *LinearRegression) Predict(x []float64) (float64, error) {
	return linearPredict(m.coef, m.intercept, x)
}

// Ridge is L2-regularized least squares with an unpenalized intercept.
type Ridge struct {
	Alpha     float64
	coef      []float64
	intercept float64
}

var _ service.Regressor = (*Ridge)(nil)

func NewRidge(alpha float64) *Ridge { return &Ridge{Alpha: alpha} }

func (m *Ridge) Name() string { return "ridge" }

func (m *Ridge) Fit(X [][]float64, y []float64) error {
	A, b, xMean, yMean, err := centered(X, y)
	if err != nil {
		return err
	}
	_, p := A.Dims()

	var gram mat.Dense
	gram.Mul(A.T(), A)
	for j := 0; j < p; j++ {
		gram.Set(j, j, gram.At(j, j)+m.Alpha)
	}
	var rhs mat.VecDense
	rhs.MulVec(A.T(), b)

	var w mat.VecDense
	if err := w.SolveVec(&gram, &rhs); err != nil {
		return fmt.Errorf("ridge: solve: %w", err)
	}
	m.coef, m.intercept = finish(&w, xMean, yMean)
	return nil
}

func (m *Ridge) Predict(x []float64) (float64, error) {
	return linearPredict(m.coef, m.intercept, x)
}

// centered builds the column-centered design matrix and target.
func centered(X [][]float64, y []float64) (*mat.Dense, *mat.VecDense, []float64, float64, error) {
	n := len(X)
	if n == 0 || n != len(y) {
		return nil, nil, nil, 0, fmt.Errorf("%d rows for %d targets", n, len(y))
	}
	p := len(X[0])
	xMean := make([]float64, p)
	for _, row := range X {
		if len(row) != p {
			return nil, nil, nil, 0, errors.New("ragged feature matrix")
		}
		for j, v := range row {
			xMean[j] += v
		}
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	var yMean float64
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)

	A := mat.NewDense(n, p, nil)
	b := mat.NewVecDense(n, nil)
	for i, row := range X {
		for j, v := range row {
			A.Set(i, j, v-xMean[j])
		}
		b.SetVec(i, y[i]-yMean)
	}
	return A, b, xMean, yMean, nil
}

func finish(w *mat.VecDense, xMean []float64, yMean float64) ([]float64, float64) {
	coef := make([]float64, len(xMean))
	intercept := yMean
	for j := range coef {
		coef[j] = w.AtVec(j)
		intercept -= coef[j] * xMean[j]
	}
	return coef, intercept
}

func linearPredict(coef []float64, intercept float64, x []float64) (float64, error) {
	if coef == nil {
		return 0, errors.New("model not fitted")
	}
	if len(x) != len(coef) {
		return 0, fmt.Errorf("got %d features, want %d", len(x), len(coef))
	}
	out := intercept
	for j, v := range x {
		out += coef[j] * v
	}
	return out, nil
}
