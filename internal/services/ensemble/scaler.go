package ensemble

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes each feature to zero mean and unit variance.
// Features with zero variance keep a scale of 1.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// Fit learns per-feature mean and population standard deviation.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 || len(X[0]) == 0 {
		return errors.New("scaler: empty input")
	}
	p := len(X[0])
	s.mean = make([]float64, p)
	s.scale = make([]float64, p)
	col := make([]float64, len(X))
	for j := 0; j < p; j++ {
		for i, row := range X {
			col[i] = row[j]
		}
		m, sd := stat.PopMeanStdDev(col, nil)
		s.mean[j] = m
		if sd == 0 {
			sd = 1
		}
		s.scale[j] = sd
	}
	return nil
}

// Transform returns a scaled copy of x.
func (s *StandardScaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.mean[j]) / s.scale[j]
	}
	return out
}

// TransformAll scales every row.
func (s *StandardScaler) TransformAll(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = s.Transform(row)
	}
	return out
}
