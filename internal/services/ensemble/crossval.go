package ensemble

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"CryptoSignal/internal/domain/models"
	"CryptoSignal/internal/domain/service"
)

// Folds returns the k-fold count used for n samples: min(3, n/2).
func Folds(n int) int {
	return min(3, n/2)
}

// kFold splits [0,n) into k contiguous test folds without shuffling. The
// first n%k folds get one extra sample.
func kFold(n, k int) [][2]int {
	out := make([][2]int, 0, k)
	start := 0
	for f := 0; f < k; f++ {
		size := n / k
		if f < n%k {
			size++
		}
		out = append(out, [2]int{start, start + size})
		start += size
	}
	return out
}

// R2 is the coefficient of determination. A constant target scores 1 when
// predicted exactly and 0 otherwise.
func R2(yTrue, yPred []float64) float64 {
	mean := stat.Mean(yTrue, nil)
	var ssRes, ssTot float64
	for i, v := range yTrue {
		ssRes += (v - yPred[i]) * (v - yPred[i])
		ssTot += (v - mean) * (v - mean)
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// CrossValidate scores a fresh model from factory on each of k folds and
// returns the mean and population standard deviation of the R2 scores.
func CrossValidate(ctx context.Context, factory service.RegressorFactory, X [][]float64, y []float64, k int) (models.ModelScore, error) {
	if k < 2 {
		return models.ModelScore{}, fmt.Errorf("cross validation needs at least 2 folds, got %d", k)
	}
	if len(X) < k {
		return models.ModelScore{}, fmt.Errorf("cannot split %d samples into %d folds", len(X), k)
	}

	scores := make([]float64, 0, k)
	for _, fold := range kFold(len(X), k) {
		trainX := make([][]float64, 0, len(X)-(fold[1]-fold[0]))
		trainY := make([]float64, 0, cap(trainX))
		trainX = append(append(trainX, X[:fold[0]]...), X[fold[1]:]...)
		trainY = append(append(trainY, y[:fold[0]]...), y[fold[1]:]...)

		model := factory()
		if err := fit(ctx, model, trainX, trainY); err != nil {
			return models.ModelScore{}, fmt.Errorf("fit fold: %w", err)
		}
		pred := make([]float64, 0, fold[1]-fold[0])
		for _, row := range X[fold[0]:fold[1]] {
			p, err := model.Predict(row)
			if err != nil {
				return models.ModelScore{}, fmt.Errorf("predict fold: %w", err)
			}
			pred = append(pred, p)
		}
		scores = append(scores, R2(y[fold[0]:fold[1]], pred))
	}

	mean, std := stat.PopMeanStdDev(scores, nil)
	return models.ModelScore{Mean: mean, Std: std}, nil
}

// fit trains model, passing ctx through when the model can observe it.
func fit(ctx context.Context, model service.Regressor, X [][]float64, y []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cf, ok := model.(service.ContextFitter); ok {
		return cf.FitContext(ctx, X, y)
	}
	return model.Fit(X, y)
}
