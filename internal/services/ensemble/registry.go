package ensemble

import "CryptoSignal/internal/domain/service"

const (
	forestEstimators  = 50
	forestMaxDepth    = 10
	boostEstimators   = 50
	boostMaxDepth     = 6
	boostLearningRate = 0.1
	ridgeAlpha        = 1.0
	svrC              = 1.0
	svrEpsilon        = 0.1
	randomSeed        = 42
)

// Entry names a regressor and how to build a fresh instance of it.
type Entry struct {
	Name    string
	Factory service.RegressorFactory
}

// DefaultRegistry is the fixed model bank in evaluation order.
func DefaultRegistry() []Entry {
	return []Entry{
		{Name: "random_forest", Factory: func() service.Regressor {
			return NewRandomForest(forestEstimators, forestMaxDepth, randomSeed)
		}},
		{Name: "gradient_boosting", Factory: func() service.Regressor {
			return NewGradientBoosting(boostEstimators, boostMaxDepth, boostLearningRate)
		}},
		{Name: "linear_regression", Factory: func() service.Regressor {
			return NewLinearRegression()
		}},
		{Name: "ridge", Factory: func() service.Regressor {
			return NewRidge(ridgeAlpha)
		}},
		{Name: "svr", Factory: func() service.Regressor {
			return NewSVR(svrC, svrEpsilon)
		}},
	}
}
