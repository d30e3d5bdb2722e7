//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"CryptoSignal/internal/usecase"
	"CryptoSignal/pkg/config"
	"CryptoSignal/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideMarketData,
		ProvideTTLCache,
		ProvideReportCache,
		ProvideRecorder,
		ProvideSignalPublisher,
		ProvideKafkaConsumer,

		// Core and use cases
		ProvidePredictor,
		ProvideSignalGenerator,
		ProvideInsightsUseCase,
		usecase.NewAdvisorUseCase,
		ProvideScanner,
		ProvideAnalysisRequestHandler,

		// HTTP
		ProvideRateLimiter,
		ProvideHTTPHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return nil, nil, nil
}
