//go:build wireinject
// +build wireinject

package di

import (
	"SignalPull/pkg/config"
	"SignalPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideHTTPClient,
		ProvideSignalCache,
		ProvideKafkaProducer,
		ProvideSignalPublisher,
		ProvideRateLimiter,

		// Market data providers
		ProvideProviders,

		// Use cases
		ProvideMarketAggregator,
		ProvideAnalyzer,
		ProvidePredictionRegistry,
		ProvideSignalAggregator,

		// Transport
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
