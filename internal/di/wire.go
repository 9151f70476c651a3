//go:build wireinject
// +build wireinject

package di

import (
	"AssetCast/pkg/config"
	"AssetCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisCache,
		ProvideDatapointStore,
		ProvideCacheService,
		ProvideEventPublisher,

		// Repositories
		ProvideConfigStore,
		ProvideHistoricalSource,
		ProvidePredictedStore,

		// Use cases
		ProvideChunker,
		ProvideAligner,
		ProvideProviderFactory,
		ProvideRunner,

		// Services
		ProvideScheduler,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
