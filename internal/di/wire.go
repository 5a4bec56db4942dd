//go:build wireinject
// +build wireinject

package di

import (
	"TAPull/internal/usecase"
	"TAPull/pkg/config"
	"TAPull/pkg/server"

	"github.com/google/wire"
)

var useCaseSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,

	// Data source
	ProvideStockClient,
	ProvidePriceSource,

	// Optional infrastructure
	ProvideCacheService,
	ProvideFrameCache,
	ProvideKafkaProducer,
	ProvidePublisher,
	ProvideClickHouseClient,
	ProvideStorage,

	ProvideIndicatorsUseCase,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		useCaseSet,
		ProvideRateLimiter,
		ProvideIndicatorsHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeUseCase wires the one-shot use case without the HTTP surface.
func InitializeUseCase(cfg *config.Config) (*usecase.IndicatorsUseCase, func(), error) {
	wire.Build(useCaseSet)
	return nil, nil, nil
}
