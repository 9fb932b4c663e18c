//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"cpd/internal"
	"cpd/internal/controllers"
	"cpd/internal/platform"
	"cpd/internal/providers"
	"cpd/internal/services"
	"cpd/internal/structures"
	"cpd/internal/tracker"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewMetricsProvider,

		platform.NewRegistry,
		services.NewSnapshotService,
		services.NewAnalyticsService,
		services.NewConsistencyService,
		services.NewRefreshService,
		provideGraph,
		provideStoreCounts,

		tracker.NewZstdCompressor,
		tracker.NewFileManager,
		tracker.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
