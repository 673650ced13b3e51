//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"jobdeck/internal"
	"jobdeck/internal/controllers"
	"jobdeck/internal/providers"
	"jobdeck/internal/remote"
	"jobdeck/internal/services"
	"jobdeck/internal/storage"
	"jobdeck/internal/storage/interfaces"
	"jobdeck/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		storage.NewZstdCompressor,
		storage.NewBackend,

		remote.NewLogNotifier,
		wire.Bind(new(remote.Notifier), new(*remote.LogNotifier)),
		remote.NewClient,

		services.NewProfileService,
		wire.Bind(new(services.ProfileServiceInterface), new(*services.ProfileService)),
		wire.Bind(new(interfaces.IdleEvictor), new(*services.ProfileService)),
		services.NewSearchService,
		wire.Bind(new(services.SearchServiceInterface), new(*services.SearchService)),
		services.NewLocationService,
		wire.Bind(new(services.LocationServiceInterface), new(*services.LocationService)),
		services.NewAccountService,
		wire.Bind(new(services.AccountServiceInterface), new(*services.AccountService)),

		storage.NewScheduler,
		controllers.NewStateController,
		controllers.NewSearchController,
		controllers.NewBrowseController,
		controllers.NewAccountController,
		controllers.NewProfileController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
