//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/google/wire"
	"github.com/lk2023060901/vehicle-discovery/internal/conf"
	listingbiz "github.com/lk2023060901/vehicle-discovery/internal/listing/biz"
	listingservice "github.com/lk2023060901/vehicle-discovery/internal/listing/service"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	savedsearchbiz "github.com/lk2023060901/vehicle-discovery/internal/savedsearch/biz"
	savedsearchservice "github.com/lk2023060901/vehicle-discovery/internal/savedsearch/service"
	"github.com/lk2023060901/vehicle-discovery/internal/server"
)

// ProviderSet is the Wire provider set for all dependencies
var ProviderSet = wire.NewSet(
	dataProviderSet,
	repositoryProviderSet,
	useCaseProviderSet,
	serviceProviderSet,
	serverProviderSet,
)

var dataProviderSet = wire.NewSet(
	provideData,
	provideWorkerPool,
	provideJWTManager,
)

var repositoryProviderSet = wire.NewSet(
	provideListingRepo,
	provideFavoritesReader,
	provideSavedSearchRepo,
)

var useCaseProviderSet = wire.NewSet(
	listingbiz.NewSearchUseCase,
	savedsearchbiz.NewRegistry,
	provideDetector,
)

var serviceProviderSet = wire.NewSet(
	listingservice.NewListingService,
	savedsearchservice.NewSavedSearchService,
)

var serverProviderSet = wire.NewSet(
	server.NewHTTPServer,
	provideScheduler,
)

// InitializeApp initializes the application with Wire
func InitializeApp(config *conf.Config, log *logger.Logger) (*App, func(), error) {
	wire.Build(ProviderSet, newApp)
	return nil, nil, nil
}
