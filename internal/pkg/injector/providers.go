package injector

import (
	"github.com/lk2023060901/vehicle-discovery/internal/auth"
	"github.com/lk2023060901/vehicle-discovery/internal/conf"
	"github.com/lk2023060901/vehicle-discovery/internal/data"
	favoritedata "github.com/lk2023060901/vehicle-discovery/internal/favorite/data"
	listingbiz "github.com/lk2023060901/vehicle-discovery/internal/listing/biz"
	listingdata "github.com/lk2023060901/vehicle-discovery/internal/listing/data"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/workerpool"
	savedsearchbiz "github.com/lk2023060901/vehicle-discovery/internal/savedsearch/biz"
	savedsearchdata "github.com/lk2023060901/vehicle-discovery/internal/savedsearch/data"
	"github.com/lk2023060901/vehicle-discovery/internal/savedsearch/job"
)

// Data layer helpers

func provideData(config *conf.Config, log *logger.Logger) (*data.Data, func(), error) {
	return data.NewData(config, log)
}

func provideWorkerPool(config *conf.Config, log *logger.Logger) (*workerpool.Pool, func(), error) {
	pool, err := workerpool.New(&config.WorkerPool, log.Named("workerpool").Logger)
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Shutdown, nil
}

func provideJWTManager(config *conf.Config) *auth.JWTManager {
	return auth.NewJWTManager(config.Auth.JWTSecret, config.Auth.JWTIssuer, config.Auth.TokenTTL)
}

// Repository providers

func provideListingRepo(d *data.Data) listingbiz.ListingRepo {
	return listingdata.NewListingRepo(d.DB)
}

func provideFavoritesReader(d *data.Data, config *conf.Config, log *logger.Logger) listingbiz.FavoritesReader {
	return favoritedata.NewFavoriteRepo(d.DB, d.Redis, config.Search.FavoritesCacheTTL, log.Named("favorites"))
}

func provideSavedSearchRepo(d *data.Data) savedsearchbiz.SavedSearchRepo {
	return savedsearchdata.NewSavedSearchRepo(d.DB)
}

// Use case providers

func provideDetector(
	repo savedsearchbiz.SavedSearchRepo,
	search *listingbiz.SearchUseCase,
	pool *workerpool.Pool,
	config *conf.Config,
	log *logger.Logger,
) *savedsearchbiz.Detector {
	return savedsearchbiz.NewDetector(repo, search, pool, savedsearchbiz.DetectorOptions{
		BatchSize:    config.Search.SweepBatchSize,
		CheckTimeout: config.Search.CheckTimeout,
	}, log)
}

// Server providers

func provideScheduler(
	config *conf.Config,
	detector *savedsearchbiz.Detector,
	d *data.Data,
	log *logger.Logger,
) (*job.Scheduler, func()) {
	scheduler := job.NewScheduler(&config.Scheduler, detector, d.Redis, log)
	return scheduler, scheduler.Stop
}
