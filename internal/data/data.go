package data

import (
	"fmt"

	"github.com/lk2023060901/vehicle-discovery/internal/conf"
	favoritedata "github.com/lk2023060901/vehicle-discovery/internal/favorite/data"
	listingdata "github.com/lk2023060901/vehicle-discovery/internal/listing/data"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/database"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/redis"
	savedsearchdata "github.com/lk2023060901/vehicle-discovery/internal/savedsearch/data"
	"go.uber.org/zap"
)

// Data holds the shared store handles. Redis is nil when disabled.
type Data struct {
	DB     *database.DB
	Redis  *redis.Client
	Logger *logger.Logger
}

// Models lists every table this service owns or reads
func Models() []interface{} {
	return []interface{}{
		&listingdata.ListingPO{},
		&favoritedata.FavoritePO{},
		&savedsearchdata.SavedSearchPO{},
	}
}

func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	db, err := database.New(&config.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to auto migrate: %w", err)
	}

	var redisClient *redis.Client
	if config.Redis.Enabled {
		redisClient, err = redis.New(&config.Redis.Config, log)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	} else {
		log.Warn("redis disabled: favorites cache, sweep lock and rate limiting are off")
	}

	d := &Data{
		DB:     db,
		Redis:  redisClient,
		Logger: log,
	}

	cleanup := func() {
		log.Info("cleaning up data resources")

		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Warn("close redis", zap.Error(err))
			}
		}
		if err := db.Close(); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}

	return d, cleanup, nil
}
