package data

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/lk2023060901/vehicle-discovery/internal/listing/biz"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/database"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/redis"
	"go.uber.org/zap"
)

const (
	DefaultCacheTTL = 2 * time.Minute

	cacheKeyPrefix = "favorites:"
	// emptyMarker lets an empty favorites set be cached; listing ids are positive
	emptyMarker = "0"
)

// FavoritePO is a row of listing_favorites, written by the marketplace
type FavoritePO struct {
	PrincipalID string    `gorm:"primaryKey;size:64"`
	ListingID   int64     `gorm:"primaryKey;index:idx_listing_favorites_listing_id"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (FavoritePO) TableName() string {
	return "listing_favorites"
}

// FavoriteRepo reads favorites through an optional redis set cache
type FavoriteRepo struct {
	db     *database.DB
	cache  *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewFavoriteRepo creates the favorites read-model. cache may be nil.
func NewFavoriteRepo(db *database.DB, cache *redis.Client, ttl time.Duration, log *logger.Logger) biz.FavoritesReader {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &FavoriteRepo{
		db:     db,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

// FavoritesOf returns the listing ids the principal marked as favorite
func (r *FavoriteRepo) FavoritesOf(ctx context.Context, principalID string) (map[int64]struct{}, error) {
	if principalID == "" {
		return map[int64]struct{}{}, nil
	}

	if favs, ok := r.fromCache(ctx, principalID); ok {
		return favs, nil
	}

	var listingIDs []int64
	err := r.db.GetDB().WithContext(ctx).
		Model(&FavoritePO{}).
		Where("principal_id = ?", principalID).
		Pluck("listing_id", &listingIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	favs := make(map[int64]struct{}, len(listingIDs))
	for _, id := range listingIDs {
		favs[id] = struct{}{}
	}
	r.toCache(ctx, principalID, listingIDs)

	return favs, nil
}

func (r *FavoriteRepo) fromCache(ctx context.Context, principalID string) (map[int64]struct{}, bool) {
	if r.cache == nil {
		return nil, false
	}

	members, err := r.cache.SMembers(ctx, cacheKey(principalID))
	if err != nil {
		r.logger.WithContext(ctx).Warn("favorites cache read failed", zap.Error(err))
		return nil, false
	}
	if len(members) == 0 {
		return nil, false
	}

	favs := make(map[int64]struct{}, len(members))
	for _, m := range members {
		if m == emptyMarker {
			continue
		}
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		favs[id] = struct{}{}
	}
	return favs, true
}

func (r *FavoriteRepo) toCache(ctx context.Context, principalID string, listingIDs []int64) {
	if r.cache == nil {
		return
	}

	members := make([]interface{}, 0, len(listingIDs)+1)
	members = append(members, emptyMarker)
	for _, id := range listingIDs {
		members = append(members, strconv.FormatInt(id, 10))
	}

	if err := r.cache.CacheSet(ctx, cacheKey(principalID), r.ttl, members...); err != nil {
		r.logger.WithContext(ctx).Warn("favorites cache write failed", zap.Error(err))
	}
}

func cacheKey(principalID string) string {
	return cacheKeyPrefix + principalID
}
