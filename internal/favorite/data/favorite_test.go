package data

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/database"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(database.SQLiteConfig(filepath.Join(t.TempDir(), "favorites.db")), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(&FavoritePO{}))
	return db
}

func newTestCache(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := redis.DefaultConfig()
	cfg.Addr = mr.Addr()
	cfg.MaxRetries = 0
	client, err := redis.New(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func addFavorite(t *testing.T, db *database.DB, principalID string, listingID int64) {
	t.Helper()
	require.NoError(t, db.GetDB().Create(&FavoritePO{
		PrincipalID: principalID,
		ListingID:   listingID,
		CreatedAt:   time.Now().UTC(),
	}).Error)
}

func TestFavoritesOf_WithoutCache(t *testing.T) {
	db := newTestDB(t)
	addFavorite(t, db, "alice", 1)
	addFavorite(t, db, "alice", 7)
	addFavorite(t, db, "bob", 3)

	repo := NewFavoriteRepo(db, nil, 0, nil)
	ctx := context.Background()

	favs, err := repo.FavoritesOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, map[int64]struct{}{1: {}, 7: {}}, favs)

	favs, err = repo.FavoritesOf(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, favs)

	favs, err = repo.FavoritesOf(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestFavoritesOf_ReadThroughCache(t *testing.T) {
	db := newTestDB(t)
	cache, mr := newTestCache(t)
	addFavorite(t, db, "alice", 1)

	repo := NewFavoriteRepo(db, cache, time.Minute, nil).(*FavoriteRepo)
	ctx := context.Background()

	favs, err := repo.FavoritesOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, map[int64]struct{}{1: {}}, favs)
	assert.True(t, mr.Exists("favorites:alice"))
	assert.Equal(t, time.Minute, mr.TTL("favorites:alice"))

	// served from cache until the entry expires
	addFavorite(t, db, "alice", 2)
	favs, err = repo.FavoritesOf(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, favs, 1)

	mr.FastForward(time.Minute)
	favs, err = repo.FavoritesOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, map[int64]struct{}{1: {}, 2: {}}, favs)
}

func TestFavoritesOf_CachesEmptySet(t *testing.T) {
	db := newTestDB(t)
	cache, mr := newTestCache(t)

	repo := NewFavoriteRepo(db, cache, time.Minute, nil)
	ctx := context.Background()

	favs, err := repo.FavoritesOf(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, favs)
	require.True(t, mr.Exists("favorites:carol"))

	addFavorite(t, db, "carol", 9)
	favs, err = repo.FavoritesOf(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, favs)

	mr.FastForward(2 * time.Minute)
	favs, err = repo.FavoritesOf(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, map[int64]struct{}{9: {}}, favs)
}

func TestFavoritesOf_CacheDownFallsBackToDB(t *testing.T) {
	db := newTestDB(t)
	cache, mr := newTestCache(t)
	addFavorite(t, db, "alice", 5)
	mr.Close()

	repo := NewFavoriteRepo(db, cache, time.Minute, nil)
	favs, err := repo.FavoritesOf(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, map[int64]struct{}{5: {}}, favs)
}

func TestFavoritesOf_DBError(t *testing.T) {
	db := newTestDB(t)
	repo := NewFavoriteRepo(db, nil, 0, nil)
	require.NoError(t, db.Close())

	_, err := repo.FavoritesOf(context.Background(), "alice")
	assert.Error(t, err)
}
