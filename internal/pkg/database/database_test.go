package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type widget struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	Size      int
	CreatedAt time.Time
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(SQLiteConfig(filepath.Join(t.TempDir(), "test.db")), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate(&widget{}))
	return db
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "default config", mutate: func(c *Config) {}},
		{name: "missing host", mutate: func(c *Config) { c.Host = "" }, wantErr: true},
		{name: "invalid port", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "invalid SSL mode", mutate: func(c *Config) { c.SSLMode = "invalid" }, wantErr: true},
		{name: "invalid log level", mutate: func(c *Config) { c.LogLevel = "invalid" }, wantErr: true},
		{name: "idle exceeds open", mutate: func(c *Config) { c.MaxIdleConns = 200 }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Driver = "oracle" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Driver = DriverSQLite }, wantErr: true},
		{name: "sqlite ignores host", mutate: func(c *Config) {
			c.Driver = DriverSQLite
			c.Path = "x.db"
			c.Host = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigDSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "db"
	cfg.Password = "secret"
	assert.Equal(t, "host=db port=5432 user=postgres password=secret dbname=marketplace sslmode=disable TimeZone=UTC", cfg.DSN())

	assert.Equal(t, "/tmp/a.db", SQLiteConfig("/tmp/a.db").DSN())
}

func TestNew_SQLite(t *testing.T) {
	db := newTestDB(t)

	assert.NoError(t, db.HealthCheck(context.Background()))
	assert.Equal(t, DriverSQLite, db.Config().Driver)
	assert.NotNil(t, db.GetDB())
}

func TestScopes(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rows := []widget{
		{Name: "Red_Car"}, {Name: "red car", Size: 1}, {Name: "Blue 100%", Size: 2}, {Name: "green", Size: 3},
	}
	require.NoError(t, BatchInsert(ctx, db.DB, &rows, 2))

	t.Run("contains fold", func(t *testing.T) {
		var got []widget
		require.NoError(t, db.Scopes(ContainsFold("name", "RED")).Find(&got).Error)
		assert.Len(t, got, 2)
	})

	t.Run("like wildcards are literal", func(t *testing.T) {
		var got []widget
		require.NoError(t, db.Scopes(ContainsFold("name", "d_c")).Find(&got).Error)
		require.Len(t, got, 1)
		assert.Equal(t, "Red_Car", got[0].Name)

		got = nil
		require.NoError(t, db.Scopes(ContainsFold("name", "0%")).Find(&got).Error)
		require.Len(t, got, 1)
		assert.Equal(t, "Blue 100%", got[0].Name)
	})

	t.Run("where if", func(t *testing.T) {
		var got []widget
		require.NoError(t, db.Scopes(WhereIf(false, "size > ?", 1)).Find(&got).Error)
		assert.Len(t, got, 4)

		got = nil
		require.NoError(t, db.Scopes(WhereIf(true, "size > ?", 1)).Find(&got).Error)
		assert.Len(t, got, 2)
	})

	t.Run("order and paginate", func(t *testing.T) {
		var got []widget
		require.NoError(t, db.Scopes(OrderBy("size", true), Paginate(2, 3)).Find(&got).Error)
		require.Len(t, got, 1)
		assert.Equal(t, 0, got[0].Size)
	})

	t.Run("count", func(t *testing.T) {
		n, err := Count(ctx, db.DB, &widget{}, "size >= ?", 2)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("find in batches", func(t *testing.T) {
		var batch []widget
		seen := 0
		err := FindInBatches(ctx, db.DB, &batch, 3, func(tx *gorm.DB, n int) error {
			seen += len(batch)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 4, seen)
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, EscapeLike(`a%b_c\d`))
}

func TestTransaction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tm := NewTransactionManager(db)

	// a serialization failure is retried and the second attempt commits
	attempts := 0
	err := tm.ExecuteWithRetry(ctx, 2, func(tx *gorm.DB) error {
		attempts++
		if err := tx.Create(&widget{Name: "kept"}).Error; err != nil {
			return err
		}
		if attempts == 1 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	boom := errors.New("boom")
	err = tm.ExecuteWithRetry(ctx, 2, func(tx *gorm.DB) error {
		if err := tx.Create(&widget{Name: "rolled back"}).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := Count(ctx, db.DB, &widget{}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRetryableError(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, IsRetryableError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsRetryableError(errors.New("serialization failure")))
	assert.False(t, IsRetryableError(nil))
}

type tagged struct {
	ID   uint `gorm:"primaryKey"`
	Tags StringArray
}

func TestStringArray(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrate(&tagged{}))

	require.NoError(t, db.Create(&tagged{Tags: StringArray{"ABS", "Navigation"}}).Error)
	require.NoError(t, db.Create(&tagged{}).Error)

	var rows []tagged
	require.NoError(t, db.Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, StringArray{"ABS", "Navigation"}, rows[0].Tags)
	assert.Empty(t, rows[1].Tags)

	var a StringArray
	assert.Error(t, a.Scan(42))
	require.NoError(t, a.Scan(nil))
	assert.NotNil(t, a)
}
