package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lk2023060901/vehicle-discovery/internal/auth"
	"github.com/lk2023060901/vehicle-discovery/internal/auth/middleware"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/database"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/redis"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/workerpool"
	"github.com/lk2023060901/vehicle-discovery/internal/savedsearch/job"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig                 `mapstructure:"server"`
	Database   database.Config              `mapstructure:"database"`
	Redis      RedisConfig                  `mapstructure:"redis"`
	Log        logger.Config                `mapstructure:"log"`
	Auth       AuthConfig                   `mapstructure:"auth"`
	Scheduler  job.Config                   `mapstructure:"scheduler"`
	WorkerPool workerpool.Config            `mapstructure:"workerpool"`
	Search     SearchConfig                 `mapstructure:"search"`
	CORS       CORSConfig                   `mapstructure:"cors"`
	RateLimit  middleware.RateLimiterConfig `mapstructure:"ratelimit"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RedisConfig disables caching, locking and rate limiting when Enabled is false
type RedisConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	redis.Config `mapstructure:",squash"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTIssuer string        `mapstructure:"jwt_issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type SearchConfig struct {
	FavoritesCacheTTL time.Duration `mapstructure:"favorites_cache_ttl"`
	SweepBatchSize    int           `mapstructure:"sweep_batch_size"`
	CheckTimeout      time.Duration `mapstructure:"check_timeout"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"` // seconds
}

// LoadConfig reads an optional .env, then the YAML file at path. Environment
// variables override file values, e.g. AUTH_JWT_SECRET for auth.jwt_secret.
func LoadConfig(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks every section
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if c.Redis.Enabled {
		if err := c.Redis.Config.Validate(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth: jwt_secret is required")
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if c.WorkerPool.Workers <= 0 {
		return fmt.Errorf("workerpool: workers must be > 0, got %d", c.WorkerPool.Workers)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	db := database.DefaultConfig()
	v.SetDefault("database.driver", db.Driver)
	v.SetDefault("database.host", db.Host)
	v.SetDefault("database.port", db.Port)
	v.SetDefault("database.user", db.User)
	v.SetDefault("database.password", db.Password)
	v.SetDefault("database.dbname", db.DBName)
	v.SetDefault("database.sslmode", db.SSLMode)
	v.SetDefault("database.timezone", db.Timezone)
	v.SetDefault("database.path", "discovery.db")
	v.SetDefault("database.maxidleconns", db.MaxIdleConns)
	v.SetDefault("database.maxopenconns", db.MaxOpenConns)
	v.SetDefault("database.connmaxlifetime", db.ConnMaxLifetime)
	v.SetDefault("database.connmaxidletime", db.ConnMaxIdleTime)
	v.SetDefault("database.loglevel", db.LogLevel)
	v.SetDefault("database.slowthreshold", db.SlowThreshold)
	v.SetDefault("database.preparestmt", db.PrepareStmt)
	v.SetDefault("database.automigrate", db.AutoMigrate)

	rd := redis.DefaultConfig()
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.mode", string(rd.Mode))
	v.SetDefault("redis.addr", rd.Addr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", rd.DB)
	v.SetDefault("redis.pool_size", rd.PoolSize)
	v.SetDefault("redis.min_idle_conns", rd.MinIdleConns)
	v.SetDefault("redis.dial_timeout", rd.DialTimeout)
	v.SetDefault("redis.read_timeout", rd.ReadTimeout)
	v.SetDefault("redis.write_timeout", rd.WriteTimeout)
	v.SetDefault("redis.pool_timeout", rd.PoolTimeout)
	v.SetDefault("redis.max_retries", rd.MaxRetries)
	v.SetDefault("redis.conn_max_idle_time", rd.ConnMaxIdleTime)

	lg := logger.DefaultConfig()
	v.SetDefault("log.level", lg.Level)
	v.SetDefault("log.format", lg.Format)
	v.SetDefault("log.output", lg.Output)
	v.SetDefault("log.service", lg.Service)
	v.SetDefault("log.enablecaller", lg.EnableCaller)
	v.SetDefault("log.enablestacktrace", lg.EnableStacktrace)
	v.SetDefault("log.file.filename", lg.File.Filename)
	v.SetDefault("log.file.maxsize", lg.File.MaxSize)
	v.SetDefault("log.file.maxage", lg.File.MaxAge)
	v.SetDefault("log.file.maxbackups", lg.File.MaxBackups)
	v.SetDefault("log.file.compress", lg.File.Compress)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "vehicle-discovery")
	v.SetDefault("auth.token_ttl", auth.DefaultTokenTTL)

	sc := job.DefaultConfig()
	v.SetDefault("scheduler.enabled", sc.Enabled)
	v.SetDefault("scheduler.cron", sc.Cron)
	v.SetDefault("scheduler.lock_ttl", sc.LockTTL)

	wp := workerpool.DefaultConfig()
	v.SetDefault("workerpool.workers", wp.Workers)
	v.SetDefault("workerpool.max_blocking_tasks", wp.MaxBlockingTasks)
	v.SetDefault("workerpool.nonblocking", wp.Nonblocking)
	v.SetDefault("workerpool.release_timeout", wp.ReleaseTimeout)

	v.SetDefault("search.favorites_cache_ttl", 2*time.Minute)
	v.SetDefault("search.sweep_batch_size", 100)
	v.SetDefault("search.check_timeout", 30*time.Second)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 600)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.max_requests", 30)
	v.SetDefault("ratelimit.window_seconds", 60)
	v.SetDefault("ratelimit.strategy", "user")
}
