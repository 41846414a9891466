package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/lk2023060901/vehicle-discovery/internal/pkg/errors"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/redis"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/response"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/validator"
	"go.uber.org/zap"
)

// RateLimiterConfig bounds requests per window
type RateLimiterConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	MaxRequests   int    `mapstructure:"max_requests"`
	WindowSeconds int    `mapstructure:"window_seconds"`
	Strategy      string `mapstructure:"strategy"` // user, endpoint, ip
}

// sliding window over a sorted set scored in milliseconds
const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local current = redis.call('ZCARD', key)
if current < limit then
	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window)
	return {1, limit - current - 1, now + window}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')[2]
return {0, 0, tonumber(oldest) + window}
`

// RateLimiter is a redis sliding-window limiter. Redis failures let the request through.
func RateLimiter(redisClient *redis.Client, cfg RateLimiterConfig, log *logger.Logger) gin.HandlerFunc {
	if !cfg.Enabled || redisClient == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 100
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = 60
	}
	if cfg.Strategy == "" {
		cfg.Strategy = "ip"
	}

	return func(c *gin.Context) {
		key := buildRateLimitKey(c, cfg.Strategy)
		allowed, remaining, resetAt, err := checkRateLimit(c.Request.Context(), redisClient, key, cfg)
		if err != nil {
			log.Error("rate limiter error", zap.Error(err), zap.String("key", key))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			retry := int(time.Until(resetAt).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			response.ErrorWithCode(c, apperrors.ErrTooManyRequests, fmt.Sprintf("try again in %d seconds", retry))
			c.Abort()
			return
		}

		c.Next()
	}
}

func buildRateLimitKey(c *gin.Context, strategy string) string {
	const prefix = "rate_limit"
	ip := validator.ClientKey(c.ClientIP(), "unknown")

	switch strategy {
	case "user":
		if principal, ok := CurrentPrincipal(c); ok {
			return fmt.Sprintf("%s:user:%s", prefix, principal)
		}
		return fmt.Sprintf("%s:ip:%s", prefix, ip)
	case "endpoint":
		return fmt.Sprintf("%s:endpoint:%s:%s", prefix, c.FullPath(), ip)
	default:
		return fmt.Sprintf("%s:ip:%s", prefix, ip)
	}
}

func checkRateLimit(ctx context.Context, redisClient *redis.Client, key string, cfg RateLimiterConfig) (bool, int, time.Time, error) {
	now := time.Now().UnixMilli()
	window := int64(cfg.WindowSeconds) * 1000

	result, err := redisClient.Eval(ctx, slidingWindowScript, []string{key},
		now, window, cfg.MaxRequests, uuid.NewString())
	if err != nil {
		return false, 0, time.Time{}, err
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 3 {
		return false, 0, time.Time{}, fmt.Errorf("invalid rate limit result: %v", result)
	}

	allowed, _ := values[0].(int64)
	remaining, _ := values[1].(int64)
	resetAt, _ := values[2].(int64)

	return allowed == 1, int(remaining), time.UnixMilli(resetAt), nil
}
