package redis

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SMembers 获取集合所有成员
func (c *Client) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := c.rdb.SMembers(ctx, key).Result()
	if err != nil {
		c.logger.Error("redis smembers failed", zap.String("key", key), zap.Error(err))
	}
	return members, err
}

// CacheSet 在同一个 MULTI 中写入集合及其过期时间，读方不会看到没有 TTL 的集合
func (c *Client) CacheSet(ctx context.Context, key string, ttl time.Duration, members ...interface{}) error {
	pipe := c.rdb.TxPipeline()
	// 先删除旧集合，空成员时只做删除
	pipe.Del(ctx, key)
	if len(members) > 0 {
		pipe.SAdd(ctx, key, members...)
		pipe.Expire(ctx, key, ttl)
	}
	_, err := pipe.Exec(ctx)
	if err != nil {
		c.logger.Error("redis cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Eval 执行 Lua 脚本
func (c *Client) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	result, err := c.rdb.Eval(ctx, script, keys, args...).Result()
	if err != nil {
		c.logger.Error("redis eval failed", zap.Strings("keys", keys), zap.Error(err))
	}
	return result, err
}
