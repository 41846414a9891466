package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := DefaultConfig()
	cfg.Addr = mr.Addr()
	client, err := New(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "default", mutate: func(c *Config) {}},
		{name: "missing addr", mutate: func(c *Config) { c.Addr = "" }, wantErr: true},
		{name: "sentinel without master", mutate: func(c *Config) {
			c.Mode = ModeSentinel
			c.SentinelAddrs = []string{"s:26379"}
		}, wantErr: true},
		{name: "cluster", mutate: func(c *Config) {
			c.Mode = ModeCluster
			c.ClusterAddrs = []string{"a:7000"}
		}},
		{name: "unknown mode", mutate: func(c *Config) { c.Mode = "ring" }, wantErr: true},
		{name: "bad db", mutate: func(c *Config) { c.DB = 16 }, wantErr: true},
		{name: "idle over pool", mutate: func(c *Config) { c.MinIdleConns = 50 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestNew_Unreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:1"
	cfg.DialTimeout = 100 * time.Millisecond
	cfg.MaxRetries = 0

	_, err := New(cfg, logger.NewNop())
	assert.Error(t, err)
}

func TestCacheSet(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	members, err := client.SMembers(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, members)

	require.NoError(t, client.CacheSet(ctx, "s", time.Minute, "1", "2"))
	members, err = client.SMembers(ctx, "s")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2"}, members)
	assert.Equal(t, time.Minute, mr.TTL("s"))

	// a rewrite replaces the members and the TTL
	require.NoError(t, client.CacheSet(ctx, "s", 30*time.Second, "3"))
	members, err = client.SMembers(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, members)
	assert.Equal(t, 30*time.Second, mr.TTL("s"))

	// empty members clears the key
	require.NoError(t, client.CacheSet(ctx, "s", time.Minute))
	assert.False(t, mr.Exists("s"))
}

func TestEval(t *testing.T) {
	client, _ := newTestClient(t)

	res, err := client.Eval(context.Background(), "return ARGV[1]", nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", res)
}

func TestLock(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	token, err := client.Lock(ctx, "lock:a", time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = client.Lock(ctx, "lock:a", time.Minute)
	assert.True(t, IsLockNotHeld(err))

	assert.Error(t, client.Unlock(ctx, "lock:a", "wrong"))
	require.NoError(t, client.Unlock(ctx, "lock:a", token))
	assert.False(t, mr.Exists("lock:a"))
}

func TestWithLock(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	ran := false
	err := client.WithLock(ctx, "lock:b", time.Minute, func() error {
		ran = true
		assert.True(t, mr.Exists("lock:b"))

		// nested attempt is rejected
		inner := client.WithLock(ctx, "lock:b", time.Minute, func() error { return nil })
		assert.True(t, IsLockNotHeld(inner))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, mr.Exists("lock:b"))

	boom := errors.New("boom")
	err = client.WithLock(ctx, "lock:b", time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("lock:b"))
}
