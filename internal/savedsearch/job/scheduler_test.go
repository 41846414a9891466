package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/redis"
	"github.com/lk2023060901/vehicle-discovery/internal/savedsearch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
	// during runs inside CheckAll
	during func()
}

func (s *countingSweeper) CheckAll(context.Context) (*types.SweepSummary, error) {
	s.calls.Add(1)
	if s.during != nil {
		s.during()
	}
	if s.err != nil {
		return nil, s.err
	}
	return &types.SweepSummary{Checked: 2, NewMatches: 1}, nil
}

func newLocker(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := redis.DefaultConfig()
	cfg.Addr = mr.Addr()
	client, err := redis.New(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, (&Config{Enabled: false, Cron: "nonsense"}).Validate())
	assert.Error(t, (&Config{Enabled: true, Cron: "nonsense", LockTTL: time.Minute}).Validate())
	assert.Error(t, (&Config{Enabled: true, Cron: "@hourly"}).Validate())
}

func TestRunOnce_WithoutLocker(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewScheduler(nil, sweeper, nil, nil)

	summary, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Checked)
	assert.EqualValues(t, 1, sweeper.calls.Load())
}

func TestRunOnce_HoldsLock(t *testing.T) {
	locker, mr := newLocker(t)
	sweeper := &countingSweeper{}
	sweeper.during = func() {
		assert.True(t, mr.Exists(sweepLockKey))
	}
	s := NewScheduler(DefaultConfig(), sweeper, locker, nil)

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, mr.Exists(sweepLockKey))
}

func TestRunOnce_SkipsWhenLockHeld(t *testing.T) {
	locker, mr := newLocker(t)
	require.NoError(t, mr.Set(sweepLockKey, "other-instance"))
	sweeper := &countingSweeper{}
	s := NewScheduler(DefaultConfig(), sweeper, locker, nil)

	_, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrSweepInProgress)
	assert.EqualValues(t, 0, sweeper.calls.Load())
}

func TestRunOnce_PropagatesSweepError(t *testing.T) {
	locker, mr := newLocker(t)
	boom := errors.New("boom")
	s := NewScheduler(DefaultConfig(), &countingSweeper{err: boom}, locker, nil)

	_, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(sweepLockKey))
}

func TestStart_RunsOnSchedule(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewScheduler(&Config{Enabled: true, Cron: "@every 1s", LockTTL: time.Minute}, sweeper, nil, nil)

	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestStart_Disabled(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewScheduler(&Config{Enabled: false}, sweeper, nil, nil)

	require.NoError(t, s.Start())
	s.Stop()
	assert.EqualValues(t, 0, sweeper.calls.Load())
}

func TestStart_InvalidCron(t *testing.T) {
	s := NewScheduler(&Config{Enabled: true, Cron: "every so often"}, &countingSweeper{}, nil, nil)
	assert.Error(t, s.Start())
}
