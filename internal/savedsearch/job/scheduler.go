package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/redis"
	"github.com/lk2023060901/vehicle-discovery/internal/savedsearch/types"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepLockKey = "lock:savedsearch:sweep"

// ErrSweepInProgress means another instance holds the sweep lock
var ErrSweepInProgress = errors.New("saved search sweep already running")

// Config controls the periodic change-detection sweep
type Config struct {
	Enabled bool          `mapstructure:"enabled"`
	Cron    string        `mapstructure:"cron"`
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		Cron:    "@every 30m",
		LockTTL: 10 * time.Minute,
	}
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if _, err := cron.ParseStandard(c.Cron); err != nil {
		return fmt.Errorf("invalid scheduler cron %q: %w", c.Cron, err)
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("scheduler lock_ttl must be positive")
	}
	return nil
}

// Sweeper checks every saved search once
type Sweeper interface {
	CheckAll(ctx context.Context) (*types.SweepSummary, error)
}

// Scheduler runs sweeps on a cron schedule. With a redis client, only one
// instance sweeps at a time.
type Scheduler struct {
	config  *Config
	sweeper Sweeper
	locker  *redis.Client
	logger  *logger.Logger

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewScheduler creates a scheduler. locker may be nil.
func NewScheduler(config *Config, sweeper Sweeper, locker *redis.Client, log *logger.Logger) *Scheduler {
	if config == nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = logger.NewNop()
	}
	log = log.Named("savedsearch.sweep")

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		config:  config,
		sweeper: sweeper,
		locker:  locker,
		logger:  log,
		cron: cron.New(
			cron.WithLogger(cronLogger{log.Sugar()}),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{log.Sugar()})),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// RunOnce performs one sweep, holding the distributed lock when configured
func (s *Scheduler) RunOnce(ctx context.Context) (*types.SweepSummary, error) {
	if s.locker == nil {
		return s.sweeper.CheckAll(ctx)
	}

	var summary *types.SweepSummary
	err := s.locker.WithLock(ctx, sweepLockKey, s.config.LockTTL, func() error {
		var err error
		summary, err = s.sweeper.CheckAll(ctx)
		return err
	})
	if redis.IsLockNotHeld(err) {
		return nil, ErrSweepInProgress
	}
	return summary, err
}

// Start registers the sweep and starts the cron loop. Disabled schedulers do nothing.
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Info("saved search sweep disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.Cron, func() {
		start := time.Now()
		summary, err := s.RunOnce(s.ctx)
		switch {
		case errors.Is(err, ErrSweepInProgress):
			s.logger.Info("sweep skipped, lock held elsewhere")
		case err != nil:
			s.logger.Error("sweep failed", zap.Error(err))
		default:
			s.logger.Info("sweep completed",
				zap.Int("checked", summary.Checked),
				zap.Int("failed", summary.Failed),
				zap.Duration("duration", time.Since(start)))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	s.cron.Start()
	s.logger.Info("saved search sweep scheduled", zap.String("cron", s.config.Cron))
	return nil
}

// Stop cancels a running sweep and waits for it to return
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.cron.Stop().Done()
	})
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
