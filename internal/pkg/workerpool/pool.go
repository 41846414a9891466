package workerpool

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var (
	ErrPoolClosed = errors.New("worker pool is closed")
	ErrPoolFull   = errors.New("worker pool is full")
)

// Config 协程池配置
type Config struct {
	Workers          int           `mapstructure:"workers"`
	MaxBlockingTasks int           `mapstructure:"max_blocking_tasks"` // 0 means unbounded
	Nonblocking      bool          `mapstructure:"nonblocking"`        // fail fast with ErrPoolFull
	ReleaseTimeout   time.Duration `mapstructure:"release_timeout"`
}

// DefaultConfig returns a small pool suited to background sweeps
func DefaultConfig() *Config {
	return &Config{
		Workers:        8,
		ReleaseTimeout: 10 * time.Second,
	}
}

// Statistics 任务统计
type Statistics struct {
	Submitted int64
	Completed int64
	Failed    int64
}

// Pool runs tasks on an ants goroutine pool
type Pool struct {
	pool   *ants.Pool
	config *Config
	logger *zap.Logger

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// New 创建协程池
func New(config *Config, logger *zap.Logger) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Workers <= 0 {
		return nil, fmt.Errorf("workers must be > 0, got %d", config.Workers)
	}

	p := &Pool{config: config, logger: logger}

	antsPool, err := ants.NewPool(config.Workers,
		ants.WithNonblocking(config.Nonblocking),
		ants.WithMaxBlockingTasks(config.MaxBlockingTasks),
		ants.WithPanicHandler(func(r interface{}) {
			logger.Error("worker panic", zap.Any("error", r))
			p.failed.Add(1)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}
	p.pool = antsPool

	return p, nil
}

// Submit queues task for execution
func (p *Pool) Submit(task func()) error {
	err := p.pool.Submit(func() {
		task()
		p.completed.Add(1)
	})
	switch {
	case errors.Is(err, ants.ErrPoolClosed):
		return ErrPoolClosed
	case errors.Is(err, ants.ErrPoolOverload):
		return ErrPoolFull
	case err != nil:
		return err
	}

	p.submitted.Add(1)
	return nil
}

// Running returns the number of busy workers
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Free returns the number of idle workers
func (p *Pool) Free() int {
	return p.pool.Free()
}

// Stats returns a snapshot of task counters
func (p *Pool) Stats() Statistics {
	return Statistics{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
	}
}

// Shutdown waits for running tasks up to ReleaseTimeout, then releases the pool
func (p *Pool) Shutdown() {
	timeout := p.config.ReleaseTimeout
	if timeout <= 0 {
		p.pool.Release()
		return
	}
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		p.logger.Warn("worker pool release timed out", zap.Duration("timeout", timeout), zap.Error(err))
	}
}
