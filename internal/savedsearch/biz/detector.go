package biz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	listingbiz "github.com/lk2023060901/vehicle-discovery/internal/listing/biz"
	listingtypes "github.com/lk2023060901/vehicle-discovery/internal/listing/types"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/workerpool"
	"github.com/lk2023060901/vehicle-discovery/internal/savedsearch/types"
	"go.uber.org/zap"
)

const (
	DefaultSweepBatchSize = 100
	DefaultCheckTimeout   = 30 * time.Second
)

// Matcher re-runs criteria against the listing store without pagination and
// counts the matches created strictly after since
type Matcher interface {
	CountNewSince(ctx context.Context, criteria listingtypes.SearchCriteria, since time.Time) (int, error)
}

// DetectorOptions tunes CheckAll
type DetectorOptions struct {
	BatchSize    int
	CheckTimeout time.Duration
}

// Detector counts listings created since a saved search was last checked
type Detector struct {
	repo    SavedSearchRepo
	matcher Matcher
	pool    *workerpool.Pool
	opts    DetectorOptions
	logger  *logger.Logger
	now     func() time.Time
}

// NewDetector creates a detector. pool may be nil, in which case CheckAll runs
// checks sequentially.
func NewDetector(repo SavedSearchRepo, matcher Matcher, pool *workerpool.Pool, opts DetectorOptions, log *logger.Logger) *Detector {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultSweepBatchSize
	}
	if opts.CheckTimeout <= 0 {
		opts.CheckTimeout = DefaultCheckTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Detector{
		repo:    repo,
		matcher: matcher,
		pool:    pool,
		opts:    opts,
		logger:  log,
		now:     checkpointNow,
	}
}

// Check recomputes saved.NewMatchCount from scratch and advances its
// checkpoint. saved is updated in place once the new state is persisted.
func (d *Detector) Check(ctx context.Context, saved *types.SavedSearch) (int, time.Time, error) {
	now := d.now()

	count, err := d.matcher.CountNewSince(ctx, saved.Criteria, saved.LastCheckedAt)
	if err != nil {
		return 0, time.Time{}, err
	}

	if err := d.repo.UpdateCheck(ctx, saved.ID, count, now); err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: %w", listingbiz.ErrStoreUnavailable, err)
	}
	saved.NewMatchCount = count
	saved.LastCheckedAt = now

	return count, now, nil
}

// CheckByID checks a search owned by principalID
func (d *Detector) CheckByID(ctx context.Context, id, principalID string) (*types.CheckResult, error) {
	if principalID == "" {
		return nil, ErrPrincipalRequired
	}

	saved, err := d.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSavedSearchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", listingbiz.ErrStoreUnavailable, err)
	}
	if saved.PrincipalID != principalID {
		return nil, ErrSavedSearchNotFound
	}

	count, checkpoint, err := d.Check(ctx, saved)
	if err != nil {
		return nil, err
	}
	return &types.CheckResult{NewCount: count, LastCheckedAt: checkpoint}, nil
}

// CheckAll checks every saved search. Individual failures are logged and
// counted; only a failure to enumerate searches aborts the sweep.
func (d *Detector) CheckAll(ctx context.Context) (*types.SweepSummary, error) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		summary types.SweepSummary
	)

	record := func(saved *types.SavedSearch, count int, err error) {
		mu.Lock()
		defer mu.Unlock()
		summary.Checked++
		if err != nil {
			summary.Failed++
			d.logger.WithContext(ctx).Warn("saved search check failed",
				zap.String("saved_search_id", saved.ID),
				zap.Error(err))
			return
		}
		summary.NewMatches += count
	}

	run := func(saved *types.SavedSearch) {
		checkCtx, cancel := context.WithTimeout(ctx, d.opts.CheckTimeout)
		defer cancel()
		count, _, err := d.Check(checkCtx, saved)
		record(saved, count, err)
	}

	walkErr := d.repo.Walk(ctx, d.opts.BatchSize, func(batch []*types.SavedSearch) error {
		for _, saved := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.pool == nil {
				run(saved)
				continue
			}

			wg.Add(1)
			err := d.pool.Submit(func() {
				defer wg.Done()
				run(saved)
			})
			switch {
			case errors.Is(err, workerpool.ErrPoolFull):
				wg.Done()
				run(saved)
			case err != nil:
				wg.Done()
				return err
			}
		}
		return nil
	})
	wg.Wait()

	if walkErr != nil {
		return &summary, fmt.Errorf("saved search sweep aborted: %w", walkErr)
	}

	fields := []zap.Field{
		zap.Int("checked", summary.Checked),
		zap.Int("failed", summary.Failed),
		zap.Int("new_matches", summary.NewMatches),
	}
	if d.pool != nil {
		stats := d.pool.Stats()
		fields = append(fields, zap.Int64("pool_submitted", stats.Submitted), zap.Int64("pool_completed", stats.Completed))
	}
	d.logger.WithContext(ctx).Info("saved search sweep finished", fields...)

	return &summary, nil
}
