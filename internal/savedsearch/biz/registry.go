package biz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	listingbiz "github.com/lk2023060901/vehicle-discovery/internal/listing/biz"
	listingtypes "github.com/lk2023060901/vehicle-discovery/internal/listing/types"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/lk2023060901/vehicle-discovery/internal/savedsearch/types"
	"go.uber.org/zap"
)

// SavedSearchRepo persists saved searches
type SavedSearchRepo interface {
	Create(ctx context.Context, s *types.SavedSearch) error
	CountByPrincipal(ctx context.Context, principalID string) (int64, error)
	ListByPrincipal(ctx context.Context, principalID string) ([]*types.SavedSearch, error)
	// GetByID returns ErrSavedSearchNotFound when id does not exist
	GetByID(ctx context.Context, id string) (*types.SavedSearch, error)
	UpdateName(ctx context.Context, id, name string, updatedAt time.Time) error
	UpdateCheck(ctx context.Context, id string, newCount int, checkedAt time.Time) error
	Delete(ctx context.Context, id, principalID string) error
	// Walk visits every saved search in batches ordered by id
	Walk(ctx context.Context, batchSize int, fn func(batch []*types.SavedSearch) error) error
}

// Registry owns saved search lifecycle and the per-principal quota
type Registry struct {
	repo   SavedSearchRepo
	logger *logger.Logger
	now    func() time.Time
}

func NewRegistry(repo SavedSearchRepo, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNop()
	}
	return &Registry{
		repo:   repo,
		logger: log,
		now:    checkpointNow,
	}
}

// Create stores a new saved search. The quota check and the insert are not
// atomic: concurrent creates may exceed the quota.
func (r *Registry) Create(ctx context.Context, principalID, name string, criteria listingtypes.SearchCriteria) (*types.SavedSearch, error) {
	if principalID == "" {
		return nil, ErrPrincipalRequired
	}

	count, err := r.repo.CountByPrincipal(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", listingbiz.ErrStoreUnavailable, err)
	}
	if count >= types.MaxPerPrincipal {
		return nil, ErrQuotaExceeded
	}

	name = cleanName(name)
	if name == "" {
		name = DefaultName(criteria)
	}

	now := r.now()
	saved := &types.SavedSearch{
		ID:            uuid.New().String(),
		PrincipalID:   principalID,
		Name:          name,
		Criteria:      criteria,
		LastCheckedAt: now,
		NewMatchCount: 0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.repo.Create(ctx, saved); err != nil {
		return nil, fmt.Errorf("%w: %w", listingbiz.ErrStoreUnavailable, err)
	}

	r.logger.WithContext(ctx).Info("saved search created",
		zap.String("saved_search_id", saved.ID),
		zap.Int64("existing", count))

	return saved, nil
}

// List returns the principal's searches, oldest first
func (r *Registry) List(ctx context.Context, principalID string) ([]*types.SavedSearch, error) {
	if principalID == "" {
		return nil, ErrPrincipalRequired
	}

	searches, err := r.repo.ListByPrincipal(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", listingbiz.ErrStoreUnavailable, err)
	}
	return searches, nil
}

// Get returns ErrSavedSearchNotFound for missing searches and for non-owners
func (r *Registry) Get(ctx context.Context, id, principalID string) (*types.SavedSearch, error) {
	if principalID == "" {
		return nil, ErrPrincipalRequired
	}

	saved, err := r.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSavedSearchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", listingbiz.ErrStoreUnavailable, err)
	}
	if saved.PrincipalID != principalID {
		return nil, ErrSavedSearchNotFound
	}
	return saved, nil
}

// Rename changes the name of an owned search. It returns nil, nil when the
// search does not exist or belongs to someone else.
func (r *Registry) Rename(ctx context.Context, id, principalID, name string) (*types.SavedSearch, error) {
	name = cleanName(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	saved, err := r.Get(ctx, id, principalID)
	if errors.Is(err, ErrSavedSearchNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := r.now()
	if err := r.repo.UpdateName(ctx, id, name, now); err != nil {
		return nil, fmt.Errorf("%w: %w", listingbiz.ErrStoreUnavailable, err)
	}
	saved.Name = name
	saved.UpdatedAt = now

	return saved, nil
}

// Delete removes an owned search; missing ids and non-owners are a no-op
func (r *Registry) Delete(ctx context.Context, id, principalID string) error {
	if principalID == "" {
		return ErrPrincipalRequired
	}

	if err := r.repo.Delete(ctx, id, principalID); err != nil {
		return fmt.Errorf("%w: %w", listingbiz.ErrStoreUnavailable, err)
	}
	return nil
}

// DefaultName describes criteria in a few words
func DefaultName(c listingtypes.SearchCriteria) string {
	var parts []string
	for _, s := range []string{c.Brand, c.Model, c.Query, string(c.Category), c.City} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if c.Mode == listingtypes.ModeRent {
		parts = append(parts, "for rent")
	}
	if len(parts) == 0 {
		return "All vehicles"
	}
	return cleanName(strings.Join(parts, " "))
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) <= types.MaxNameLength {
		return name
	}
	return strings.TrimSpace(string([]rune(name)[:types.MaxNameLength]))
}

// checkpointNow is truncated to the precision postgres keeps
func checkpointNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
