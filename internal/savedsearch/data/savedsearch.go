package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	listingbiz "github.com/lk2023060901/vehicle-discovery/internal/listing/biz"
	listingtypes "github.com/lk2023060901/vehicle-discovery/internal/listing/types"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/database"
	"github.com/lk2023060901/vehicle-discovery/internal/savedsearch/biz"
	"github.com/lk2023060901/vehicle-discovery/internal/savedsearch/types"
	"gorm.io/gorm"
)

// SavedSearchPO stores the criteria as canonical raw params in JSON
type SavedSearchPO struct {
	ID            string    `gorm:"primaryKey;size:36"`
	PrincipalID   string    `gorm:"size:64;not null;index:idx_saved_searches_principal_id"`
	Name          string    `gorm:"size:255;not null"`
	Criteria      string    `gorm:"type:text;not null"`
	LastCheckedAt time.Time `gorm:"not null"`
	NewMatchCount int       `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (SavedSearchPO) TableName() string {
	return "saved_searches"
}

func fromSavedSearch(s *types.SavedSearch) (*SavedSearchPO, error) {
	criteria, err := json.Marshal(s.Criteria.Params())
	if err != nil {
		return nil, fmt.Errorf("failed to encode criteria: %w", err)
	}
	return &SavedSearchPO{
		ID:            s.ID,
		PrincipalID:   s.PrincipalID,
		Name:          s.Name,
		Criteria:      string(criteria),
		LastCheckedAt: s.LastCheckedAt.UTC(),
		NewMatchCount: s.NewMatchCount,
		CreatedAt:     s.CreatedAt.UTC(),
		UpdatedAt:     s.UpdatedAt.UTC(),
	}, nil
}

// toSavedSearch re-normalizes the stored params, so snapshots written by
// older versions still load as valid criteria
func (po *SavedSearchPO) toSavedSearch() (*types.SavedSearch, error) {
	var raw listingtypes.RawParams
	if err := raw.UnmarshalJSON([]byte(po.Criteria)); err != nil {
		return nil, fmt.Errorf("saved search %s: %w", po.ID, err)
	}
	return &types.SavedSearch{
		ID:            po.ID,
		PrincipalID:   po.PrincipalID,
		Name:          po.Name,
		Criteria:      listingbiz.Normalize(raw),
		LastCheckedAt: po.LastCheckedAt.UTC(),
		NewMatchCount: po.NewMatchCount,
		CreatedAt:     po.CreatedAt.UTC(),
		UpdatedAt:     po.UpdatedAt.UTC(),
	}, nil
}

// SavedSearchRepo implements biz.SavedSearchRepo with gorm
type SavedSearchRepo struct {
	db *database.DB
}

func NewSavedSearchRepo(db *database.DB) biz.SavedSearchRepo {
	return &SavedSearchRepo{db: db}
}

func (r *SavedSearchRepo) Create(ctx context.Context, s *types.SavedSearch) error {
	po, err := fromSavedSearch(s)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return fmt.Errorf("failed to create saved search: %w", err)
	}
	return nil
}

func (r *SavedSearchRepo) CountByPrincipal(ctx context.Context, principalID string) (int64, error) {
	count, err := database.Count(ctx, r.db.GetDB(), &SavedSearchPO{}, "principal_id = ?", principalID)
	if err != nil {
		return 0, fmt.Errorf("failed to count saved searches: %w", err)
	}
	return count, nil
}

func (r *SavedSearchRepo) ListByPrincipal(ctx context.Context, principalID string) ([]*types.SavedSearch, error) {
	var rows []*SavedSearchPO
	err := r.db.WithContext(ctx).
		Where("principal_id = ?", principalID).
		Scopes(database.OrderBy("created_at", false), database.OrderBy("id", false)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list saved searches: %w", err)
	}
	return toSavedSearches(rows)
}

func (r *SavedSearchRepo) GetByID(ctx context.Context, id string) (*types.SavedSearch, error) {
	var po SavedSearchPO
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrSavedSearchNotFound
		}
		return nil, fmt.Errorf("failed to get saved search: %w", err)
	}
	return po.toSavedSearch()
}

func (r *SavedSearchRepo) UpdateName(ctx context.Context, id, name string, updatedAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&SavedSearchPO{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":       name,
			"updated_at": updatedAt.UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to rename saved search: %w", err)
	}
	return nil
}

func (r *SavedSearchRepo) UpdateCheck(ctx context.Context, id string, newCount int, checkedAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&SavedSearchPO{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"new_match_count": newCount,
			"last_checked_at": checkedAt.UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to record saved search check: %w", err)
	}
	return nil
}

func (r *SavedSearchRepo) Delete(ctx context.Context, id, principalID string) error {
	err := r.db.WithContext(ctx).
		Where("id = ? AND principal_id = ?", id, principalID).
		Delete(&SavedSearchPO{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete saved search: %w", err)
	}
	return nil
}

func (r *SavedSearchRepo) Walk(ctx context.Context, batchSize int, fn func(batch []*types.SavedSearch) error) error {
	var rows []*SavedSearchPO
	err := database.FindInBatches(ctx, r.db.GetDB(), &rows, batchSize, func(_ *gorm.DB, _ int) error {
		batch, err := toSavedSearches(rows)
		if err != nil {
			return err
		}
		return fn(batch)
	})
	if err != nil {
		return fmt.Errorf("failed to walk saved searches: %w", err)
	}
	return nil
}

func toSavedSearches(rows []*SavedSearchPO) ([]*types.SavedSearch, error) {
	out := make([]*types.SavedSearch, 0, len(rows))
	for _, po := range rows {
		s, err := po.toSavedSearch()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
