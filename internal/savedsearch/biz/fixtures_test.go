package biz

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	listingtypes "github.com/lk2023060901/vehicle-discovery/internal/listing/types"
	"github.com/lk2023060901/vehicle-discovery/internal/savedsearch/types"
)

var errStoreDown = errors.New("store down")

// memRepo is an in-memory SavedSearchRepo
type memRepo struct {
	mu   sync.Mutex
	rows map[string]*types.SavedSearch
	err  error
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[string]*types.SavedSearch{}}
}

func (r *memRepo) Create(_ context.Context, s *types.SavedSearch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	c := *s
	r.rows[s.ID] = &c
	return nil
}

func (r *memRepo) CountByPrincipal(_ context.Context, principalID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for _, s := range r.rows {
		if s.PrincipalID == principalID {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) ListByPrincipal(_ context.Context, principalID string) ([]*types.SavedSearch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*types.SavedSearch
	for _, s := range r.rows {
		if s.PrincipalID == principalID {
			c := *s
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *types.SavedSearch) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*types.SavedSearch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	s, ok := r.rows[id]
	if !ok {
		return nil, ErrSavedSearchNotFound
	}
	c := *s
	return &c, nil
}

func (r *memRepo) UpdateName(_ context.Context, id, name string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if s, ok := r.rows[id]; ok {
		s.Name = name
		s.UpdatedAt = updatedAt
	}
	return nil
}

func (r *memRepo) UpdateCheck(_ context.Context, id string, newCount int, checkedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if s, ok := r.rows[id]; ok {
		s.NewMatchCount = newCount
		s.LastCheckedAt = checkedAt
	}
	return nil
}

func (r *memRepo) Delete(_ context.Context, id, principalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if s, ok := r.rows[id]; ok && s.PrincipalID == principalID {
		delete(r.rows, id)
	}
	return nil
}

func (r *memRepo) Walk(_ context.Context, batchSize int, fn func(batch []*types.SavedSearch) error) error {
	r.mu.Lock()
	if r.err != nil {
		r.mu.Unlock()
		return r.err
	}
	all := make([]*types.SavedSearch, 0, len(r.rows))
	for _, s := range r.rows {
		c := *s
		all = append(all, &c)
	}
	r.mu.Unlock()

	slices.SortFunc(all, func(a, b *types.SavedSearch) int { return strings.Compare(a.ID, b.ID) })
	for chunk := range slices.Chunk(all, batchSize) {
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}

func (r *memRepo) get(id string) *types.SavedSearch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id]
}

// fakeMatcher returns a fixed listing set, failing for criteria whose query is "boom"
type fakeMatcher struct {
	mu       sync.Mutex
	listings []*listingtypes.Listing
}

func (m *fakeMatcher) CountNewSince(_ context.Context, c listingtypes.SearchCriteria, since time.Time) (int, error) {
	if c.Query == "boom" {
		return 0, errStoreDown
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.listings {
		if l.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (m *fakeMatcher) add(id int64, createdAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings = append(m.listings, &listingtypes.Listing{ID: id, CreatedAt: createdAt})
}

// clock is a manually advanced time source
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
