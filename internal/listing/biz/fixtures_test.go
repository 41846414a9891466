package biz

import (
	"context"
	"time"

	"github.com/lk2023060901/vehicle-discovery/internal/listing/types"
)

var baseTime = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

// memRepo is an in-memory store evaluating StorePredicate.Matches
type memRepo struct {
	listings []*types.Listing
	err      error
	calls    int
}

func (r *memRepo) Find(_ context.Context, p StorePredicate) ([]*types.Listing, error) {
	r.calls++
	return r.matching(p)
}

func (r *memRepo) matching(p StorePredicate) ([]*types.Listing, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*types.Listing
	for _, l := range r.listings {
		if p.Matches(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

func newListing(id int64, mutate ...func(l *types.Listing)) *types.Listing {
	l := &types.Listing{
		ID:        id,
		Status:    types.StatusActive,
		Mode:      types.ModeSale,
		Category:  types.CategoryAuto,
		Title:     "Listing",
		Make:      "Volkswagen",
		Model:     "Golf",
		Price:     10000,
		Year:      2018,
		Odometer:  80000,
		Power:     110,
		City:      "Berlin",
		Country:   "DE",
		Fuel:      types.FuelPetrol,
		Gearbox:   types.GearboxManual,
		SellerID:  "seller-1",
		CreatedAt: baseTime.Add(time.Duration(id) * time.Minute),
	}
	for _, m := range mutate {
		m(l)
	}
	return l
}

func ids(items []*types.Listing) []int64 {
	out := make([]int64, len(items))
	for i, l := range items {
		out[i] = l.ID
	}
	return out
}

func ptr[T any](v T) *T { return &v }

// pagingRepo adds the store-side paging capability on top of memRepo
type pagingRepo struct {
	memRepo
	pages  int
	counts int
}

func (r *pagingRepo) FindPage(_ context.Context, p StorePredicate, sortKey types.SortKey, page, pageSize int) (*types.ResultPage, error) {
	r.pages++
	rows, err := r.matching(p)
	if err != nil {
		return nil, err
	}
	SortListings(rows, sortKey)
	return Paginate(rows, page, pageSize), nil
}

func (r *pagingRepo) CountCreatedAfter(_ context.Context, p StorePredicate, since time.Time) (int, error) {
	r.counts++
	rows, err := r.matching(p)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, l := range rows {
		if l.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}
