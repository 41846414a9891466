package biz

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/lk2023060901/vehicle-discovery/internal/listing/types"
)

// ListingRepo is the listing store
type ListingRepo interface {
	// Find returns every listing matching p; order is not significant
	Find(ctx context.Context, p StorePredicate) ([]*types.Listing, error)
}

// PagingRepo is implemented by stores that can count, order and page a store
// predicate themselves. It is used only when nothing is left to filter in memory.
type PagingRepo interface {
	// FindPage applies the same ordering and page clamping as SortListings and Paginate
	FindPage(ctx context.Context, p StorePredicate, sortKey types.SortKey, page, pageSize int) (*types.ResultPage, error)
	// CountCreatedAfter counts matches created strictly after since
	CountCreatedAfter(ctx context.Context, p StorePredicate, since time.Time) (int, error)
}

// Assembler fetches, filters, orders and pages listings
type Assembler struct {
	repo ListingRepo
}

func NewAssembler(repo ListingRepo) *Assembler {
	return &Assembler{repo: repo}
}

// Assemble returns the requested page. Out of range pages are clamped.
func (a *Assembler) Assemble(ctx context.Context, sp StorePredicate, rp ResidualPredicate, sortKey types.SortKey, page, pageSize int) (*types.ResultPage, error) {
	if pager, ok := a.pager(rp); ok {
		result, err := pager.FindPage(ctx, sp, sortKey, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return result, nil
	}

	matched, err := a.MatchAll(ctx, sp, rp)
	if err != nil {
		return nil, err
	}

	SortListings(matched, sortKey)
	return Paginate(matched, page, pageSize), nil
}

// MatchAll returns every listing satisfying both predicates, unordered
func (a *Assembler) MatchAll(ctx context.Context, sp StorePredicate, rp ResidualPredicate) ([]*types.Listing, error) {
	rows, err := a.repo.Find(ctx, sp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if rp.IsZero() {
		return rows, nil
	}

	matched := make([]*types.Listing, 0, len(rows))
	for _, l := range rows {
		if rp.Matches(l) {
			matched = append(matched, l)
		}
	}
	return matched, nil
}

// CountCreatedAfter counts listings satisfying both predicates that were
// created strictly after since
func (a *Assembler) CountCreatedAfter(ctx context.Context, sp StorePredicate, rp ResidualPredicate, since time.Time) (int, error) {
	if pager, ok := a.pager(rp); ok {
		n, err := pager.CountCreatedAfter(ctx, sp, since)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return n, nil
	}

	matched, err := a.MatchAll(ctx, sp, rp)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, l := range matched {
		if l.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (a *Assembler) pager(rp ResidualPredicate) (PagingRepo, bool) {
	if !rp.IsZero() {
		return nil, false
	}
	pager, ok := a.repo.(PagingRepo)
	return pager, ok
}

// ClampPage resolves the page size and clamps page into [1, totalPages]
func ClampPage(total, page, pageSize int) (int, int, int) {
	if pageSize < 1 {
		pageSize = types.DefaultPageSize
	}
	totalPages := max(1, (total+pageSize-1)/pageSize)
	page = max(1, min(page, totalPages))
	return page, pageSize, totalPages
}

// Paginate slices an ordered result set, clamping page into [1, totalPages]
func Paginate(items []*types.Listing, page, pageSize int) *types.ResultPage {
	total := len(items)
	page, pageSize, totalPages := ClampPage(total, page, pageSize)

	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	return &types.ResultPage{
		Items:      items[start:end],
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   pageSize,
	}
}

// SortListings orders items in place. Every key ends with id so the order is total.
func SortListings(items []*types.Listing, key types.SortKey) {
	slices.SortFunc(items, comparator(key))
}

func comparator(key types.SortKey) func(a, b *types.Listing) int {
	byField := func(field func(*types.Listing) int64, desc bool) func(a, b *types.Listing) int {
		return func(a, b *types.Listing) int {
			c := cmp.Or(cmp.Compare(field(a), field(b)), cmp.Compare(a.ID, b.ID))
			if desc {
				return -c
			}
			return c
		}
	}

	switch key {
	case types.SortPriceAsc, types.SortPriceDesc:
		return byField(func(l *types.Listing) int64 { return l.Price }, key == types.SortPriceDesc)
	case types.SortKmAsc, types.SortKmDesc:
		return byField(func(l *types.Listing) int64 { return l.Odometer }, key == types.SortKmDesc)
	case types.SortYearAsc, types.SortYearDesc:
		return byField(func(l *types.Listing) int64 { return l.Year }, key == types.SortYearDesc)
	case types.SortPowerAsc, types.SortPowerDesc:
		return byField(func(l *types.Listing) int64 { return l.Power }, key == types.SortPowerDesc)
	case types.SortDateAsc, types.SortDateDesc:
		return byField(func(l *types.Listing) int64 { return l.CreatedAt.UnixNano() }, key == types.SortDateDesc)
	default:
		return defaultOrder
	}
}

// defaultOrder: sponsored first, later sponsorship expiry first (none last),
// newest first, then highest id.
func defaultOrder(a, b *types.Listing) int {
	if a.Sponsored != b.Sponsored {
		if a.Sponsored {
			return -1
		}
		return 1
	}

	switch {
	case a.SponsoredUntil != nil && b.SponsoredUntil == nil:
		return -1
	case a.SponsoredUntil == nil && b.SponsoredUntil != nil:
		return 1
	case a.SponsoredUntil != nil && b.SponsoredUntil != nil:
		if c := b.SponsoredUntil.Compare(*a.SponsoredUntil); c != 0 {
			return c
		}
	}

	return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
}
