package biz

import (
	"context"
	"time"

	"github.com/lk2023060901/vehicle-discovery/internal/listing/types"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FavoritesReader exposes the favorites read-model
type FavoritesReader interface {
	FavoritesOf(ctx context.Context, principalID string) (map[int64]struct{}, error)
}

// SearchUseCase runs interactive searches
type SearchUseCase struct {
	assembler *Assembler
	favorites FavoritesReader
	logger    *logger.Logger
}

// NewSearchUseCase creates a search use case; favorites may be nil
func NewSearchUseCase(repo ListingRepo, favorites FavoritesReader, log *logger.Logger) *SearchUseCase {
	if log == nil {
		log = logger.NewNop()
	}
	return &SearchUseCase{
		assembler: NewAssembler(repo),
		favorites: favorites,
		logger:    log,
	}
}

// Search normalizes raw, assembles the requested page and marks the
// principal's favorites. Only store failures are returned.
func (uc *SearchUseCase) Search(ctx context.Context, raw types.RawParams, principalID string) (*types.SearchResult, error) {
	criteria := Normalize(raw)
	sp, rp := Build(criteria)

	var (
		page *types.ResultPage
		favs map[int64]struct{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = uc.assembler.Assemble(gctx, sp, rp, criteria.Sort, criteria.Page, criteria.PageSize)
		return err
	})
	if principalID != "" && uc.favorites != nil {
		g.Go(func() error {
			var err error
			favs, err = uc.favorites.FavoritesOf(gctx, principalID)
			if err != nil {
				uc.logger.WithContext(ctx).Warn("skip favorite decoration", zap.Error(err))
				favs = nil
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uc.logger.WithContext(ctx).Error("search failed", zap.Error(err))
		return nil, err
	}

	cards := make([]*types.ListingCard, len(page.Items))
	for i, l := range page.Items {
		_, fav := favs[l.ID]
		cards[i] = &types.ListingCard{Listing: l, IsFavorite: fav}
	}

	return &types.SearchResult{
		Items:      cards,
		Total:      page.Total,
		TotalPages: page.TotalPages,
		Page:       page.Page,
		PageSize:   page.PageSize,
	}, nil
}

// MatchAll returns every listing matching criteria, ignoring pagination
func (uc *SearchUseCase) MatchAll(ctx context.Context, criteria types.SearchCriteria) ([]*types.Listing, error) {
	sp, rp := Build(criteria)
	return uc.assembler.MatchAll(ctx, sp, rp)
}

// CountNewSince counts listings matching criteria created strictly after since
func (uc *SearchUseCase) CountNewSince(ctx context.Context, criteria types.SearchCriteria, since time.Time) (int, error) {
	sp, rp := Build(criteria)
	return uc.assembler.CountCreatedAfter(ctx, sp, rp, since)
}
