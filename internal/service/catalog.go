// Package service holds the content resolution layer between the HTTP
// handlers and the stores: cached catalog queries, locale-aware response
// shaping and the portfolio project merge.
package service

import (
	"context"
	"sort"
	"strconv"
	"unicode"

	"miro-content-service/internal/model"
	"miro-content-service/internal/query"
	"miro-content-service/internal/repository"
)

// Cache tags for bulk invalidation
const (
	TagMovies    = "movies"
	TagTVSeries  = "tv-series"
	TagCompanies = "companies"
)

// maxCastMembers caps the cast list on the series detail payload
const maxCastMembers = 20

// topCompaniesLimit bounds the production-companies endpoints
const topCompaniesLimit = 20

// topPlatformsLimit bounds the platform aggregation endpoints
const topPlatformsLimit = 12

// CatalogStore is the data access surface the service resolves against.
// *repository.CatalogRepo implements it.
type CatalogStore interface {
	ListMovies(ctx context.Context, p query.Params) ([]model.CatalogItem, error)
	ListTVSeries(ctx context.Context, p query.Params) ([]model.CatalogItem, error)
	GetMovie(ctx context.Context, id int64) (*model.MovieDetail, error)
	GetTVSeries(ctx context.Context, id int64) (*model.TVSeriesDetail, error)
	TopCompanies(ctx context.Context, table, entity string, limit int) ([]model.ProductionCompany, error)
	ListPlatforms(ctx context.Context, table string, limit int) ([]model.Platform, error)
}

// CatalogService resolves catalog content through the tagged cache
type CatalogService struct {
	repo  CatalogStore
	cache *repository.TaggedCache
}

// NewCatalogService creates a CatalogService
func NewCatalogService(repo CatalogStore, cache *repository.TaggedCache) *CatalogService {
	return &CatalogService{repo: repo, cache: cache}
}

// ListMovies returns one formatted page of movies. The bool reports
// whether the page was served from cache.
func (s *CatalogService) ListMovies(ctx context.Context, p query.Params) (model.CatalogPage, bool, error) {
	return s.listPage(ctx, "catalog:movies", TagMovies, p, s.repo.ListMovies)
}

// ListTVSeries returns one formatted page of TV series
func (s *CatalogService) ListTVSeries(ctx context.Context, p query.Params) (model.CatalogPage, bool, error) {
	return s.listPage(ctx, "catalog:tv-series", TagTVSeries, p, s.repo.ListTVSeries)
}

func (s *CatalogService) listPage(
	ctx context.Context,
	name, tag string,
	p query.Params,
	fetch func(context.Context, query.Params) ([]model.CatalogItem, error),
) (model.CatalogPage, bool, error) {
	args := []interface{}{p.Page, p.Limit, p.Companies, p.Platform}

	var items []model.CatalogItem
	hit, err := s.cache.GetOrCompute(ctx, name, args, &items,
		func(ctx context.Context) (interface{}, error) {
			rows, err := fetch(ctx, p)
			if err != nil {
				return nil, err
			}
			return rows, nil
		}, tag)
	if err != nil {
		return model.CatalogPage{}, false, err
	}

	for i := range items {
		formatItem(&items[i], p.StorageLocale())
	}

	return model.CatalogPage{
		Items:   items,
		Page:    p.Page,
		Limit:   p.Limit,
		HasMore: len(items) >= p.Limit,
	}, hit, nil
}

// GetMovie returns the formatted movie detail, or nil when absent
func (s *CatalogService) GetMovie(ctx context.Context, id int64, locale string) (*model.MovieDetail, bool, error) {
	var detail *model.MovieDetail
	hit, err := s.cache.GetOrCompute(ctx, "catalog:movie-detail", []interface{}{id}, &detail,
		func(ctx context.Context) (interface{}, error) {
			return s.repo.GetMovie(ctx, id)
		}, TagMovies, MovieTag(id))
	if err != nil {
		return nil, false, err
	}
	if detail == nil {
		return nil, hit, nil
	}

	formatItem(&detail.CatalogItem, locale)
	if detail.ProductionCompanies == nil {
		detail.ProductionCompanies = []model.ProductionCompany{}
	}

	return detail, hit, nil
}

// GetTVSeries returns the formatted series detail, or nil when absent.
// The per-id tag allows targeted invalidation after an ingest update.
func (s *CatalogService) GetTVSeries(ctx context.Context, id int64, locale string) (*model.TVSeriesDetail, bool, error) {
	var detail *model.TVSeriesDetail
	hit, err := s.cache.GetOrCompute(ctx, "catalog:tv-series-detail", []interface{}{id}, &detail,
		func(ctx context.Context) (interface{}, error) {
			return s.repo.GetTVSeries(ctx, id)
		}, TagTVSeries, SeriesTag(id))
	if err != nil {
		return nil, false, err
	}
	if detail == nil {
		return nil, hit, nil
	}

	formatItem(&detail.CatalogItem, locale)
	detail.CastMembers = SortCast(detail.CastMembers)
	if detail.Genres == nil {
		detail.Genres = []model.Genre{}
	}
	if detail.ProductionCompanies == nil {
		detail.ProductionCompanies = []model.ProductionCompany{}
	}

	return detail, hit, nil
}

// TopCompanies returns the most prolific movie production companies
func (s *CatalogService) TopCompanies(ctx context.Context) ([]model.ProductionCompany, bool, error) {
	return s.topCompanies(ctx, "catalog:top-companies", "movies", "movie")
}

// TopTVCompanies returns the most prolific TV-series production companies
func (s *CatalogService) TopTVCompanies(ctx context.Context) ([]model.ProductionCompany, bool, error) {
	return s.topCompanies(ctx, "catalog:top-tv-companies", "tv_series", "tv_series")
}

func (s *CatalogService) topCompanies(ctx context.Context, name, table, entity string) ([]model.ProductionCompany, bool, error) {
	var companies []model.ProductionCompany
	hit, err := s.cache.GetOrCompute(ctx, name, nil, &companies,
		func(ctx context.Context) (interface{}, error) {
			return s.repo.TopCompanies(ctx, table, entity, topCompaniesLimit)
		}, TagCompanies)
	if err != nil {
		return nil, false, err
	}
	return companies, hit, nil
}

// MoviePlatforms returns the platforms aggregated from movie homepages
func (s *CatalogService) MoviePlatforms(ctx context.Context) ([]model.Platform, bool, error) {
	return s.platforms(ctx, "catalog:platforms", "movies", TagMovies)
}

// TVPlatforms returns the platforms aggregated from series homepages
func (s *CatalogService) TVPlatforms(ctx context.Context) ([]model.Platform, bool, error) {
	return s.platforms(ctx, "catalog:tv-platforms", "tv_series", TagTVSeries)
}

func (s *CatalogService) platforms(ctx context.Context, name, table, tag string) ([]model.Platform, bool, error) {
	var platforms []model.Platform
	hit, err := s.cache.GetOrCompute(ctx, name, nil, &platforms,
		func(ctx context.Context) (interface{}, error) {
			return s.repo.ListPlatforms(ctx, table, topPlatformsLimit)
		}, tag)
	if err != nil {
		return nil, false, err
	}
	for i := range platforms {
		platforms[i].DisplayName = capitalize(platforms[i].Name)
	}
	return platforms, hit, nil
}

// Invalidate drops all cache entries under a tag
func (s *CatalogService) Invalidate(ctx context.Context, tag string) error {
	return s.cache.Invalidate(ctx, tag)
}

// SeriesTag is the per-series invalidation tag
func SeriesTag(id int64) string {
	return "tv-series-" + strconv.FormatInt(id, 10)
}

// MovieTag is the per-movie invalidation tag
func MovieTag(id int64) string {
	return "movie-" + strconv.FormatInt(id, 10)
}

// capitalize uppercases the first rune for platform display names
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return string(unicode.ToUpper(r[0])) + string(r[1:])
}

// formatItem resolves the display title and artwork for one row
func formatItem(item *model.CatalogItem, storageLocale string) {
	item.Title = ResolveTitle(item.TitleGeo, item.TitleEng, storageLocale)
	item.Backdrop = ResolveArtwork(item.PosterURL, item.PosterTMDB)
}

// ResolveTitle picks the display title for the storage locale, falling
// back across languages when one side is empty.
func ResolveTitle(titleGeo, titleEng, storageLocale string) string {
	if storageLocale == "ge" {
		if titleGeo != "" {
			return titleGeo
		}
		return titleEng
	}
	if titleEng != "" {
		return titleEng
	}
	return titleGeo
}

// ResolveArtwork applies the artwork precedence: the explicit CDN URL
// wins over the externally-hosted TMDB path.
func ResolveArtwork(posterURL, posterTMDB *string) string {
	if posterURL != nil && *posterURL != "" {
		return *posterURL
	}
	if posterTMDB != nil && *posterTMDB != "" {
		return *posterTMDB
	}
	return ""
}

// SortCast orders cast members by display order ascending, members
// without an order last, and truncates to the cap.
func SortCast(members []model.CastMember) []model.CastMember {
	sorted := make([]model.CastMember, 0, len(members))
	sorted = append(sorted, members...)

	sort.SliceStable(sorted, func(i, j int) bool {
		return castOrder(sorted[i]) < castOrder(sorted[j])
	})

	if len(sorted) > maxCastMembers {
		sorted = sorted[:maxCastMembers]
	}
	return sorted
}

func castOrder(m model.CastMember) int {
	if m.Order == nil {
		return 999
	}
	return *m.Order
}
