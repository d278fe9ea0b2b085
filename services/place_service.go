package services

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/travel-point/api-go/logger"
	"github.com/travel-point/api-go/metrics"
	"github.com/travel-point/api-go/models"
	"github.com/travel-point/api-go/repository"
	"github.com/travel-point/api-go/types"
	"github.com/travel-point/api-go/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultNearbyRadiusKm   = 5.0
	MinNearbyRadiusKm       = 0.1
	MaxNearbyRadiusKm       = 50.0
	DefaultBestForYouRadius = 10.0
	MinRecommendationRadius = 0.5
	MaxRecommendationRadius = 100.0
	DefaultTopLimit         = 10
	MaxTopLimit             = 50
	boundingBoxPadding      = 1.1
	criteriaRecent          = "recent"
)

// PlaceStore is the candidate fetcher backing the orchestrators.
type PlaceStore interface {
	FindInBoundingBox(ctx context.Context, q repository.BoundingBoxQuery) ([]models.PlaceRow, error)
	CountByTag(ctx context.Context, q repository.TagQuery) (int64, error)
	FindByTag(ctx context.Context, q repository.TagQuery, sort models.SortKey, limit, offset int) ([]models.PlaceRow, error)
	FindRecent(ctx context.Context, q repository.RecentQuery) ([]models.PlaceRow, error)
	CountRecommendations(ctx context.Context, q repository.RecommendationQuery) (int64, error)
	FindRecommendations(ctx context.Context, q repository.RecommendationQuery, sort models.SortKey, limit, offset int) ([]models.PlaceRow, error)
}

// PlacePage is one page of results plus the total across all pages.
type PlacePage struct {
	Items      []types.Place
	TotalItems int64
	Page       int
	PageSize   int
}

func (p PlacePage) Response() types.PaginatedPlacesResponse {
	return types.NewPaginatedPlacesResponse(p.Items, p.TotalItems, p.Page, p.PageSize)
}

type PlaceService struct {
	store     PlaceStore
	interests InterestProvider
	enricher  *Enricher
	limits    PageLimits
	now       func() time.Time
}

func NewPlaceService(store PlaceStore, interests InterestProvider, enricher *Enricher, limits PageLimits) *PlaceService {
	return &PlaceService{
		store:     store,
		interests: interests,
		enricher:  enricher,
		limits:    limits,
		now:       time.Now,
	}
}

func observe(mode string) func() {
	start := time.Now()
	return func() {
		metrics.PlaceQueryDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	}
}

// Nearby returns places within radius of a point, closest first by default.
// A table whose query fails contributes no rows; the request fails only when
// every table failed.
func (s *PlaceService) Nearby(ctx context.Context, q types.NearbyPlacesQuery) (PlacePage, error) {
	defer observe("nearby")()
	log := logger.FromContext(ctx)

	if q.Latitude == nil || q.Longitude == nil {
		return PlacePage{}, invalidf("latitude and longitude are required")
	}
	if !utils.ValidCoordinate(*q.Latitude, *q.Longitude) {
		return PlacePage{}, invalidf("latitude/longitude out of range")
	}
	radius := DefaultNearbyRadiusKm
	if q.RadiusKm != nil {
		radius = *q.RadiusKm
	}
	if math.IsNaN(radius) || radius < MinNearbyRadiusKm || radius > MaxNearbyRadiusKm {
		return PlacePage{}, invalidf("radius_km must be between %g and %g", MinNearbyRadiusKm, MaxNearbyRadiusKm)
	}
	sort := models.SortKey(q.SortBy)
	if !sort.Valid() {
		return PlacePage{}, invalidf("unsupported sort_by %q", q.SortBy)
	}
	page, size := s.limits.Normalize(q.Page, q.Size)

	lat, lon := *q.Latitude, *q.Longitude
	categories, filter := s.targetCategories(ctx, q.Category)
	box := utils.NewBoundingBox(lat, lon, radius*boundingBoxPadding)

	results := make([][]models.PlaceRow, len(categories))
	failed := make([]bool, len(categories))
	var g errgroup.Group
	for i, cat := range categories {
		g.Go(func() error {
			rows, err := s.store.FindInBoundingBox(ctx, repository.BoundingBoxQuery{
				Category: cat,
				Box:      box,
				Filter:   filter,
				Text:     q.Q,
			})
			if err != nil {
				log.Error("nearby table query failed", zap.String("table", cat.Table()), zap.Error(err))
				metrics.PlaceTableErrorsTotal.WithLabelValues("nearby", cat.Table()).Inc()
				failed[i] = true
				return nil
			}
			results[i] = rows
			return nil
		})
	}
	_ = g.Wait()

	if allTrue(failed) {
		return PlacePage{Items: []types.Place{}, Page: page, PageSize: size}, errors.New("nearby: every table query failed")
	}

	var places []types.Place
	for _, rows := range results {
		for _, row := range rows {
			if row.Latitude == nil || row.Longitude == nil {
				log.Warn("skipping place without coordinates",
					zap.String("category", string(row.Category)), zap.Uint("id", row.ID))
				continue
			}
			d := utils.DistanceToRow(lat, lon, row.Latitude, row.Longitude)
			if math.IsInf(d, 0) || d > radius {
				continue
			}
			p := toPlace(ctx, row)
			dist := utils.Round(d, 2)
			p.DistanceKm = &dist
			places = append(places, p)
		}
	}

	sortPlaces(places, sort, q.Q, true)
	items := slicePage(places, page, size)
	s.attachImages(ctx, items)

	return PlacePage{Items: items, TotalItems: int64(len(places)), Page: page, PageSize: size}, nil
}

// ByType returns places whose tags[osm_key] equals osm_value. Only the most
// likely table for the key is queried.
func (s *PlaceService) ByType(ctx context.Context, q types.PlacesByTypeQuery) (PlacePage, error) {
	defer observe("by_type")()
	log := logger.FromContext(ctx)

	key, value := strings.TrimSpace(q.OsmKey), strings.TrimSpace(q.OsmValue)
	if key == "" || value == "" {
		return PlacePage{}, invalidf("osm_key and osm_value are required")
	}
	sort := models.SortKey(q.SortBy)
	if !sort.Valid() {
		return PlacePage{}, invalidf("unsupported sort_by %q", q.SortBy)
	}
	page, size := s.limits.Normalize(q.Page, q.Size)
	empty := PlacePage{Items: []types.Place{}, Page: page, PageSize: size}

	categories := models.CategoriesForTagKey(key)
	if len(categories) == 0 {
		log.Warn("no table holds tag key", zap.String("osm_key", key))
		return empty, nil
	}

	tq := repository.TagQuery{
		Category: categories[0],
		Key:      key,
		Value:    value,
		CityID:   q.CityID,
		Text:     q.Q,
	}

	total, err := s.store.CountByTag(ctx, tq)
	if err != nil {
		log.Error("count by type failed", zap.String("table", tq.Category.Table()), zap.Error(err))
		return empty, err
	}
	empty.TotalItems = total

	offset := pageOffset(page, size)
	if int64(offset) >= total {
		return empty, nil
	}

	rows, err := s.store.FindByTag(ctx, tq, sort, size, offset)
	if err != nil {
		log.Error("fetch by type failed", zap.String("table", tq.Category.Table()), zap.Error(err))
		return empty, err
	}

	items := make([]types.Place, 0, len(rows))
	for _, row := range rows {
		items = append(items, toPlace(ctx, row))
	}
	s.attachImages(ctx, items)

	return PlacePage{Items: items, TotalItems: total, Page: page, PageSize: size}, nil
}

// Top returns the most recently added places of one category, optionally
// restricted to a box around a point.
func (s *PlaceService) Top(ctx context.Context, q types.TopPlacesQuery) ([]types.Place, error) {
	defer observe("top")()
	log := logger.FromContext(ctx)

	criteria := strings.ToLower(strings.TrimSpace(q.Criteria))
	if criteria == "" {
		criteria = criteriaRecent
	}
	if criteria != criteriaRecent {
		return nil, invalidf("unsupported criteria %q; only %q is available", q.Criteria, criteriaRecent)
	}

	since, err := s.windowStart(q.TimeWindow)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit == 0 {
		limit = DefaultTopLimit
	}
	if limit < 1 || limit > MaxTopLimit {
		return nil, invalidf("limit must be between 1 and %d", MaxTopLimit)
	}

	provided := 0
	for _, v := range []*float64{q.Latitude, q.Longitude, q.RadiusKm} {
		if v != nil {
			provided++
		}
	}
	if provided != 0 && provided != 3 {
		return nil, invalidf("latitude, longitude and radius_km must be provided together")
	}

	var box *utils.BoundingBox
	if provided == 3 {
		if !utils.ValidCoordinate(*q.Latitude, *q.Longitude) {
			return nil, invalidf("latitude/longitude out of range")
		}
		if r := *q.RadiusKm; math.IsNaN(r) || r < MinRecommendationRadius || r > MaxRecommendationRadius {
			return nil, invalidf("radius_km must be between %g and %g", MinRecommendationRadius, MaxRecommendationRadius)
		}
		box = utils.NewBoundingBox(*q.Latitude, *q.Longitude, *q.RadiusKm)
	}

	sel := models.CategorySelection{Category: models.CategoryLandmark}
	if name := strings.TrimSpace(q.Category); name != "" {
		if resolved, ok := models.ResolveCategory(name); ok {
			sel = resolved
		} else {
			log.Warn("unknown category, using landmark", zap.String("category", name))
		}
	}

	rows, err := s.store.FindRecent(ctx, repository.RecentQuery{
		Category: sel.Category,
		Box:      box,
		Filter:   sel.Filter,
		Since:    since,
		Limit:    limit,
	})
	if err != nil {
		log.Error("fetch top places failed", zap.String("table", sel.Category.Table()), zap.Error(err))
		return []types.Place{}, err
	}

	reason := []string{"Recently added " + sel.Category.DisplayName()}
	items := make([]types.Place, 0, len(rows))
	for _, row := range rows {
		p := toPlace(ctx, row)
		if box != nil {
			if d := utils.DistanceToRow(*q.Latitude, *q.Longitude, row.Latitude, row.Longitude); !math.IsInf(d, 0) {
				dist := utils.Round(d, 1)
				p.DistanceKm = &dist
			}
		}
		p.Reason = reason
		items = append(items, p)
	}
	s.attachImages(ctx, items)

	return items, nil
}

func (s *PlaceService) windowStart(window string) (*time.Time, error) {
	now := s.now()
	var since time.Time
	switch strings.ToLower(strings.TrimSpace(window)) {
	case "", "all":
		return nil, nil
	case "day":
		since = now.AddDate(0, 0, -1)
	case "week":
		since = now.AddDate(0, 0, -7)
	case "month":
		since = now.AddDate(0, -1, 0)
	case "year":
		since = now.AddDate(-1, 0, 0)
	default:
		return nil, invalidf("unsupported time_window %q", window)
	}
	return &since, nil
}

// BestForUser recommends places matching the user's interests, optionally
// near a point. Request interests override stored ones. Any storage error
// aborts the request. Pages come from storage in name order; relevance
// sorting reorders within the returned page only.
func (s *PlaceService) BestForUser(ctx context.Context, userID uint, q types.BestForYouQuery) (PlacePage, error) {
	defer observe("best_for_you")()
	log := logger.FromContext(ctx).With(zap.Uint("user_id", userID))

	if (q.Latitude == nil) != (q.Longitude == nil) {
		return PlacePage{}, invalidf("latitude and longitude must be provided together")
	}
	hasLocation := q.Latitude != nil
	radius := DefaultBestForYouRadius
	if q.RadiusKm != nil {
		radius = *q.RadiusKm
	}
	if hasLocation {
		if !utils.ValidCoordinate(*q.Latitude, *q.Longitude) {
			return PlacePage{}, invalidf("latitude/longitude out of range")
		}
		if math.IsNaN(radius) || radius < MinRecommendationRadius || radius > MaxRecommendationRadius {
			return PlacePage{}, invalidf("radius_km must be between %g and %g", MinRecommendationRadius, MaxRecommendationRadius)
		}
	}
	sort := models.SortKey(q.SortBy)
	if !sort.Valid() {
		return PlacePage{}, invalidf("unsupported sort_by %q", q.SortBy)
	}
	page, size := s.limits.Normalize(q.Page, q.Size)
	empty := PlacePage{Items: []types.Place{}, Page: page, PageSize: size}

	interests := models.NormalizeInterests(q.Interests)
	if len(interests) == 0 && s.interests != nil {
		stored, err := s.interests.UserInterests(ctx, userID)
		if err != nil {
			log.Error("load user interests failed", zap.Error(err))
			return empty, err
		}
		interests = models.NormalizeInterests(stored)
	}
	if len(interests) > 0 && !models.Filterable(interests) {
		log.Info("interests match no place", zap.Strings("interests", interests))
		return empty, nil
	}

	categories, filter := s.targetCategories(ctx, q.Category)
	rq := repository.RecommendationQuery{
		Categories: categories,
		Filter:     filter,
		Interests:  interests,
	}
	if hasLocation {
		rq.Box = utils.NewBoundingBox(*q.Latitude, *q.Longitude, radius*boundingBoxPadding)
	}

	total, err := s.store.CountRecommendations(ctx, rq)
	if err != nil {
		log.Error("count recommendations failed", zap.Error(err))
		return empty, err
	}
	empty.TotalItems = total

	offset := pageOffset(page, size)
	if int64(offset) >= total {
		return empty, nil
	}

	rows, err := s.store.FindRecommendations(ctx, rq, sort, size, offset)
	if err != nil {
		log.Error("fetch recommendations failed", zap.Error(err))
		return empty, err
	}

	scoreRadius := 0.0
	if hasLocation {
		scoreRadius = radius
	}

	items := make([]types.Place, 0, len(rows))
	for _, row := range rows {
		p := toPlace(ctx, row)
		d := math.Inf(1)
		if hasLocation {
			d = utils.DistanceToRow(*q.Latitude, *q.Longitude, row.Latitude, row.Longitude)
			if !math.IsInf(d, 0) {
				dist := utils.Round(d, 1)
				p.DistanceKm = &dist
			}
		}
		score, reasons := ScoreRecommendation(row.Name, p.Tags, d, scoreRadius, interests)
		p.RelevanceScore = &score
		p.Reason = reasons
		items = append(items, p)
	}

	if sort == models.SortRelevance {
		slices.SortStableFunc(items, compareScore)
	}
	s.attachImages(ctx, items)

	return PlacePage{Items: items, TotalItems: total, Page: page, PageSize: size}, nil
}

// Categories lists the supported conceptual categories.
func (s *PlaceService) Categories() []types.CategoryResponse {
	out := make([]types.CategoryResponse, 0, len(models.ConceptualCategories))
	for _, c := range models.ConceptualCategories {
		out = append(out, types.CategoryResponse{
			Name:        c.Name,
			DisplayName: c.DisplayName,
			Category:    string(c.Category),
			OsmKey:      c.Filter.Key,
			OsmValue:    c.Filter.Value,
		})
	}
	return out
}

// targetCategories resolves a requested category to the tables to query.
// Empty or unknown names select every base table.
func (s *PlaceService) targetCategories(ctx context.Context, name string) ([]models.Category, *models.TagFilter) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.AllCategories, nil
	}
	sel, ok := models.ResolveCategory(name)
	if !ok {
		logger.FromContext(ctx).Warn("unknown category, querying all tables", zap.String("category", name))
		return models.AllCategories, nil
	}
	return []models.Category{sel.Category}, sel.Filter
}

func (s *PlaceService) attachImages(ctx context.Context, items []types.Place) {
	if len(items) == 0 {
		return
	}
	refs := make([]PlaceRef, len(items))
	for i, p := range items {
		refs[i] = PlaceRef{Category: p.Category(), ID: p.ID, Name: p.Name, Tags: p.Tags}
	}
	urls := s.enricher.Enrich(ctx, refs)
	for i := range items {
		url := urls[i]
		items[i].ImageURL = &url
	}
}

func toPlace(ctx context.Context, row models.PlaceRow) types.Place {
	tags, ok := utils.NormalizeTags([]byte(row.Tags))
	if !ok {
		logger.FromContext(ctx).Warn("unparseable tags",
			zap.String("category", string(row.Category)), zap.Uint("id", row.ID))
	}
	return types.Place{
		ID:           row.ID,
		Name:         row.Name,
		Latitude:     row.Latitude,
		Longitude:    row.Longitude,
		Tags:         tags,
		Website:      row.Website,
		Description:  row.Description,
		OpeningHours: row.OpeningHours,
		OsmType:      row.OsmType,
		OsmID:        row.OsmID,
		CreatedAt:    row.CreatedAt,
		Details:      types.DetailsFor(row),
		Address:      utils.BuildAddress(tags),
	}
}

func allTrue(flags []bool) bool {
	for _, f := range flags {
		if !f {
			return false
		}
	}
	return len(flags) > 0
}
