package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/travel-point/api-go/models"
	"github.com/travel-point/api-go/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BoundingBoxQuery selects rows of one table inside a box.
type BoundingBoxQuery struct {
	Category models.Category
	Box      *utils.BoundingBox
	Filter   *models.TagFilter
	Text     string
}

// TagQuery selects rows of one table by an exact tag value.
type TagQuery struct {
	Category models.Category
	Key      string
	Value    string
	CityID   *uint
	Text     string
}

// RecentQuery selects the newest rows of one table.
type RecentQuery struct {
	Category models.Category
	Box      *utils.BoundingBox
	Filter   *models.TagFilter
	Since    *time.Time
	Limit    int
}

// RecommendationQuery selects candidates across tables for a user's interests.
type RecommendationQuery struct {
	Categories []models.Category
	Box        *utils.BoundingBox
	Filter     *models.TagFilter
	Interests  []string
}

type PlaceRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewPlaceRepository(db *gorm.DB, log *zap.Logger) *PlaceRepository {
	return &PlaceRepository{db: db, log: log}
}

func (r *PlaceRepository) FindInBoundingBox(ctx context.Context, q BoundingBoxQuery) ([]models.PlaceRow, error) {
	query, err := NewFragment(q.Category,
		InBoundingBox(q.Box),
		WithTagFilter(q.Filter),
		NameContains(q.Text),
	).Build()
	if err != nil {
		return nil, err
	}
	return r.rows(ctx, query)
}

func (r *PlaceRepository) tagQuery(q TagQuery) (Query, error) {
	where := []Expr{TagEquals(q.Key, q.Value)}
	if q.CityID != nil {
		where = append(where, Cond("city_id = ?", *q.CityID))
	}
	where = append(where, NameContains(q.Text))
	return NewFragment(q.Category, where...).Build()
}

func (r *PlaceRepository) CountByTag(ctx context.Context, q TagQuery) (int64, error) {
	query, err := r.tagQuery(q)
	if err != nil {
		return 0, err
	}
	return r.count(ctx, query.Count())
}

func (r *PlaceRepository) FindByTag(ctx context.Context, q TagQuery, sort models.SortKey, limit, offset int) ([]models.PlaceRow, error) {
	query, err := r.tagQuery(q)
	if err != nil {
		return nil, err
	}
	paged, err := query.Page(orderFor(sort, q.Text), limit, offset)
	if err != nil {
		return nil, err
	}
	return r.rows(ctx, paged)
}

func (r *PlaceRepository) FindRecent(ctx context.Context, q RecentQuery) ([]models.PlaceRow, error) {
	where := []Expr{InBoundingBox(q.Box), WithTagFilter(q.Filter)}
	if q.Since != nil {
		where = append(where, Cond("created_at >= ?", *q.Since))
	}
	query, err := NewFragment(q.Category, where...).Build()
	if err != nil {
		return nil, err
	}
	paged, err := query.Page(OrderCreatedDesc, q.Limit, 0)
	if err != nil {
		return nil, err
	}
	return r.rows(ctx, paged)
}

// InterestPredicate is the disjunction of every tag rule the interests trigger
// plus a name match on interests long enough to be meaningful. Interests that
// can match nothing yield FALSE; no interests yield no constraint.
func InterestPredicate(interests []string) Expr {
	if len(interests) == 0 {
		return Expr{}
	}
	if !models.Filterable(interests) {
		return Cond("FALSE")
	}
	var exprs []Expr
	for _, rule := range models.RulesForInterests(interests) {
		exprs = append(exprs, TagIn(rule.Key, rule.Values...))
	}

	var names []string
	for _, i := range interests {
		if len(i) >= models.MinNameInterestLen {
			names = append(names, i)
		}
	}
	exprs = append(exprs, NameMatchesAny(names))

	return Or(exprs...)
}

func (r *PlaceRepository) recommendationQuery(q RecommendationQuery) (Query, error) {
	shared := []Expr{InBoundingBox(q.Box), InterestPredicate(q.Interests)}

	fragments := make([]Fragment, 0, len(q.Categories))
	for _, c := range q.Categories {
		where := append(append([]Expr{}, shared...), WithTagFilter(q.Filter))
		fragments = append(fragments, NewFragment(c, where...))
	}
	return UnionAll(fragments...)
}

func (r *PlaceRepository) CountRecommendations(ctx context.Context, q RecommendationQuery) (int64, error) {
	query, err := r.recommendationQuery(q)
	if err != nil {
		return 0, err
	}
	return r.count(ctx, query.Count())
}

// FindRecommendations pages candidates by name. Relevance ordering is applied
// by the caller after scoring.
func (r *PlaceRepository) FindRecommendations(ctx context.Context, q RecommendationQuery, sort models.SortKey, limit, offset int) ([]models.PlaceRow, error) {
	query, err := r.recommendationQuery(q)
	if err != nil {
		return nil, err
	}
	paged, err := query.Page(orderFor(sort, ""), limit, offset)
	if err != nil {
		return nil, err
	}
	return r.rows(ctx, paged)
}

func orderFor(sort models.SortKey, text string) Expr {
	switch sort.Effective(strings.TrimSpace(text) != "") {
	case models.SortNameDesc:
		return OrderNameDesc
	case models.SortRelevance:
		return OrderTextRelevance(text)
	default:
		return OrderNameAsc
	}
}

func (r *PlaceRepository) rows(ctx context.Context, q Query) ([]models.PlaceRow, error) {
	r.log.Debug("place query", zap.String("sql", q.SQL), zap.Int("args", len(q.Args)))

	var rows []models.PlaceRow
	if err := r.db.WithContext(ctx).Raw(q.SQL, q.Args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query places: %w", err)
	}
	return rows, nil
}

func (r *PlaceRepository) count(ctx context.Context, q Query) (int64, error) {
	r.log.Debug("count query", zap.String("sql", q.SQL), zap.Int("args", len(q.Args)))

	var total int64
	if err := r.db.WithContext(ctx).Raw(q.SQL, q.Args...).Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("count places: %w", err)
	}
	return total, nil
}
